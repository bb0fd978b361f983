// Package metrics records probe and banner outcomes in Prometheus collectors.
// A scan is a one-shot process, so the registry is written out as a
// node_exporter textfile rather than served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/liamg/bannerscan/scan"
)

const (
	namespace = "bannerscan"

	subsystemProbe  = "probe"
	subsystemBanner = "banner"
)

type Collector struct {
	registry *prometheus.Registry

	portsProbed   *prometheus.CounterVec
	probeFailures *prometheus.CounterVec
	probeDuration prometheus.Histogram
	banners       *prometheus.CounterVec
}

var _ scan.Recorder = (*Collector)(nil)

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		portsProbed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "ports_total",
				Help:      "Ports probed, by resulting state",
			},
			[]string{"state"},
		),
		probeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "failures_total",
				Help:      "Failed connection attempts and banner reads, by operation and cause",
			},
			[]string{"op", "cause"},
		),
		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystemProbe,
				Name:      "duration_seconds",
				Help:      "Time taken by each connection attempt",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
		),
		banners: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystemBanner,
				Name:      "results_total",
				Help:      "Banner grabs on open ports, by whether a banner was found",
			},
			[]string{"result"},
		),
	}

	c.registry.MustRegister(
		c.portsProbed,
		c.probeFailures,
		c.probeDuration,
		c.banners,
	)

	return c
}

func (c *Collector) PortProbed(open bool, elapsed time.Duration) {
	state := "closed"
	if open {
		state = "open"
	}
	c.portsProbed.WithLabelValues(state).Inc()
	c.probeDuration.Observe(elapsed.Seconds())
}

func (c *Collector) ProbeFailed(op string, kind scan.FailureKind) {
	c.probeFailures.WithLabelValues(op, string(kind)).Inc()
}

func (c *Collector) BannerGrabbed(found bool) {
	result := "missing"
	if found {
		result = "found"
	}
	c.banners.WithLabelValues(result).Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteFile writes the current values in the Prometheus text format.
func (c *Collector) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
