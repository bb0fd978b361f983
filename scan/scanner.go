package scan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultConnectTimeout = time.Second
	DefaultGrabTimeout    = 2 * time.Second
	DefaultBannerSize     = 100
	DefaultWorkers        = 1
)

// DefaultPayload is written to every open port to coax a banner out of
// services that do not greet on connect.
var DefaultPayload = []byte("WhoAreYou\r\n")

type Options struct {
	// ConnectTimeout bounds each scan pass connection attempt.
	ConnectTimeout time.Duration
	// GrabTimeout bounds the banner connection attempt and, separately, the
	// write and read that follow it.
	GrabTimeout time.Duration
	// Workers is the number of ports probed at once. 1 is strictly sequential.
	Workers    int
	Payload    []byte
	BannerSize int
	// AnnotateHost adds ARP, vendor and reverse DNS details to the report.
	AnnotateHost bool
	Services     ServiceResolver
	Logger       logrus.FieldLogger
	Recorder     Recorder
}

func DefaultOptions() Options {
	return Options{
		ConnectTimeout: DefaultConnectTimeout,
		GrabTimeout:    DefaultGrabTimeout,
		Workers:        DefaultWorkers,
		Payload:        DefaultPayload,
		BannerSize:     DefaultBannerSize,
	}
}

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.GrabTimeout <= 0 {
		o.GrabTimeout = DefaultGrabTimeout
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.Payload == nil {
		o.Payload = DefaultPayload
	}
	if o.BannerSize < 1 {
		o.BannerSize = DefaultBannerSize
	}
	if o.Services == nil {
		o.Services = DefaultServices()
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

// Scanner runs the scan pass followed by the banner pass against one target.
type Scanner struct {
	opts Options
}

func New(opts Options) *Scanner {
	return &Scanner{
		opts: opts.withDefaults(),
	}
}

// Run resolves target and probes every port in ports. Only a target that
// cannot be resolved is an error; per-port failures are logged and skipped.
func (s *Scanner) Run(ctx context.Context, target string, ports PortRange) (*Report, error) {

	id := uuid.New().String()
	log := s.opts.Logger.WithField("scan_id", id)

	host, err := ResolveTarget(target)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	opts.Logger = log

	report := &Report{
		ID:      id,
		Host:    host.Name,
		Address: host.IP.String(),
		Ports:   ports,
		Started: time.Now(),
	}

	if opts.AnnotateHost {
		info := DescribeHost(ctx, host.IP)
		report.HostInfo = &info
	}

	log.WithFields(logrus.Fields{
		"host":    host.Name,
		"address": report.Address,
		"ports":   ports.String(),
		"workers": opts.Workers,
	}).Info("Starting port scan")

	open := NewConnectScanner(opts).Scan(ctx, host, ports)
	log.Debugf("Found %d open port(s), grabbing banners...", len(open))

	report.Results = NewBannerGrabber(opts).Annotate(ctx, host, open)
	report.Finished = time.Now()

	log.Info(report.Summary())

	return report, nil
}
