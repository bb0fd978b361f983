package scan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// BannerGrabber reconnects to open ports, sends a fixed payload and reads
// whatever comes back.
type BannerGrabber struct {
	timeout  time.Duration
	payload  []byte
	size     int
	workers  int
	log      logrus.FieldLogger
	recorder Recorder
}

func NewBannerGrabber(opts Options) *BannerGrabber {
	opts = opts.withDefaults()
	return &BannerGrabber{
		timeout:  opts.GrabTimeout,
		payload:  opts.Payload,
		size:     opts.BannerSize,
		workers:  opts.Workers,
		log:      opts.Logger,
		recorder: opts.Recorder,
	}
}

// Annotate produces exactly one result per open port, in input order. Ports
// that yield no banner get BannerNotAvailable.
func (g *BannerGrabber) Annotate(ctx context.Context, host Host, open []OpenPort) []ProbeResult {

	results := make([]ProbeResult, len(open))
	for i, p := range open {
		results[i] = ProbeResult{
			IP:      host.Name,
			Port:    p.Port,
			Service: p.Service,
			Banner:  BannerNotAvailable,
		}
	}

	i := 0
	next := func() (int, error) {
		if i >= len(open) {
			return 0, io.EOF
		}
		i++
		return open[i-1].Port, nil
	}

	runPortJobs(ctx, g.workers, next, func(job portJob) {
		banner, ok := g.Grab(ctx, host, job.port)
		found := ok && len(banner) > 0
		if found {
			results[job.index].Banner = decodeBanner(banner)
		}
		g.recorder.BannerGrabbed(found)
	})

	return results
}

// Grab returns the trimmed response to the probe payload, which may be empty
// when the service closed the connection without saying anything. ok is false
// only when the exchange failed.
func (g *BannerGrabber) Grab(ctx context.Context, host Host, port int) ([]byte, bool) {

	banner, err := g.grab(ctx, host, port)
	if err != nil {
		perr := newProbeError("grab", host, port, err)
		g.recorder.ProbeFailed(perr.Op, perr.Kind)
		g.log.WithFields(logrus.Fields{
			"host":  host.Name,
			"port":  port,
			"cause": perr.Kind,
		}).WithError(err).Errorf("Error grabbing banner for port %d", port)
		return nil, false
	}

	return banner, true
}

func (g *BannerGrabber) grab(ctx context.Context, host Host, port int) ([]byte, error) {

	dialer := net.Dialer{Timeout: g.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", host.Address(port))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(g.timeout)); err != nil {
		return nil, err
	}

	if _, err := conn.Write(g.payload); err != nil {
		return nil, err
	}

	buf := make([]byte, g.size)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return bytes.TrimSpace(buf[:n]), nil
}

func decodeBanner(banner []byte) string {
	return strings.ToValidUTF8(string(banner), "\uFFFD")
}
