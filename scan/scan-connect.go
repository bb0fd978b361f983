package scan

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// ConnectScanner finds open ports with full TCP connects.
type ConnectScanner struct {
	timeout  time.Duration
	workers  int
	services ServiceResolver
	log      logrus.FieldLogger
	recorder Recorder
}

func NewConnectScanner(opts Options) *ConnectScanner {
	opts = opts.withDefaults()
	return &ConnectScanner{
		timeout:  opts.ConnectTimeout,
		workers:  opts.Workers,
		services: opts.Services,
		log:      opts.Logger,
		recorder: opts.Recorder,
	}
}

// Scan probes every port in ports and returns the open ones in ascending
// order, whatever the number of workers.
func (s *ConnectScanner) Scan(ctx context.Context, host Host, ports PortRange) []OpenPort {

	found := make([]*OpenPort, ports.Len())
	it := ports.Iterator()

	runPortJobs(ctx, s.workers, it.Next, func(job portJob) {
		if open, ok := s.Probe(ctx, host, job.port); ok {
			found[job.index] = &open
		}
	})

	open := []OpenPort{}
	for _, p := range found {
		if p != nil {
			open = append(open, *p)
		}
	}
	return open
}

// Probe reports whether port accepts a connection within the connect timeout
// and, if it does, names the service conventionally found there. No data is
// exchanged.
func (s *ConnectScanner) Probe(ctx context.Context, host Host, port int) (OpenPort, bool) {

	start := time.Now()
	err := s.connect(ctx, host, port)
	s.recorder.PortProbed(err == nil, time.Since(start))

	if err != nil {
		perr := newProbeError("connect", host, port, err)
		s.recorder.ProbeFailed(perr.Op, perr.Kind)
		s.log.WithFields(logrus.Fields{
			"host":  host.Name,
			"port":  port,
			"cause": perr.Kind,
		}).WithError(err).Errorf("Error scanning port %d", port)
		return OpenPort{}, false
	}

	name, ok := s.services.Lookup(port)
	if !ok {
		s.log.WithField("port", port).Debugf("No service name registered for open port %d", port)
		name = UnknownService
	}

	return OpenPort{Port: port, Service: name}, true
}

func (s *ConnectScanner) connect(ctx context.Context, host Host, port int) error {
	dialer := net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", host.Address(port))
	if err != nil {
		return err
	}
	conn.Close()
	return nil
}
