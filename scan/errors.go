package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// FailureKind classifies why a connection attempt or banner read failed.
type FailureKind string

const (
	FailureRefused     FailureKind = "refused"
	FailureTimeout     FailureKind = "timeout"
	FailureUnreachable FailureKind = "unreachable"
	FailureReset       FailureKind = "reset"
	FailureDNS         FailureKind = "dns"
	FailureOther       FailureKind = "other"
)

// ProbeError is a per-port network failure. It is logged and recorded, never
// returned past a pass.
type ProbeError struct {
	Op   string
	Host string
	Port int
	Kind FailureKind
	Err  error
}

func newProbeError(op string, host Host, port int, err error) *ProbeError {
	return &ProbeError{
		Op:   op,
		Host: host.Name,
		Port: port,
		Kind: classify(err),
		Err:  err,
	}
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s %s port %d: %s: %v", e.Op, e.Host, e.Port, e.Kind, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}

func classify(err error) FailureKind {

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return FailureDNS
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return FailureRefused
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return FailureReset
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return FailureUnreachable
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}

	// some platforms only expose these as text
	msg := err.Error()
	switch {
	case strings.Contains(msg, "refused"):
		return FailureRefused
	case strings.Contains(msg, "reset by peer"):
		return FailureReset
	case strings.Contains(msg, "unreachable"):
		return FailureUnreachable
	}

	return FailureOther
}
