package scan

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/phayes/freeport"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var loopback = Host{Name: "127.0.0.1", IP: net.ParseIP("127.0.0.1")}

type handlerFunc func(conn net.Conn)

// listen starts a loopback server that hands every connection to handler and
// returns the port it listens on.
func listen(t *testing.T, handler handlerFunc) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return serve(t, ln, handler)
}

// listenAt is like listen but on a fixed port, reporting false if it is taken.
func listenAt(t *testing.T, port int, handler handlerFunc) bool {
	t.Helper()
	ln, err := net.Listen("tcp", loopback.Address(port))
	if err != nil {
		return false
	}
	serve(t, ln, handler)
	return true
}

func serve(t *testing.T, ln net.Listener, handler handlerFunc) int {
	wg := &sync.WaitGroup{}
	t.Cleanup(func() {
		ln.Close()
		wg.Wait()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer conn.Close()
				if handler != nil {
					handler(conn)
				}
			}()
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

// listenPair starts two servers on nearby ports so a small range covers both.
func listenPair(t *testing.T, first, second handlerFunc) (int, int) {
	t.Helper()
	low := listen(t, first)
	for high := low + 1; high <= low+20 && high <= 65535; high++ {
		if listenAt(t, high, second) {
			return low, high
		}
	}
	t.Skip("no free port near the first listener")
	return 0, 0
}

func closedPort(t *testing.T) int {
	t.Helper()
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	return port
}

func greet(banner string) handlerFunc {
	return func(conn net.Conn) {
		_, _ = conn.Write([]byte(banner))
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		buf := make([]byte, 64)
		_, _ = conn.Read(buf)
	}
}

func echo(conn net.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	_, _ = conn.Write(buf[:n])
}

func hangUp(conn net.Conn) {}

func silent(conn net.Conn) {
	time.Sleep(time.Second)
}

type staticServices map[int]string

func (s staticServices) Lookup(port int) (string, bool) {
	name, ok := s[port]
	return name, ok
}

type countingRecorder struct {
	mu       sync.Mutex
	probed   int
	open     int
	failures map[FailureKind]int
	found    int
	missing  int
}

func (r *countingRecorder) PortProbed(open bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probed++
	if open {
		r.open++
	}
}

func (r *countingRecorder) ProbeFailed(_ string, kind FailureKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures == nil {
		r.failures = map[FailureKind]int{}
	}
	r.failures[kind]++
}

func (r *countingRecorder) BannerGrabbed(found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if found {
		r.found++
	} else {
		r.missing++
	}
}

func testOptions(services ServiceResolver) (Options, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	opts := DefaultOptions()
	opts.ConnectTimeout = 500 * time.Millisecond
	opts.GrabTimeout = 500 * time.Millisecond
	opts.Services = services
	opts.Logger = logger
	return opts, hook
}
