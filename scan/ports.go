package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/gopacket/layers"
)

// UnknownService is reported for an open port that has no conventional name.
// It marks a lookup miss, not a connection failure.
const UnknownService = "unknown"

const servicesFile = "/etc/services"

// ServiceResolver maps a TCP port number to its conventional service name.
type ServiceResolver interface {
	Lookup(port int) (string, bool)
}

// ServiceRegistry holds TCP service names read from a services(5) database,
// optionally backed by a second resolver for ports the database does not
// list.
type ServiceRegistry struct {
	names    map[int]string
	fallback ServiceResolver
}

// NewServiceRegistry parses services(5) formatted data. Only tcp entries are
// kept and, as with getservbyport, the first name listed for a port wins.
func NewServiceRegistry(r io.Reader) (*ServiceRegistry, error) {

	reg := &ServiceRegistry{
		names: map[int]string{},
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		portProto := strings.SplitN(fields[1], "/", 2)
		if len(portProto) != 2 || !strings.EqualFold(portProto[1], "tcp") {
			continue
		}

		port, err := strconv.Atoi(portProto[0])
		if err != nil || port < 0 || port > 65535 {
			continue
		}

		if _, exists := reg.names[port]; !exists {
			reg.names[port] = fields[0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read services database: %w", err)
	}

	return reg, nil
}

func LoadServiceRegistry(path string) (*ServiceRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return NewServiceRegistry(f)
}

// WithFallback returns a copy of the registry that consults resolver for
// ports it has no entry for.
func (r *ServiceRegistry) WithFallback(resolver ServiceResolver) *ServiceRegistry {
	return &ServiceRegistry{
		names:    r.names,
		fallback: resolver,
	}
}

func (r *ServiceRegistry) Len() int {
	return len(r.names)
}

func (r *ServiceRegistry) Lookup(port int) (string, bool) {
	if name, ok := r.names[port]; ok {
		return name, true
	}
	if r.fallback != nil {
		return r.fallback.Lookup(port)
	}
	return "", false
}

// IANAServices resolves names from the IANA port table compiled into gopacket.
type IANAServices struct{}

func (IANAServices) Lookup(port int) (string, bool) {
	if port < 0 || port > 65535 {
		return "", false
	}

	// formatted as "22(ssh)" when the port has a name, or just "7" when not
	s := layers.TCPPort(port).String()
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", false
	}

	name := s[open+1 : len(s)-1]
	if name == "" {
		return "", false
	}
	return name, true
}

var defaultServices = sync.OnceValue(func() *ServiceRegistry {
	reg, err := LoadServiceRegistry(servicesFile)
	if err != nil {
		reg = &ServiceRegistry{names: map[int]string{}}
	}
	return reg.WithFallback(IANAServices{})
})

// DefaultServices is the platform services database backed by the IANA table.
func DefaultServices() *ServiceRegistry {
	return defaultServices()
}
