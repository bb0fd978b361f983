package scan

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Host is a scan target: the identifier as the user gave it and the address
// that is actually dialled.
type Host struct {
	Name string
	IP   net.IP
}

func (h Host) Address(port int) string {
	return net.JoinHostPort(h.IP.String(), strconv.Itoa(port))
}

// ResolveTarget turns an IP literal or hostname into a Host. Names are looked
// up once, before any probing, and an IPv4 address is preferred when the name
// has several.
func ResolveTarget(target string) (Host, error) {

	target = strings.TrimSpace(target)
	if target == "" {
		return Host{}, fmt.Errorf("no target specified")
	}

	if ip := net.ParseIP(target); ip != nil {
		return Host{Name: target, IP: ip}, nil
	}

	ips, err := net.LookupIP(target)
	if err != nil {
		return Host{}, fmt.Errorf("lookup failed for '%s': %w", target, err)
	}
	if len(ips) == 0 {
		return Host{}, fmt.Errorf("lookup failed for '%s'", target)
	}

	for _, ip := range ips {
		if ip.To4() != nil {
			return Host{Name: target, IP: ip}, nil
		}
	}

	return Host{Name: target, IP: ips[0]}, nil
}
