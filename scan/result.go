package scan

import (
	"fmt"
	"time"
)

// BannerNotAvailable is the banner recorded for an open port that returned
// nothing identifiable.
const BannerNotAvailable = "Not available"

// OpenPort is a port that accepted a connection during the scan pass.
type OpenPort struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
}

// ProbeResult is one exported row: an open port and whatever it told us.
type ProbeResult struct {
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	Service string `json:"service"`
	Banner  string `json:"banner"`
}

type Report struct {
	ID       string        `json:"id"`
	Host     string        `json:"host"`
	Address  string        `json:"address"`
	Ports    PortRange     `json:"ports"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	HostInfo *HostInfo     `json:"host_info,omitempty"`
	Results  []ProbeResult `json:"results"`
}

func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

func (r *Report) Summary() string {
	return fmt.Sprintf(
		"%d open port(s) on %s (%s) in range %s, scanned in %s",
		len(r.Results),
		r.Host,
		r.Address,
		r.Ports,
		r.Duration().Round(time.Millisecond),
	)
}
