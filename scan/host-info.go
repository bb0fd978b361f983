package scan

import (
	"context"
	"net"
	"strings"

	"github.com/google/gopacket/macs"
	"github.com/mostlygeek/arp"
)

// HostInfo is what the local network knows about a target.
type HostInfo struct {
	MAC          string `json:"mac,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Name         string `json:"name,omitempty"`
}

// DescribeHost looks the target up in the local ARP cache and the MAC vendor
// table, and resolves its reverse DNS name. Missing details are left blank.
func DescribeHost(ctx context.Context, ip net.IP) HostInfo {

	info := HostInfo{}

	macStr := arp.Search(ip.String())
	if macStr != "" && macStr != "00:00:00:00:00:00" {
		if mac, err := net.ParseMAC(macStr); err == nil && len(mac) >= 3 {
			info.MAC = mac.String()
			info.Manufacturer = manufacturer(mac)
		}
	}

	if names, err := net.DefaultResolver.LookupAddr(ctx, ip.String()); err == nil && len(names) > 0 {
		info.Name = strings.TrimSuffix(names[0], ".")
	}

	return info
}

func manufacturer(mac net.HardwareAddr) string {
	prefix := [3]byte{
		mac[0],
		mac[1],
		mac[2],
	}
	return macs.ValidMACPrefixMap[prefix]
}
