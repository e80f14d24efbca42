package collector

import (
	"fmt"
	"net"
)

// DefaultTargets derives scan CIDRs from the local non-loopback
// interface addresses. Used when config lists no explicit targets.
func DefaultTargets() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var targets []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil {
				continue
			}
			// Huge masks are not useful sweep targets
			ones, _ := ipNet.Mask.Size()
			if ones < 16 {
				continue
			}
			cidr := fmt.Sprintf("%s/%d", ipNet.IP.Mask(ipNet.Mask), ones)
			if !seen[cidr] {
				seen[cidr] = true
				targets = append(targets, cidr)
			}
		}
	}
	return targets
}
