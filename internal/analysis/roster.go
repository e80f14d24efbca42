// Package analysis implements the pure computation core of sentinel:
// device roster construction, channel congestion scoring, health issue
// detection, and bounded history with trend classification.
//
// Everything here is deterministic over its inputs. Collection of those
// inputs lives in internal/collector; sequencing lives in
// internal/service.
package analysis

import (
	"time"

	"sentinel/internal/domain"
)

// BuildRoster merges discovery sightings with active DHCP leases into a
// classified device roster.
//
// Every discovered host starts online. A host with no active lease is
// demoted to unknown (it responded but the DHCP server does not know
// it). Any host whose last sighting is older than offlineThreshold is
// forced offline regardless of lease state. Hosts present only in the
// lease table are not tracked.
func BuildRoster(discovery []domain.DiscoveryRecord, leases []domain.LeaseRecord, now time.Time, offlineThreshold time.Duration) domain.DeviceRoster {
	roster := domain.NewDeviceRoster(now)

	leased := make(map[string]domain.LeaseRecord, len(leases))
	for _, l := range leases {
		if l.Active(now) {
			leased[l.IP] = l
		}
	}

	for _, rec := range discovery {
		dev := domain.Device{
			IP:       rec.IP,
			MAC:      rec.MAC,
			Hostname: rec.Hostname,
			Source:   domain.DeviceSourceDiscovery,
			Status:   domain.DeviceStatusOnline,
			LastSeen: rec.LastSeen,
		}

		lease, hasLease := leased[rec.IP]
		if hasLease {
			if dev.MAC == "" {
				dev.MAC = lease.MAC
			}
			if dev.Hostname == "" {
				dev.Hostname = lease.Hostname
			}
		} else {
			dev.Status = domain.DeviceStatusUnknown
		}

		// Staleness wins over everything else
		if now.Sub(rec.LastSeen) > offlineThreshold {
			dev.Status = domain.DeviceStatusOffline
		}

		roster.Add(dev)
	}

	return roster
}
