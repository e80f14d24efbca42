package domain

import "time"

// DeviceStatus represents the classification of a tracked device
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusUnknown DeviceStatus = "unknown"
)

// DeviceSource indicates which collection path produced the device record
type DeviceSource string

const (
	DeviceSourceDiscovery DeviceSource = "discovery"
	DeviceSourceLease     DeviceSource = "lease"
)

// Device represents a single tracked host on the network
type Device struct {
	IP       string       `json:"ip"`
	MAC      string       `json:"mac,omitempty"`
	Hostname string       `json:"hostname,omitempty"`
	Source   DeviceSource `json:"source"`
	Status   DeviceStatus `json:"status"`
	LastSeen time.Time    `json:"last_seen"`
}

// DeviceRoster is an IP-keyed snapshot of all tracked devices with
// derived totals. Rosters are rebuilt from scratch each analysis cycle.
type DeviceRoster struct {
	Devices map[string]Device `json:"devices"`
	Total   int               `json:"total"`
	Online  int               `json:"online"`
	Offline int               `json:"offline"`
	Unknown int               `json:"unknown"`
	BuiltAt time.Time         `json:"built_at"`
}

// NewDeviceRoster creates an empty roster
func NewDeviceRoster(builtAt time.Time) DeviceRoster {
	return DeviceRoster{
		Devices: make(map[string]Device),
		BuiltAt: builtAt,
	}
}

// Add inserts a device and updates the totals
func (r *DeviceRoster) Add(d Device) {
	if r.Devices == nil {
		r.Devices = make(map[string]Device)
	}
	if _, exists := r.Devices[d.IP]; !exists {
		r.Total++
	} else {
		r.uncount(r.Devices[d.IP].Status)
	}
	r.Devices[d.IP] = d
	r.count(d.Status)
}

// ByStatus returns the devices matching the given status
func (r *DeviceRoster) ByStatus(status DeviceStatus) []Device {
	var out []Device
	for _, d := range r.Devices {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

func (r *DeviceRoster) count(s DeviceStatus) {
	switch s {
	case DeviceStatusOnline:
		r.Online++
	case DeviceStatusOffline:
		r.Offline++
	case DeviceStatusUnknown:
		r.Unknown++
	}
}

func (r *DeviceRoster) uncount(s DeviceStatus) {
	switch s {
	case DeviceStatusOnline:
		r.Online--
	case DeviceStatusOffline:
		r.Offline--
	case DeviceStatusUnknown:
		r.Unknown--
	}
}

// DiscoveryRecord is a raw sighting of a host from the discovery layer
type DiscoveryRecord struct {
	IP       string    `json:"ip"`
	MAC      string    `json:"mac,omitempty"`
	Hostname string    `json:"hostname,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// LeaseRecord is one active DHCP lease as reported by dnsmasq
type LeaseRecord struct {
	IP        string    `json:"ip"`
	MAC       string    `json:"mac"`
	Hostname  string    `json:"hostname,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Active reports whether the lease is still valid at the given time
func (l LeaseRecord) Active(now time.Time) bool {
	return l.ExpiresAt.After(now)
}
