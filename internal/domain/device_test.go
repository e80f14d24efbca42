package domain

import (
	"testing"
	"time"
)

func TestDeviceRosterTotals(t *testing.T) {
	now := time.Now()
	r := NewDeviceRoster(now)

	r.Add(Device{IP: "192.168.1.10", Status: DeviceStatusOnline, LastSeen: now})
	r.Add(Device{IP: "192.168.1.11", Status: DeviceStatusUnknown, LastSeen: now})
	r.Add(Device{IP: "192.168.1.12", Status: DeviceStatusOffline, LastSeen: now.Add(-time.Hour)})

	if r.Total != 3 || r.Online != 1 || r.Offline != 1 || r.Unknown != 1 {
		t.Errorf("totals = %d/%d/%d/%d, want 3/1/1/1", r.Total, r.Online, r.Offline, r.Unknown)
	}

	// Re-adding the same IP with a new status replaces the entry
	r.Add(Device{IP: "192.168.1.11", Status: DeviceStatusOnline, LastSeen: now})
	if r.Total != 3 || r.Online != 2 || r.Unknown != 0 {
		t.Errorf("after replace: totals = %d online=%d unknown=%d, want 3/2/0", r.Total, r.Online, r.Unknown)
	}
}

func TestDeviceRosterByStatus(t *testing.T) {
	now := time.Now()
	r := NewDeviceRoster(now)
	r.Add(Device{IP: "10.0.0.1", Status: DeviceStatusOffline})
	r.Add(Device{IP: "10.0.0.2", Status: DeviceStatusOnline})
	r.Add(Device{IP: "10.0.0.3", Status: DeviceStatusOffline})

	offline := r.ByStatus(DeviceStatusOffline)
	if len(offline) != 2 {
		t.Errorf("got %d offline devices, want 2", len(offline))
	}
}

func TestLeaseActive(t *testing.T) {
	now := time.Now()

	t.Run("valid lease", func(t *testing.T) {
		l := LeaseRecord{IP: "10.0.0.5", ExpiresAt: now.Add(time.Hour)}
		if !l.Active(now) {
			t.Error("expected lease to be active")
		}
	})

	t.Run("expired lease", func(t *testing.T) {
		l := LeaseRecord{IP: "10.0.0.5", ExpiresAt: now.Add(-time.Minute)}
		if l.Active(now) {
			t.Error("expected lease to be expired")
		}
	})
}
