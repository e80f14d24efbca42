package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"sentinel/internal/domain"
)

// IwScanner scans the local wifi environment with iw. It implements
// WifiObservationSource.
type IwScanner struct {
	iface   string
	timeout time.Duration
}

// NewIwScanner creates a scanner for the given wireless interface
func NewIwScanner(iface string) *IwScanner {
	return &IwScanner{
		iface:   iface,
		timeout: 30 * time.Second,
	}
}

// Interface returns the wireless interface being scanned
func (s *IwScanner) Interface() string {
	return s.iface
}

// Scan dumps the most recent scan results from the interface. A fresh
// scan is triggered first; if that fails (interface busy, no
// permission) the cached dump is still usable.
func (s *IwScanner) Scan(ctx context.Context) ([]domain.WifiNetworkObservation, error) {
	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Trigger errors are expected when the interface is associated;
	// the dump below returns cached results either way
	_ = exec.CommandContext(scanCtx, "iw", "dev", s.iface, "scan", "trigger").Run()

	out, err := exec.CommandContext(scanCtx, "iw", "dev", s.iface, "scan", "dump").Output()
	if err != nil {
		return nil, fmt.Errorf("iw scan dump failed: %w", err)
	}
	return ParseIwScan(string(out)), nil
}

// ParseIwScan parses `iw dev <ifc> scan dump` output into typed
// observations. Entries missing a frequency or signal are kept with
// zero values; unrecognized lines are ignored.
func ParseIwScan(output string) []domain.WifiNetworkObservation {
	var (
		networks []domain.WifiNetworkObservation
		current  *domain.WifiNetworkObservation
	)

	flush := func() {
		if current == nil {
			return
		}
		if current.Security == "" {
			current.Security = "open"
		}
		current.Hidden = current.SSID == ""
		current.SignalPct = domain.SignalPercent(current.SignalDBM)
		networks = append(networks, *current)
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(line, "BSS ") {
			flush()
			bssid := strings.TrimPrefix(line, "BSS ")
			if idx := strings.IndexAny(bssid, "( \t"); idx > 0 {
				bssid = bssid[:idx]
			}
			current = &domain.WifiNetworkObservation{BSSID: strings.ToLower(bssid)}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "freq:"):
			raw := strings.TrimSpace(strings.TrimPrefix(trimmed, "freq:"))
			if dot := strings.Index(raw, "."); dot > 0 {
				raw = raw[:dot]
			}
			if freq, err := strconv.Atoi(raw); err == nil {
				current.FreqMHz = freq
				current.Band = domain.BandForFreq(freq)
				current.Channel = domain.ChannelForFreq(freq)
			}
		case strings.HasPrefix(trimmed, "signal:"):
			raw := strings.TrimSpace(strings.TrimPrefix(trimmed, "signal:"))
			raw = strings.TrimSuffix(raw, " dBm")
			if sig, err := strconv.ParseFloat(raw, 64); err == nil {
				current.SignalDBM = sig
			}
		case strings.HasPrefix(trimmed, "SSID:"):
			current.SSID = strings.TrimSpace(strings.TrimPrefix(trimmed, "SSID:"))
		case strings.HasPrefix(trimmed, "RSN:"):
			current.Security = "WPA2"
		case strings.HasPrefix(trimmed, "WPA:"):
			if current.Security == "" {
				current.Security = "WPA"
			}
		}
	}
	flush()

	return networks
}
