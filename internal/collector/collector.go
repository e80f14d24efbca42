// Package collector implements the data acquisition layer: everything
// the analysis engine consumes comes in through the small source
// interfaces defined here.
//
// Implementations talk to the outside world (nmap, the router over SSH,
// the local wifi radio) and are deliberately forgiving: a failed scan or
// an unparseable command output degrades to zero values so a single bad
// collaborator never takes down an analysis cycle.
package collector

import (
	"context"

	"sentinel/internal/domain"
)

// DiscoverySource reports hosts currently responding on the network
type DiscoverySource interface {
	Discover(ctx context.Context) ([]domain.DiscoveryRecord, error)
}

// LeaseSource reports the DHCP server's lease table
type LeaseSource interface {
	Leases(ctx context.Context) ([]domain.LeaseRecord, error)
}

// BandwidthSource reports WAN throughput since the previous call
type BandwidthSource interface {
	Bandwidth(ctx context.Context) (domain.BandwidthSample, error)
}

// WifiStatsSource reports client counts per radio
type WifiStatsSource interface {
	WifiStats(ctx context.Context) (domain.WifiStats, error)
}

// MetricsSource reports link quality against a reference host
type MetricsSource interface {
	Metrics(ctx context.Context) (domain.NetworkMetricsSample, error)
}

// WifiObservationSource scans the wifi environment for nearby networks
type WifiObservationSource interface {
	Scan(ctx context.Context) ([]domain.WifiNetworkObservation, error)
}
