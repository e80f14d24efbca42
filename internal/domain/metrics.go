package domain

import "time"

// NetworkMetricsSample carries the raw link quality numbers for one
// analysis cycle, measured against a reference host.
type NetworkMetricsSample struct {
	PacketLossPct float64   `json:"packet_loss_pct"`
	LatencyMs     float64   `json:"latency_ms"`
	LatencyMaxMs  float64   `json:"latency_max_ms"`
	JitterMs      float64   `json:"jitter_ms"`
	TCPRetries    int       `json:"tcp_retries"`
	UDPErrors     int       `json:"udp_errors"`
	SampledAt     time.Time `json:"sampled_at"`
}

// BandwidthSample is the WAN throughput measured over one interval
type BandwidthSample struct {
	InMbps    float64   `json:"in_mbps"`
	OutMbps   float64   `json:"out_mbps"`
	SampledAt time.Time `json:"sampled_at"`
}

// AccessPoint describes one radio interface on the router
type AccessPoint struct {
	Name    string `json:"name"`
	Band    Band   `json:"band"`
	Channel int    `json:"channel"`
	Clients int    `json:"clients"`
}

// WifiStats aggregates client counts across the router's radios
type WifiStats struct {
	Band2GClients int           `json:"band_2g_clients"`
	Band5GClients int           `json:"band_5g_clients"`
	TotalClients  int           `json:"total_clients"`
	AccessPoints  []AccessPoint `json:"access_points"`
}
