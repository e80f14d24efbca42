package domain

import "time"

// HealthSummary is the per-cycle aggregate view of network health.
// Summaries are immutable once appended to history.
type HealthSummary struct {
	Timestamp      time.Time `json:"timestamp"`
	DevicesTotal   int       `json:"devices_total"`
	DevicesOnline  int       `json:"devices_online"`
	DevicesOffline int       `json:"devices_offline"`
	DevicesUnknown int       `json:"devices_unknown"`
	PacketLossPct  float64   `json:"packet_loss_pct"`
	LatencyMs      float64   `json:"latency_ms"`
	WifiClients    int       `json:"wifi_clients"`
	BandwidthIn    float64   `json:"bandwidth_in_mbps"`
	BandwidthOut   float64   `json:"bandwidth_out_mbps"`
	IssueCount     int       `json:"issue_count"`
	CriticalCount  int       `json:"critical_count"`
	WarningCount   int       `json:"warning_count"`
	Alerts         []string  `json:"alerts,omitempty"`
}

// AnalysisResult is the composite output of one full analysis cycle
type AnalysisResult struct {
	Summary   HealthSummary        `json:"summary"`
	Issues    []Issue              `json:"issues"`
	Roster    DeviceRoster         `json:"roster"`
	WifiStats WifiStats            `json:"wifi_stats"`
	Bandwidth BandwidthSample      `json:"bandwidth"`
	Metrics   NetworkMetricsSample `json:"metrics"`
}

// TrendDirection classifies how a metric moved across a window
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
	TrendNoData     TrendDirection = "no_data"
)

// MetricTrend summarizes one metric over a trend window
type MetricTrend struct {
	Avg   float64        `json:"avg"`
	Max   float64        `json:"max"`
	Min   float64        `json:"min"`
	Trend TrendDirection `json:"trend"`
}

// TrendReport covers all trended metrics for a requested window
type TrendReport struct {
	PeriodHours int                    `json:"period_hours"`
	DataPoints  int                    `json:"data_points"`
	Metrics     map[string]MetricTrend `json:"metrics"`
}
