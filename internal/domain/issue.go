package domain

// Severity ranks how urgent an issue is
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Issue types emitted by the health aggregator
const (
	IssueTypeDevicesOffline = "devices_offline"
	IssueTypePacketLoss     = "packet_loss"
	IssueTypeLatency        = "latency"
	IssueTypeWifiLoad       = "wifi_load"
	IssueTypeHealthy        = "healthy"
)

// Issue is a single finding produced during an analysis cycle
type Issue struct {
	Severity       Severity          `json:"severity"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Recommendation string            `json:"recommendation,omitempty"`
	Details        map[string]string `json:"details,omitempty"`
}

// CountBySeverity tallies issues per severity level
func CountBySeverity(issues []Issue) map[Severity]int {
	counts := make(map[Severity]int)
	for _, i := range issues {
		counts[i.Severity]++
	}
	return counts
}
