package analysis

import (
	"fmt"
	"time"

	"sentinel/internal/domain"
)

// Thresholds holds the tunable limits the issue rules evaluate against
type Thresholds struct {
	PacketLossWarningPct  float64
	PacketLossCriticalPct float64
	LatencyWarningMs      float64
	LatencyCriticalMs     float64
	WifiClientLimit       int
}

// DefaultThresholds are the values used when config supplies none
func DefaultThresholds() Thresholds {
	return Thresholds{
		PacketLossWarningPct:  1.0,
		PacketLossCriticalPct: 5.0,
		LatencyWarningMs:      100,
		LatencyCriticalMs:     500,
		WifiClientLimit:       100,
	}
}

// Analyze runs the issue rule table over one cycle's collected data and
// builds the health summary. Each rule emits at most one issue; when no
// rule fires a synthetic healthy issue is emitted so the issue list is
// never empty.
func Analyze(roster domain.DeviceRoster, bandwidth domain.BandwidthSample, wifi domain.WifiStats, metrics domain.NetworkMetricsSample, th Thresholds, now time.Time) (domain.HealthSummary, []domain.Issue) {
	var issues []domain.Issue

	if roster.Offline > 0 {
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityWarning,
			Type:           domain.IssueTypeDevicesOffline,
			Title:          "Devices offline",
			Description:    fmt.Sprintf("%d device(s) have not been seen recently", roster.Offline),
			Recommendation: "Check power and cabling for the listed devices, or remove them from tracking if they were retired",
			Details:        map[string]string{
				"offline_count": fmt.Sprintf("%d", roster.Offline),
			},
		})
	}

	switch {
	case metrics.PacketLossPct >= th.PacketLossCriticalPct:
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityCritical,
			Type:           domain.IssueTypePacketLoss,
			Title:          "Severe packet loss",
			Description:    fmt.Sprintf("Packet loss is %.1f%% (critical threshold %.1f%%)", metrics.PacketLossPct, th.PacketLossCriticalPct),
			Recommendation: "Check the uplink and router load; sustained loss at this level breaks most applications",
		})
	case metrics.PacketLossPct >= th.PacketLossWarningPct:
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityWarning,
			Type:           domain.IssueTypePacketLoss,
			Title:          "Elevated packet loss",
			Description:    fmt.Sprintf("Packet loss is %.1f%% (warning threshold %.1f%%)", metrics.PacketLossPct, th.PacketLossWarningPct),
			Recommendation: "Watch for interference or a saturated link",
		})
	}

	switch {
	case metrics.LatencyMs >= th.LatencyCriticalMs:
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityCritical,
			Type:           domain.IssueTypeLatency,
			Title:          "Very high latency",
			Description:    fmt.Sprintf("Average latency is %.0fms (critical threshold %.0fms)", metrics.LatencyMs, th.LatencyCriticalMs),
			Recommendation: "Look for bufferbloat or a failing uplink",
		})
	case metrics.LatencyMs >= th.LatencyWarningMs:
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityWarning,
			Type:           domain.IssueTypeLatency,
			Title:          "Elevated latency",
			Description:    fmt.Sprintf("Average latency is %.0fms (warning threshold %.0fms)", metrics.LatencyMs, th.LatencyWarningMs),
			Recommendation: "Check for heavy transfers saturating the link",
		})
	}

	if wifi.TotalClients > th.WifiClientLimit {
		issues = append(issues, domain.Issue{
			Severity:       domain.SeverityWarning,
			Type:           domain.IssueTypeWifiLoad,
			Title:          "High wifi client count",
			Description:    fmt.Sprintf("%d wifi clients connected (limit %d)", wifi.TotalClients, th.WifiClientLimit),
			Recommendation: "Consider an additional access point or moving clients to 5GHz",
		})
	}

	if len(issues) == 0 {
		issues = append(issues, domain.Issue{
			Severity:    domain.SeverityInfo,
			Type:        domain.IssueTypeHealthy,
			Title:       "Network healthy",
			Description: "All monitored metrics are within normal ranges",
		})
	}

	summary := buildSummary(roster, bandwidth, wifi, metrics, issues, now)
	return summary, issues
}

func buildSummary(roster domain.DeviceRoster, bandwidth domain.BandwidthSample, wifi domain.WifiStats, metrics domain.NetworkMetricsSample, issues []domain.Issue, now time.Time) domain.HealthSummary {
	counts := domain.CountBySeverity(issues)

	s := domain.HealthSummary{
		Timestamp:      now,
		DevicesTotal:   roster.Total,
		DevicesOnline:  roster.Online,
		DevicesOffline: roster.Offline,
		DevicesUnknown: roster.Unknown,
		PacketLossPct:  metrics.PacketLossPct,
		LatencyMs:      metrics.LatencyMs,
		WifiClients:    wifi.TotalClients,
		BandwidthIn:    bandwidth.InMbps,
		BandwidthOut:   bandwidth.OutMbps,
		IssueCount:     len(issues),
		CriticalCount:  counts[domain.SeverityCritical],
		WarningCount:   counts[domain.SeverityWarning],
	}

	if counts[domain.SeverityCritical] > 0 {
		s.Alerts = append(s.Alerts, fmt.Sprintf("%d critical issue(s) detected", counts[domain.SeverityCritical]))
	}
	if counts[domain.SeverityWarning] > 0 {
		s.Alerts = append(s.Alerts, fmt.Sprintf("%d warning(s) active", counts[domain.SeverityWarning]))
	}
	if roster.Offline > 0 {
		s.Alerts = append(s.Alerts, fmt.Sprintf("%d device(s) offline", roster.Offline))
	}
	return s
}
