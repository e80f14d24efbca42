package analysis

import (
	"fmt"
	"sync"
	"time"

	"sentinel/internal/domain"
)

// DefaultHistoryCapacity holds 24 hours of summaries at the default
// 5 minute analysis interval.
const DefaultHistoryCapacity = 288

// Trend classification ratios for the half-split comparison
const (
	trendIncreaseRatio = 1.2
	trendDecreaseRatio = 0.8
)

// History is a bounded, thread-safe buffer of health summaries.
// Appends evict the oldest entry once capacity is reached. Reads see
// either the state before or after an append, never a partial one.
type History struct {
	mu       sync.RWMutex
	entries  []domain.HealthSummary
	capacity int
}

// NewHistory creates a history buffer. Capacity must be positive.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("history capacity must be positive, got %d", capacity)
	}
	return &History{
		entries:  make([]domain.HealthSummary, 0, capacity),
		capacity: capacity,
	}, nil
}

// Append adds a summary, evicting the oldest entry when full
func (h *History) Append(s domain.HealthSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.capacity {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, s)
}

// Len returns the number of stored summaries
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Latest returns the most recent summary, or false when empty
func (h *History) Latest() (domain.HealthSummary, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return domain.HealthSummary{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Snapshot returns a copy of all stored summaries, oldest first
func (h *History) Snapshot() []domain.HealthSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.HealthSummary, len(h.entries))
	copy(out, h.entries)
	return out
}

// Trend reports per-metric movement over the given window. Each metric
// is averaged over the older and newer halves of the window: newer
// above 1.2x the older is increasing, below 0.8x decreasing, otherwise
// stable. An empty window yields no_data for every metric.
func (h *History) Trend(windowHours int, now time.Time) domain.TrendReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := now.Add(-time.Duration(windowHours) * time.Hour)
	var window []domain.HealthSummary
	for _, e := range h.entries {
		if !e.Timestamp.Before(cutoff) {
			window = append(window, e)
		}
	}

	report := domain.TrendReport{
		PeriodHours: windowHours,
		DataPoints:  len(window),
		Metrics:     make(map[string]domain.MetricTrend),
	}

	report.Metrics["packet_loss"] = trendOf(window, func(s domain.HealthSummary) float64 { return s.PacketLossPct })
	report.Metrics["latency"] = trendOf(window, func(s domain.HealthSummary) float64 { return s.LatencyMs })
	return report
}

func trendOf(window []domain.HealthSummary, metric func(domain.HealthSummary) float64) domain.MetricTrend {
	if len(window) == 0 {
		return domain.MetricTrend{Trend: domain.TrendNoData}
	}

	values := make([]float64, len(window))
	for i, s := range window {
		values[i] = metric(s)
	}

	t := domain.MetricTrend{Avg: mean(values), Min: values[0], Max: values[0]}
	for _, v := range values {
		if v < t.Min {
			t.Min = v
		}
		if v > t.Max {
			t.Max = v
		}
	}

	if len(values) < 2 {
		t.Trend = domain.TrendStable
		return t
	}

	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])

	switch {
	case second > first*trendIncreaseRatio:
		t.Trend = domain.TrendIncreasing
	case second < first*trendDecreaseRatio:
		t.Trend = domain.TrendDecreasing
	default:
		t.Trend = domain.TrendStable
	}
	return t
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
