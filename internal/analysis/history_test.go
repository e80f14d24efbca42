package analysis

import (
	"sync"
	"testing"
	"time"

	"sentinel/internal/domain"
)

func TestNewHistory(t *testing.T) {
	if _, err := NewHistory(0); err == nil {
		t.Error("expected error for zero capacity")
	}
	if _, err := NewHistory(-5); err == nil {
		t.Error("expected error for negative capacity")
	}
	if _, err := NewHistory(288); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHistoryEviction(t *testing.T) {
	h, err := NewHistory(3)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		h.Append(domain.HealthSummary{Timestamp: base.Add(time.Duration(i) * time.Minute), LatencyMs: float64(i)})
	}

	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}

	entries := h.Snapshot()
	// oldest entries evicted first
	if entries[0].LatencyMs != 2 || entries[2].LatencyMs != 4 {
		t.Errorf("wrong entries retained: %+v", entries)
	}

	latest, ok := h.Latest()
	if !ok || latest.LatencyMs != 4 {
		t.Errorf("latest = %+v ok=%v, want LatencyMs=4", latest, ok)
	}
}

func TestHistoryTrend(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	fill := func(firstLatency, secondLatency float64) *History {
		h, _ := NewHistory(DefaultHistoryCapacity)
		for i := 0; i < 6; i++ {
			lat := firstLatency
			if i >= 3 {
				lat = secondLatency
			}
			h.Append(domain.HealthSummary{
				Timestamp: now.Add(time.Duration(i-6) * 5 * time.Minute),
				LatencyMs: lat,
			})
		}
		return h
	}

	t.Run("increasing", func(t *testing.T) {
		h := fill(100, 130)
		if got := h.Trend(1, now).Metrics["latency"].Trend; got != domain.TrendIncreasing {
			t.Errorf("trend = %s, want increasing", got)
		}
	})

	t.Run("decreasing", func(t *testing.T) {
		h := fill(100, 70)
		if got := h.Trend(1, now).Metrics["latency"].Trend; got != domain.TrendDecreasing {
			t.Errorf("trend = %s, want decreasing", got)
		}
	})

	t.Run("stable", func(t *testing.T) {
		h := fill(100, 105)
		if got := h.Trend(1, now).Metrics["latency"].Trend; got != domain.TrendStable {
			t.Errorf("trend = %s, want stable", got)
		}
	})

	t.Run("empty window reports no_data", func(t *testing.T) {
		h, _ := NewHistory(10)
		report := h.Trend(24, now)
		if report.DataPoints != 0 {
			t.Errorf("data points = %d, want 0", report.DataPoints)
		}
		for name, m := range report.Metrics {
			if m.Trend != domain.TrendNoData {
				t.Errorf("%s trend = %s, want no_data", name, m.Trend)
			}
		}
	})

	t.Run("old entries fall outside the window", func(t *testing.T) {
		h, _ := NewHistory(10)
		h.Append(domain.HealthSummary{Timestamp: now.Add(-48 * time.Hour), LatencyMs: 900})
		h.Append(domain.HealthSummary{Timestamp: now.Add(-10 * time.Minute), LatencyMs: 20})

		report := h.Trend(1, now)
		if report.DataPoints != 1 {
			t.Errorf("data points = %d, want 1", report.DataPoints)
		}
		if got := report.Metrics["latency"].Max; got != 20 {
			t.Errorf("max = %v, want 20", got)
		}
	})

	t.Run("min max avg computed over window", func(t *testing.T) {
		h := fill(100, 130)
		m := h.Trend(1, now).Metrics["latency"]
		if m.Min != 100 || m.Max != 130 || m.Avg != 115 {
			t.Errorf("got min=%v max=%v avg=%v, want 100/130/115", m.Min, m.Max, m.Avg)
		}
	})
}

func TestHistoryConcurrentAccess(t *testing.T) {
	h, _ := NewHistory(50)
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Append(domain.HealthSummary{Timestamp: now, LatencyMs: float64(n)})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Trend(1, now)
				h.Snapshot()
			}
		}()
	}
	wg.Wait()

	if h.Len() != 50 {
		t.Errorf("len = %d, want capacity 50", h.Len())
	}
}
