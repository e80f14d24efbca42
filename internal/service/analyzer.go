// Package service contains the analysis orchestrator: it sequences the
// collectors, runs the analysis engine over one consistent snapshot of
// their outputs, maintains history, and publishes events.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"sentinel/internal/analysis"
	"sentinel/internal/collector"
	"sentinel/internal/domain"
)

// ErrAnalysisInProgress is returned when a cycle is already running
var ErrAnalysisInProgress = errors.New("analysis cycle already in progress")

// SnapshotStore persists completed cycles. Implemented by
// repository/sqlite; nil disables persistence.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, summary domain.HealthSummary, issues []domain.Issue) error
	RecentSummaries(ctx context.Context, limit int) ([]domain.HealthSummary, error)
	LatestIssues(ctx context.Context) ([]domain.Issue, error)
}

// Sources bundles the collectors one analysis cycle reads from
type Sources struct {
	Discovery collector.DiscoverySource
	Leases    collector.LeaseSource
	Bandwidth collector.BandwidthSource
	WifiStats collector.WifiStatsSource
	Metrics   collector.MetricsSource
	Scanner   collector.WifiObservationSource
}

// Options tunes the analyzer
type Options struct {
	Thresholds       analysis.Thresholds
	OfflineThreshold time.Duration
	HistoryCapacity  int
	SuppressRepeats  bool
}

// Analyzer runs analysis cycles over the configured sources. It owns
// the history buffer and the last composite result; everything else is
// recomputed per cycle.
type Analyzer struct {
	sources Sources
	store   SnapshotStore
	bus     *EventBus
	opts    Options

	history  *analysis.History
	suppress *suppressor

	runMu sync.Mutex

	mu   sync.RWMutex
	last *domain.AnalysisResult
}

// NewAnalyzer creates an analyzer. HistoryCapacity must be positive.
func NewAnalyzer(sources Sources, store SnapshotStore, bus *EventBus, opts Options) (*Analyzer, error) {
	if opts.HistoryCapacity == 0 {
		opts.HistoryCapacity = analysis.DefaultHistoryCapacity
	}
	if opts.OfflineThreshold == 0 {
		opts.OfflineThreshold = 5 * time.Minute
	}
	if opts.Thresholds == (analysis.Thresholds{}) {
		opts.Thresholds = analysis.DefaultThresholds()
	}

	history, err := analysis.NewHistory(opts.HistoryCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create history: %w", err)
	}

	return &Analyzer{
		sources:  sources,
		store:    store,
		bus:      bus,
		opts:     opts,
		history:  history,
		suppress: newSuppressor(opts.SuppressRepeats),
	}, nil
}

// WarmStart reloads recent persisted summaries into history so trends
// survive a restart.
func (a *Analyzer) WarmStart(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	summaries, err := a.store.RecentSummaries(ctx, a.opts.HistoryCapacity)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	for _, s := range summaries {
		a.history.Append(s)
	}
	if len(summaries) > 0 {
		log.Printf("Analyzer: warmed history with %d persisted summaries", len(summaries))
	}
	return nil
}

// Run executes one full analysis cycle. Only one cycle runs at a time;
// a second caller gets ErrAnalysisInProgress. A cancelled context
// aborts before history is touched, so no partial summary is recorded.
func (a *Analyzer) Run(ctx context.Context) (*domain.AnalysisResult, error) {
	if !a.runMu.TryLock() {
		return nil, ErrAnalysisInProgress
	}
	defer a.runMu.Unlock()

	started := time.Now()

	discovery := a.collectDiscovery(ctx)
	leases := a.collectLeases(ctx)
	bandwidth := a.collectBandwidth(ctx)
	wifi := a.collectWifiStats(ctx)
	metrics := a.collectMetrics(ctx)

	now := time.Now()
	roster := analysis.BuildRoster(discovery, leases, now, a.opts.OfflineThreshold)
	summary, issues := analysis.Analyze(roster, bandwidth, wifi, metrics, a.opts.Thresholds, now)

	if err := ctx.Err(); err != nil {
		log.Printf("Analyzer: cycle cancelled after %s, discarding result", time.Since(started))
		return nil, err
	}

	a.history.Append(summary)

	result := &domain.AnalysisResult{
		Summary:   summary,
		Issues:    issues,
		Roster:    roster,
		WifiStats: wifi,
		Bandwidth: bandwidth,
		Metrics:   metrics,
	}

	a.mu.Lock()
	a.last = result
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.InsertSnapshot(ctx, summary, issues); err != nil {
			log.Printf("Analyzer: failed to persist snapshot: %v", err)
		}
	}

	a.publish(summary, issues)
	log.Printf("Analyzer: cycle complete in %s (%d devices, %d issues)",
		time.Since(started).Round(time.Millisecond), roster.Total, len(issues))
	return result, nil
}

func (a *Analyzer) publish(summary domain.HealthSummary, issues []domain.Issue) {
	if a.bus == nil {
		return
	}
	a.bus.Publish(Event{Type: EventAnalysisComplete, Payload: summary})
	for _, issue := range a.suppress.filter(issues) {
		if issue.Severity == domain.SeverityInfo {
			continue
		}
		a.bus.Publish(Event{Type: EventIssueDetected, Payload: issue})
	}
}

// Latest returns the most recent composite result, or false before the
// first completed cycle.
func (a *Analyzer) Latest() (*domain.AnalysisResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return nil, false
	}
	return a.last, true
}

// LatestOrRun returns the latest result, running a cycle first if none
// exists yet.
func (a *Analyzer) LatestOrRun(ctx context.Context) (*domain.AnalysisResult, error) {
	if result, ok := a.Latest(); ok {
		return result, nil
	}
	result, err := a.Run(ctx)
	if errors.Is(err, ErrAnalysisInProgress) {
		// Another caller is producing the first result; report empty
		// rather than blocking
		return nil, err
	}
	return result, err
}

// PersistedIssues returns the issues recorded with the newest persisted
// snapshot. It backs the issues endpoint between a restart and the
// first completed cycle; with no store configured it returns nothing.
func (a *Analyzer) PersistedIssues(ctx context.Context) ([]domain.Issue, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.LatestIssues(ctx)
}

// Trends reports metric movement over the given window, clamped to
// 1..168 hours.
func (a *Analyzer) Trends(hours int) domain.TrendReport {
	if hours < 1 {
		hours = 1
	}
	if hours > 168 {
		hours = 168
	}
	return a.history.Trend(hours, time.Now())
}

// ScanWifi runs a wifi environment scan and scores the result
func (a *Analyzer) ScanWifi(ctx context.Context) (*domain.ScanReport, error) {
	if a.sources.Scanner == nil {
		return nil, errors.New("no wifi scanner configured")
	}

	observations, err := a.sources.Scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("wifi scan failed: %w", err)
	}

	channels := analysis.ScoreChannels(observations)
	report := &domain.ScanReport{
		ScannedAt:       time.Now(),
		Networks:        observations,
		Channels:        channels,
		Recommendations: analysis.Recommend(channels),
		Overlaps:        analysis.OverlapGroups(channels[domain.Band2G]),
	}
	if iface, ok := a.sources.Scanner.(interface{ Interface() string }); ok {
		report.Interface = iface.Interface()
	}

	if a.bus != nil {
		a.bus.Publish(Event{Type: EventScanComplete, Payload: report.Recommendations})
	}
	return report, nil
}

// History exposes the summary buffer for read-only use by handlers
func (a *Analyzer) History() []domain.HealthSummary {
	return a.history.Snapshot()
}

func (a *Analyzer) collectDiscovery(ctx context.Context) []domain.DiscoveryRecord {
	if a.sources.Discovery == nil {
		return nil
	}
	records, err := a.sources.Discovery.Discover(ctx)
	if err != nil {
		log.Printf("Analyzer: discovery unavailable: %v", err)
		return nil
	}
	return records
}

func (a *Analyzer) collectLeases(ctx context.Context) []domain.LeaseRecord {
	if a.sources.Leases == nil {
		return nil
	}
	leases, err := a.sources.Leases.Leases(ctx)
	if err != nil {
		log.Printf("Analyzer: lease source unavailable: %v", err)
		return nil
	}
	return leases
}

func (a *Analyzer) collectBandwidth(ctx context.Context) domain.BandwidthSample {
	if a.sources.Bandwidth == nil {
		return domain.BandwidthSample{}
	}
	sample, err := a.sources.Bandwidth.Bandwidth(ctx)
	if err != nil {
		log.Printf("Analyzer: bandwidth source unavailable: %v", err)
		return domain.BandwidthSample{}
	}
	return sample
}

func (a *Analyzer) collectWifiStats(ctx context.Context) domain.WifiStats {
	if a.sources.WifiStats == nil {
		return domain.WifiStats{}
	}
	stats, err := a.sources.WifiStats.WifiStats(ctx)
	if err != nil {
		log.Printf("Analyzer: wifi stats unavailable: %v", err)
		return domain.WifiStats{}
	}
	return stats
}

func (a *Analyzer) collectMetrics(ctx context.Context) domain.NetworkMetricsSample {
	if a.sources.Metrics == nil {
		return domain.NetworkMetricsSample{}
	}
	sample, err := a.sources.Metrics.Metrics(ctx)
	if err != nil {
		log.Printf("Analyzer: metrics source unavailable: %v", err)
		return domain.NetworkMetricsSample{}
	}
	return sample
}
