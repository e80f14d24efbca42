package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentinel/internal/analysis"
	"sentinel/internal/collector"
	"sentinel/internal/config"
	"sentinel/internal/handler"
	"sentinel/internal/hub"
	"sentinel/internal/repository/sqlite"
	"sentinel/internal/service"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	configPath := flag.String("config", "", "config file path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting sentinel...")

	// Load configuration
	var (
		cfg        *config.Config
		loadedFrom string
		err        error
	)
	if *configPath != "" {
		cfg, loadedFrom, err = config.LoadFromPath(*configPath)
	} else {
		cfg, loadedFrom, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if loadedFrom != "" {
		log.Printf("Config loaded from %s", loadedFrom)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Initialize SQLite snapshot store
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	sseHub := hub.New()
	go sseHub.Run(hubCtx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Build collectors
	sources := buildSources(cfg)

	// Initialize analyzer
	analyzer, err := service.NewAnalyzer(sources, repo, eventBus, service.Options{
		Thresholds: analysis.Thresholds{
			PacketLossWarningPct:  cfg.Analysis.PacketLossWarning,
			PacketLossCriticalPct: cfg.Analysis.PacketLossCritical,
			LatencyWarningMs:      cfg.Analysis.LatencyWarningMs,
			LatencyCriticalMs:     cfg.Analysis.LatencyCriticalMs,
			WifiClientLimit:       cfg.Analysis.WifiClientLimit,
		},
		OfflineThreshold: cfg.Analysis.OfflineThreshold.Duration(),
		HistoryCapacity:  cfg.Analysis.HistoryCapacity,
		SuppressRepeats:  cfg.Analysis.SuppressRepeats,
	})
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	// Warm history from persisted snapshots
	if err := analyzer.WarmStart(context.Background()); err != nil {
		log.Printf("Warning: history warm start failed: %v", err)
	}

	// Retention: the trend window tops out at a week, keep double that
	pruneSnapshots := func() {
		cutoff := time.Now().AddDate(0, 0, -14)
		if n, err := repo.PruneBefore(context.Background(), cutoff); err != nil {
			log.Printf("Warning: snapshot prune failed: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d snapshots older than %s", n, cutoff.Format(time.DateOnly))
		}
	}
	pruneSnapshots()

	// Scheduled analysis loop
	schedCtx, schedCancel := context.WithCancel(context.Background())
	schedDone := make(chan struct{})
	go runScheduler(schedCtx, analyzer, cfg.Analysis.Interval.Duration(), schedDone)

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pruneSnapshots()
			case <-schedCtx.Done():
				return
			}
		}
	}()

	// Initialize HTTP handlers
	apiHandler := handler.NewAPIHandler(analyzer)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/metrics/summary", apiHandler.GetSummary)
	mux.HandleFunc("GET /api/metrics/full", apiHandler.GetFullAnalysis)
	mux.HandleFunc("POST /api/analyze", apiHandler.TriggerAnalysis)

	mux.HandleFunc("GET /api/devices", apiHandler.ListDevices)
	mux.HandleFunc("GET /api/devices/offline", apiHandler.OfflineDevices)

	mux.HandleFunc("GET /api/wifi/stats", apiHandler.GetWifiStats)
	mux.HandleFunc("GET /api/wifi/scan", apiHandler.ScanWifi)
	mux.HandleFunc("GET /api/wifi/channels", apiHandler.GetChannels)

	mux.HandleFunc("GET /api/bandwidth", apiHandler.GetBandwidth)
	mux.HandleFunc("GET /api/trends", apiHandler.GetTrends)
	mux.HandleFunc("GET /api/issues", apiHandler.GetIssues)

	mux.HandleFunc("GET /healthz", apiHandler.Healthz)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	// Stop the scheduler first so no cycle is mid-flight during shutdown
	schedCancel()
	<-schedDone

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// buildSources wires the configured collectors. A missing router host
// leaves those sources nil and the analyzer degrades to zero values.
func buildSources(cfg *config.Config) service.Sources {
	var sources service.Sources

	if cfg.NmapEnabled() {
		targets := cfg.Scan.Targets
		if len(targets) == 0 {
			targets = collector.DefaultTargets()
			log.Printf("No scan targets configured, derived from local interfaces: %v", targets)
		}
		discovery := collector.NewNmapDiscovery(targets)
		if !discovery.Available(context.Background()) {
			log.Println("Warning: nmap binary not found, discovery will report no hosts")
		}
		sources.Discovery = discovery
	} else {
		log.Println("Nmap discovery disabled")
	}

	if cfg.Router.Host != "" {
		opts := []collector.RouterOption{
			collector.WithPingTarget(cfg.Router.PingTarget),
		}
		if cfg.Router.KeyPath != "" {
			opts = append(opts, collector.WithKeyPath(cfg.Router.KeyPath))
		} else if cfg.Router.Password != "" {
			opts = append(opts, collector.WithPassword(cfg.Router.Password))
		}
		probe := collector.NewRouterProbe(cfg.Router.Host, cfg.Router.Port, cfg.Router.User, opts...)
		sources.Leases = probe
		sources.Bandwidth = probe
		sources.WifiStats = probe
		sources.Metrics = probe
	} else {
		log.Println("No router host configured, lease/bandwidth/wifi/metrics collection disabled")
	}

	if cfg.Scan.WifiInterface != "" {
		sources.Scanner = collector.NewIwScanner(cfg.Scan.WifiInterface)
	}

	return sources
}

// runScheduler runs an immediate analysis cycle and then one per
// interval until ctx is cancelled.
func runScheduler(ctx context.Context, analyzer *service.Analyzer, interval time.Duration, done chan<- struct{}) {
	defer close(done)

	runCycle := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if _, err := analyzer.Run(cycleCtx); err != nil {
			if errors.Is(err, service.ErrAnalysisInProgress) {
				log.Println("Scheduler: skipping cycle, one already running")
				return
			}
			log.Printf("Scheduler: cycle failed: %v", err)
		}
	}

	log.Printf("Scheduler: running analysis every %s", interval)
	runCycle()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runCycle()
		case <-ctx.Done():
			return
		}
	}
}
