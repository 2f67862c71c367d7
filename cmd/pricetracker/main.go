package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/vikboyechko/pricetracker/pkg/config"
	"github.com/vikboyechko/pricetracker/pkg/extractor"
	"github.com/vikboyechko/pricetracker/pkg/history"
	"github.com/vikboyechko/pricetracker/pkg/logging"
	"github.com/vikboyechko/pricetracker/pkg/metrics"
	"github.com/vikboyechko/pricetracker/pkg/server/api"
	"github.com/vikboyechko/pricetracker/pkg/store"
	"github.com/vikboyechko/pricetracker/pkg/tracker"
	"github.com/vikboyechko/pricetracker/pkg/version"
)

var (
	configFile = flag.String("config", "config/config.yaml", "Path to configuration file")
	showVer    = flag.Bool("version", false, "Show version and exit")
	onceURL    = flag.String("once", "", "Track a single URL once, print the summary and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("pricetracker version %s\n", version.Version)
		os.Exit(0)
	}

	// Optional .env file for local overrides; absence is not an error.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	logger.Info("Starting pricetracker", "version", version.Version)

	// Open the backing store
	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", "error", err)
	}
	defer st.Close()

	trk := buildTracker(cfg, st, logger)

	// Single-shot mode: one fetch, extract and record pass
	if *onceURL != "" {
		runOnce(trk, *onceURL, logger)
		return
	}

	// Initialize metrics
	if cfg.Metrics.Enabled {
		metrics.Init()
		go func() {
			logger.Info("Starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metrics.ServeHTTP(cfg.Metrics.Addr); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- runServer(ctx, cfg, trk, logger)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}

	logger.Info("Shutdown complete")
}

// openStore opens the configured history store backend.
func openStore(cfg *config.Config, logger *logging.Logger) (store.Store, error) {
	switch cfg.Storage.Type {
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return store.NewSQLiteStore(cfg.Storage.Path, logger)
	}
}

// buildTracker assembles the extraction pipeline, aggregator and fetcher.
func buildTracker(cfg *config.Config, st store.Store, logger *logging.Logger) *tracker.Tracker {
	pipeline := extractor.NewPipeline(logger, pipelineOptions(cfg.Extractor))
	agg := history.NewAggregator(st, logger)
	fetcher := tracker.NewFetcher(
		cfg.Fetch.Timeout.ToDuration(),
		cfg.Fetch.Retries,
		cfg.Fetch.Backoff.ToDuration(),
		cfg.Fetch.UserAgent,
		logger,
	)
	defaults := tracker.Options{
		TrackDomain:     cfg.Tracking.TrackDomain,
		TrackPage:       cfg.Tracking.TrackPage,
		TrackingEnabled: cfg.Tracking.Enabled,
	}
	return tracker.NewTracker(pipeline, agg, st, fetcher, defaults, logger)
}

// pipelineOptions maps extractor configuration onto pipeline options.
// Zero-valued sections keep the built-in defaults.
func pipelineOptions(ec config.ExtractorConfig) extractor.Options {
	var opts extractor.Options

	if ec.MaxAmount > 0 {
		opts.Range = extractor.AmountRange{
			Min: decimal.NewFromFloat(ec.MinAmount),
			Max: decimal.NewFromFloat(ec.MaxAmount),
		}
	}

	if ec.Heuristic.FontSizeFactor > 0 {
		h := ec.Heuristic
		opts.Heuristic = extractor.Heuristics{
			FontSizeFactor:     h.FontSizeFactor,
			PriceAncestorBonus: h.PriceAncestorBonus,
			BandBonus:          h.BandBonus,
			BandLow:            decimal.NewFromFloat(h.BandLow),
			BandHigh:           decimal.NewFromFloat(h.BandHigh),
			VisibleBonus:       h.VisibleBonus,
			SaleBonus:          h.SaleBonus,
			ExclusionPhrases:   h.ExclusionPhrases,
			SalePhrases:        h.SalePhrases,
		}
	}

	if len(ec.Sites) > 0 {
		rules := make([]extractor.SiteRule, 0, len(ec.Sites))
		for _, sr := range ec.Sites {
			rules = append(rules, extractor.SiteRule{
				Host:      sr.Host,
				Selectors: sr.Selectors,
				Attr:      sr.Attr,
			})
		}
		opts.SiteRules = rules
	}

	return opts
}

// runOnce tracks a single URL and prints the resulting summary as JSON.
func runOnce(trk *tracker.Tracker, url string, logger *logging.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	summary, err := trk.Observe(ctx, url, time.Now())
	if err != nil {
		logger.Fatal("Tracking pass failed", "url", url, "error", err)
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode summary", "error", err)
	}
	fmt.Println(string(out))
}

// runServer starts the HTTP API and, when enabled, the WebSocket server.
func runServer(ctx context.Context, cfg *config.Config, trk *tracker.Tracker, logger *logging.Logger) error {
	server := api.NewServer(cfg.Server.HTTP.Addr, trk, logger)

	var wsServer *api.WebSocketServer
	if cfg.Server.WebSocket.Enabled {
		wsServer = api.NewWebSocketServer(cfg.Server.WebSocket.Addr, trk, logger)
		server.SetWebSocketServer(wsServer)

		go func() {
			if err := wsServer.Start(ctx); err != nil {
				logger.Error("WebSocket server error", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		if wsServer != nil {
			wsServer.Stop()
		}
	}()

	return server.Start()
}
