package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pumpfun-paper-bot/internal/config"
	"pumpfun-paper-bot/internal/feed"
	"pumpfun-paper-bot/internal/marketstate"
	"pumpfun-paper-bot/internal/notify"
	"pumpfun-paper-bot/internal/observability"
	"pumpfun-paper-bot/internal/orchestrator"
	"pumpfun-paper-bot/internal/portfolio"
	"pumpfun-paper-bot/internal/reporting"
	"pumpfun-paper-bot/internal/storage"
	chstore "pumpfun-paper-bot/internal/storage/clickhouse"
	"pumpfun-paper-bot/internal/storage/migrations"
	pgstore "pumpfun-paper-bot/internal/storage/postgres"
	"pumpfun-paper-bot/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	feedEndpoint := flag.String("feed-endpoint", "", "Feed WebSocket endpoint (overrides config)")
	dashboardURL := flag.String("dashboard-url", "", "Dashboard base URL for notifications (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for the durable ledger (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for the trade archive (overrides config)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	if *feedEndpoint != "" {
		cfg.Feed.Endpoint = *feedEndpoint
	}
	if *dashboardURL != "" {
		cfg.Notify.DashboardURL = *dashboardURL
	}
	if *postgresDSN != "" {
		cfg.Storage.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.Storage.ClickhouseDSN = *clickhouseDSN
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	err = run(ctx, logger, cfg)

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	// Optional durable archives
	var (
		ledgerArchive storage.LedgerStore
		snapshotStore storage.TokenSnapshotStore
		tradeArchive  storage.TradeEventStore
	)

	if cfg.Storage.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return err
		}
		ledgerArchive = pgstore.NewLedgerStore(pool)
		snapshotStore = pgstore.NewTokenSnapshotStore(pool)
		logger.Println("Postgres ledger archive enabled")
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return err
		}
		tradeArchive = chstore.NewTradeEventStore(conn)
		logger.Println("ClickHouse trade archive enabled")
	}

	policy, err := strategy.New(cfg.StrategyConfig())
	if err != nil {
		return err
	}

	store := marketstate.New()
	ledger := portfolio.New(portfolio.Options{
		InitialBalance: cfg.Portfolio.InitialBalance,
		Archive:        ledgerArchive,
		Logger:         logger,
	})

	var (
		sink     *notify.Sink
		notifier orchestrator.Notifier
		sinkTask orchestrator.Runner
	)
	if cfg.Notify.DashboardURL != "" {
		sink = notify.New(notify.Options{
			BaseURL: cfg.Notify.DashboardURL,
			Logger:  log.New(os.Stdout, "[notify] ", log.LstdFlags),
		})
		notifier = sink
		sinkTask = sink
		logger.Printf("Dashboard notifications enabled: %s", cfg.Notify.DashboardURL)
	}

	feedClient := feed.New(feed.Options{
		Config: feed.Config{
			Endpoint:       cfg.Feed.Endpoint,
			ReconnectDelay: cfg.ReconnectDelay(),
		},
		Handlers: orchestrator.EventHandlers(store, notifier),
		Logger:   log.New(os.Stdout, "[feed] ", log.LstdFlags),
	})

	orch := orchestrator.New(orchestrator.Options{
		Feed:             feedClient,
		Notify:           sinkTask,
		Store:            store,
		Ledger:           ledger,
		Policy:           policy,
		Exporter:         reporting.NewExporter(cfg.Export.LedgerCSV, cfg.Export.MarketCSV),
		TradeArchive:     tradeArchive,
		SnapshotStore:    snapshotStore,
		DecisionInterval: cfg.DecisionInterval(),
		ReportInterval:   cfg.ReportInterval(),
		Logger:           logger,
	})

	logger.Printf("Starting paper trading bot, feed: %s", cfg.Feed.Endpoint)
	return orch.Run(ctx)
}
