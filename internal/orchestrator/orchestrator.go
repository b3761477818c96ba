// Package orchestrator drives the three long-running tasks: feed
// ingestion, the periodic decision cycle, and the periodic report
// cycle. It is the only component that sequences the others.
package orchestrator

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/feed"
	"pumpfun-paper-bot/internal/marketstate"
	"pumpfun-paper-bot/internal/observability"
	"pumpfun-paper-bot/internal/portfolio"
	"pumpfun-paper-bot/internal/reporting"
	"pumpfun-paper-bot/internal/storage"
)

// Runner is a long-running task stopped by context cancellation.
type Runner interface {
	Run(ctx context.Context) error
}

// Notifier forwards accepted events to the dashboard sink.
type Notifier interface {
	NotifyNewToken(*domain.NewTokenEvent)
	NotifyTrade(*domain.TradeEvent)
}

// EventHandlers wires feed events into the store and the notification
// sink. The notifier may be nil. Trades rejected as retransmits are
// counted and not forwarded.
func EventHandlers(store *marketstate.Store, notifier Notifier) feed.Handlers {
	return feed.Handlers{
		OnNewToken: func(ev *domain.NewTokenEvent) {
			store.ApplyNewToken(ev)
			if notifier != nil {
				notifier.NotifyNewToken(ev)
			}
		},
		OnTrade: func(ev *domain.TradeEvent) {
			if !store.ApplyTrade(ev) {
				observability.RecordDuplicateTrade()
				return
			}
			if notifier != nil {
				notifier.NotifyTrade(ev)
			}
		},
	}
}

// Orchestrator runs the bot's concurrent loops under one context.
type Orchestrator struct {
	feed   Runner
	notify Runner // optional

	store    *marketstate.Store
	ledger   *portfolio.Ledger
	policy   portfolio.Policy
	exporter *reporting.Exporter

	// Optional durable archives.
	tradeArchive  storage.TradeEventStore
	snapshotStore storage.TokenSnapshotStore

	decisionInterval time.Duration
	reportInterval   time.Duration
	logger           *log.Logger

	// Trades drained from the store but not yet archived; retried on
	// the next report cycle after an archive failure.
	unarchived []*domain.TradeEvent
}

// Options for creating an Orchestrator.
type Options struct {
	Feed   Runner
	Notify Runner // optional

	Store    *marketstate.Store
	Ledger   *portfolio.Ledger
	Policy   portfolio.Policy
	Exporter *reporting.Exporter

	TradeArchive  storage.TradeEventStore    // optional
	SnapshotStore storage.TokenSnapshotStore // optional

	DecisionInterval time.Duration
	ReportInterval   time.Duration
	Logger           *log.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	decisionInterval := opts.DecisionInterval
	if decisionInterval <= 0 {
		decisionInterval = 60 * time.Second
	}
	reportInterval := opts.ReportInterval
	if reportInterval <= 0 {
		reportInterval = 300 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		feed:             opts.Feed,
		notify:           opts.Notify,
		store:            opts.Store,
		ledger:           opts.Ledger,
		policy:           opts.Policy,
		exporter:         opts.Exporter,
		tradeArchive:     opts.TradeArchive,
		snapshotStore:    opts.SnapshotStore,
		decisionInterval: decisionInterval,
		reportInterval:   reportInterval,
		logger:           logger,
	}
}

// Run starts the feed, notification, decision, and report loops and
// blocks until ctx is cancelled and all loops have stopped. Already
// applied ledger entries survive shutdown; a final export runs before
// returning.
func (o *Orchestrator) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := o.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			o.logger.Printf("feed loop stopped: %v", err)
		}
	}()

	if o.notify != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.notify.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				o.logger.Printf("notify loop stopped: %v", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.decisionLoop(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		o.reportLoop(ctx)
	}()

	wg.Wait()

	// Final export so the files reflect everything applied before
	// shutdown. Uses a fresh context because ctx is already done.
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	o.runReport(flushCtx)

	return ctx.Err()
}

// decisionLoop runs one decision cycle per interval. At most one cycle
// is in flight: the next tick waits for the previous cycle to return.
func (o *Orchestrator) decisionLoop(ctx context.Context) {
	ticker := time.NewTicker(o.decisionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runDecisionCycle(ctx)
		}
	}
}

func (o *Orchestrator) runDecisionCycle(ctx context.Context) {
	start := time.Now()
	snap := o.store.Snapshot()

	outcome := o.ledger.ExecuteCycle(ctx, snap, o.policy)
	observability.RecordDecisionCycle(outcome.Status, time.Since(start).Seconds())

	switch outcome.Status {
	case domain.OutcomeSuccess:
		o.logger.Printf("decision cycle: %s", outcome.Message)
	case domain.OutcomeError:
		o.logger.Printf("decision cycle error: %s", outcome.Message)
	default:
		o.logger.Printf("decision cycle: %s", outcome.Message)
	}

	o.updateGauges(snap)
}

func (o *Orchestrator) updateGauges(snap *marketstate.Snapshot) {
	open := 0
	for _, pos := range o.ledger.Positions() {
		if pos.Quantity > 0 {
			open++
		}
	}
	observability.SetPortfolioGauges(o.ledger.TotalValue(snap), o.ledger.Balance(), open)
	observability.SetTrackedTokens(snap.Len())
}

// reportLoop emits the insights report and runs all export sinks per
// interval.
func (o *Orchestrator) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(o.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.runReport(ctx)
		}
	}
}

func (o *Orchestrator) runReport(ctx context.Context) {
	snap := o.store.Snapshot()

	plAmount, plPercent := o.ledger.ProfitLoss(snap)
	insights := reporting.RenderInsights(snap, o.store.LastTrade(), reporting.Performance{
		InitialBalance: o.ledger.InitialBalance(),
		TotalValue:     o.ledger.TotalValue(snap),
		PLAmount:       plAmount,
		PLPercent:      plPercent,
	})
	o.logger.Printf("report:\n%s%s", insights, reporting.RenderPortfolio(o.ledger.Positions(), snap))

	o.exportCSV(snap)
	o.archiveTrades(ctx)
	o.archiveSnapshots(ctx, snap)
}

func (o *Orchestrator) exportCSV(snap *marketstate.Snapshot) {
	if o.exporter == nil {
		return
	}

	start := time.Now()
	if err := o.exporter.ExportLedger(o.ledger.Entries()); err != nil {
		o.logger.Printf("ledger export failed: %v", err)
		observability.RecordExport("ledger_csv", "error", time.Since(start).Seconds())
	} else {
		observability.RecordExport("ledger_csv", "success", time.Since(start).Seconds())
	}

	start = time.Now()
	if err := o.exporter.ExportMarketSnapshot(snap); err != nil {
		o.logger.Printf("market snapshot export failed: %v", err)
		observability.RecordExport("market_csv", "error", time.Since(start).Seconds())
	} else {
		observability.RecordExport("market_csv", "success", time.Since(start).Seconds())
	}
}

func (o *Orchestrator) archiveTrades(ctx context.Context) {
	if o.tradeArchive == nil {
		return
	}

	o.unarchived = append(o.unarchived, o.store.DrainPendingTrades()...)
	if len(o.unarchived) == 0 {
		return
	}

	start := time.Now()
	if err := o.tradeArchive.InsertBulk(ctx, o.unarchived); err != nil {
		o.logger.Printf("trade archive failed (%d events kept for retry): %v", len(o.unarchived), err)
		observability.RecordExport("trade_archive", "error", time.Since(start).Seconds())
		return
	}
	observability.RecordExport("trade_archive", "success", time.Since(start).Seconds())
	o.unarchived = nil
}

func (o *Orchestrator) archiveSnapshots(ctx context.Context, snap *marketstate.Snapshot) {
	if o.snapshotStore == nil {
		return
	}

	start := time.Now()
	var failed int
	for mint := range snap.Tokens {
		rec := snap.Tokens[mint]
		if err := o.snapshotStore.Upsert(ctx, &rec); err != nil {
			failed++
		}
	}
	if failed > 0 {
		o.logger.Printf("snapshot archive: %d/%d upserts failed", failed, snap.Len())
		observability.RecordExport("snapshot_archive", "error", time.Since(start).Seconds())
		return
	}
	observability.RecordExport("snapshot_archive", "success", time.Since(start).Seconds())
}
