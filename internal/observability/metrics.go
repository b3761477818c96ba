// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	NewTokenEvents  prometheus.Counter
	TradeEvents     prometheus.Counter
	FramesDropped   *prometheus.CounterVec
	FeedReconnects  prometheus.Counter
	FeedConnectedAt prometheus.Gauge

	// Market state metrics
	TrackedTokens      prometheus.Gauge
	DuplicateTrades    prometheus.Counter
	StaleTradesSkipped prometheus.Counter

	// Decision cycle metrics
	DecisionCycles   *prometheus.CounterVec
	DecisionDuration prometheus.Histogram

	// Portfolio metrics
	PortfolioValue prometheus.Gauge
	CashBalance    prometheus.Gauge
	OpenPositions  prometheus.Gauge

	// Export metrics
	ExportRuns     *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec

	// Notification sink metrics
	NotificationsSent    *prometheus.CounterVec
	NotificationsDropped prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pumpfun_paper_bot"
	}

	return &Metrics{
		NewTokenEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "new_token_events_total",
			Help:      "Total number of newCoinCreated events accepted",
		}),
		TradeEvents: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "trade_events_total",
			Help:      "Total number of tradeCreated events accepted",
		}),
		FramesDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped by reason",
		}, []string{"reason"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnection attempts",
		}),
		FeedConnectedAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "connected_at_seconds",
			Help:      "Unix time of the last successful feed connect",
		}),

		TrackedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "marketstate",
			Name:      "tracked_tokens",
			Help:      "Current number of tracked token records",
		}),
		DuplicateTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketstate",
			Name:      "duplicate_trades_total",
			Help:      "Total number of trade events rejected as retransmits",
		}),
		StaleTradesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketstate",
			Name:      "stale_trades_skipped_total",
			Help:      "Total number of out-of-order trades that did not update state",
		}),

		DecisionCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "cycles_total",
			Help:      "Total number of decision cycles by outcome status",
		}, []string{"status"}),
		DecisionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "cycle_duration_seconds",
			Help:      "Decision cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		PortfolioValue: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "total_value_usd",
			Help:      "Current total portfolio value in USD",
		}),
		CashBalance: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "cash_balance_usd",
			Help:      "Current cash balance in USD",
		}),
		OpenPositions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "open_positions",
			Help:      "Current number of non-zero holdings",
		}),

		ExportRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Total number of export runs by sink and status",
		}, []string{"sink", "status"}),
		ExportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Export duration in seconds by sink",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),

		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of sink notifications by kind and status",
		}, []string{"kind", "status"}),
		NotificationsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "dropped_total",
			Help:      "Total number of notifications dropped on queue overflow",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordNewTokenEvent increments the accepted new-token event counter.
func RecordNewTokenEvent() {
	DefaultMetrics.NewTokenEvents.Inc()
}

// RecordTradeEvent increments the accepted trade event counter.
func RecordTradeEvent() {
	DefaultMetrics.TradeEvents.Inc()
}

// RecordFrameDropped increments the dropped-frame counter for a reason.
func RecordFrameDropped(reason string) {
	DefaultMetrics.FramesDropped.WithLabelValues(reason).Inc()
}

// RecordReconnect increments the feed reconnect counter.
func RecordReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordConnected records a successful feed connect.
func RecordConnected(unixSeconds float64) {
	DefaultMetrics.FeedConnectedAt.Set(unixSeconds)
}

// RecordDuplicateTrade increments the retransmit rejection counter.
func RecordDuplicateTrade() {
	DefaultMetrics.DuplicateTrades.Inc()
}

// RecordDecisionCycle records one decision cycle.
func RecordDecisionCycle(status string, durationSeconds float64) {
	DefaultMetrics.DecisionCycles.WithLabelValues(status).Inc()
	DefaultMetrics.DecisionDuration.Observe(durationSeconds)
}

// RecordExport records one export run.
func RecordExport(sink, status string, durationSeconds float64) {
	DefaultMetrics.ExportRuns.WithLabelValues(sink, status).Inc()
	DefaultMetrics.ExportDuration.WithLabelValues(sink).Observe(durationSeconds)
}

// RecordNotification records a sink notification attempt.
func RecordNotification(kind, status string) {
	DefaultMetrics.NotificationsSent.WithLabelValues(kind, status).Inc()
}

// RecordNotificationDropped increments the overflow drop counter.
func RecordNotificationDropped() {
	DefaultMetrics.NotificationsDropped.Inc()
}

// SetPortfolioGauges updates the portfolio gauges.
func SetPortfolioGauges(totalValue, cash float64, openPositions int) {
	DefaultMetrics.PortfolioValue.Set(totalValue)
	DefaultMetrics.CashBalance.Set(cash)
	DefaultMetrics.OpenPositions.Set(float64(openPositions))
}

// SetTrackedTokens updates the tracked-token gauge.
func SetTrackedTokens(n int) {
	DefaultMetrics.TrackedTokens.Set(float64(n))
}
