// Package notify forwards accepted feed events to the dashboard
// collaborator. Delivery is fire-and-forget: the ingestion path never
// blocks on, or fails because of, the sink.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/observability"
)

const (
	defaultQueueSize = 1000
	defaultTimeout   = 5 * time.Second
)

// Notification kinds, also the POST paths on the dashboard.
const (
	kindNewCoin = "new_coin"
	kindTrade   = "trade"
)

type message struct {
	kind string
	body []byte
}

// Sink posts event notifications to the dashboard over HTTP from a
// single worker goroutine fed by a bounded queue. When the queue is
// full new notifications are dropped, never blocked on.
type Sink struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
	queue   chan message
}

// Options for creating a Sink.
type Options struct {
	// BaseURL of the dashboard, e.g. "http://127.0.0.1:5000".
	BaseURL string
	// QueueSize bounds the pending notification queue.
	QueueSize int
	// Timeout bounds each POST.
	Timeout time.Duration
	// Logger for delivery failures.
	Logger *log.Logger
}

// New creates a sink. Run must be called for deliveries to happen.
func New(opts Options) *Sink {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Sink{
		baseURL: opts.BaseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		queue:   make(chan message, queueSize),
	}
}

// Run delivers queued notifications until ctx is cancelled.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.queue:
			s.deliver(ctx, msg)
		}
	}
}

// NotifyNewToken enqueues a new-token notification.
func (s *Sink) NotifyNewToken(ev *domain.NewTokenEvent) {
	body, err := json.Marshal(map[string]interface{}{
		"mint":              ev.Mint,
		"name":              ev.Name,
		"symbol":            ev.Symbol,
		"image_uri":         ev.ImageURI,
		"creator":           ev.Creator,
		"created_timestamp": ev.CreatedTimestamp,
		"usd_market_cap":    ev.UsdMarketCap,
	})
	if err != nil {
		s.logger.Printf("notify marshal new_coin failed: %v", err)
		return
	}
	s.enqueue(message{kind: kindNewCoin, body: body})
}

// NotifyTrade enqueues a trade notification.
func (s *Sink) NotifyTrade(ev *domain.TradeEvent) {
	body, err := json.Marshal(map[string]interface{}{
		"mint":                   ev.Mint,
		"symbol":                 ev.Symbol,
		"is_buy":                 ev.IsBuy,
		"sol_amount":             ev.SolAmount,
		"usd_market_cap":         ev.UsdMarketCap,
		"virtual_token_reserves": ev.VirtualTokenReserves,
		"creator":                ev.Creator,
	})
	if err != nil {
		s.logger.Printf("notify marshal trade failed: %v", err)
		return
	}
	s.enqueue(message{kind: kindTrade, body: body})
}

func (s *Sink) enqueue(msg message) {
	select {
	case s.queue <- msg:
	default:
		observability.RecordNotificationDropped()
	}
}

func (s *Sink) deliver(ctx context.Context, msg message) {
	url := s.baseURL + "/" + msg.kind

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(msg.body))
	if err != nil {
		s.logger.Printf("notify build request for %s failed: %v", msg.kind, err)
		observability.RecordNotification(msg.kind, "error")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Printf("notify POST %s failed: %v", url, err)
		observability.RecordNotification(msg.kind, "error")
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Printf("notify POST %s returned %d", url, resp.StatusCode)
		observability.RecordNotification(msg.kind, "error")
		return
	}

	observability.RecordNotification(msg.kind, "ok")
}
