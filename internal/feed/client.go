// Package feed implements the resilient client for the pump.fun event
// stream. It owns the persistent WebSocket connection, decodes frames
// into typed events, and holds no business state.
package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/observability"
	"pumpfun-paper-bot/internal/pumpfun"
)

// DefaultEndpoint is the pump.fun frontend event stream.
const DefaultEndpoint = "wss://frontend-api.pump.fun/socket.io/?EIO=4&transport=websocket"

// Config configures feed client behavior.
type Config struct {
	// Endpoint is the WebSocket URL of the event stream.
	Endpoint string
	// ReconnectDelay is the fixed backoff after a failed connect.
	ReconnectDelay time.Duration
	// HandshakeTimeout bounds the WebSocket dial.
	HandshakeTimeout time.Duration
	// WriteTimeout bounds handshake and pong writes.
	WriteTimeout time.Duration
}

// DefaultConfig returns the default feed configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:         DefaultEndpoint,
		ReconnectDelay:   5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
	}
}

// Handlers receive decoded events. Both are called from the read loop;
// they must not block for long.
type Handlers struct {
	OnNewToken func(*domain.NewTokenEvent)
	OnTrade    func(*domain.TradeEvent)
}

// Client maintains the feed connection indefinitely. Recoverable
// failures (connection loss, dial errors, malformed frames) never stop
// it; only context cancellation does.
type Client struct {
	config   Config
	handlers Handlers
	logger   *log.Logger

	connMu sync.Mutex
	conn   *websocket.Conn
}

// Options for creating a Client.
type Options struct {
	Config   Config
	Handlers Handlers
	Logger   *log.Logger
}

// New creates a feed client.
func New(opts Options) *Client {
	cfg := opts.Config
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		config:   cfg,
		handlers: opts.Handlers,
		logger:   logger,
	}
}

// Run connects and reads frames until ctx is cancelled. Connection loss
// triggers an immediate reconnect; dial failures wait ReconnectDelay.
// Always returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Printf("feed connect failed: %v, retrying in %v", err, c.config.ReconnectDelay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.ReconnectDelay):
			}
			continue
		}

		c.session(ctx, conn)

		if ctx.Err() == nil {
			c.logger.Printf("feed connection closed, reconnecting...")
			observability.RecordReconnect()
		}
	}
}

// dial establishes the WebSocket connection.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.config.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", c.config.Endpoint, err)
	}
	return conn, nil
}

// session runs one connection from handshake to failure. The connection
// is closed before returning. Frame-level problems drop the frame, not
// the connection; only read/write errors end the session.
func (c *Client) session(ctx context.Context, conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	defer func() {
		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
		conn.Close()
	}()

	// Unblock the read loop when the context is cancelled.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-sessionDone:
		}
	}()

	if err := c.write(conn, frameConnect); err != nil {
		c.logger.Printf("feed handshake write failed: %v", err)
		return
	}

	observability.RecordConnected(float64(time.Now().Unix()))

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(conn, message)
	}
}

// write sends a text frame with the configured write deadline.
func (c *Client) write(conn *websocket.Conn, frame string) error {
	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// handleFrame processes one inbound frame.
func (c *Client) handleFrame(conn *websocket.Conn, message []byte) {
	kind, payload := classifyFrame(message)

	switch kind {
	case kindOpen:
		c.logger.Printf("feed session opened")
	case kindPing:
		if err := c.write(conn, framePong); err != nil {
			c.logger.Printf("feed pong write failed: %v", err)
		}
	case kindConnectAck:
		c.logger.Printf("feed namespace connected")
	case kindEvent:
		c.handleEvent(payload)
	default:
		// Lifecycle frames we do not care about.
	}
}

// handleEvent decodes and dispatches one payload frame. Malformed
// payloads and unknown event types are logged and dropped.
func (c *Client) handleEvent(payload []byte) {
	eventType, data, err := parseEvent(payload)
	if err != nil {
		c.logger.Printf("feed dropped malformed event frame: %v", err)
		observability.RecordFrameDropped("malformed")
		return
	}

	switch eventType {
	case eventNewCoin:
		c.dispatchNewCoin(data)
	case eventTrade:
		c.dispatchTrade(data)
	default:
		c.logger.Printf("feed received unknown event: %s", eventType)
		observability.RecordFrameDropped("unknown_event")
	}
}

func (c *Client) dispatchNewCoin(data []byte) {
	var p newCoinPayload
	if err := unmarshalPayload(data, &p); err != nil {
		c.logger.Printf("feed dropped newCoinCreated event: %v", err)
		observability.RecordFrameDropped("malformed")
		return
	}
	if !pumpfun.ValidMint(p.Mint) {
		c.logger.Printf("feed dropped newCoinCreated event: invalid mint %q", p.Mint)
		observability.RecordFrameDropped("invalid_mint")
		return
	}

	observability.RecordNewTokenEvent()
	if c.handlers.OnNewToken != nil {
		c.handlers.OnNewToken(p.toDomain())
	}
}

func (c *Client) dispatchTrade(data []byte) {
	var p tradePayload
	if err := unmarshalPayload(data, &p); err != nil {
		c.logger.Printf("feed dropped tradeCreated event: %v", err)
		observability.RecordFrameDropped("malformed")
		return
	}
	if !pumpfun.ValidMint(p.Mint) || p.Signature == "" {
		c.logger.Printf("feed dropped tradeCreated event: invalid mint %q or empty signature", p.Mint)
		observability.RecordFrameDropped("invalid_mint")
		return
	}

	observability.RecordTradeEvent()
	if c.handlers.OnTrade != nil {
		c.handlers.OnTrade(p.toDomain())
	}
}
