package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pumpfun-paper-bot/internal/domain"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const testMint = "So11111111111111111111111111111111111111112"

func testClient(url string, handlers Handlers) *Client {
	return New(Options{
		Config: Config{
			Endpoint:       url,
			ReconnectDelay: 50 * time.Millisecond,
		},
		Handlers: handlers,
		Logger:   log.New(io.Discard, "", 0),
	})
}

// expectHandshake reads the namespace connect frame the client sends
// right after the dial.
func expectHandshake(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Errorf("read handshake: %v", err)
		return
	}
	if string(msg) != frameConnect {
		t.Errorf("expected handshake %q, got %q", frameConnect, msg)
	}
}

func TestClient_ReceivesEvents(t *testing.T) {
	newCoins := make(chan *domain.NewTokenEvent, 1)
	trades := make(chan *domain.TradeEvent, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		expectHandshake(t, conn)

		frames := []string{
			`0{"sid":"abc","pingInterval":25000}`,
			`40{"sid":"abc"}`,
			`42["newCoinCreated",{"mint":"` + testMint + `","name":"Test","symbol":"TST","created_timestamp":1700000000000,"usd_market_cap":6000}]`,
			`42["tradeCreated",{"mint":"` + testMint + `","signature":"sig1","is_buy":true,"sol_amount":1500000000,"timestamp":1700000001000,"usd_market_cap":7000}]`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				t.Errorf("write frame: %v", err)
				return
			}
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := testClient(wsURL, Handlers{
		OnNewToken: func(ev *domain.NewTokenEvent) { newCoins <- ev },
		OnTrade:    func(ev *domain.TradeEvent) { trades <- ev },
	})

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	select {
	case ev := <-newCoins:
		if ev.Mint != testMint {
			t.Errorf("expected mint %s, got %s", testMint, ev.Mint)
		}
		if ev.UsdMarketCap != 6000 {
			t.Errorf("expected usd market cap 6000, got %v", ev.UsdMarketCap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for new coin event")
	}

	select {
	case ev := <-trades:
		if ev.Signature != "sig1" {
			t.Errorf("expected signature sig1, got %s", ev.Signature)
		}
		if !ev.IsBuy {
			t.Error("expected a buy trade")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for trade event")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
}

func TestClient_AnswersPing(t *testing.T) {
	pongs := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		expectHandshake(t, conn)

		if err := conn.WriteMessage(websocket.TextMessage, []byte(framePing)); err != nil {
			t.Errorf("write ping: %v", err)
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		pongs <- string(msg)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := testClient(wsURL, Handlers{})
	go client.Run(ctx)

	select {
	case msg := <-pongs:
		if msg != framePong {
			t.Errorf("expected pong %q, got %q", framePong, msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for pong")
	}
}

func TestClient_DropsBadFramesAndContinues(t *testing.T) {
	trades := make(chan *domain.TradeEvent, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		expectHandshake(t, conn)

		frames := []string{
			`42this is not json`,
			`42["someOtherEvent",{"foo":1}]`,
			`42["tradeCreated",{"mint":"not-a-mint","signature":"sig0"}]`,
			`42["tradeCreated",{"mint":"` + testMint + `","timestamp":1}]`,
			`42["tradeCreated",{"mint":"` + testMint + `","signature":"good","timestamp":2}]`,
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := testClient(wsURL, Handlers{
		OnTrade: func(ev *domain.TradeEvent) { trades <- ev },
	})
	go client.Run(ctx)

	// Only the last, well-formed trade must get through.
	select {
	case ev := <-trades:
		if ev.Signature != "good" {
			t.Errorf("expected signature good, got %s", ev.Signature)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for the valid trade")
	}

	select {
	case ev := <-trades:
		t.Errorf("unexpected extra trade dispatched: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_ReconnectsAfterClose(t *testing.T) {
	var connCount atomic.Int32
	trades := make(chan *domain.TradeEvent, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		n := connCount.Add(1)
		expectHandshake(t, conn)

		if n == 1 {
			// Drop the first connection right after the handshake.
			return
		}

		frame := `42["tradeCreated",{"mint":"` + testMint + `","signature":"after-reconnect","timestamp":5}]`
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := testClient(wsURL, Handlers{
		OnTrade: func(ev *domain.TradeEvent) { trades <- ev },
	})
	go client.Run(ctx)

	select {
	case ev := <-trades:
		if ev.Signature != "after-reconnect" {
			t.Errorf("expected signature after-reconnect, got %s", ev.Signature)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event on the second connection")
	}

	if got := connCount.Load(); got < 2 {
		t.Errorf("expected at least 2 connections, got %d", got)
	}
}

func TestClient_RetriesFailedDial(t *testing.T) {
	// A server that is already closed forces dial failures.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	client := testClient(wsURL, Handlers{})
	err := client.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
