package memory

import (
	"context"
	"errors"
	"testing"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

func TestTradeEventStore_InsertBulk(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	events := []*domain.TradeEvent{
		{Signature: "sig1", Mint: "mintA", Timestamp: 1000},
		{Signature: "sig2", Mint: "mintA", Timestamp: 2000},
	}
	if err := store.InsertBulk(ctx, events); err != nil {
		t.Fatalf("InsertBulk: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 events, got %d", store.Len())
	}
}

func TestTradeEventStore_SkipsKnownSignatures(t *testing.T) {
	store := NewTradeEventStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.TradeEvent{{Signature: "sig1", Mint: "mintA"}}); err != nil {
		t.Fatalf("first InsertBulk: %v", err)
	}

	// A retransmitted signature is skipped, not an error.
	err := store.InsertBulk(ctx, []*domain.TradeEvent{
		{Signature: "sig1", Mint: "mintA", Timestamp: 9999},
		{Signature: "sig2", Mint: "mintA"},
	})
	if err != nil {
		t.Fatalf("second InsertBulk: %v", err)
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 distinct events, got %d", store.Len())
	}
}

func TestTradeEventStore_EmptyBatch(t *testing.T) {
	store := NewTradeEventStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestTradeEventStore_InvalidInput(t *testing.T) {
	store := NewTradeEventStore()

	err := store.InsertBulk(context.Background(), []*domain.TradeEvent{{Mint: "mintA"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty signature, got %v", err)
	}
}
