package storage

import (
	"context"

	"pumpfun-paper-bot/internal/domain"
)

// LedgerStore archives executed paper trades.
type LedgerStore interface {
	// InsertEntry appends a ledger entry.
	InsertEntry(ctx context.Context, e *domain.LedgerEntry) error

	// GetEntries retrieves all entries ordered by timestamp ASC.
	GetEntries(ctx context.Context) ([]*domain.LedgerEntry, error)
}

// TokenSnapshotStore persists the latest known state per token.
type TokenSnapshotStore interface {
	// Upsert inserts or replaces the record for its mint.
	Upsert(ctx context.Context, r *domain.TokenRecord) error

	// GetByMint retrieves a record. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.TokenRecord, error)
}

// TradeEventStore archives raw trade events from the feed.
type TradeEventStore interface {
	// InsertBulk appends a batch of trade events. Events whose signature
	// was already stored are skipped, not errors.
	InsertBulk(ctx context.Context, events []*domain.TradeEvent) error
}
