package postgres

import (
	"context"
	"fmt"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// InsertEntry appends a ledger entry.
func (s *LedgerStore) InsertEntry(ctx context.Context, e *domain.LedgerEntry) error {
	if e == nil || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO ledger_entries (
			ts_ms, mint, action, quantity, amount_usd, price
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		e.Timestamp, e.Mint, e.Action, e.Quantity, e.Amount, e.Price,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetEntries retrieves all entries ordered by timestamp ASC.
func (s *LedgerStore) GetEntries(ctx context.Context) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT ts_ms, mint, action, quantity, amount_usd, price
		FROM ledger_entries
		ORDER BY ts_ms ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var result []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.Timestamp, &e.Mint, &e.Action, &e.Quantity, &e.Amount, &e.Price); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return result, nil
}
