package clickhouse

import (
	"context"
	"fmt"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// TradeEventStore implements storage.TradeEventStore using ClickHouse.
// The backing table is a ReplacingMergeTree keyed by signature, so
// retransmitted events collapse to one row on merge; the store itself
// only skips intra-batch duplicates.
type TradeEventStore struct {
	conn *Conn
}

// NewTradeEventStore creates a new TradeEventStore.
func NewTradeEventStore(conn *Conn) *TradeEventStore {
	return &TradeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeEventStore = (*TradeEventStore)(nil)

// InsertBulk appends a batch of trade events.
func (s *TradeEventStore) InsertBulk(ctx context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_events (
			signature, mint, symbol, is_buy, sol_amount, token_amount,
			ts_ms, market_cap, usd_market_cap,
			virtual_sol_reserves, virtual_token_reserves, creator
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if e == nil || e.Signature == "" {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[e.Signature]; dup {
			continue
		}
		seen[e.Signature] = struct{}{}

		err = batch.Append(
			e.Signature, e.Mint, e.Symbol, e.IsBuy, e.SolAmount, e.TokenAmount,
			uint64(e.Timestamp), e.MarketCap, e.UsdMarketCap,
			e.VirtualSolReserves, e.VirtualTokenReserves, e.Creator,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountBySignature returns the number of rows stored for a signature.
func (s *TradeEventStore) CountBySignature(ctx context.Context, signature string) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		"SELECT count() FROM trade_events WHERE signature = ?", signature,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count trade events: %w", err)
	}
	return count, nil
}
