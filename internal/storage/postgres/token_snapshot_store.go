package postgres

import (
	"context"
	"fmt"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// TokenSnapshotStore implements storage.TokenSnapshotStore using PostgreSQL.
type TokenSnapshotStore struct {
	pool *Pool
}

// NewTokenSnapshotStore creates a new TokenSnapshotStore.
func NewTokenSnapshotStore(pool *Pool) *TokenSnapshotStore {
	return &TokenSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenSnapshotStore = (*TokenSnapshotStore)(nil)

// Upsert inserts or replaces the record for its mint.
func (s *TokenSnapshotStore) Upsert(ctx context.Context, r *domain.TokenRecord) error {
	if r == nil || r.Mint == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO token_snapshots (
			mint, name, symbol, image_uri, creator, created_at_ms,
			market_cap, usd_market_cap, initial_usd_market_cap,
			virtual_sol_reserves, virtual_token_reserves, last_trade_ts_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (mint) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			image_uri = EXCLUDED.image_uri,
			creator = EXCLUDED.creator,
			created_at_ms = EXCLUDED.created_at_ms,
			market_cap = EXCLUDED.market_cap,
			usd_market_cap = EXCLUDED.usd_market_cap,
			initial_usd_market_cap = EXCLUDED.initial_usd_market_cap,
			virtual_sol_reserves = EXCLUDED.virtual_sol_reserves,
			virtual_token_reserves = EXCLUDED.virtual_token_reserves,
			last_trade_ts_ms = EXCLUDED.last_trade_ts_ms
	`

	_, err := s.pool.Exec(ctx, query,
		r.Mint, r.Name, r.Symbol, r.ImageURI, r.Creator, r.CreatedAt,
		r.MarketCap, r.UsdMarketCap, r.InitialUsdMarketCap,
		r.VirtualSolReserves, r.VirtualTokenReserves, r.LastTradeTimestamp,
	)
	if err != nil {
		return fmt.Errorf("upsert token snapshot: %w", err)
	}
	return nil
}

// GetByMint retrieves a record. Returns ErrNotFound if not exists.
func (s *TokenSnapshotStore) GetByMint(ctx context.Context, mint string) (*domain.TokenRecord, error) {
	query := `
		SELECT mint, name, symbol, image_uri, creator, created_at_ms,
			market_cap, usd_market_cap, initial_usd_market_cap,
			virtual_sol_reserves, virtual_token_reserves, last_trade_ts_ms
		FROM token_snapshots
		WHERE mint = $1
	`

	var r domain.TokenRecord
	err := s.pool.QueryRow(ctx, query, mint).Scan(
		&r.Mint, &r.Name, &r.Symbol, &r.ImageURI, &r.Creator, &r.CreatedAt,
		&r.MarketCap, &r.UsdMarketCap, &r.InitialUsdMarketCap,
		&r.VirtualSolReserves, &r.VirtualTokenReserves, &r.LastTradeTimestamp,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token snapshot: %w", err)
	}

	return &r, nil
}
