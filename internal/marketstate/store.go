// Package marketstate maintains the consolidated per-token market view
// built from the live event feed.
package marketstate

import (
	"sync"
	"time"

	"pumpfun-paper-bot/internal/domain"
)

// maxPendingTrades bounds the undrained trade buffer when no archive
// sink is attached.
const maxPendingTrades = 10000

// Store is the process-wide market state: mint to TokenRecord plus an
// append-only trade log deduplicated by signature. All mutation goes
// through Apply* methods; readers get consistent copies via Snapshot.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]*domain.TokenRecord

	seenSignatures map[string]struct{}
	pendingTrades  []*domain.TradeEvent
	lastTrade      *domain.TradeEvent

	tradeCount    int64
	newTokenCount int64
}

// New creates an empty market state store.
func New() *Store {
	return &Store{
		tokens:         make(map[string]*domain.TokenRecord),
		seenSignatures: make(map[string]struct{}),
	}
}

// ApplyNewToken inserts or overwrites the record for the event's mint.
// InitialUsdMarketCap and LastTradeTimestamp survive an overwrite:
// the baseline is set exactly once and the timestamp never goes back.
func (s *Store) ApplyNewToken(ev *domain.NewTokenEvent) {
	if ev == nil || ev.Mint == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &domain.TokenRecord{
		Mint:                 ev.Mint,
		Name:                 ev.Name,
		Symbol:               ev.Symbol,
		ImageURI:             ev.ImageURI,
		Creator:              ev.Creator,
		CreatedAt:            ev.CreatedTimestamp,
		MarketCap:            ev.MarketCap,
		UsdMarketCap:         ev.UsdMarketCap,
		VirtualSolReserves:   ev.VirtualSolReserves,
		VirtualTokenReserves: ev.VirtualTokenReserves,
	}

	if prev, ok := s.tokens[ev.Mint]; ok {
		rec.InitialUsdMarketCap = prev.InitialUsdMarketCap
		rec.LastTradeTimestamp = prev.LastTradeTimestamp
	}
	if rec.InitialUsdMarketCap == 0 && ev.UsdMarketCap > 0 {
		rec.InitialUsdMarketCap = ev.UsdMarketCap
	}

	s.tokens[ev.Mint] = rec
	s.newTokenCount++
}

// ApplyTrade merges a trade event into the state. Returns false when the
// event is a retransmit (signature already seen) and nothing was changed.
//
// Market fields are updated only when the trade's timestamp is at least
// the record's LastTradeTimestamp, so out-of-order arrivals cannot
// overwrite newer values. A trade for an unknown mint is logged in the
// trade stream but creates no record.
func (s *Store) ApplyTrade(ev *domain.TradeEvent) bool {
	if ev == nil || ev.Signature == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.seenSignatures[ev.Signature]; seen {
		return false
	}
	s.seenSignatures[ev.Signature] = struct{}{}

	copy := *ev
	s.pendingTrades = append(s.pendingTrades, &copy)
	if len(s.pendingTrades) > maxPendingTrades {
		s.pendingTrades = s.pendingTrades[len(s.pendingTrades)-maxPendingTrades:]
	}
	s.lastTrade = &copy
	s.tradeCount++

	rec, ok := s.tokens[ev.Mint]
	if !ok {
		return true
	}

	if rec.InitialUsdMarketCap == 0 && ev.UsdMarketCap > 0 {
		rec.InitialUsdMarketCap = ev.UsdMarketCap
	}

	if ev.Timestamp >= rec.LastTradeTimestamp {
		rec.LastTradeTimestamp = ev.Timestamp
		rec.MarketCap = ev.MarketCap
		rec.UsdMarketCap = ev.UsdMarketCap
		if ev.VirtualTokenReserves > 0 {
			rec.VirtualTokenReserves = ev.VirtualTokenReserves
		}
		if ev.VirtualSolReserves > 0 {
			rec.VirtualSolReserves = ev.VirtualSolReserves
		}
	}

	return true
}

// Snapshot returns a point-in-time copy of all token records.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		TakenAt: time.Now(),
		Tokens:  make(map[string]domain.TokenRecord, len(s.tokens)),
	}
	for mint, rec := range s.tokens {
		snap.Tokens[mint] = *rec
	}
	return snap
}

// DrainPendingTrades removes and returns trades accumulated since the
// last drain, for archive sinks. Returns nil when nothing is pending.
func (s *Store) DrainPendingTrades() []*domain.TradeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pendingTrades) == 0 {
		return nil
	}
	drained := s.pendingTrades
	s.pendingTrades = nil
	return drained
}

// LastTrade returns a copy of the most recently applied trade, or nil.
func (s *Store) LastTrade() *domain.TradeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastTrade == nil {
		return nil
	}
	copy := *s.lastTrade
	return &copy
}

// Counts returns totals of accepted new-token and trade events.
func (s *Store) Counts() (newTokens, trades int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newTokenCount, s.tradeCount
}
