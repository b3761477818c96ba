// Package memory provides in-memory storage implementations,
// used as defaults when no external backend is configured and as
// test doubles.
package memory

import (
	"context"
	"sort"
	"sync"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{}
}

// InsertEntry appends a ledger entry.
func (s *LedgerStore) InsertEntry(_ context.Context, e *domain.LedgerEntry) error {
	if e == nil || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *e
	s.entries = append(s.entries, &copy)
	return nil
}

// GetEntries retrieves all entries ordered by timestamp ASC.
func (s *LedgerStore) GetEntries(_ context.Context) ([]*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LedgerEntry, 0, len(s.entries))
	for _, e := range s.entries {
		copy := *e
		result = append(result, &copy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})

	return result, nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
