package memory

import (
	"context"
	"sync"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// TradeEventStore is an in-memory implementation of storage.TradeEventStore.
type TradeEventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeEvent // keyed by signature
}

// NewTradeEventStore creates a new in-memory trade event store.
func NewTradeEventStore() *TradeEventStore {
	return &TradeEventStore{
		data: make(map[string]*domain.TradeEvent),
	}
}

// InsertBulk appends a batch of trade events, skipping known signatures.
func (s *TradeEventStore) InsertBulk(_ context.Context, events []*domain.TradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		if e == nil || e.Signature == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[e.Signature]; exists {
			continue
		}
		copy := *e
		s.data[e.Signature] = &copy
	}

	return nil
}

// Len returns the number of distinct stored events.
func (s *TradeEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

var _ storage.TradeEventStore = (*TradeEventStore)(nil)
