package memory

import (
	"context"
	"sync"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/storage"
)

// TokenSnapshotStore is an in-memory implementation of storage.TokenSnapshotStore.
type TokenSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenRecord
}

// NewTokenSnapshotStore creates a new in-memory token snapshot store.
func NewTokenSnapshotStore() *TokenSnapshotStore {
	return &TokenSnapshotStore{
		data: make(map[string]*domain.TokenRecord),
	}
}

// Upsert inserts or replaces the record for its mint.
func (s *TokenSnapshotStore) Upsert(_ context.Context, r *domain.TokenRecord) error {
	if r == nil || r.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *r
	s.data[r.Mint] = &copy
	return nil
}

// GetByMint retrieves a record. Returns ErrNotFound if not exists.
func (s *TokenSnapshotStore) GetByMint(_ context.Context, mint string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[mint]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *r
	return &copy, nil
}

var _ storage.TokenSnapshotStore = (*TokenSnapshotStore)(nil)
