package marketstate

import (
	"time"

	"pumpfun-paper-bot/internal/domain"
)

// Snapshot is a read-consistent copy of the store taken at one instant.
// Safe for concurrent reads; never mutated after creation.
type Snapshot struct {
	TakenAt time.Time
	Tokens  map[string]domain.TokenRecord
}

// Get returns the record for a mint.
func (s *Snapshot) Get(mint string) (domain.TokenRecord, bool) {
	rec, ok := s.Tokens[mint]
	return rec, ok
}

// Price derives the spot price for a mint from its virtual reserves.
// Returns (0, false) for unknown mints or undefined prices.
func (s *Snapshot) Price(mint string) (float64, bool) {
	rec, ok := s.Tokens[mint]
	if !ok {
		return 0, false
	}
	return rec.Price()
}

// Len returns the number of tracked tokens.
func (s *Snapshot) Len() int {
	return len(s.Tokens)
}
