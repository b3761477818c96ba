// Package strategy turns market snapshots into buy/sell/hold decisions.
package strategy

import (
	"fmt"
	"time"

	"pumpfun-paper-bot/internal/marketstate"
)

// Action is a trade decision.
type Action string

// Possible actions.
const (
	Buy  Action = "buy"
	Sell Action = "sell"
	Hold Action = "hold"
)

// Decision is the output of one policy evaluation. Amount is a USD
// budget for buys and a token quantity for sells; zero for holds.
type Decision struct {
	Action Action
	Amount float64
}

// Config holds the policy thresholds. The defaults encode the contract:
// buy young cheap tokens with bounded exposure, take profit at 5x growth
// past a floor.
type Config struct {
	// MaxTokenAge is the buy window after token creation.
	MaxTokenAge time.Duration
	// MaxBuyMarketCap is the USD market cap ceiling for buys.
	MaxBuyMarketCap float64
	// MaxBuyAmount caps the USD spent on a single buy.
	MaxBuyAmount float64
	// BuyCapFraction scales the buy budget by the token's market cap.
	BuyCapFraction float64

	// SellMarketCapFloor is the minimum USD market cap for a sell.
	SellMarketCapFloor float64
	// SellGrowthMultiple is the required growth over the initial cap.
	SellGrowthMultiple float64
	// SellFraction is the share of current holdings sold on a sell.
	SellFraction float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxTokenAge:        5 * time.Minute,
		MaxBuyMarketCap:    10000,
		MaxBuyAmount:       100,
		BuyCapFraction:     0.01,
		SellMarketCapFloor: 50000,
		SellGrowthMultiple: 5,
		SellFraction:       0.5,
	}
}

// Validate checks config consistency.
func (c Config) Validate() error {
	if c.MaxTokenAge <= 0 {
		return fmt.Errorf("max token age must be positive, got %v", c.MaxTokenAge)
	}
	if c.MaxBuyMarketCap <= 0 {
		return fmt.Errorf("max buy market cap must be positive, got %v", c.MaxBuyMarketCap)
	}
	if c.MaxBuyAmount <= 0 {
		return fmt.Errorf("max buy amount must be positive, got %v", c.MaxBuyAmount)
	}
	if c.BuyCapFraction <= 0 || c.BuyCapFraction > 1 {
		return fmt.Errorf("buy cap fraction must be in (0, 1], got %v", c.BuyCapFraction)
	}
	if c.SellGrowthMultiple <= 1 {
		return fmt.Errorf("sell growth multiple must exceed 1, got %v", c.SellGrowthMultiple)
	}
	if c.SellFraction <= 0 || c.SellFraction > 1 {
		return fmt.Errorf("sell fraction must be in (0, 1], got %v", c.SellFraction)
	}
	return nil
}

// Policy evaluates snapshots against the configured thresholds.
// Stateless apart from config and an injectable clock.
type Policy struct {
	cfg Config
	now func() time.Time
}

// New creates a policy. Returns an error on invalid config.
func New(cfg Config) (*Policy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}
	return &Policy{cfg: cfg, now: time.Now}, nil
}

// WithClock sets a custom clock for deterministic tests.
func (p *Policy) WithClock(now func() time.Time) *Policy {
	p.now = now
	return p
}

// SelectCandidate picks the token maximizing (CreatedAt, UsdMarketCap):
// the most recently created token, ties broken by higher market cap.
// Returns ("", false) for an empty snapshot.
func (p *Policy) SelectCandidate(snap *marketstate.Snapshot) (string, bool) {
	if snap == nil || snap.Len() == 0 {
		return "", false
	}

	var (
		best  string
		found bool
	)
	var bestCreated int64
	var bestCap float64

	for mint, rec := range snap.Tokens {
		better := !found ||
			rec.CreatedAt > bestCreated ||
			(rec.CreatedAt == bestCreated && rec.UsdMarketCap > bestCap) ||
			// Deterministic tie-break so repeated runs agree.
			(rec.CreatedAt == bestCreated && rec.UsdMarketCap == bestCap && mint < best)
		if better {
			best = mint
			bestCreated = rec.CreatedAt
			bestCap = rec.UsdMarketCap
			found = true
		}
	}

	return best, found
}

// Decide produces the action for a candidate. holding is the current
// quantity held, used to size sells. Unknown tokens hold.
func (p *Policy) Decide(snap *marketstate.Snapshot, mint string, holding float64) Decision {
	rec, ok := snap.Get(mint)
	if !ok {
		return Decision{Action: Hold}
	}

	age := p.now().UnixMilli() - rec.CreatedAt
	cap := rec.UsdMarketCap

	if age < p.cfg.MaxTokenAge.Milliseconds() && cap < p.cfg.MaxBuyMarketCap {
		amount := cap * p.cfg.BuyCapFraction
		if amount > p.cfg.MaxBuyAmount {
			amount = p.cfg.MaxBuyAmount
		}
		return Decision{Action: Buy, Amount: amount}
	}

	// A missing baseline never triggers a sell: the growth condition is
	// treated as not met rather than dividing by zero.
	if rec.InitialUsdMarketCap > 0 &&
		cap > p.cfg.SellMarketCapFloor &&
		cap > rec.InitialUsdMarketCap*p.cfg.SellGrowthMultiple {
		return Decision{Action: Sell, Amount: holding * p.cfg.SellFraction}
	}

	return Decision{Action: Hold}
}
