// Package portfolio owns the paper-trading ledger: cash balance,
// holdings, and the append-only trade audit trail.
package portfolio

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/marketstate"
	"pumpfun-paper-bot/internal/storage"
	"pumpfun-paper-bot/internal/strategy"
)

// DefaultInitialBalance is the starting cash in USD.
const DefaultInitialBalance = 1000

// Policy is the decision interface consumed by a cycle.
type Policy interface {
	// SelectCandidate picks the token to evaluate, or ("", false).
	SelectCandidate(snap *marketstate.Snapshot) (string, bool)

	// Decide produces the action for a candidate given current holdings.
	Decide(snap *marketstate.Snapshot, mint string, holding float64) strategy.Decision
}

// Ledger applies trade decisions under capital constraints.
// Balance and holdings never go negative: buy cost is clamped to the
// balance and sell quantity to the holding.
type Ledger struct {
	mu             sync.Mutex
	initialBalance float64
	balance        float64
	holdings       map[string]float64
	entries        []*domain.LedgerEntry

	archive storage.LedgerStore // optional durable sink
	logger  *log.Logger
	now     func() time.Time
}

// Options configures a Ledger.
type Options struct {
	// InitialBalance is the starting cash; DefaultInitialBalance if zero.
	InitialBalance float64
	// Archive receives every ledger entry after it is applied. Optional;
	// archive failures are logged and never fail the cycle.
	Archive storage.LedgerStore
	// Logger for archive failures. Optional.
	Logger *log.Logger
}

// New creates a ledger.
func New(opts Options) *Ledger {
	balance := opts.InitialBalance
	if balance <= 0 {
		balance = DefaultInitialBalance
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Ledger{
		initialBalance: balance,
		balance:        balance,
		holdings:       make(map[string]float64),
		archive:        opts.Archive,
		logger:         logger,
		now:            time.Now,
	}
}

// WithClock sets a custom clock for deterministic tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// ExecuteCycle runs one decision cycle: candidate selection, signal
// evaluation, and ledger application. Conditions are reported as
// outcomes; nothing panics past this boundary.
func (l *Ledger) ExecuteCycle(ctx context.Context, snap *marketstate.Snapshot, policy Policy) (outcome domain.CycleOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = domain.CycleOutcome{
				Status:  domain.OutcomeError,
				Message: fmt.Sprintf("decision cycle panic: %v", r),
			}
		}
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	mint, ok := policy.SelectCandidate(snap)
	if !ok {
		return domain.CycleOutcome{
			Status:  domain.OutcomeInfo,
			Message: "no suitable token found for trading",
		}
	}

	decision := policy.Decide(snap, mint, l.holdings[mint])

	price, ok := snap.Price(mint)
	if !ok {
		return domain.CycleOutcome{
			Status:  domain.OutcomeError,
			Message: fmt.Sprintf("unable to determine price for %s", mint),
		}
	}

	switch decision.Action {
	case strategy.Buy:
		return l.applyBuy(ctx, mint, decision.Amount, price)
	case strategy.Sell:
		return l.applySell(ctx, mint, decision.Amount, price)
	default:
		return domain.CycleOutcome{
			Status:  domain.OutcomeInfo,
			Message: "no trade executed",
		}
	}
}

func (l *Ledger) applyBuy(ctx context.Context, mint string, amount, price float64) domain.CycleOutcome {
	cost := amount
	if cost > l.balance {
		cost = l.balance
	}
	if cost <= 0 {
		return domain.CycleOutcome{
			Status:  domain.OutcomeInfo,
			Message: "no trade executed",
		}
	}

	quantity := cost / price
	l.balance -= cost
	l.holdings[mint] += quantity
	l.appendEntry(ctx, mint, domain.ActionBuy, quantity, cost, price)

	return domain.CycleOutcome{
		Status:   domain.OutcomeSuccess,
		Message:  fmt.Sprintf("bought %.6f %s for $%.2f", quantity, mint, cost),
		Mint:     mint,
		Action:   domain.ActionBuy,
		Quantity: quantity,
		Amount:   cost,
	}
}

func (l *Ledger) applySell(ctx context.Context, mint string, amount, price float64) domain.CycleOutcome {
	holding := l.holdings[mint]
	if holding <= 0 {
		return domain.CycleOutcome{
			Status:  domain.OutcomeInfo,
			Message: fmt.Sprintf("no %s in portfolio to sell", mint),
		}
	}

	quantity := amount
	if quantity > holding {
		quantity = holding
	}
	if quantity <= 0 {
		return domain.CycleOutcome{
			Status:  domain.OutcomeInfo,
			Message: "no trade executed",
		}
	}

	revenue := quantity * price
	l.balance += revenue
	remaining := holding - quantity
	if remaining < 0 {
		remaining = 0
	}
	l.holdings[mint] = remaining
	l.appendEntry(ctx, mint, domain.ActionSell, quantity, revenue, price)

	return domain.CycleOutcome{
		Status:   domain.OutcomeSuccess,
		Message:  fmt.Sprintf("sold %.6f %s for $%.2f", quantity, mint, revenue),
		Mint:     mint,
		Action:   domain.ActionSell,
		Quantity: quantity,
		Amount:   revenue,
	}
}

// appendEntry records a trade in the audit trail and forwards it to the
// archive sink when one is attached. Caller holds l.mu.
func (l *Ledger) appendEntry(ctx context.Context, mint, action string, quantity, amount, price float64) {
	entry := &domain.LedgerEntry{
		Timestamp: l.now().UnixMilli(),
		Mint:      mint,
		Action:    action,
		Quantity:  quantity,
		Amount:    amount,
		Price:     price,
	}
	l.entries = append(l.entries, entry)

	if l.archive != nil {
		if err := l.archive.InsertEntry(ctx, entry); err != nil {
			l.logger.Printf("ledger archive insert failed: %v", err)
		}
	}
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// InitialBalance returns the starting cash balance.
func (l *Ledger) InitialBalance() float64 {
	return l.initialBalance
}

// Holding returns the quantity held for a mint.
func (l *Ledger) Holding(mint string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings[mint]
}

// Positions returns all holdings, including zero-quantity remnants,
// ordered by mint for deterministic output.
func (l *Ledger) Positions() []domain.Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	positions := make([]domain.Position, 0, len(l.holdings))
	for mint, qty := range l.holdings {
		positions = append(positions, domain.Position{Mint: mint, Quantity: qty})
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Mint < positions[j].Mint
	})
	return positions
}

// Entries returns a copy of the audit trail in execution order.
func (l *Ledger) Entries() []domain.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.LedgerEntry, len(l.entries))
	for i, e := range l.entries {
		entries[i] = *e
	}
	return entries
}

// TotalValue is cash plus the mark-to-market value of all holdings.
// A holding with no derivable price contributes zero.
func (l *Ledger) TotalValue(snap *marketstate.Snapshot) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.balance
	for mint, qty := range l.holdings {
		if qty <= 0 {
			continue
		}
		if price, ok := snap.Price(mint); ok {
			total += qty * price
		}
	}
	return total
}

// ProfitLoss returns the absolute and percentage P&L against the
// initial balance.
func (l *Ledger) ProfitLoss(snap *marketstate.Snapshot) (amount, percent float64) {
	value := l.TotalValue(snap)
	amount = value - l.initialBalance
	percent = (value/l.initialBalance - 1) * 100
	return amount, percent
}
