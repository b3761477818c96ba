package domain

// Position is a paper holding in a single token.
// Quantity never goes negative; a record may remain at zero after a full sell.
type Position struct {
	Mint     string
	Quantity float64
}

// LedgerEntry is one executed paper trade. Append-only, immutable once written.
type LedgerEntry struct {
	Timestamp int64  // ms, wall clock at execution
	Mint      string
	Action    string // ActionBuy | ActionSell
	Quantity  float64
	// Amount is the cash side of the trade in USD: cost for a buy,
	// revenue for a sell.
	Amount float64
	Price  float64 // execution price, SOL reserves / token reserves
}

// Ledger actions.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Outcome statuses for a decision cycle.
const (
	OutcomeSuccess = "success"
	OutcomeInfo    = "info"
	OutcomeError   = "error"
)

// CycleOutcome reports what a single decision cycle did. Decision-cycle
// conditions (no candidate, missing price, nothing to sell) are outcomes,
// not errors; nothing propagates past the cycle boundary.
type CycleOutcome struct {
	Status  string // OutcomeSuccess | OutcomeInfo | OutcomeError
	Message string

	// Populated on success.
	Mint     string
	Action   string
	Quantity float64
	Amount   float64
}
