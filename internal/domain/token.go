package domain

// TokenRecord is the consolidated market state for a single token.
// Created on the first sighting of a mint and mutated on every accepted
// trade event; never deleted during process lifetime.
type TokenRecord struct {
	Mint     string // token mint address, primary key
	Name     string
	Symbol   string
	ImageURI string
	Creator  string

	CreatedAt int64 // creation timestamp in ms, source of truth for age

	// Latest known market values. Zero means not yet observed.
	MarketCap    float64
	UsdMarketCap float64

	// Reserve quantities used to derive spot price.
	VirtualSolReserves   float64
	VirtualTokenReserves float64

	// InitialUsdMarketCap is captured on first observation of a USD market
	// cap for this mint and is immutable afterwards. Baseline for the
	// growth-ratio sell condition.
	InitialUsdMarketCap float64

	// LastTradeTimestamp is monotonically non-decreasing. Trade events
	// carrying an older timestamp must not overwrite market fields.
	LastTradeTimestamp int64
}

// Price derives the spot price from virtual reserves.
// Returns (0, false) when either reserve is missing or zero.
func (t *TokenRecord) Price() (float64, bool) {
	if t.VirtualTokenReserves <= 0 || t.VirtualSolReserves <= 0 {
		return 0, false
	}
	return t.VirtualSolReserves / t.VirtualTokenReserves, true
}
