package domain

// TradeEvent is a single trade observed on the feed.
// Keyed by Signature for retransmit deduplication.
type TradeEvent struct {
	Signature   string // transaction signature, unique per trade
	Mint        string
	Symbol      string
	IsBuy       bool
	SolAmount   float64 // lamports, as reported by the feed
	TokenAmount float64
	Timestamp   int64 // ms

	MarketCap            float64
	UsdMarketCap         float64
	VirtualSolReserves   float64
	VirtualTokenReserves float64
	Creator              string
}

// NewTokenEvent is a token creation observed on the feed.
type NewTokenEvent struct {
	Mint             string
	Name             string
	Symbol           string
	ImageURI         string
	Creator          string
	CreatedTimestamp int64 // ms
	UsdMarketCap     float64
	MarketCap        float64

	VirtualSolReserves   float64
	VirtualTokenReserves float64
}
