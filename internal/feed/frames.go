package feed

import (
	"encoding/json"
	"fmt"

	"pumpfun-paper-bot/internal/domain"
)

// Frame prefixes of the engine.io-style protocol spoken by the feed.
// Lifecycle frames are single-digit; event payloads arrive as "42"
// followed by a JSON array [eventType, eventData].
const (
	frameOpen    = "0" // server handshake, carries session JSON
	framePing    = "2" // server ping, answered with framePong
	framePong    = "3"
	frameConnect = "40" // namespace connect, sent by us after dial
	frameEvent   = "42"
)

// Event types dispatched from payload frames.
const (
	eventNewCoin = "newCoinCreated"
	eventTrade   = "tradeCreated"
)

type frameKind int

const (
	kindOpen frameKind = iota
	kindPing
	kindConnectAck
	kindEvent
	kindOther
)

// classifyFrame splits a raw message into its kind and payload.
// Two-character prefixes are matched before single-character ones.
func classifyFrame(msg []byte) (frameKind, []byte) {
	s := string(msg)
	switch {
	case len(s) >= 2 && s[:2] == frameEvent:
		return kindEvent, msg[2:]
	case len(s) >= 2 && s[:2] == frameConnect:
		return kindConnectAck, msg[2:]
	case len(s) >= 1 && s[:1] == frameOpen:
		return kindOpen, msg[1:]
	case s == framePing:
		return kindPing, nil
	default:
		return kindOther, msg
	}
}

// parseEvent decodes an event frame payload into its type and data.
func parseEvent(payload []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(payload, &parts); err != nil {
		return "", nil, fmt.Errorf("decode event frame: %w", err)
	}
	if len(parts) < 2 {
		return "", nil, fmt.Errorf("event frame has %d elements, want 2", len(parts))
	}

	var eventType string
	if err := json.Unmarshal(parts[0], &eventType); err != nil {
		return "", nil, fmt.Errorf("decode event type: %w", err)
	}

	return eventType, parts[1], nil
}

// unmarshalPayload decodes eventData into a payload struct.
func unmarshalPayload(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode event data: %w", err)
	}
	return nil
}

// newCoinPayload is the eventData of a newCoinCreated frame.
type newCoinPayload struct {
	Mint                 string  `json:"mint"`
	Name                 string  `json:"name"`
	Symbol               string  `json:"symbol"`
	ImageURI             string  `json:"image_uri"`
	Creator              string  `json:"creator"`
	CreatedTimestamp     int64   `json:"created_timestamp"`
	UsdMarketCap         float64 `json:"usd_market_cap"`
	MarketCap            float64 `json:"market_cap"`
	VirtualSolReserves   float64 `json:"virtual_sol_reserves"`
	VirtualTokenReserves float64 `json:"virtual_token_reserves"`
}

func (p *newCoinPayload) toDomain() *domain.NewTokenEvent {
	return &domain.NewTokenEvent{
		Mint:                 p.Mint,
		Name:                 p.Name,
		Symbol:               p.Symbol,
		ImageURI:             p.ImageURI,
		Creator:              p.Creator,
		CreatedTimestamp:     p.CreatedTimestamp,
		UsdMarketCap:         p.UsdMarketCap,
		MarketCap:            p.MarketCap,
		VirtualSolReserves:   p.VirtualSolReserves,
		VirtualTokenReserves: p.VirtualTokenReserves,
	}
}

// tradePayload is the eventData of a tradeCreated frame.
type tradePayload struct {
	Mint                 string  `json:"mint"`
	Signature            string  `json:"signature"`
	Symbol               string  `json:"symbol"`
	IsBuy                bool    `json:"is_buy"`
	SolAmount            float64 `json:"sol_amount"`
	TokenAmount          float64 `json:"token_amount"`
	Timestamp            int64   `json:"timestamp"`
	UsdMarketCap         float64 `json:"usd_market_cap"`
	MarketCap            float64 `json:"market_cap"`
	VirtualSolReserves   float64 `json:"virtual_sol_reserves"`
	VirtualTokenReserves float64 `json:"virtual_token_reserves"`
	Creator              string  `json:"creator"`
}

func (p *tradePayload) toDomain() *domain.TradeEvent {
	return &domain.TradeEvent{
		Mint:                 p.Mint,
		Signature:            p.Signature,
		Symbol:               p.Symbol,
		IsBuy:                p.IsBuy,
		SolAmount:            p.SolAmount,
		TokenAmount:          p.TokenAmount,
		Timestamp:            p.Timestamp,
		UsdMarketCap:         p.UsdMarketCap,
		MarketCap:            p.MarketCap,
		VirtualSolReserves:   p.VirtualSolReserves,
		VirtualTokenReserves: p.VirtualTokenReserves,
		Creator:              p.Creator,
	}
}
