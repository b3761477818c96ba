package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFrame(t *testing.T) {
	cases := []struct {
		name    string
		frame   string
		kind    frameKind
		payload string
	}{
		{"open", `0{"sid":"abc","pingInterval":25000}`, kindOpen, `{"sid":"abc","pingInterval":25000}`},
		{"ping", "2", kindPing, ""},
		{"connect ack", `40{"sid":"xyz"}`, kindConnectAck, `{"sid":"xyz"}`},
		{"event", `42["tradeCreated",{}]`, kindEvent, `["tradeCreated",{}]`},
		{"pong echo", "3", kindOther, "3"},
		{"empty", "", kindOther, ""},
		{"unknown digit", "6", kindOther, "6"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, payload := classifyFrame([]byte(tc.frame))
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.payload, string(payload))
		})
	}
}

func TestParseEvent(t *testing.T) {
	eventType, data, err := parseEvent([]byte(`["newCoinCreated",{"mint":"abc"}]`))
	require.NoError(t, err)
	assert.Equal(t, "newCoinCreated", eventType)
	assert.JSONEq(t, `{"mint":"abc"}`, string(data))
}

func TestParseEvent_Malformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", "not json"},
		{"not an array", `{"mint":"abc"}`},
		{"single element", `["tradeCreated"]`},
		{"non-string type", `[42,{}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := parseEvent([]byte(tc.payload))
			assert.Error(t, err)
		})
	}
}

func TestTradePayloadToDomain(t *testing.T) {
	raw := `{
		"mint": "So11111111111111111111111111111111111111112",
		"signature": "sig1",
		"symbol": "WSOL",
		"is_buy": true,
		"sol_amount": 1500000000,
		"token_amount": 2000,
		"timestamp": 1700000000000,
		"usd_market_cap": 12000.5,
		"market_cap": 80,
		"virtual_sol_reserves": 30000000000,
		"virtual_token_reserves": 1000000000000
	}`

	var p tradePayload
	require.NoError(t, unmarshalPayload([]byte(raw), &p))

	ev := p.toDomain()
	assert.Equal(t, "So11111111111111111111111111111111111111112", ev.Mint)
	assert.Equal(t, "sig1", ev.Signature)
	assert.True(t, ev.IsBuy)
	assert.Equal(t, 1_500_000_000.0, ev.SolAmount)
	assert.Equal(t, int64(1_700_000_000_000), ev.Timestamp)
	assert.Equal(t, 12000.5, ev.UsdMarketCap)
}

func TestNewCoinPayloadToDomain(t *testing.T) {
	raw := `{
		"mint": "So11111111111111111111111111111111111111112",
		"name": "Wrapped SOL",
		"symbol": "WSOL",
		"image_uri": "https://example.com/sol.png",
		"creator": "creator1",
		"created_timestamp": 1700000000000,
		"usd_market_cap": 6000,
		"market_cap": 40
	}`

	var p newCoinPayload
	require.NoError(t, unmarshalPayload([]byte(raw), &p))

	ev := p.toDomain()
	assert.Equal(t, "Wrapped SOL", ev.Name)
	assert.Equal(t, "WSOL", ev.Symbol)
	assert.Equal(t, int64(1_700_000_000_000), ev.CreatedTimestamp)
	assert.Equal(t, 6000.0, ev.UsdMarketCap)
}
