package reporting

import (
	"fmt"
	"strings"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/marketstate"
)

// Performance summarizes the portfolio for the insights report.
type Performance struct {
	InitialBalance float64
	TotalValue     float64
	PLAmount       float64
	PLPercent      float64
}

// RenderInsights produces the periodic market/performance text report.
func RenderInsights(snap *marketstate.Snapshot, lastTrade *domain.TradeEvent, perf Performance) string {
	var sb strings.Builder

	if snap == nil || snap.Len() == 0 {
		sb.WriteString("No market data available yet.\n")
	} else {
		total := snap.Len()
		var totalCap float64
		var newest *domain.TokenRecord
		for mint := range snap.Tokens {
			rec := snap.Tokens[mint]
			totalCap += rec.UsdMarketCap
			if newest == nil ||
				rec.CreatedAt > newest.CreatedAt ||
				(rec.CreatedAt == newest.CreatedAt && rec.Mint < newest.Mint) {
				newest = &rec
			}
		}

		sb.WriteString("Market Insights:\n")
		sb.WriteString(fmt.Sprintf("Total number of tokens: %d\n", total))
		sb.WriteString(fmt.Sprintf("Total USD market cap: $%.2f\n", totalCap))
		sb.WriteString(fmt.Sprintf("Average USD market cap: $%.2f\n", totalCap/float64(total)))
		sb.WriteString(fmt.Sprintf("Newest coin: %s (%s) - Created at %s\n",
			newest.Name, newest.Symbol,
			time.UnixMilli(newest.CreatedAt).UTC().Format(time.RFC3339)))

		if lastTrade != nil {
			side := "Sell"
			if lastTrade.IsBuy {
				side = "Buy"
			}
			sb.WriteString(fmt.Sprintf("Latest trade: %s %.0f %s for %.6f SOL\n",
				side, lastTrade.TokenAmount, lastTrade.Symbol, lastTrade.SolAmount/1e9))
		}
	}

	sb.WriteString("\nBot Performance:\n")
	sb.WriteString(fmt.Sprintf("Initial Balance: $%.2f\n", perf.InitialBalance))
	sb.WriteString(fmt.Sprintf("Current Total Value: $%.2f\n", perf.TotalValue))
	sb.WriteString(fmt.Sprintf("Profit/Loss: $%.2f (%.2f%%)\n", perf.PLAmount, perf.PLPercent))

	return sb.String()
}

// RenderPortfolio lists every holding with its current value.
func RenderPortfolio(positions []domain.Position, snap *marketstate.Snapshot) string {
	if len(positions) == 0 {
		return "Portfolio is empty.\n"
	}

	var sb strings.Builder
	sb.WriteString("Current Portfolio:\n")
	for _, pos := range positions {
		value := 0.0
		if price, ok := snap.Price(pos.Mint); ok {
			value = pos.Quantity * price
		}
		sb.WriteString(fmt.Sprintf("%s: Amount: %.6f, Value: $%.2f\n", pos.Mint, pos.Quantity, value))
	}
	return sb.String()
}
