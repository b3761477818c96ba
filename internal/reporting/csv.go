// Package reporting produces the periodic exports: CSV snapshots of
// the trade ledger and market state, and the textual insights report.
package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/marketstate"
	"pumpfun-paper-bot/internal/pumpfun"
)

// RenderLedgerCSV renders the full trade ledger as CSV.
func RenderLedgerCSV(entries []domain.LedgerEntry) string {
	var sb strings.Builder

	sb.WriteString("timestamp,token,action,quantity,price,amount_usd\n")

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.9f,%.12f,%.6f\n",
			time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339),
			e.Mint,
			e.Action,
			e.Quantity,
			e.Price,
			e.Amount,
		))
	}

	return sb.String()
}

// RenderMarketSnapshotCSV renders one row per tracked token with its
// latest known fields. Rows are ordered by mint for stable diffs.
func RenderMarketSnapshotCSV(snap *marketstate.Snapshot, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("timestamp,mint,symbol,name,image_uri,creator,bonding_curve,")
	sb.WriteString("created_timestamp,price,market_cap,usd_market_cap,initial_usd_market_cap,last_trade_timestamp\n")

	mints := make([]string, 0, snap.Len())
	for mint := range snap.Tokens {
		mints = append(mints, mint)
	}
	sort.Strings(mints)

	ts := now.UTC().Format(time.RFC3339)
	for _, mint := range mints {
		rec := snap.Tokens[mint]

		priceField := "N/A"
		if price, ok := rec.Price(); ok {
			priceField = fmt.Sprintf("%.12f", price)
		}

		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%d,%s,%.6f,%.6f,%.6f,%d\n",
			ts,
			rec.Mint,
			csvField(rec.Symbol),
			csvField(rec.Name),
			csvField(rec.ImageURI),
			rec.Creator,
			pumpfun.BondingCurveAddress(rec.Mint),
			rec.CreatedAt,
			priceField,
			rec.MarketCap,
			rec.UsdMarketCap,
			rec.InitialUsdMarketCap,
			rec.LastTradeTimestamp,
		))
	}

	return sb.String()
}

// csvField strips characters that would break the row. Token names and
// symbols come from the feed and can contain anything.
func csvField(s string) string {
	s = strings.ReplaceAll(s, ",", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
