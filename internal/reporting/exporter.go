package reporting

import (
	"fmt"
	"os"
	"time"

	"pumpfun-paper-bot/internal/domain"
	"pumpfun-paper-bot/internal/marketstate"
)

// Exporter rewrites the CSV export files in full on each cycle.
// Failures are returned to the caller to log; the next cycle retries
// with fresh data.
type Exporter struct {
	ledgerPath string
	marketPath string
	now        func() time.Time
}

// NewExporter creates an exporter writing to the given file paths.
func NewExporter(ledgerPath, marketPath string) *Exporter {
	return &Exporter{
		ledgerPath: ledgerPath,
		marketPath: marketPath,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic output.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// ExportLedger rewrites the trade-ledger CSV.
func (e *Exporter) ExportLedger(entries []domain.LedgerEntry) error {
	if err := writeFileAtomic(e.ledgerPath, RenderLedgerCSV(entries)); err != nil {
		return fmt.Errorf("export ledger csv: %w", err)
	}
	return nil
}

// ExportMarketSnapshot rewrites the market-state CSV.
func (e *Exporter) ExportMarketSnapshot(snap *marketstate.Snapshot) error {
	if err := writeFileAtomic(e.marketPath, RenderMarketSnapshotCSV(snap, e.now())); err != nil {
		return fmt.Errorf("export market snapshot csv: %w", err)
	}
	return nil
}

// writeFileAtomic writes via a temp file and rename so a crashed export
// never leaves a truncated file behind.
func writeFileAtomic(path, content string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
