package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// neverImportedDays is the sentinel reported when no statement was ever
// imported. It is not a real day count; callers surface it as "never
// imported" rather than as an age.
const neverImportedDays = 999

// SummaryConfig holds the thresholds that flag pending movements as
// critical and the import feed as stale.
type SummaryConfig struct {
	CriticalAmount decimal.Decimal `json:"critical_amount"`
	StaleAfterDays int             `json:"stale_after_days"`
}

func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		CriticalAmount: decimal.NewFromInt(500),
		StaleAfterDays: 3,
	}
}

// ReconciliationSummary aggregates a scope's statement movements into the
// balances and flags the reconciliation dashboard needs.
type ReconciliationSummary struct {
	ImportedBalance     decimal.Decimal `json:"imported_balance"`
	ReconciledBalance   decimal.Decimal `json:"reconciled_balance"`
	PendingCount        int             `json:"pending_count"`
	PendingValue        decimal.Decimal `json:"pending_value"`
	CriticalCount       int             `json:"critical_count"`
	CriticalValue       decimal.Decimal `json:"critical_value"`
	DaysSinceLastImport int             `json:"days_since_last_import"`
	IsStale             bool            `json:"is_stale"`
}

// NeverImported reports whether the summary carries the no-import sentinel.
func (s ReconciliationSummary) NeverImported() bool {
	return s.DaysSinceLastImport == neverImportedDays
}

// SummarizeReconciliation reduces all movements in scope to the dashboard
// aggregates. It is a pure computation, recomputed on demand.
//
// ImportedBalance deliberately includes ignored movements: the raw imported
// total accounts for every statement line, matching how the statement source
// reports it. Pending and critical are restricted to unreconciled,
// unignored movements; their values sum absolute amounts.
func SummarizeReconciliation(movements []Movement, lastImportAt *time.Time, now time.Time, cfg SummaryConfig) ReconciliationSummary {
	summary := ReconciliationSummary{
		ImportedBalance:   decimal.Zero,
		ReconciledBalance: decimal.Zero,
		PendingValue:      decimal.Zero,
		CriticalValue:     decimal.Zero,
	}

	for _, m := range movements {
		signed := m.SignedAmount()
		summary.ImportedBalance = summary.ImportedBalance.Add(signed)
		if m.Reconciled {
			summary.ReconciledBalance = summary.ReconciledBalance.Add(signed)
			continue
		}
		if m.Ignored {
			continue
		}
		magnitude := m.Amount.Abs()
		summary.PendingCount++
		summary.PendingValue = summary.PendingValue.Add(magnitude)
		if magnitude.GreaterThanOrEqual(cfg.CriticalAmount) {
			summary.CriticalCount++
			summary.CriticalValue = summary.CriticalValue.Add(magnitude)
		}
	}

	if lastImportAt == nil {
		summary.DaysSinceLastImport = neverImportedDays
	} else {
		summary.DaysSinceLastImport = calendarDaysBetween(*lastImportAt, now)
	}
	summary.IsStale = summary.DaysSinceLastImport > cfg.StaleAfterDays

	return summary
}

// calendarDaysBetween counts whole calendar days from a to b, clamped at
// zero. An import late yesterday is one day old this morning regardless of
// the elapsed hours.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days
}
