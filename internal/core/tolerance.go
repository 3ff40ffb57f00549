package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ToleranceConfig is the residual gap under which a balance counts as fully
// settled. Both limits must hold at once: the absolute limit alone would
// clear large invoices with a small percentage gap, and the percentage limit
// alone would clear small invoices with a meaningful absolute gap.
type ToleranceConfig struct {
	Absolute decimal.Decimal `json:"absolute"`
	Percent  decimal.Decimal `json:"percent"`
}

// DefaultTolerance returns the process-wide default: 5.00 currency units
// absolute, 0.5% relative. Call sites may override per evaluation.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		Absolute: decimal.NewFromInt(5),
		Percent:  decimal.NewFromFloat(0.5),
	}
}

// IsSettled decides whether a receivable or payable is effectively paid.
// Nothing owed or paid in full settles unconditionally; otherwise the
// remaining difference must sit inside both tolerance limits.
func (t ToleranceConfig) IsSettled(total, paid decimal.Decimal) bool {
	if !total.IsPositive() {
		return true
	}
	if paid.GreaterThanOrEqual(total) {
		return true
	}
	diff := total.Sub(paid)
	pctDiff := diff.Div(total).Mul(decimal.NewFromInt(100))
	return diff.LessThanOrEqual(t.Absolute) && pctDiff.LessThanOrEqual(t.Percent)
}

// DeriveOverdueStatus projects a stored status to atrasado when the due date
// has passed without full payment. Date-only comparison; the projection is
// computed at read time and never persisted.
func DeriveOverdueStatus(stored QuotationStatus, dueDate, today time.Time) QuotationStatus {
	if stored == StatusPaid {
		return stored
	}
	dy, dm, dd := dueDate.Date()
	ty, tm, td := today.Date()
	if dy < ty || (dy == ty && (dm < tm || (dm == tm && dd < td))) {
		return StatusOverdue
	}
	return stored
}
