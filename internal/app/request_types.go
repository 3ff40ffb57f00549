package app

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

// SuggestRequest is the input for SuggestCategory.
type SuggestRequest struct {
	OrgID       uuid.UUID
	Description string
	Direction   core.LedgerDirection
	// AllowAI opts into the OpenAI fallback when history and patterns
	// produced nothing. Ignored when no API key is configured.
	AllowAI bool
}

// ImportRequest is the input for ImportStatement.
type ImportRequest struct {
	OrgID  uuid.UUID
	Source string
	Lines  []core.MovementLine
}

// ConfirmRequest is the input for ConfirmCategorization.
type ConfirmRequest struct {
	OrgID      uuid.UUID
	MovementID uuid.UUID
	CategoryID uuid.UUID
	// Pattern optionally teaches the pattern store a fragment of the
	// movement description; empty means "do not learn a pattern".
	Pattern string
}

// SettlementRequest is the input for EvaluateSettlement. Override is
// optional; nil uses the configured tolerance.
type SettlementRequest struct {
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Override *core.ToleranceConfig
}
