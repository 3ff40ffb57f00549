package app

import (
	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

// SuggestionSource identifies which mechanism produced a suggestion.
type SuggestionSource string

const (
	SourcePattern SuggestionSource = "pattern"
	SourceHistory SuggestionSource = "history"
	SourceAI      SuggestionSource = "ai"
)

// SuggestResult is returned by SuggestCategory. Suggestion is nil when no
// confident match exists; PatternMatches lists every explicit pattern hit
// regardless of which source won.
type SuggestResult struct {
	Suggestion     *core.Suggestion
	Source         SuggestionSource
	PatternMatches []core.PatternMatch
}

// ImportResult is returned by ImportStatement.
type ImportResult struct {
	Import        *core.StatementImport
	MovementCount int
}

// ConfirmResult is returned by ConfirmCategorization.
type ConfirmResult struct {
	Entry   *core.LedgerEntry
	Pattern *core.CategoryPattern
}

// SettlementResult is returned by EvaluateSettlement.
type SettlementResult struct {
	Settled    bool
	Difference decimal.Decimal
	Tolerance  core.ToleranceConfig
}
