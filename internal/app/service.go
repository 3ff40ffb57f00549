package app

import (
	"context"

	"github.com/google/uuid"

	"concilia/internal/core"
)

// ApplicationService is the single interface operator surfaces call. It
// decouples presentation from the engine: implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// SuggestCategory runs the suggestion cascade for a movement
	// description: explicit pattern matches first, then the history-based
	// engine, then the optional AI fallback. An empty result means "show
	// nothing" and is never an error.
	SuggestCategory(ctx context.Context, req SuggestRequest) (*SuggestResult, error)

	// ImportStatement stores a decoded bank statement and its movements.
	ImportStatement(ctx context.Context, req ImportRequest) (*ImportResult, error)

	// ConfirmCategorization applies an operator-confirmed category to a
	// movement: persists the ledger entry, reconciles the movement against
	// it, and teaches the pattern store the association.
	ConfirmCategorization(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)

	// IgnoreMovement drops a movement from the pending queue.
	IgnoreMovement(ctx context.Context, orgID, movementID uuid.UUID) error

	// UnreconcileMovement reverts a reconciled movement to pending.
	UnreconcileMovement(ctx context.Context, orgID, movementID uuid.UUID) error

	// ConfirmPattern increments a pattern's usage counter after the
	// operator accepted one of its matches.
	ConfirmPattern(ctx context.Context, orgID, patternID uuid.UUID) (int, error)

	// DeactivatePattern soft-deletes a curated pattern.
	DeactivatePattern(ctx context.Context, orgID, patternID uuid.UUID) error

	// ReconciliationSummary aggregates the scope's movements into the
	// dashboard balances and staleness flags.
	ReconciliationSummary(ctx context.Context, orgID uuid.UUID) (*core.ReconciliationSummary, error)

	// QuotationFunnel returns the pipeline snapshot with received and
	// outstanding amounts per stage.
	QuotationFunnel(ctx context.Context, orgID uuid.UUID) (*core.FunnelReport, error)

	// EvaluateSettlement decides whether a receivable or payable is
	// effectively paid under the configured tolerance.
	EvaluateSettlement(ctx context.Context, req SettlementRequest) (*SettlementResult, error)
}
