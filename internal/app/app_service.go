package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"concilia/internal/ai"
	"concilia/internal/core"
)

// timeNow is swapped out by tests that pin the summary clock.
var timeNow = time.Now

type appService struct {
	movements  core.MovementService
	ledger     core.LedgerService
	patterns   core.PatternService
	quotations core.QuotationService
	engine     *core.SuggestionEngine
	suggester  ai.CategorySuggester // nil when AI fallback is not configured
	tolerance  core.ToleranceConfig
	summaryCfg core.SummaryConfig
	logger     *log.Logger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// suggester may be nil; the AI fallback is then silently unavailable.
func NewAppService(
	movements core.MovementService,
	ledger core.LedgerService,
	patterns core.PatternService,
	quotations core.QuotationService,
	engine *core.SuggestionEngine,
	suggester ai.CategorySuggester,
	tolerance core.ToleranceConfig,
	summaryCfg core.SummaryConfig,
	logger *log.Logger,
) ApplicationService {
	return &appService{
		movements:  movements,
		ledger:     ledger,
		patterns:   patterns,
		quotations: quotations,
		engine:     engine,
		suggester:  suggester,
		tolerance:  tolerance,
		summaryCfg: summaryCfg,
		logger:     logger,
	}
}

func (s *appService) SuggestCategory(ctx context.Context, req SuggestRequest) (*SuggestResult, error) {
	matches, err := s.patterns.MatchPatterns(ctx, req.OrgID, req.Description, req.Direction)
	if err != nil {
		return nil, err
	}

	result := &SuggestResult{PatternMatches: matches}

	// Explicit operator-curated patterns win over fuzzy history.
	if len(matches) > 0 {
		best := matches[0]
		categories, err := s.ledger.ListCategories(ctx, req.OrgID, req.Direction)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			if c.ID == best.Pattern.CategoryID {
				result.Suggestion = &core.Suggestion{
					CategoryID:   c.ID,
					CategoryName: c.Name,
					Direction:    c.Direction,
					Confidence:   best.MatchScore,
					Reason:       fmt.Sprintf("padrão %q (usado %d vezes)", best.Pattern.Pattern, best.Pattern.UsageCount),
				}
				result.Source = SourcePattern
				return result, nil
			}
		}
		// pattern points at a category missing from scope; fall through to
		// the engine rather than suggest a dangling id
		s.logger.Warn("pattern references unknown category",
			"pattern_id", best.Pattern.ID, "category_id", best.Pattern.CategoryID)
	}

	suggestion, err := s.engine.Suggest(ctx, req.OrgID, req.Description, req.Direction)
	if err != nil {
		// a store failure must surface, never degrade into a guess
		return nil, err
	}
	if suggestion != nil {
		result.Suggestion = suggestion
		result.Source = SourceHistory
		return result, nil
	}

	if req.AllowAI && s.suggester != nil {
		categories, err := s.ledger.ListCategories(ctx, req.OrgID, req.Direction)
		if err != nil {
			return nil, err
		}
		aiSuggestion, err := s.suggester.SuggestCategory(ctx, req.Description, req.Direction, categories)
		if err != nil {
			// advisory only: log and show nothing rather than fail the call
			s.logger.Warn("ai fallback failed", "err", err)
			return result, nil
		}
		if aiSuggestion != nil {
			result.Suggestion = aiSuggestion
			result.Source = SourceAI
		}
	}

	return result, nil
}

func (s *appService) ImportStatement(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	imp, err := s.movements.ImportStatement(ctx, req.OrgID, req.Source, req.Lines)
	if err != nil {
		return nil, err
	}
	s.logger.Info("statement imported", "org", req.OrgID, "source", req.Source, "movements", len(req.Lines))
	return &ImportResult{Import: imp, MovementCount: len(req.Lines)}, nil
}

func (s *appService) ConfirmCategorization(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	movement, err := s.movements.GetMovement(ctx, req.OrgID, req.MovementID)
	if err != nil {
		return nil, err
	}
	// reject before the ledger insert: a late Reconcile rejection would
	// leave an orphaned categorized entry that feeds back into suggestions
	if movement.Ignored {
		return nil, &core.ValidationError{Field: "movement", Reason: "movement is ignored; un-ignore it first"}
	}
	if movement.Reconciled {
		return nil, &core.ValidationError{Field: "movement", Reason: "movement is already reconciled; un-reconcile it first"}
	}

	direction := core.LedgerDirectionFor(movement.Direction)
	entry, err := s.ledger.Create(ctx, core.LedgerEntry{
		OrgID:       req.OrgID,
		Direction:   direction,
		Description: movement.Description,
		Amount:      movement.Amount,
		CategoryID:  &req.CategoryID,
		OccurredAt:  movement.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.movements.Reconcile(ctx, req.OrgID, movement.ID, entry.ID); err != nil {
		return nil, err
	}

	result := &ConfirmResult{Entry: entry}
	if req.Pattern != "" {
		pattern, err := s.patterns.RecordConfirmation(ctx, req.OrgID, req.Pattern, direction, req.CategoryID)
		if err != nil {
			return nil, err
		}
		result.Pattern = pattern
	}

	s.logger.Info("categorization confirmed",
		"org", req.OrgID, "movement", movement.ID, "category", req.CategoryID)
	return result, nil
}

func (s *appService) IgnoreMovement(ctx context.Context, orgID, movementID uuid.UUID) error {
	return s.movements.Ignore(ctx, orgID, movementID)
}

func (s *appService) UnreconcileMovement(ctx context.Context, orgID, movementID uuid.UUID) error {
	return s.movements.Unreconcile(ctx, orgID, movementID)
}

func (s *appService) ConfirmPattern(ctx context.Context, orgID, patternID uuid.UUID) (int, error) {
	return s.patterns.ConfirmPattern(ctx, orgID, patternID)
}

func (s *appService) DeactivatePattern(ctx context.Context, orgID, patternID uuid.UUID) error {
	return s.patterns.DeactivatePattern(ctx, orgID, patternID)
}

func (s *appService) ReconciliationSummary(ctx context.Context, orgID uuid.UUID) (*core.ReconciliationSummary, error) {
	movements, err := s.movements.ListMovements(ctx, orgID)
	if err != nil {
		return nil, err
	}
	lastImport, err := s.movements.LatestImport(ctx, orgID)
	if err != nil {
		return nil, err
	}
	summary := core.SummarizeReconciliation(movements, lastImport, timeNow(), s.summaryCfg)
	return &summary, nil
}

func (s *appService) QuotationFunnel(ctx context.Context, orgID uuid.UUID) (*core.FunnelReport, error) {
	return s.quotations.GetFunnelReport(ctx, orgID)
}

func (s *appService) EvaluateSettlement(ctx context.Context, req SettlementRequest) (*SettlementResult, error) {
	if req.Total.IsNegative() {
		return nil, &core.ValidationError{Field: "total", Reason: "must not be negative"}
	}
	if req.Paid.IsNegative() {
		return nil, &core.ValidationError{Field: "paid", Reason: "must not be negative"}
	}
	tolerance := s.tolerance
	if req.Override != nil {
		tolerance = *req.Override
	}
	return &SettlementResult{
		Settled:    tolerance.IsSettled(req.Total, req.Paid),
		Difference: req.Total.Sub(req.Paid),
		Tolerance:  tolerance,
	}, nil
}
