package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PatternMatch is one explicit pattern that matched a description, with its
// coverage score on the 0-100 similarity scale.
type PatternMatch struct {
	Pattern    CategoryPattern `json:"pattern"`
	MatchScore int             `json:"match_score"`
}

// PatternService is the operator-curated side of categorization: literal
// substring patterns bound to categories, distinct from the fuzzy
// suggestion engine.
type PatternService interface {
	// MatchPatterns returns all active patterns of the given direction whose
	// normalized text is contained in the normalized description, ranked by
	// match score descending then usage descending.
	MatchPatterns(ctx context.Context, orgID uuid.UUID, description string, direction LedgerDirection) ([]PatternMatch, error)

	// ConfirmPattern records one confirmed application of a pattern. The
	// usage counter is incremented in SQL, never read-modify-written, so
	// concurrent confirmations of the same pattern cannot lose updates.
	ConfirmPattern(ctx context.Context, orgID, patternID uuid.UUID) (int, error)

	// RecordConfirmation creates a pattern the first time an operator
	// confirms a category for a description, or increments the existing one.
	// A pattern binds to exactly one category: confirming the same text
	// under a different category is rejected, never silently re-bound.
	RecordConfirmation(ctx context.Context, orgID uuid.UUID, pattern string, direction LedgerDirection, categoryID uuid.UUID) (*CategoryPattern, error)

	// DeactivatePattern soft-deletes a pattern. Idempotent: deactivating an
	// already inactive pattern is not an error.
	DeactivatePattern(ctx context.Context, orgID, patternID uuid.UUID) error

	// ListPatterns returns all patterns in scope, active first, most used first.
	ListPatterns(ctx context.Context, orgID uuid.UUID) ([]CategoryPattern, error)
}

type patternService struct {
	pool *pgxpool.Pool
}

// NewPatternService constructs a PatternService backed by the category_patterns table.
func NewPatternService(pool *pgxpool.Pool) PatternService {
	return &patternService{pool: pool}
}

func (s *patternService) MatchPatterns(ctx context.Context, orgID uuid.UUID, description string, direction LedgerDirection) ([]PatternMatch, error) {
	normalized := Normalize(description)
	if normalized == "" {
		return nil, nil
	}
	keywords := ExtractKeywords(description)

	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, pattern, direction, category_id, usage_count, active, created_at
		FROM category_patterns
		WHERE org_id = $1 AND direction = $2 AND active
	`, orgID, string(direction))
	if err != nil {
		return nil, &DataAccessError{Op: "query patterns", Err: err}
	}
	defer rows.Close()

	var matches []PatternMatch
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		if !strings.Contains(normalized, Normalize(p.Pattern)) {
			continue
		}
		matches = append(matches, PatternMatch{
			Pattern:    p,
			MatchScore: Similarity(ExtractKeywords(p.Pattern), keywords),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate patterns", Err: err}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].MatchScore != matches[j].MatchScore {
			return matches[i].MatchScore > matches[j].MatchScore
		}
		return matches[i].Pattern.UsageCount > matches[j].Pattern.UsageCount
	})
	return matches, nil
}

func (s *patternService) ConfirmPattern(ctx context.Context, orgID, patternID uuid.UUID) (int, error) {
	usage, err := s.incrementUsage(ctx, orgID, patternID)
	if err == nil || !errors.Is(err, ErrConflict) {
		return usage, err
	}
	// one automatic retry on a concurrency conflict, then surface
	return s.incrementUsage(ctx, orgID, patternID)
}

func (s *patternService) incrementUsage(ctx context.Context, orgID, patternID uuid.UUID) (int, error) {
	var usage int
	err := s.pool.QueryRow(ctx, `
		UPDATE category_patterns
		SET usage_count = usage_count + 1
		WHERE id = $1 AND org_id = $2 AND active
		RETURNING usage_count
	`, patternID, orgID).Scan(&usage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("pattern %s: %w", patternID, ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
			return 0, fmt.Errorf("increment usage for pattern %s: %w", patternID, ErrConflict)
		}
		return 0, &DataAccessError{Op: "increment pattern usage", Err: err}
	}
	return usage, nil
}

func (s *patternService) RecordConfirmation(ctx context.Context, orgID uuid.UUID, pattern string, direction LedgerDirection, categoryID uuid.UUID) (*CategoryPattern, error) {
	normalized := Normalize(pattern)
	if normalized == "" {
		return nil, &ValidationError{Field: "pattern", Reason: "required"}
	}
	p := CategoryPattern{
		Pattern:    normalized,
		Direction:  direction,
		CategoryID: categoryID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// the conflict update only fires when the category matches; a same-text
	// confirmation under a different category returns no row and is rejected
	// rather than silently feeding the old binding
	row := s.pool.QueryRow(ctx, `
		INSERT INTO category_patterns (id, org_id, pattern, direction, category_id, usage_count, active, created_at)
		VALUES ($1, $2, $3, $4, $5, 1, TRUE, NOW())
		ON CONFLICT (org_id, direction, pattern)
		DO UPDATE SET usage_count = category_patterns.usage_count + 1
		WHERE category_patterns.category_id = EXCLUDED.category_id
		RETURNING id, org_id, pattern, direction, category_id, usage_count, active, created_at
	`, uuid.New(), orgID, normalized, string(direction), categoryID)

	stored, err := scanPattern(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Field: "pattern", Reason: "pattern is already bound to a different category; deactivate it first"}
		}
		return nil, err
	}
	return &stored, nil
}

func (s *patternService) DeactivatePattern(ctx context.Context, orgID, patternID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE category_patterns SET active = FALSE
		WHERE id = $1 AND org_id = $2
	`, patternID, orgID)
	if err != nil {
		return &DataAccessError{Op: "deactivate pattern", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pattern %s: %w", patternID, ErrNotFound)
	}
	return nil
}

func (s *patternService) ListPatterns(ctx context.Context, orgID uuid.UUID) ([]CategoryPattern, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, pattern, direction, category_id, usage_count, active, created_at
		FROM category_patterns
		WHERE org_id = $1
		ORDER BY active DESC, usage_count DESC, created_at DESC
	`, orgID)
	if err != nil {
		return nil, &DataAccessError{Op: "list patterns", Err: err}
	}
	defer rows.Close()

	var patterns []CategoryPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate patterns", Err: err}
	}
	return patterns, nil
}

func scanPattern(row pgx.Row) (CategoryPattern, error) {
	var p CategoryPattern
	var direction string
	err := row.Scan(&p.ID, &p.OrgID, &p.Pattern, &direction, &p.CategoryID, &p.UsageCount, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, &DataAccessError{Op: "scan pattern", Err: err}
	}
	p.Direction = LedgerDirection(direction)
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
