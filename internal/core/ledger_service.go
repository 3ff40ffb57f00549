package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService is the engine's access to the system of record: confirmed
// financial transactions and their categories. Every call is scoped to one
// organization and never reads across scopes.
type LedgerService interface {
	LedgerHistory

	// Create persists a confirmed ledger entry, generating its id.
	Create(ctx context.Context, entry LedgerEntry) (*LedgerEntry, error)

	// CorrectCategory re-points an entry at a different category. This is
	// the only mutation allowed once an entry is linked to settlement
	// records.
	CorrectCategory(ctx context.Context, orgID, entryID, categoryID uuid.UUID) error

	// ListCategories returns the reference categories for a direction.
	ListCategories(ctx context.Context, orgID uuid.UUID, direction LedgerDirection) ([]Category, error)
}

type ledgerService struct {
	pool         *pgxpool.Pool
	historyDays  int
	historyLimit int
}

// NewLedgerService constructs a LedgerService. historyDays and historyLimit
// bound the suggestion window (see SuggestionConfig).
func NewLedgerService(pool *pgxpool.Pool, cfg SuggestionConfig) LedgerService {
	return &ledgerService{pool: pool, historyDays: cfg.HistoryDays, historyLimit: cfg.HistoryLimit}
}

// RecentCategorized feeds the suggestion engine: confirmed entries of the
// given direction from the lookback window, newest first, capped, and only
// those already carrying a category.
func (s *ledgerService) RecentCategorized(ctx context.Context, orgID uuid.UUID, direction LedgerDirection) ([]CategorizedEntry, error) {
	since := time.Now().AddDate(0, 0, -s.historyDays)
	rows, err := s.pool.Query(ctx, `
		SELECT le.description, c.id, c.name, c.direction
		FROM ledger_entries le
		JOIN categories c ON c.id = le.category_id
		WHERE le.org_id = $1
		  AND le.direction = $2
		  AND le.occurred_at >= $3
		ORDER BY le.occurred_at DESC
		LIMIT $4
	`, orgID, string(direction), since, s.historyLimit)
	if err != nil {
		return nil, &DataAccessError{Op: "query ledger history", Err: err}
	}
	defer rows.Close()

	var entries []CategorizedEntry
	for rows.Next() {
		var e CategorizedEntry
		var catDirection string
		if err := rows.Scan(&e.Description, &e.Category.ID, &e.Category.Name, &catDirection); err != nil {
			return nil, &DataAccessError{Op: "scan ledger history", Err: err}
		}
		e.Category.Direction = LedgerDirection(catDirection)
		if err := e.Category.Validate(); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate ledger history", Err: err}
	}
	return entries, nil
}

func (s *ledgerService) Create(ctx context.Context, entry LedgerEntry) (*LedgerEntry, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO ledger_entries (id, org_id, direction, description, amount, category_id, installment_id, payable_id, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`, entry.ID, entry.OrgID, string(entry.Direction), entry.Description, entry.Amount,
		entry.CategoryID, entry.InstallmentID, entry.PayableID, entry.OccurredAt,
	).Scan(&entry.CreatedAt)
	if err != nil {
		return nil, &DataAccessError{Op: "insert ledger entry", Err: err}
	}
	return &entry, nil
}

func (s *ledgerService) CorrectCategory(ctx context.Context, orgID, entryID, categoryID uuid.UUID) error {
	// the category must exist in scope and match the entry's direction
	var catDirection, entryDirection string
	err := s.pool.QueryRow(ctx, `
		SELECT c.direction, le.direction
		FROM categories c, ledger_entries le
		WHERE c.id = $1 AND c.org_id = $2 AND le.id = $3 AND le.org_id = $2
	`, categoryID, orgID, entryID).Scan(&catDirection, &entryDirection)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("entry %s or category %s: %w", entryID, categoryID, ErrNotFound)
		}
		return &DataAccessError{Op: "resolve category correction", Err: err}
	}
	if catDirection != entryDirection {
		return &ValidationError{Field: "category_id", Reason: "category direction does not match entry direction"}
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE ledger_entries SET category_id = $1
		WHERE id = $2 AND org_id = $3
	`, categoryID, entryID, orgID)
	if err != nil {
		return &DataAccessError{Op: "correct category", Err: err}
	}
	return nil
}

func (s *ledgerService) ListCategories(ctx context.Context, orgID uuid.UUID, direction LedgerDirection) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, direction
		FROM categories
		WHERE org_id = $1 AND direction = $2
		ORDER BY name
	`, orgID, string(direction))
	if err != nil {
		return nil, &DataAccessError{Op: "list categories", Err: err}
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		var d string
		if err := rows.Scan(&c.ID, &c.Name, &d); err != nil {
			return nil, &DataAccessError{Op: "scan category", Err: err}
		}
		c.Direction = LedgerDirection(d)
		if err := c.Validate(); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate categories", Err: err}
	}
	return categories, nil
}
