package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MovementLine is one statement line handed over by the import source. The
// engine never parses the original file format; it receives decoded lines.
type MovementLine struct {
	Amount      decimal.Decimal   `json:"amount"`
	Direction   MovementDirection `json:"direction"`
	Description string            `json:"description"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// MovementService owns imported statement movements and their
// reconciliation state. All calls are organization-scoped.
type MovementService interface {
	// ImportStatement stores the statement metadata and its movements in
	// one transaction. Movements start unreconciled and unignored.
	ImportStatement(ctx context.Context, orgID uuid.UUID, source string, lines []MovementLine) (*StatementImport, error)

	// ListMovements returns every movement in scope, newest first.
	ListMovements(ctx context.Context, orgID uuid.UUID) ([]Movement, error)

	// GetMovement returns a single movement in scope.
	GetMovement(ctx context.Context, orgID, movementID uuid.UUID) (*Movement, error)

	// Reconcile links a movement to a ledger entry. Ignored movements must
	// be un-ignored first, already reconciled movements must be
	// un-reconciled first; a movement is never both reconciled and ignored.
	Reconcile(ctx context.Context, orgID, movementID, ledgerID uuid.UUID) error

	// Unreconcile reverts a reconciliation, the only mutation allowed on a
	// reconciled movement.
	Unreconcile(ctx context.Context, orgID, movementID uuid.UUID) error

	// Ignore excludes a movement from the pending queue. Rejected for
	// reconciled movements.
	Ignore(ctx context.Context, orgID, movementID uuid.UUID) error

	// Unignore returns an ignored movement to the pending queue.
	Unignore(ctx context.Context, orgID, movementID uuid.UUID) error

	// LatestImport returns the creation time of the most recent statement
	// import, or nil when nothing was ever imported.
	LatestImport(ctx context.Context, orgID uuid.UUID) (*time.Time, error)
}

type movementService struct {
	pool *pgxpool.Pool
}

// NewMovementService constructs a MovementService backed by the
// statement_imports and statement_movements tables.
func NewMovementService(pool *pgxpool.Pool) MovementService {
	return &movementService{pool: pool}
}

func (s *movementService) ImportStatement(ctx context.Context, orgID uuid.UUID, source string, lines []MovementLine) (*StatementImport, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "lines", Reason: "statement has no movements"}
	}
	for i, line := range lines {
		if line.Amount.IsNegative() {
			return nil, &ValidationError{Field: fmt.Sprintf("lines[%d].amount", i), Reason: "must not be negative"}
		}
		if line.Direction != MovementCredit && line.Direction != MovementDebit {
			return nil, &ValidationError{Field: fmt.Sprintf("lines[%d].direction", i), Reason: fmt.Sprintf("unknown direction %q", line.Direction)}
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, &DataAccessError{Op: "begin import", Err: err}
	}
	defer tx.Rollback(ctx)

	imp := StatementImport{ID: uuid.New(), OrgID: orgID, Source: source}
	err = tx.QueryRow(ctx, `
		INSERT INTO statement_imports (id, org_id, source, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, imp.ID, imp.OrgID, imp.Source).Scan(&imp.CreatedAt)
	if err != nil {
		return nil, &DataAccessError{Op: "insert statement import", Err: err}
	}

	for _, line := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO statement_movements (id, org_id, statement_id, amount, direction, description, occurred_at, reconciled, ignored, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, FALSE, NOW())
		`, uuid.New(), orgID, imp.ID, line.Amount, string(line.Direction), line.Description, line.OccurredAt)
		if err != nil {
			return nil, &DataAccessError{Op: "insert movement", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &DataAccessError{Op: "commit import", Err: err}
	}
	return &imp, nil
}

func (s *movementService) ListMovements(ctx context.Context, orgID uuid.UUID) ([]Movement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, statement_id, amount, direction, description, occurred_at, reconciled, ignored, ledger_id, created_at
		FROM statement_movements
		WHERE org_id = $1
		ORDER BY occurred_at DESC, created_at DESC
	`, orgID)
	if err != nil {
		return nil, &DataAccessError{Op: "list movements", Err: err}
	}
	defer rows.Close()

	var movements []Movement
	for rows.Next() {
		var m Movement
		var direction string
		err := rows.Scan(&m.ID, &m.OrgID, &m.StatementID, &m.Amount, &direction, &m.Description,
			&m.OccurredAt, &m.Reconciled, &m.Ignored, &m.LedgerID, &m.CreatedAt)
		if err != nil {
			return nil, &DataAccessError{Op: "scan movement", Err: err}
		}
		m.Direction = MovementDirection(direction)
		if err := m.Validate(); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate movements", Err: err}
	}
	return movements, nil
}

func (s *movementService) GetMovement(ctx context.Context, orgID, movementID uuid.UUID) (*Movement, error) {
	var m Movement
	var direction string
	err := s.pool.QueryRow(ctx, `
		SELECT id, org_id, statement_id, amount, direction, description, occurred_at, reconciled, ignored, ledger_id, created_at
		FROM statement_movements
		WHERE id = $1 AND org_id = $2
	`, movementID, orgID).Scan(&m.ID, &m.OrgID, &m.StatementID, &m.Amount, &direction, &m.Description,
		&m.OccurredAt, &m.Reconciled, &m.Ignored, &m.LedgerID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
		}
		return nil, &DataAccessError{Op: "get movement", Err: err}
	}
	m.Direction = MovementDirection(direction)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *movementService) Reconcile(ctx context.Context, orgID, movementID, ledgerID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE statement_movements
		SET reconciled = TRUE, ledger_id = $1
		WHERE id = $2 AND org_id = $3 AND NOT ignored AND NOT reconciled
	`, ledgerID, movementID, orgID)
	if err != nil {
		return &DataAccessError{Op: "reconcile movement", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return s.explainRejected(ctx, orgID, movementID, "reconcile")
	}
	return nil
}

func (s *movementService) Unreconcile(ctx context.Context, orgID, movementID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE statement_movements
		SET reconciled = FALSE, ledger_id = NULL
		WHERE id = $1 AND org_id = $2
	`, movementID, orgID)
	if err != nil {
		return &DataAccessError{Op: "unreconcile movement", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
	}
	return nil
}

func (s *movementService) Ignore(ctx context.Context, orgID, movementID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE statement_movements
		SET ignored = TRUE
		WHERE id = $1 AND org_id = $2 AND NOT reconciled
	`, movementID, orgID)
	if err != nil {
		return &DataAccessError{Op: "ignore movement", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return s.explainRejected(ctx, orgID, movementID, "ignore")
	}
	return nil
}

func (s *movementService) Unignore(ctx context.Context, orgID, movementID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE statement_movements
		SET ignored = FALSE
		WHERE id = $1 AND org_id = $2
	`, movementID, orgID)
	if err != nil {
		return &DataAccessError{Op: "unignore movement", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
	}
	return nil
}

func (s *movementService) LatestImport(ctx context.Context, orgID uuid.UUID) (*time.Time, error) {
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT created_at FROM statement_imports
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, orgID).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, &DataAccessError{Op: "latest import", Err: err}
	}
	return &createdAt, nil
}

// explainRejected distinguishes a guarded update that matched no row because
// the movement does not exist from one rejected by its state guard, and
// names the state that blocked it.
func (s *movementService) explainRejected(ctx context.Context, orgID, movementID uuid.UUID, op string) error {
	var reconciled, ignored bool
	err := s.pool.QueryRow(ctx,
		"SELECT reconciled, ignored FROM statement_movements WHERE id = $1 AND org_id = $2",
		movementID, orgID).Scan(&reconciled, &ignored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
		}
		return &DataAccessError{Op: op + " movement", Err: err}
	}
	if reconciled {
		return &ValidationError{Field: "movement", Reason: "movement is already reconciled; un-reconcile it first"}
	}
	if ignored {
		return &ValidationError{Field: "movement", Reason: "movement is ignored; un-ignore it first"}
	}
	return &ValidationError{Field: "movement", Reason: "movement state rejected the " + op}
}
