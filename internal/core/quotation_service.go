package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// FunnelStage aggregates the quotations sitting in one status.
type FunnelStage struct {
	Status      QuotationStatus `json:"status"`
	Rank        int             `json:"rank"`
	Count       int             `json:"count"`
	TotalValue  decimal.Decimal `json:"total_value"` // sum of effective values
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// FunnelReport is the sales/payment pipeline snapshot for one organization,
// stages in funnel order.
type FunnelReport struct {
	Stages           []FunnelStage   `json:"stages"`
	TotalReceived    decimal.Decimal `json:"total_received"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// QuotationService exposes the quotation store and the funnel report built
// on top of the payment status state machine.
type QuotationService interface {
	// GetQuotation returns a single quotation in scope.
	GetQuotation(ctx context.Context, orgID, quotationID uuid.UUID) (*Quotation, error)

	// ListQuotations returns all quotations in scope, funnel order first,
	// newest first within a stage.
	ListQuotations(ctx context.Context, orgID uuid.UUID) ([]Quotation, error)

	// UpdateStatus moves a quotation along the funnel. Terminal statuses
	// (pago, recusado, cancelado) are never transitioned out of; unknown
	// target statuses are rejected.
	UpdateStatus(ctx context.Context, orgID, quotationID uuid.UUID, target QuotationStatus) error

	// GetFunnelReport aggregates quotations per status with received and
	// outstanding amounts derived from each stage's paid percentage.
	GetFunnelReport(ctx context.Context, orgID uuid.UUID) (*FunnelReport, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type quotationService struct {
	pool *pgxpool.Pool
}

// NewQuotationService constructs a QuotationService backed by the quotations table.
func NewQuotationService(pool *pgxpool.Pool) QuotationService {
	return &quotationService{pool: pool}
}

func (s *quotationService) GetQuotation(ctx context.Context, orgID, quotationID uuid.UUID) (*Quotation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, org_id, client_name, total, total_with_discount, status, due_date, created_at
		FROM quotations
		WHERE id = $1 AND org_id = $2
	`, quotationID, orgID)
	q, err := scanQuotation(row)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *quotationService) ListQuotations(ctx context.Context, orgID uuid.UUID) ([]Quotation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, client_name, total, total_with_discount, status, due_date, created_at
		FROM quotations
		WHERE org_id = $1
		ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, &DataAccessError{Op: "list quotations", Err: err}
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, q)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataAccessError{Op: "iterate quotations", Err: err}
	}

	sort.SliceStable(quotations, func(i, j int) bool {
		return FunnelRank(quotations[i].Status) < FunnelRank(quotations[j].Status)
	})
	return quotations, nil
}

func (s *quotationService) UpdateStatus(ctx context.Context, orgID, quotationID uuid.UUID, target QuotationStatus) error {
	if FunnelRank(target) == unknownFunnelRank {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", target)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &DataAccessError{Op: "begin status update", Err: err}
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `
		SELECT status FROM quotations
		WHERE id = $1 AND org_id = $2
		FOR UPDATE
	`, quotationID, orgID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("quotation %s: %w", quotationID, ErrNotFound)
		}
		return &DataAccessError{Op: "load quotation status", Err: err}
	}

	if IsTerminal(QuotationStatus(current)) {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("quotation is %s and cannot change status", current)}
	}

	_, err = tx.Exec(ctx, `
		UPDATE quotations SET status = $1
		WHERE id = $2 AND org_id = $3
	`, string(target), quotationID, orgID)
	if err != nil {
		return &DataAccessError{Op: "update quotation status", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &DataAccessError{Op: "commit status update", Err: err}
	}
	return nil
}

func (s *quotationService) GetFunnelReport(ctx context.Context, orgID uuid.UUID) (*FunnelReport, error) {
	quotations, err := s.ListQuotations(ctx, orgID)
	if err != nil {
		return nil, err
	}

	stages := make(map[QuotationStatus]*FunnelStage)
	for _, q := range quotations {
		stage, ok := stages[q.Status]
		if !ok {
			stage = &FunnelStage{
				Status:      q.Status,
				Rank:        FunnelRank(q.Status),
				TotalValue:  decimal.Zero,
				Received:    decimal.Zero,
				Outstanding: decimal.Zero,
			}
			stages[q.Status] = stage
		}
		value := q.EffectiveValue()
		amounts := PaymentBreakdown(q.Status, value)
		stage.Count++
		stage.TotalValue = stage.TotalValue.Add(value)
		stage.Received = stage.Received.Add(amounts.Received)
		stage.Outstanding = stage.Outstanding.Add(amounts.Outstanding)
	}

	report := &FunnelReport{
		TotalReceived:    decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for _, stage := range stages {
		report.Stages = append(report.Stages, *stage)
		report.TotalReceived = report.TotalReceived.Add(stage.Received)
		report.TotalOutstanding = report.TotalOutstanding.Add(stage.Outstanding)
	}
	sort.Slice(report.Stages, func(i, j int) bool {
		return report.Stages[i].Rank < report.Stages[j].Rank
	})
	return report, nil
}

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	var status string
	var discounted *decimal.Decimal
	var due *time.Time
	err := row.Scan(&q.ID, &q.OrgID, &q.ClientName, &q.Total, &discounted, &status, &due, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return q, ErrNotFound
		}
		return q, &DataAccessError{Op: "scan quotation", Err: err}
	}
	q.Status = QuotationStatus(status)
	q.TotalWithDiscount = discounted
	q.DueDate = due
	return q, nil
}
