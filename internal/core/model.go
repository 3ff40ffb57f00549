package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection is the direction of an imported bank-statement movement.
type MovementDirection string

const (
	MovementCredit MovementDirection = "credit"
	MovementDebit  MovementDirection = "debit"
)

// LedgerDirection is the direction of a confirmed ledger entry.
type LedgerDirection string

const (
	LedgerIn  LedgerDirection = "entrada"
	LedgerOut LedgerDirection = "saida"
)

// MovementDirectionFor maps a ledger direction onto the statement-side vocabulary.
func MovementDirectionFor(d LedgerDirection) MovementDirection {
	if d == LedgerIn {
		return MovementCredit
	}
	return MovementDebit
}

// LedgerDirectionFor maps a statement movement direction onto the ledger vocabulary.
func LedgerDirectionFor(d MovementDirection) LedgerDirection {
	if d == MovementCredit {
		return LedgerIn
	}
	return LedgerOut
}

// Movement is one imported bank-statement line. Amount is always a positive
// magnitude; Direction carries the sign.
type Movement struct {
	ID          uuid.UUID         `json:"id"`
	OrgID       uuid.UUID         `json:"org_id"`
	StatementID uuid.UUID         `json:"statement_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Direction   MovementDirection `json:"direction"`
	Description string            `json:"description"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Reconciled  bool              `json:"reconciled"`
	Ignored     bool              `json:"ignored"`
	LedgerID    *uuid.UUID        `json:"ledger_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// SignedAmount returns the amount with the direction applied: positive for
// credits, negative for debits.
func (m Movement) SignedAmount() decimal.Decimal {
	if m.Direction == MovementDebit {
		return m.Amount.Neg()
	}
	return m.Amount
}

// Validate enforces the movement invariants at the store boundary.
func (m Movement) Validate() error {
	if m.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if m.Direction != MovementCredit && m.Direction != MovementDebit {
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", m.Direction)}
	}
	if m.Reconciled && m.Ignored {
		return &ValidationError{Field: "reconciled", Reason: "movement cannot be both reconciled and ignored"}
	}
	return nil
}

// StatementImport is the metadata of one imported bank statement.
type StatementImport struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerEntry is a confirmed financial transaction. CategoryID is nil until
// an operator (or a confirmed suggestion) categorizes the entry.
type LedgerEntry struct {
	ID            uuid.UUID       `json:"id"`
	OrgID         uuid.UUID       `json:"org_id"`
	Direction     LedgerDirection `json:"direction"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	InstallmentID *uuid.UUID      `json:"installment_id,omitempty"`
	PayableID     *uuid.UUID      `json:"payable_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (e LedgerEntry) Validate() error {
	if e.Direction != LedgerIn && e.Direction != LedgerOut {
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", e.Direction)}
	}
	if e.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}

// Category is read-mostly reference data. All three fields are required;
// store adapters reject rows that would otherwise surface as blanks.
type Category struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Direction LedgerDirection `json:"direction"`
}

func (c Category) Validate() error {
	if c.ID == uuid.Nil {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if c.Direction != LedgerIn && c.Direction != LedgerOut {
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", c.Direction)}
	}
	return nil
}

// CategoryPattern is an operator-curated substring rule binding a fragment of
// a transaction description to a category. UsageCount only ever grows while
// the pattern is active; patterns are deactivated, never deleted.
type CategoryPattern struct {
	ID         uuid.UUID       `json:"id"`
	OrgID      uuid.UUID       `json:"org_id"`
	Pattern    string          `json:"pattern"`
	Direction  LedgerDirection `json:"direction"`
	CategoryID uuid.UUID       `json:"category_id"`
	UsageCount int             `json:"usage_count"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (p CategoryPattern) Validate() error {
	if p.Pattern == "" {
		return &ValidationError{Field: "pattern", Reason: "required"}
	}
	if p.CategoryID == uuid.Nil {
		return &ValidationError{Field: "category_id", Reason: "required"}
	}
	if p.Direction != LedgerIn && p.Direction != LedgerOut {
		return &ValidationError{Field: "direction", Reason: fmt.Sprintf("unknown direction %q", p.Direction)}
	}
	return nil
}

// Quotation carries the two totals every payment computation derives from.
// TotalWithDiscount is nil when no discount was negotiated.
type Quotation struct {
	ID                uuid.UUID        `json:"id"`
	OrgID             uuid.UUID        `json:"org_id"`
	ClientName        string           `json:"client_name"`
	Total             decimal.Decimal  `json:"total"`
	TotalWithDiscount *decimal.Decimal `json:"total_with_discount,omitempty"`
	Status            QuotationStatus  `json:"status"`
	DueDate           *time.Time       `json:"due_date,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
}

// EffectiveValue is the amount used by all payment math: the discounted
// total when present and positive, otherwise the base total.
func (q Quotation) EffectiveValue() decimal.Decimal {
	if q.TotalWithDiscount != nil && q.TotalWithDiscount.IsPositive() {
		return *q.TotalWithDiscount
	}
	return q.Total
}
