package core

import "github.com/shopspring/decimal"

// QuotationStatus is the sales/payment funnel stage of a quotation.
type QuotationStatus string

const (
	StatusDraft       QuotationStatus = "rascunho"
	StatusFinalized   QuotationStatus = "finalizado"
	StatusSent        QuotationStatus = "enviado"
	StatusNoResponse  QuotationStatus = "sem_resposta"
	StatusApproved    QuotationStatus = "aprovado"
	StatusPaid40      QuotationStatus = "pago_40"
	StatusPaidPartial QuotationStatus = "pago_parcial"
	StatusPaid60      QuotationStatus = "pago_60"
	StatusPaid        QuotationStatus = "pago"
	StatusRefused     QuotationStatus = "recusado"
	StatusCancelled   QuotationStatus = "cancelado"

	// StatusOverdue is a read-time projection only (see DeriveOverdueStatus);
	// it is never persisted as a quotation status.
	StatusOverdue QuotationStatus = "atrasado"
)

// unknownFunnelRank sorts statuses the funnel does not know about after every
// real stage instead of erroring on them.
const unknownFunnelRank = 99

var funnelRanks = map[QuotationStatus]int{
	StatusDraft:       1,
	StatusFinalized:   2,
	StatusSent:        3,
	StatusNoResponse:  4,
	StatusApproved:    5,
	StatusPaid40:      6,
	StatusPaidPartial: 7,
	StatusPaid60:      8,
	StatusPaid:        9,
	StatusRefused:     10,
	StatusCancelled:   11,
}

// paidFractions maps each payment-stage status to the fraction of the
// effective value already received. Absent statuses have received nothing.
var paidFractions = map[QuotationStatus]decimal.Decimal{
	StatusPaid40:      decimal.NewFromFloat(0.40),
	StatusPaidPartial: decimal.NewFromFloat(0.50),
	StatusPaid60:      decimal.NewFromFloat(0.60),
	StatusPaid:        decimal.NewFromInt(1),
}

// FunnelRank returns the ordinal position of a status in the pipeline.
// recusado and cancelado are side terminals ranked after pago; unknown
// statuses rank 99 so they sort last.
func FunnelRank(status QuotationStatus) int {
	if rank, ok := funnelRanks[status]; ok {
		return rank
	}
	return unknownFunnelRank
}

// IsTerminal reports whether a quotation can never leave the given status.
func IsTerminal(status QuotationStatus) bool {
	return status == StatusPaid || status == StatusRefused || status == StatusCancelled
}

// PercentagePaid returns the received fraction for a status: 0.40, 0.50,
// 0.60 or 1.00 for the payment stages, zero for everything else.
func PercentagePaid(status QuotationStatus) decimal.Decimal {
	if f, ok := paidFractions[status]; ok {
		return f
	}
	return decimal.Zero
}

// IsPaymentInProgress reports whether any payment has landed: the three
// partial stages plus pago.
func IsPaymentInProgress(status QuotationStatus) bool {
	_, ok := paidFractions[status]
	return ok
}

// IsPending reports whether the quotation is still waiting on the client:
// drafted, finalized or sent, with no response recorded yet.
func IsPending(status QuotationStatus) bool {
	return status == StatusDraft || status == StatusFinalized || status == StatusSent
}

// PaymentAmounts is the received/outstanding split of a quotation's
// effective value for its current status.
type PaymentAmounts struct {
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// PaymentBreakdown derives the received and outstanding amounts from a
// status and an effective value. Outstanding is only reported for the three
// partial-payment stages: pago has nothing pending by construction and the
// earlier pipeline stages have invoiced nothing yet.
func PaymentBreakdown(status QuotationStatus, effectiveValue decimal.Decimal) PaymentAmounts {
	fraction := PercentagePaid(status)
	received := effectiveValue.Mul(fraction)
	amounts := PaymentAmounts{Received: received, Outstanding: decimal.Zero}
	if IsPaymentInProgress(status) && status != StatusPaid {
		amounts.Outstanding = effectiveValue.Sub(received)
	}
	return amounts
}
