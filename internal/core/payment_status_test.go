package core_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

func TestFunnelRank(t *testing.T) {
	tests := []struct {
		status core.QuotationStatus
		want   int
	}{
		{core.StatusDraft, 1},
		{core.StatusFinalized, 2},
		{core.StatusSent, 3},
		{core.StatusNoResponse, 4},
		{core.StatusApproved, 5},
		{core.StatusPaid40, 6},
		{core.StatusPaidPartial, 7},
		{core.StatusPaid60, 8},
		{core.StatusPaid, 9},
		{core.StatusRefused, 10},
		{core.StatusCancelled, 11},
		{"unknown_status", 99},
		{"", 99},
	}
	for _, tt := range tests {
		if got := core.FunnelRank(tt.status); got != tt.want {
			t.Errorf("FunnelRank(%q) = %d, want %d", tt.status, got, tt.want)
		}
	}

	// funnel ordering properties
	if !(core.FunnelRank(core.StatusPaid) > core.FunnelRank(core.StatusApproved)) {
		t.Error("pago must rank after aprovado")
	}
	if !(core.FunnelRank(core.StatusApproved) > core.FunnelRank(core.StatusDraft)) {
		t.Error("aprovado must rank after rascunho")
	}
}

func TestPaymentBreakdown(t *testing.T) {
	value := decimal.NewFromInt(1000)
	tests := []struct {
		status          core.QuotationStatus
		wantReceived    string
		wantOutstanding string
	}{
		{core.StatusPaid, "1000", "0"},
		{core.StatusPaid40, "400", "600"},
		{core.StatusPaidPartial, "500", "500"},
		{core.StatusPaid60, "600", "400"},
		{core.StatusDraft, "0", "0"},
		{core.StatusSent, "0", "0"},
		{core.StatusApproved, "0", "0"},
		{core.StatusRefused, "0", "0"},
		{"unknown_status", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := core.PaymentBreakdown(tt.status, value)
			if got.Received.String() != tt.wantReceived {
				t.Errorf("received = %s, want %s", got.Received, tt.wantReceived)
			}
			if got.Outstanding.String() != tt.wantOutstanding {
				t.Errorf("outstanding = %s, want %s", got.Outstanding, tt.wantOutstanding)
			}
		})
	}
}

func TestPaymentBreakdown_ZeroValue(t *testing.T) {
	got := core.PaymentBreakdown(core.StatusPaid, decimal.Zero)
	if !got.Received.IsZero() || !got.Outstanding.IsZero() {
		t.Errorf("breakdown of zero value = %+v, want zeros", got)
	}
}

func TestStatusClassifiers(t *testing.T) {
	inProgress := []core.QuotationStatus{core.StatusPaid40, core.StatusPaidPartial, core.StatusPaid60, core.StatusPaid}
	for _, s := range inProgress {
		if !core.IsPaymentInProgress(s) {
			t.Errorf("IsPaymentInProgress(%q) = false, want true", s)
		}
	}
	for _, s := range []core.QuotationStatus{core.StatusDraft, core.StatusApproved, core.StatusRefused} {
		if core.IsPaymentInProgress(s) {
			t.Errorf("IsPaymentInProgress(%q) = true, want false", s)
		}
	}

	pending := []core.QuotationStatus{core.StatusDraft, core.StatusFinalized, core.StatusSent}
	for _, s := range pending {
		if !core.IsPending(s) {
			t.Errorf("IsPending(%q) = false, want true", s)
		}
	}
	if core.IsPending(core.StatusNoResponse) {
		t.Error("sem_resposta already has an outcome; not pending")
	}

	for _, s := range []core.QuotationStatus{core.StatusPaid, core.StatusRefused, core.StatusCancelled} {
		if !core.IsTerminal(s) {
			t.Errorf("IsTerminal(%q) = false, want true", s)
		}
	}
	if core.IsTerminal(core.StatusApproved) {
		t.Error("aprovado is not terminal")
	}
}

func TestQuotationEffectiveValue(t *testing.T) {
	discount := decimal.NewFromInt(900)
	zero := decimal.Zero
	tests := []struct {
		name string
		q    core.Quotation
		want string
	}{
		{"no discount", core.Quotation{Total: decimal.NewFromInt(1000)}, "1000"},
		{"with discount", core.Quotation{Total: decimal.NewFromInt(1000), TotalWithDiscount: &discount}, "900"},
		{"zero discount falls back", core.Quotation{Total: decimal.NewFromInt(1000), TotalWithDiscount: &zero}, "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.EffectiveValue(); got.String() != tt.want {
				t.Errorf("EffectiveValue() = %s, want %s", got, tt.want)
			}
		})
	}
}
