package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

func TestListQuotations_FunnelOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	seedQuotation(t, pool, orgID, "Cliente C", decimal.NewFromInt(3000), nil, core.StatusPaid)
	seedQuotation(t, pool, orgID, "Cliente A", decimal.NewFromInt(1000), nil, core.StatusDraft)
	seedQuotation(t, pool, orgID, "Cliente B", decimal.NewFromInt(2000), nil, core.StatusSent)

	quotations := core.NewQuotationService(pool)
	listed, err := quotations.ListQuotations(ctx, orgID)
	if err != nil {
		t.Fatalf("ListQuotations: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("got %d quotations, want 3", len(listed))
	}
	want := []core.QuotationStatus{core.StatusDraft, core.StatusSent, core.StatusPaid}
	for i, q := range listed {
		if q.Status != want[i] {
			t.Errorf("listed[%d].Status = %q, want %q", i, q.Status, want[i])
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	quotations := core.NewQuotationService(pool)
	id := seedQuotation(t, pool, orgID, "Cliente A", decimal.NewFromInt(1000), nil, core.StatusSent)

	if err := quotations.UpdateStatus(ctx, orgID, id, core.StatusApproved); err != nil {
		t.Fatalf("UpdateStatus enviado->aprovado: %v", err)
	}
	if err := quotations.UpdateStatus(ctx, orgID, id, core.StatusPaid); err != nil {
		t.Fatalf("UpdateStatus aprovado->pago: %v", err)
	}

	// pago is terminal
	err := quotations.UpdateStatus(ctx, orgID, id, core.StatusDraft)
	if !core.IsValidation(err) {
		t.Errorf("leaving terminal status: err = %v, want validation error", err)
	}
	got, _ := quotations.GetQuotation(ctx, orgID, id)
	if got.Status != core.StatusPaid {
		t.Errorf("status = %q, want pago unchanged", got.Status)
	}

	other := seedQuotation(t, pool, orgID, "Cliente B", decimal.NewFromInt(500), nil, core.StatusDraft)
	if err := quotations.UpdateStatus(ctx, orgID, other, "em_analise"); !core.IsValidation(err) {
		t.Errorf("unknown target status: err = %v, want validation error", err)
	}
	// atrasado is a read-time projection, never a stored status
	if err := quotations.UpdateStatus(ctx, orgID, other, core.StatusOverdue); !core.IsValidation(err) {
		t.Errorf("atrasado as target: err = %v, want validation error", err)
	}

	if err := quotations.UpdateStatus(ctx, orgID, uuid.New(), core.StatusSent); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown quotation: err = %v, want ErrNotFound", err)
	}
}

func TestFunnelReport(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	discounted := decimal.NewFromInt(900)
	seedQuotation(t, pool, orgID, "Cliente A", decimal.NewFromInt(1000), &discounted, core.StatusPaid)
	seedQuotation(t, pool, orgID, "Cliente B", decimal.NewFromInt(2000), nil, core.StatusPaid40)
	seedQuotation(t, pool, orgID, "Cliente C", decimal.NewFromInt(500), nil, core.StatusDraft)
	// other orgs never contribute
	seedQuotation(t, pool, uuid.New(), "Outra Org", decimal.NewFromInt(9999), nil, core.StatusPaid)

	quotations := core.NewQuotationService(pool)
	report, err := quotations.GetFunnelReport(ctx, orgID)
	if err != nil {
		t.Fatalf("GetFunnelReport: %v", err)
	}

	if len(report.Stages) != 3 {
		t.Fatalf("got %d stages, want 3", len(report.Stages))
	}
	// funnel order: rascunho, pago_40, pago
	if report.Stages[0].Status != core.StatusDraft || report.Stages[2].Status != core.StatusPaid {
		t.Errorf("stage order = %+v", report.Stages)
	}

	var paid40 core.FunnelStage
	for _, s := range report.Stages {
		if s.Status == core.StatusPaid40 {
			paid40 = s
		}
	}
	if !paid40.Received.Equal(decimal.NewFromInt(800)) {
		t.Errorf("pago_40 received = %s, want 800", paid40.Received)
	}
	if !paid40.Outstanding.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("pago_40 outstanding = %s, want 1200", paid40.Outstanding)
	}

	// discounted total drives the pago stage
	if !report.TotalReceived.Equal(decimal.NewFromInt(1700)) {
		t.Errorf("TotalReceived = %s, want 1700 (900 + 800)", report.TotalReceived)
	}
	if !report.TotalOutstanding.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("TotalOutstanding = %s, want 1200", report.TotalOutstanding)
	}
}
