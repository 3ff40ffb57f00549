package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

func TestLedgerCreateAndHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	inCat := seedCategory(t, pool, orgID, "Vendas", core.LedgerIn)
	outCat := seedCategory(t, pool, orgID, "Fornecedores", core.LedgerOut)
	ledger := core.NewLedgerService(pool, core.DefaultSuggestionConfig())

	created, err := ledger.Create(ctx, core.LedgerEntry{
		OrgID:       orgID,
		Direction:   core.LedgerIn,
		Description: "Venda persiana blackout",
		Amount:      decimal.NewFromInt(1200),
		CategoryID:  &inCat,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil || created.OccurredAt.IsZero() {
		t.Errorf("Create must backfill id and occurred_at, got %+v", created)
	}

	// history only sees categorized entries of the requested direction
	seedLedgerEntry(t, pool, orgID, core.LedgerIn, "sem categoria ainda", decimal.NewFromInt(10), nil, time.Now())
	seedLedgerEntry(t, pool, orgID, core.LedgerOut, "compra tecido", decimal.NewFromInt(300), &outCat, time.Now())
	// older than the lookback window
	seedLedgerEntry(t, pool, orgID, core.LedgerIn, "venda antiga", decimal.NewFromInt(80), &inCat, time.Now().AddDate(0, 0, -200))

	history, err := ledger.RecentCategorized(ctx, orgID, core.LedgerIn)
	if err != nil {
		t.Fatalf("RecentCategorized: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1: %+v", len(history), history)
	}
	if history[0].Description != "Venda persiana blackout" {
		t.Errorf("history entry = %q", history[0].Description)
	}
	if history[0].Category.ID != inCat {
		t.Errorf("history category = %s, want %s", history[0].Category.ID, inCat)
	}

	// other orgs never see this history
	other, err := ledger.RecentCategorized(ctx, uuid.New(), core.LedgerIn)
	if err != nil {
		t.Fatalf("RecentCategorized other org: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("cross-org history leak: %+v", other)
	}
}

func TestLedgerCreate_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedgerService(pool, core.DefaultSuggestionConfig())
	_, err := ledger.Create(context.Background(), core.LedgerEntry{
		OrgID:     uuid.New(),
		Direction: "credit", // movement vocabulary, not ledger vocabulary
		Amount:    decimal.NewFromInt(10),
	})
	if !core.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestCorrectCategory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	vendas := seedCategory(t, pool, orgID, "Vendas", core.LedgerIn)
	servicos := seedCategory(t, pool, orgID, "Serviços", core.LedgerIn)
	fornecedores := seedCategory(t, pool, orgID, "Fornecedores", core.LedgerOut)
	entryID := seedLedgerEntry(t, pool, orgID, core.LedgerIn, "instalação cortina", decimal.NewFromInt(400), &vendas, time.Now())

	ledger := core.NewLedgerService(pool, core.DefaultSuggestionConfig())

	if err := ledger.CorrectCategory(ctx, orgID, entryID, servicos); err != nil {
		t.Fatalf("CorrectCategory: %v", err)
	}
	var got uuid.UUID
	if err := pool.QueryRow(ctx, "SELECT category_id FROM ledger_entries WHERE id = $1", entryID).Scan(&got); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got != servicos {
		t.Errorf("category = %s, want %s", got, servicos)
	}

	// direction mismatch is rejected and changes nothing
	err := ledger.CorrectCategory(ctx, orgID, entryID, fornecedores)
	if !core.IsValidation(err) {
		t.Errorf("mismatched direction: err = %v, want validation error", err)
	}

	if err := ledger.CorrectCategory(ctx, orgID, entryID, uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown category: err = %v, want ErrNotFound", err)
	}
}

func TestListCategories(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	orgID := uuid.New()
	seedCategory(t, pool, orgID, "Vendas", core.LedgerIn)
	seedCategory(t, pool, orgID, "Aluguel", core.LedgerOut)
	seedCategory(t, pool, orgID, "Fornecedores", core.LedgerOut)
	seedCategory(t, pool, uuid.New(), "Outra Org", core.LedgerOut)

	ledger := core.NewLedgerService(pool, core.DefaultSuggestionConfig())
	out, err := ledger.ListCategories(ctx, orgID, core.LedgerOut)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d categories, want 2", len(out))
	}
	// name order
	if out[0].Name != "Aluguel" || out[1].Name != "Fornecedores" {
		t.Errorf("categories = [%s %s], want name order", out[0].Name, out[1].Name)
	}
}
