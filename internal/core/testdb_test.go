package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"concilia/internal/core"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE statement_movements, statement_imports, ledger_entries, category_patterns, categories, quotations CASCADE;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, orgID uuid.UUID, name string, direction core.LedgerDirection) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO categories (id, org_id, name, direction) VALUES ($1, $2, $3, $4)
	`, id, orgID, name, string(direction))
	if err != nil {
		t.Fatalf("Failed to seed category %q: %v", name, err)
	}
	return id
}

func seedLedgerEntry(t *testing.T, pool *pgxpool.Pool, orgID uuid.UUID, direction core.LedgerDirection, description string, amount decimal.Decimal, categoryID *uuid.UUID, occurredAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO ledger_entries (id, org_id, direction, description, amount, category_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, orgID, string(direction), description, amount, categoryID, occurredAt)
	if err != nil {
		t.Fatalf("Failed to seed ledger entry %q: %v", description, err)
	}
	return id
}

func seedQuotation(t *testing.T, pool *pgxpool.Pool, orgID uuid.UUID, client string, total decimal.Decimal, discounted *decimal.Decimal, status core.QuotationStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO quotations (id, org_id, client_name, total, total_with_discount, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, orgID, client, total, discounted, string(status))
	if err != nil {
		t.Fatalf("Failed to seed quotation for %q: %v", client, err)
	}
	return id
}
