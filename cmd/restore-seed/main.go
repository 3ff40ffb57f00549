// restore-seed is a one-shot tool to restore the reference categories for an
// organization. Run it when the category table has been accidentally wiped;
// existing categories with the same name are left untouched.
//
// Usage: go run ./cmd/restore-seed <org-uuid>
package main

import (
	"context"
	"log"
	"os"

	"concilia/internal/config"
	"concilia/internal/core"
	"concilia/internal/db"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var defaultCategories = []struct {
	name      string
	direction core.LedgerDirection
}{
	{"Vendas", core.LedgerIn},
	{"Serviços de Instalação", core.LedgerIn},
	{"Outras Receitas", core.LedgerIn},
	{"Fornecedores", core.LedgerOut},
	{"Aluguel", core.LedgerOut},
	{"Folha de Pagamento", core.LedgerOut},
	{"Impostos", core.LedgerOut},
	{"Marketing", core.LedgerOut},
	{"Tarifas Bancárias", core.LedgerOut},
	{"Outras Despesas", core.LedgerOut},
}

func main() {
	_ = godotenv.Load()

	if len(os.Args) != 2 {
		log.Fatal("usage: restore-seed <org-uuid>")
	}
	orgID, err := uuid.Parse(os.Args[1])
	if err != nil {
		log.Fatalf("Invalid org id: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	restored := 0
	for _, c := range defaultCategories {
		tag, err := tx.Exec(ctx, `
			INSERT INTO categories (id, org_id, name, direction)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (org_id, direction, name) DO NOTHING
		`, uuid.New(), orgID, c.name, string(c.direction))
		if err != nil {
			log.Fatalf("Failed to restore category %q: %v", c.name, err)
		}
		restored += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Printf("Seed restored: %d of %d categories inserted for org %s", restored, len(defaultCategories), orgID)
}
