// Command verify-db checks that the engine's tables exist and reports their
// row counts. Useful after pointing the engine at a fresh backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"concilia/internal/db"
)

var requiredTables = []string{
	"categories",
	"category_patterns",
	"ledger_entries",
	"statement_imports",
	"statement_movements",
	"quotations",
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("unable to connect", "err", err)
	}
	defer pool.Close()

	missing := 0
	for _, table := range requiredTables {
		var exists bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)",
			table).Scan(&exists)
		if err != nil {
			log.Fatal("table check failed", "table", table, "err", err)
		}
		if !exists {
			log.Error("missing table", "table", table)
			missing++
			continue
		}

		var count int64
		if err := pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&count); err != nil {
			log.Fatal("count failed", "table", table, "err", err)
		}
		log.Info("ok", "table", table, "rows", count)
	}

	if missing > 0 {
		log.Fatal("schema incomplete, run cmd/migrate", "missing", missing)
	}
}
