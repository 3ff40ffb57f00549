// verify-agent is a one-shot smoke check for the AI categorization fallback.
// It sends a sample transaction description and prints the structured pick,
// without touching the database.
//
// Usage: go run ./cmd/verify-agent
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"concilia/internal/ai"
	"concilia/internal/core"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("CONCILIA_OPENAI_API_KEY")
	}
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(apiKey)
	ctx := context.Background()

	categories := []core.Category{
		{ID: uuid.New(), Name: "Fornecedores", Direction: core.LedgerOut},
		{ID: uuid.New(), Name: "Aluguel", Direction: core.LedgerOut},
		{ID: uuid.New(), Name: "Marketing", Direction: core.LedgerOut},
		{ID: uuid.New(), Name: "Impostos", Direction: core.LedgerOut},
	}

	description := "Pagamento fornecedor tecidos blackout NF 4412"
	fmt.Printf("SUGGESTING CATEGORY FOR: %s\n", description)

	suggestion, err := agent.SuggestCategory(ctx, description, core.LedgerOut, categories)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if suggestion == nil {
		fmt.Println("\nThe model abstained; no category suggested.")
		return
	}

	fmt.Printf("\n--- SUGGESTION ---\n")
	fmt.Printf("Category: %s\n", suggestion.CategoryName)
	fmt.Printf("Confidence: %d\n", suggestion.Confidence)
	fmt.Printf("Reasoning: %s\n", suggestion.Reason)
}
