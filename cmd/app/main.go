// Command concilia is the operator CLI over the reconciliation and
// categorization engine: suggest categories for movement descriptions,
// import statements, inspect the reconciliation summary and the quotation
// funnel, and manage curated patterns.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"concilia/internal/ai"
	"concilia/internal/app"
	"concilia/internal/config"
	"concilia/internal/core"
	"concilia/internal/db"
)

var (
	orgFlag       string
	directionFlag string
	aiFlag        bool
	patternFlag   string
	categoryFlag  string
	sourceFlag    string
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "concilia",
		Short:         "Financial reconciliation and categorization engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&orgFlag, "org", "", "organization id (uuid)")

	root.AddCommand(suggestCmd(), importCmd(), confirmCmd(), summaryCmd(),
		funnelCmd(), patternsCmd(), toleranceCmd(), rankCmd())

	if err := root.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

// buildApp wires the full service stack against the configured backend.
func buildApp(ctx context.Context) (app.ApplicationService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	ledger := core.NewLedgerService(pool, cfg.Suggestion)
	var suggester ai.CategorySuggester
	if cfg.OpenAIKey != "" {
		suggester = ai.NewAgent(cfg.OpenAIKey)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "concilia"})
	svc := app.NewAppService(
		core.NewMovementService(pool),
		ledger,
		core.NewPatternService(pool),
		core.NewQuotationService(pool),
		core.NewSuggestionEngine(ledger, cfg.Suggestion),
		suggester,
		cfg.Tolerance,
		cfg.Summary,
		logger,
	)
	return svc, pool.Close, nil
}

func parseOrg() (uuid.UUID, error) {
	org, err := uuid.Parse(orgFlag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --org: %w", err)
	}
	return org, nil
}

func parseDirection() (core.LedgerDirection, error) {
	d := core.LedgerDirection(directionFlag)
	if d != core.LedgerIn && d != core.LedgerOut {
		return "", fmt.Errorf("--direction must be %q or %q", core.LedgerIn, core.LedgerOut)
	}
	return d, nil
}

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a movement description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			direction, err := parseDirection()
			if err != nil {
				return err
			}
			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			result, err := svc.SuggestCategory(cmd.Context(), app.SuggestRequest{
				OrgID:       org,
				Description: args[0],
				Direction:   direction,
				AllowAI:     aiFlag,
			})
			if err != nil {
				return err
			}
			if result.Suggestion == nil {
				fmt.Println("no confident suggestion")
				return nil
			}
			s := result.Suggestion
			fmt.Printf("%s  (confidence %d%%, source %s)\n", s.CategoryName, s.Confidence, result.Source)
			fmt.Printf("  %s\n", s.Reason)
			for _, example := range s.Examples {
				fmt.Printf("  ~ %s\n", example)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&directionFlag, "direction", string(core.LedgerIn), "entrada or saida")
	cmd.Flags().BoolVar(&aiFlag, "ai", false, "allow the AI fallback when history and patterns are silent")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <movements.json>",
		Short: "Import a decoded statement (JSON array of movement lines)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var lines []core.MovementLine
			if err := json.Unmarshal(data, &lines); err != nil {
				return fmt.Errorf("invalid movements file: %w", err)
			}

			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			source := sourceFlag
			if source == "" {
				source = args[0]
			}
			result, err := svc.ImportStatement(cmd.Context(), app.ImportRequest{
				OrgID:  org,
				Source: source,
				Lines:  lines,
			})
			if err != nil {
				return err
			}
			fmt.Printf("imported %d movements (statement %s)\n", result.MovementCount, result.Import.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sourceFlag, "source", "", "statement source label, defaults to the file name")
	return cmd
}

func confirmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confirm <movement-id>",
		Short: "Confirm a category for a movement and reconcile it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			movementID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid movement id: %w", err)
			}
			categoryID, err := uuid.Parse(categoryFlag)
			if err != nil {
				return fmt.Errorf("invalid --category: %w", err)
			}

			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			result, err := svc.ConfirmCategorization(cmd.Context(), app.ConfirmRequest{
				OrgID:      org,
				MovementID: movementID,
				CategoryID: categoryID,
				Pattern:    patternFlag,
			})
			if err != nil {
				return err
			}
			fmt.Printf("ledger entry %s created\n", result.Entry.ID)
			if result.Pattern != nil {
				fmt.Printf("pattern %q now used %d times\n", result.Pattern.Pattern, result.Pattern.UsageCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "category id to apply (required)")
	cmd.Flags().StringVar(&patternFlag, "pattern", "", "description fragment to teach the pattern store")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the reconciliation summary for the organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			s, err := svc.ReconciliationSummary(cmd.Context(), org)
			if err != nil {
				return err
			}
			fmt.Printf("imported balance:   %s\n", s.ImportedBalance.StringFixed(2))
			fmt.Printf("reconciled balance: %s\n", s.ReconciledBalance.StringFixed(2))
			fmt.Printf("pending:            %d (%s)\n", s.PendingCount, s.PendingValue.StringFixed(2))
			fmt.Printf("critical:           %d (%s)\n", s.CriticalCount, s.CriticalValue.StringFixed(2))
			if s.NeverImported() {
				fmt.Println("last import:        never")
			} else {
				fmt.Printf("last import:        %d day(s) ago", s.DaysSinceLastImport)
				if s.IsStale {
					fmt.Print("  [stale]")
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func funnelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funnel",
		Short: "Show the quotation funnel with received and outstanding totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			report, err := svc.QuotationFunnel(cmd.Context(), org)
			if err != nil {
				return err
			}
			fmt.Printf("%-14s %5s %14s %14s %14s\n", "STATUS", "COUNT", "VALUE", "RECEIVED", "OUTSTANDING")
			fmt.Println(strings.Repeat("-", 66))
			for _, stage := range report.Stages {
				fmt.Printf("%-14s %5d %14s %14s %14s\n", stage.Status, stage.Count,
					stage.TotalValue.StringFixed(2), stage.Received.StringFixed(2), stage.Outstanding.StringFixed(2))
			}
			fmt.Println(strings.Repeat("-", 66))
			fmt.Printf("%-20s %14s %14s\n", "TOTAL", report.TotalReceived.StringFixed(2), report.TotalOutstanding.StringFixed(2))
			return nil
		},
	}
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage curated category patterns",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List patterns, active first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := db.NewPool(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			patterns, err := core.NewPatternService(pool).ListPatterns(cmd.Context(), org)
			if err != nil {
				return err
			}
			for _, p := range patterns {
				state := "active"
				if !p.Active {
					state = "inactive"
				}
				fmt.Printf("%s  %-8s %-10s use=%-4d %q\n", p.ID, p.Direction, state, p.UsageCount, p.Pattern)
			}
			return nil
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm <pattern-id>",
		Short: "Record one confirmed use of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			patternID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid pattern id: %w", err)
			}
			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			usage, err := svc.ConfirmPattern(cmd.Context(), org, patternID)
			if err != nil {
				return err
			}
			fmt.Printf("usage count is now %d\n", usage)
			return nil
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <pattern-id>",
		Short: "Soft-delete a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := parseOrg()
			if err != nil {
				return err
			}
			patternID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid pattern id: %w", err)
			}
			svc, closePool, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closePool()

			if err := svc.DeactivatePattern(cmd.Context(), org, patternID); err != nil {
				return err
			}
			fmt.Println("pattern deactivated")
			return nil
		},
	}

	cmd.AddCommand(list, confirm, deactivate)
	return cmd
}

func toleranceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tolerance <total> <paid>",
		Short: "Check whether an amount is settled under the configured tolerance",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			total, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid total: %w", err)
			}
			paid, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid paid: %w", err)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Tolerance.IsSettled(total, paid) {
				fmt.Println("settled")
			} else {
				fmt.Printf("open: %s remaining\n", total.Sub(paid).StringFixed(2))
			}
			return nil
		},
	}
}

func rankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <status>",
		Short: "Show the funnel rank and paid percentage of a quotation status",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			status := core.QuotationStatus(args[0])
			fmt.Printf("rank: %d\n", core.FunnelRank(status))
			fmt.Printf("paid: %s%%\n", core.PercentagePaid(status).Mul(decimal.NewFromInt(100)).StringFixed(0))
			return nil
		},
	}
}
