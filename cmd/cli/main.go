package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/spendsense/spendsense/internal/catalog"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/demo"
	"github.com/spendsense/spendsense/internal/domain"
	"github.com/spendsense/spendsense/internal/logger"
	"github.com/spendsense/spendsense/internal/recommend"
	"github.com/spendsense/spendsense/internal/store"
	storebigquery "github.com/spendsense/spendsense/internal/store/bigquery"
	storeinmemory "github.com/spendsense/spendsense/internal/store/inmemory"
)

var configPath string

func main() {
	log := logger.New()

	root := &cobra.Command{
		Use:           "spendsense",
		Short:         "Behavioral signal and recommendation pipeline tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	root.AddCommand(
		newRunCmd(log),
		newSeedCmd(log),
		newInspectCmd(log),
	)

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// newRunCmd recomputes the pipeline for one user or for everyone.
func newRunCmd(log zerolog.Logger) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Recompute signals, personas, and recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			ctx = logger.WithContext(ctx, log)

			source, results, closeStore, err := openBackend(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
			}
			defer closeStore()

			cat, err := catalog.Load(ctx, cfg.CatalogURI)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			engine := recommend.New(source, results, cat, cfg.TimeWindows(), log)

			if userID != "" {
				if err := engine.ProcessUser(ctx, userID); err != nil {
					return err
				}
				fmt.Printf("Processed user %s.\n", userID)
				return nil
			}

			if err := engine.ProcessAllUsers(ctx); err != nil {
				return err
			}
			fmt.Println("Batch complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Process a single user instead of all users")
	return cmd
}

// newSeedCmd loads the demo population into a BigQuery dataset. The memory
// backend seeds itself on every start, so seeding only applies to BigQuery.
func newSeedCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo users into the BigQuery backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Backend != "bigquery" {
				return fmt.Errorf("seed requires the bigquery backend, got %q (the memory backend is seeded automatically)", cfg.Backend)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			ctx = logger.WithContext(ctx, log)

			s, err := storebigquery.New(ctx, cfg.ProjectID, cfg.Dataset)
			if err != nil {
				return fmt.Errorf("opening bigquery backend: %w", err)
			}
			defer s.Close()

			if err := s.EnsureTables(ctx); err != nil {
				return fmt.Errorf("ensuring tables: %w", err)
			}

			for _, user := range demo.Users(time.Now().UTC()) {
				if err := s.InsertAccounts(ctx, user.Accounts); err != nil {
					return fmt.Errorf("seeding accounts for %s: %w", user.UserID, err)
				}
				if err := s.InsertTransactions(ctx, user.Transactions); err != nil {
					return fmt.Errorf("seeding transactions for %s: %w", user.UserID, err)
				}
				fmt.Printf("Seeded %s: %d accounts, %d transactions.\n",
					user.UserID, len(user.Accounts), len(user.Transactions))
			}
			return nil
		},
	}
}

// newInspectCmd prints the stored pipeline state for one (user, window).
func newInspectCmd(log zerolog.Logger) *cobra.Command {
	var (
		userID         string
		windowName     string
		showSuperseded bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show signals, persona, and recommendations for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			window := domain.TimeWindow(windowName)
			if !window.Valid() {
				return fmt.Errorf("unknown window %q, expected 30d, 90d, or 180d", windowName)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			ctx = logger.WithContext(ctx, log)

			source, results, closeStore, err := openBackend(ctx, cfg)
			if err != nil {
				return fmt.Errorf("opening %s backend: %w", cfg.Backend, err)
			}
			defer closeStore()

			// The memory backend starts empty, so compute before reading.
			if cfg.Backend == "memory" {
				cat, err := catalog.Load(ctx, cfg.CatalogURI)
				if err != nil {
					return fmt.Errorf("loading catalog: %w", err)
				}
				engine := recommend.New(source, results, cat, cfg.TimeWindows(), log)
				if err := engine.ProcessUser(ctx, userID); err != nil {
					return err
				}
			}

			return printUserState(ctx, results, userID, window, showSuperseded)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "User ID to inspect (required)")
	cmd.Flags().StringVar(&windowName, "window", "90d", "Lookback window: 30d, 90d, or 180d")
	cmd.Flags().BoolVar(&showSuperseded, "all", false, "Include superseded recommendations")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printUserState(ctx context.Context, results store.Results, userID string, window domain.TimeWindow, showSuperseded bool) error {
	set, err := results.GetSignalSet(ctx, userID, window)
	hasSignals := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("reading signal set: %w", err)
	}
	assignment, err := results.GetAssignment(ctx, userID, window)
	hasAssignment := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("reading persona assignment: %w", err)
	}
	recs, err := results.ListRecommendations(ctx, userID, window, showSuperseded)
	if err != nil {
		return fmt.Errorf("listing recommendations: %w", err)
	}

	state := domain.StateFor(hasSignals, hasAssignment, len(recs) > 0)
	fmt.Printf("User %s, window %s: %s\n", userID, window, state)
	if !hasSignals {
		return nil
	}
	fmt.Printf("Computed at %s\n\n", set.ComputedAt.Format(time.RFC3339))

	if hasAssignment {
		fmt.Printf("Persona: %s\n", assignment.Persona)
		for _, criterion := range assignment.CriteriaMet {
			fmt.Printf("  - %s\n", criterion)
		}
	}

	fmt.Println("\nSignals:")
	if set.Credit.InsufficientData {
		fmt.Println("  credit: insufficient data")
	} else {
		fmt.Printf("  credit: utilization %.0f%% (%s), interest $%.2f\n",
			set.Credit.TotalUtilization*100, set.Credit.UtilizationLevel, set.Credit.InterestCharged)
	}
	if set.Subscriptions.InsufficientData {
		fmt.Println("  subscriptions: insufficient data")
	} else {
		fmt.Printf("  subscriptions: %d recurring merchants, $%.2f/month (%.0f%% of spend)\n",
			len(set.Subscriptions.RecurringMerchants), set.Subscriptions.MonthlyRecurring,
			set.Subscriptions.SubscriptionShare*100)
	}
	if set.Savings.InsufficientData {
		fmt.Println("  savings: insufficient data")
	} else {
		fmt.Printf("  savings: $%.2f total, %.1f months coverage (%s)\n",
			set.Savings.TotalSavings, set.Savings.EmergencyFundCoverage, set.Savings.CoverageLevel)
	}
	if set.Income.InsufficientData {
		fmt.Println("  income: insufficient data")
	} else {
		fmt.Printf("  income: %s pay, $%.2f/month, %.1f months buffer\n",
			set.Income.Frequency, set.Income.AvgMonthlyIncome, set.Income.CashFlowBuffer)
	}

	fmt.Printf("\nRecommendations (%d):\n", len(recs))
	for _, rec := range recs {
		marker := ""
		if rec.Superseded {
			marker = " [superseded]"
		}
		fmt.Printf("\n  %s (%s, %s)%s\n", rec.Title, rec.Type, rec.RecommendationID, marker)
		fmt.Printf("    %s\n", rec.Rationale)

		trace, err := results.GetTrace(ctx, rec.RecommendationID)
		if err != nil {
			fmt.Printf("    trace: unavailable (%v)\n", err)
			continue
		}
		fmt.Printf("    template: %s", trace.TemplateID)
		if trace.TemplateFallback {
			fmt.Print(" (fallback)")
		}
		fmt.Println()
		for _, c := range trace.SignalsUsed {
			if c.Threshold != 0 {
				fmt.Printf("    signal: %s = %v (threshold %v)\n", c.Signal, c.Value, c.Threshold)
			} else {
				fmt.Printf("    signal: %s = %v\n", c.Signal, c.Value)
			}
		}
	}
	return nil
}

// openBackend builds the configured store. The memory backend is seeded with
// the demo population.
func openBackend(ctx context.Context, cfg *config.Config) (store.Source, store.Results, func() error, error) {
	switch cfg.Backend {
	case "bigquery":
		s, err := storebigquery.New(ctx, cfg.ProjectID, cfg.Dataset)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	default:
		s := storeinmemory.New()
		for _, user := range demo.Users(time.Now().UTC()) {
			s.SeedUser(user.UserID, user.Accounts, user.Transactions)
		}
		return s, s, func() error { return nil }, nil
	}
}
