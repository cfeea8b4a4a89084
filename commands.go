package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/varo6/wordle-trpc/internal/config"
	"github.com/varo6/wordle-trpc/internal/daily"
	"github.com/varo6/wordle-trpc/internal/database"
	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/words"
)

// configLoader is replaced in tests.
var configLoader = config.Load

func newRootCmd() *cobra.Command {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "wordle",
		Short:         "Daily word game and practice server",
		Long:          "wordle serves a daily word shared by every player, a random-word practice mode and aggregate play statistics over a JSON API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := configLoader()
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cfg.Level(), cfg.IsProduction())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(
		newServeCmd(&cfg),
		newMigrateCmd(&cfg),
		newTodayCmd(&cfg),
		newStatsCmd(&cfg),
	)
	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), *cfg)
		},
	}
}

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the stats database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				driver, dsn, err := prepareMigration(*cfg)
				if err != nil {
					return err
				}
				if err := database.MigrateUp(driver, dsn); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1 step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				driver, dsn, err := prepareMigration(*cfg)
				if err != nil {
					return err
				}
				if err := database.MigrateDown(driver, dsn, steps); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration%s\n", steps, plural(steps))
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				driver, dsn, err := prepareMigration(*cfg)
				if err != nil {
					return err
				}
				status, err := database.MigrateStatus(driver, dsn)
				if err != nil {
					return err
				}
				if !status.Applied {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", status.Version, status.Dirty)
				return nil
			},
		},
	)
	return cmd
}

func prepareMigration(cfg config.Config) (driver, dsn string, err error) {
	driver, dsn, err = migrationTarget(cfg)
	if err != nil {
		return "", "", err
	}
	if driver == database.DriverSQLite {
		if dir := filepath.Dir(filepath.Clean(cfg.SQLitePath)); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("create storage dir: %w", err)
			}
		}
	}
	return driver, dsn, nil
}

func newTodayCmd(cfg *config.Config) *cobra.Command {
	var (
		seed string
		date string
	)

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print the daily word for a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			at := time.Now()
			if date != "" {
				at, err = time.ParseInLocation(time.DateOnly, date, loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
			}
			if seed == "" {
				seed = cfg.WordSeed
			}

			mainWords, err := words.Load(cfg.WordsFile, cfg.WordLength)
			if err != nil {
				return err
			}
			selector := daily.NewSelector(mainWords, seed, loc, daily.WithClock(func() time.Time { return at }))
			return printToday(cmd.OutOrStdout(), selector, at)
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "seed to use instead of WORD_SEED")
	cmd.Flags().StringVar(&date, "date", "", "calendar date in the daily time zone (YYYY-MM-DD)")
	return cmd
}

func printToday(w io.Writer, selector *daily.Selector, at time.Time) error {
	day := daily.DayNumber(at, selector.Location())
	_, err := fmt.Fprintf(w, "%s\t%d\t%s\n",
		at.In(selector.Location()).Format(time.DateOnly), day, selector.WordOfDay(selector.Seed()))
	return err
}

func newStatsCmd(cfg *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate play statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			practiceWords, err := loadPracticeWords(*cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := openStatsStore(cmd.Context(), *cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			report := stats.NewAggregator(store, practiceWords, stats.WithTimeout(cfg.StatsTimeout)).ReadStats(cmd.Context())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(w io.Writer, report stats.Report) error {
	if !report.Available {
		_, _ = fmt.Fprintln(w, "stats store unavailable")
	}
	_, _ = fmt.Fprintf(w, "games: %d wins: %d losses: %d\n",
		report.Totals.CompletedGames, report.Totals.Wins, report.Totals.Losses)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "WORD\tCORRECT\tINCORRECT")
	for _, row := range report.Words {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", row.Word, row.CorrectGuesses, row.IncorrectGuesses)
	}
	return tw.Flush()
}
