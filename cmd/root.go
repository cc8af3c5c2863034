// Package cmd implements the fburn CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/logging"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
)

var (
	flagFile     string
	flagCategory string
	flagMonth    string
	flagNoCache  bool
	flagQuiet    bool
	flagLogLevel string
)

var (
	cfg = config.DefaultConfig()
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "fburn",
	Short: "Personal finance dashboard and forecast",
	Long:  "Summarize a CSV transaction ledger and forecast the next 30 days of income and expenditure.",

	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagFile, "file", "f", "", "Ledger CSV file or directory (default from config, else ./data.csv)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to one category")
	rootCmd.PersistentFlags().StringVarP(&flagMonth, "month", "M", "", `Filter to one month ("2024-01" or "January 2024")`)
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Diagnostic log level (debug, info, warn, error, disabled)")
}

// setup resolves configuration with flags > env > file > defaults and
// builds the diagnostic logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: reading .env: %v\n", err)
	}

	loaded, err := config.Load()
	if err != nil {
		// setup must still run so a broken config can be rewritten.
		if cmd.Name() != "setup" {
			return err
		}
		fmt.Fprintf(os.Stderr, "  Warning: %v\n", err)
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	if flagFile == "" {
		flagFile = cfg.General.DataFile
	}
	if !cmd.Flags().Changed("category") {
		flagCategory = cfg.General.DefaultCategory
	}
	if !cmd.Flags().Changed("month") {
		flagMonth = cfg.General.DefaultMonth
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	log = logging.New(logging.Config{Level: level, Format: cfg.Log.Format})
	return nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", flagFile)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	cols := cfg.Columns.Model()

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Debug().Err(err).Msg("cache unavailable")
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()

			cr, err := pipeline.LoadWithCache(flagFile, cols, cache, progressFn)
			switch {
			case err == nil:
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions from cache (%d files)    \n",
							cli.FormatNumber(int64(len(cr.Ledger.Transactions))),
							cr.TotalFiles,
						)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed files (%s transactions)    \n",
							cr.CacheHits,
							cr.Reparsed,
							cli.FormatNumber(int64(len(cr.Ledger.Transactions))),
						)
					}
				}
				return cr, nil
			case isMalformed(err):
				// A bad row is a data problem; reparsing will not fix it.
				return nil, err
			default:
				log.Warn().Err(err).Msg("cache-assisted load failed")
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
				}
			}
		}
	}

	result, err := pipeline.Load(flagFile, cols, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions across %d files    \n",
			cli.FormatNumber(int64(len(result.Ledger.Transactions))),
			result.ParsedFiles,
		)
	}

	return result, nil
}

// currentFilter builds the category/month filter from flags.
func currentFilter() (pipeline.Filter, error) {
	f := pipeline.Filter{Category: flagCategory}
	if flagMonth != "" && flagMonth != pipeline.All {
		m, err := pipeline.ParseMonth(flagMonth)
		if err != nil {
			return f, err
		}
		f.Month = m
	}
	return f, nil
}

// loadFiltered loads the ledger and applies the active filter. ok is false
// when there is nothing to show; the reason has already been printed.
func loadFiltered() (ledger model.Ledger, filtered []model.Transaction, filter pipeline.Filter, ok bool, err error) {
	filter, err = currentFilter()
	if err != nil {
		return ledger, nil, filter, false, err
	}

	result, err := loadData()
	if err != nil {
		return ledger, nil, filter, false, err
	}
	ledger = result.Ledger

	if len(ledger.Transactions) == 0 {
		fmt.Printf("\n  No transactions found in %s.\n\n", flagFile)
		return ledger, nil, filter, false, nil
	}

	filtered = filter.Apply(ledger.Transactions)
	if len(filtered) == 0 {
		fmt.Printf("\n  No transactions match %s.\n\n", filter)
		return ledger, nil, filter, false, nil
	}
	return ledger, filtered, filter, true, nil
}

func isMalformed(err error) bool {
	var me *source.MalformedInputError
	return errors.As(err, &me)
}

func filterTitle(title string, f pipeline.Filter) string {
	if !f.Active() {
		return title
	}
	return fmt.Sprintf("%s  (%s)", title, f)
}
