package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	fmt.Println()
	fmt.Println("  Welcome to fburn!")
	fmt.Println()

	// Categories are offered as the default filter when the ledger loads;
	// setup still works without one.
	var categories []string
	if result, err := pipeline.Load(flagFile, cfg.Columns.Model(), nil); err == nil && len(result.Ledger.Transactions) > 0 {
		categories = pipeline.Categories(result.Ledger.Transactions)
		fmt.Printf("  Found %d transactions in %s\n\n", len(result.Ledger.Transactions), flagFile)
	} else if err != nil {
		log.Debug().Err(err).Str("file", flagFile).Msg("setup could not read ledger")
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals, categories).Run(); err != nil {
		return fmt.Errorf("setup form: %w", err)
	}

	next := cfg
	if err := vals.Apply(&next); err != nil {
		return err
	}
	if err := config.Save(next); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `fburn setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
