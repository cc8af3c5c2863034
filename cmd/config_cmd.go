package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Environment overrides use the %s prefix.\n", config.EnvPrefix)
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data file:        %s\n", cfg.General.DataFile)
	fmt.Printf("    Default category: %s\n", orAll(cfg.General.DefaultCategory))
	fmt.Printf("    Default month:    %s\n", orAll(cfg.General.DefaultMonth))
	fmt.Println()

	fmt.Println("  [Columns]")
	fmt.Printf("    Date:     %s\n", cfg.Columns.Date)
	fmt.Printf("    Category: %s\n", cfg.Columns.Category)
	fmt.Printf("    Amount:   %s\n", cfg.Columns.Amount)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Horizon days:     %d\n", cfg.Forecast.HorizonDays)
	fmt.Printf("    Seed:             %d\n", cfg.Forecast.Seed)
	fmt.Printf("    Holdout fraction: %g\n", cfg.Forecast.HoldoutFraction)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:   %s\n", cfg.Server.Addr)
	fmt.Printf("    Cache TTL: %s\n", cfg.Server.CacheTTL)
	fmt.Println()

	fmt.Println("  Run `fburn setup` to reconfigure.")
	return nil
}

func orAll(s string) string {
	if s == "" {
		return "All"
	}
	return s
}
