package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/pipeline"
)

var flagOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered transactions as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagOutput, "output", "o", "filtered_data.csv", `Output file ("-" for stdout)`)
	rootCmd.AddCommand(exportCmd)
}

func runExport(_ *cobra.Command, _ []string) error {
	filter, err := currentFilter()
	if err != nil {
		return err
	}

	result, err := loadData()
	if err != nil {
		return err
	}
	filtered := filter.Apply(result.Ledger.Transactions)

	var w io.Writer = os.Stdout
	if flagOutput != "-" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating export: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := pipeline.WriteCSV(w, filtered, result.Ledger.Columns); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	if flagOutput != "-" && !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Wrote %d rows to %s\n", len(filtered), flagOutput)
	}
	return nil
}
