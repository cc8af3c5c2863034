package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly totals with best and worst months",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	_, filtered, filter, ok, err := loadFiltered()
	if err != nil || !ok {
		return err
	}

	months := pipeline.AggregateMonths(filtered)
	insights := pipeline.Insights(filtered)

	fmt.Println()
	fmt.Println(cli.RenderTitle(filterTitle("MONTHLY TOTALS", filter)))
	fmt.Println()

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		marker := ""
		switch {
		case insights.BestMonth != nil && m.Month == insights.BestMonth.Month:
			marker = "▲ best"
		case insights.WorstMonth != nil && m.Month == insights.WorstMonth.Month:
			marker = "▼ worst"
		}
		rows = append(rows, []string{
			m.Month.String(),
			cli.ColorMoney(m.Total, cli.FormatSignedMoney(m.Total)),
			cli.FormatNumber(int64(m.Count)),
			marker,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Total", "Count", ""},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
