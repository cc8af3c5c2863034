package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily totals table",
	RunE:  runDaily,
}

func init() {
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	_, filtered, filter, ok, err := loadFiltered()
	if err != nil || !ok {
		return err
	}

	days := pipeline.AggregateDays(filtered)

	fmt.Println()
	fmt.Println(cli.RenderTitle(filterTitle("DAILY TOTALS", filter)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			cli.FormatDate(d.Date),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatMoney(d.Income),
			cli.FormatMoney(d.Expenses),
			cli.ColorMoney(d.Total, cli.FormatSignedMoney(d.Total)),
			cli.FormatNumber(int64(d.Count)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Income", "Expenses", "Net", "Count"},
		Rows:    rows,
	}))

	filled := pipeline.FillDays(days)
	values := make([]float64, len(filled))
	for i, d := range filled {
		values[i] = d.Total.InexactFloat64()
	}
	fmt.Println()
	fmt.Printf("  %s  %s .. %s\n\n",
		cli.RenderSparkline(values),
		cli.FormatDate(filled[0].Date),
		cli.FormatDate(filled[len(filled)-1].Date),
	)

	return nil
}
