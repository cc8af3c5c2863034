package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Key metrics, overall statistics and insights",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	_, filtered, filter, ok, err := loadFiltered()
	if err != nil || !ok {
		return err
	}

	stats := pipeline.Summarize(filtered)
	insights := pipeline.Insights(filtered)

	fmt.Println()
	fmt.Println(cli.RenderTitle(filterTitle("FINANCIAL SUMMARY", filter)))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Key Metrics",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Net Balance", cli.ColorMoney(stats.Net, cli.FormatMoney(stats.Net))},
			{"Average Transaction", cli.FormatMoney(stats.Average)},
			{"---"},
			{"Total Income", fmt.Sprintf("%s  (%s)", cli.FormatMoney(stats.TotalIncome), cli.FormatNumber(int64(stats.IncomeCount)))},
			{"Total Expenses", fmt.Sprintf("%s  (%s)", cli.FormatMoney(stats.TotalExpenses), cli.FormatNumber(int64(stats.ExpenseCount)))},
		},
	}))
	fmt.Println()

	days := pipeline.AggregateDays(filtered)
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Overall Statistics",
		Headers: []string{"Statistic", "Value"},
		Rows: [][]string{
			{"Transactions", cli.FormatNumber(int64(stats.Count))},
			{"Total Amount", cli.FormatMoney(stats.Total)},
			{"Active Days", cli.FormatNumber(int64(len(days)))},
			{"First Date", cli.FormatDate(stats.FirstDate)},
			{"Last Date", cli.FormatDate(stats.LastDate)},
		},
	}))
	fmt.Println()

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Time-Based Insights",
		Headers: []string{"Insight", "Value"},
		Rows: [][]string{
			{"Best Month", formatMonthStat(insights.BestMonth)},
			{"Worst Month", formatMonthStat(insights.WorstMonth)},
			{"Recent Trend", formatTrend(insights)},
		},
	}))
	fmt.Println()

	return nil
}

func formatMonthStat(m *model.MonthlyStats) string {
	if m == nil {
		return "-"
	}
	return fmt.Sprintf("%s  %s", m.Month, cli.FormatMoney(m.Total))
}

func formatTrend(in model.Insights) string {
	return fmt.Sprintf("%s  (%s)", in.Trend, cli.FormatChange(in.TrendValue))
}
