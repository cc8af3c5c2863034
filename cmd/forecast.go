package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/forecast"
)

var (
	flagHorizon int
	flagSeed    int64
	flagHoldout float64
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Project daily income and expenditure for the coming days",
	Long:  "Fits a line to the income and expenditure series of the whole ledger and projects it forward. Category and month filters do not apply.",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().IntVar(&flagHorizon, "horizon", forecast.DefaultHorizonDays, "Days to project (default from config)")
	forecastCmd.Flags().Int64Var(&flagSeed, "seed", forecast.DefaultSeed, "Seed for the holdout split (default from config)")
	forecastCmd.Flags().Float64Var(&flagHoldout, "holdout", 0, "Fraction of each series held out to report RMSE (default from config)")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	filter, err := currentFilter()
	if err != nil {
		return err
	}

	fc := cfg.Forecast.Model()
	if cmd.Flags().Changed("horizon") {
		fc.HorizonDays = flagHorizon
	}
	if cmd.Flags().Changed("seed") {
		fc.Seed = flagSeed
	}
	if cmd.Flags().Changed("holdout") {
		fc.HoldoutFraction = flagHoldout
	}
	if fc.HorizonDays < 1 {
		return fmt.Errorf("--horizon must be at least 1, got %d", fc.HorizonDays)
	}
	if fc.HoldoutFraction < 0 || fc.HoldoutFraction >= forecast.MaxHoldoutFraction {
		return fmt.Errorf("--holdout must be in [0, %.1f), got %g", forecast.MaxHoldoutFraction, fc.HoldoutFraction)
	}

	result, err := loadData()
	if err != nil {
		return err
	}

	res, err := forecast.New(fc).Forecast(result.Ledger.Transactions)
	if errors.Is(err, forecast.ErrNoTransactions) {
		fmt.Printf("\n  No transactions found in %s.\n\n", flagFile)
		return nil
	}
	for _, s := range res.Degenerate() {
		log.Warn().Str("series", string(s)).Msg("fit points share one day, forecasting a flat mean")
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  Next %dd", res.HorizonDays)))
	fmt.Println()

	if filter.Active() {
		fmt.Println(cli.RenderNote(fmt.Sprintf("Forecast uses the whole ledger; %s is ignored.", filter)))
		fmt.Println()
	}

	printForecastDays(res)
	printForecastTotals(res)
	printForecastFits(res)

	for _, s := range []forecast.SeriesForecast{res.Income, res.Expenditure} {
		if !s.OK() {
			fmt.Println(cli.RenderWarning(s.Err.Error()))
		}
	}
	if !res.Income.OK() || !res.Expenditure.OK() {
		fmt.Println()
	}

	if !res.Income.OK() && !res.Expenditure.OK() {
		return err
	}
	return nil
}

func printForecastDays(res forecast.Result) {
	_, netOK := res.PredictedNet()

	rows := make([][]string, 0, res.HorizonDays)
	for i := 0; i < res.HorizonDays; i++ {
		date := res.Start.AddDate(0, 0, i)
		row := []string{
			cli.FormatDate(date),
			cli.FormatDayOfWeek(int(date.Weekday())),
			pointAmount(res.Income, i),
			pointAmount(res.Expenditure, i),
		}
		if netOK {
			row = append(row, cli.FormatMoneyFloat(res.Income.Points[i].Amount-res.Expenditure.Points[i].Amount))
		} else {
			row = append(row, "n/a")
		}
		rows = append(rows, row)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Daily Predictions",
		Headers: []string{"Date", "Day", "Income", "Expenditure", "Net"},
		Rows:    rows,
	}))
	fmt.Println()

	for _, s := range []forecast.SeriesForecast{res.Income, res.Expenditure} {
		if !s.OK() {
			continue
		}
		values := make([]float64, len(s.Points))
		for i, p := range s.Points {
			values[i] = p.Amount
		}
		fmt.Printf("  %-12s %s\n", s.Series, cli.RenderSparkline(values))
	}
	fmt.Println()
}

func printForecastTotals(res forecast.Result) {
	netStr := "n/a"
	if net, ok := res.PredictedNet(); ok {
		netStr = cli.FormatMoneyFloat(net)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"Series", "Projected"},
		Rows: [][]string{
			{"Income", seriesTotal(res.Income)},
			{"Expenditure", seriesTotal(res.Expenditure)},
			{"---"},
			{"Predicted Net", netStr},
		},
	}))
	fmt.Println()
}

func printForecastFits(res forecast.Result) {
	rows := make([][]string, 0, 2)
	for _, s := range []forecast.SeriesForecast{res.Income, res.Expenditure} {
		if !s.OK() {
			rows = append(rows, []string{string(s.Series), "-", "-", "-", "-", "-"})
			continue
		}
		rmse := "-"
		if s.Fit.HoldoutN > 0 {
			rmse = fmt.Sprintf("%s (%d held out)", cli.FormatMoneyFloat(s.Fit.HoldoutRMSE), s.Fit.HoldoutN)
		}
		slope := fmt.Sprintf("%s/day", cli.FormatMoneyFloat(s.Fit.Line.Slope))
		if s.Fit.Degenerate {
			slope = "flat (one day)"
		}
		rows = append(rows, []string{
			string(s.Series),
			slope,
			cli.FormatMoneyFloat(s.Fit.Line.Intercept),
			fmt.Sprintf("%.3f", s.Fit.RSquared),
			cli.FormatNumber(int64(s.Fit.N)),
			rmse,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Fit",
		Headers: []string{"Series", "Slope", "Intercept", "R²", "Points", "Holdout RMSE"},
		Rows:    rows,
	}))
	fmt.Println()
}

func pointAmount(s forecast.SeriesForecast, i int) string {
	if !s.OK() || i >= len(s.Points) {
		return "n/a"
	}
	return cli.FormatMoneyFloat(s.Points[i].Amount)
}

func seriesTotal(s forecast.SeriesForecast) string {
	if !s.OK() {
		return "n/a"
	}
	return cli.FormatMoneyFloat(s.Total)
}
