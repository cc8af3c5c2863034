package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	fc := a.forecast
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if errors.Is(a.forecastErr, forecast.ErrNoTransactions) {
		return components.ContentCard("Forecast", mutedStyle.Render("No transactions to forecast from."), cw)
	}

	var b strings.Builder

	// Row 1: projected totals
	end := fc.Start.AddDate(0, 0, fc.HorizonDays-1)
	netCard := components.Metric{Label: "Predicted Net", Value: "n/a", Delta: "needs both series"}
	if net, ok := fc.PredictedNet(); ok {
		netCard = components.Metric{
			Label: "Predicted Net",
			Value: cli.FormatMoneyFloat(net),
			Delta: fmt.Sprintf("next %d days", fc.HorizonDays),
			Color: t.AmountColor(sign(net)),
		}
	}
	cards := []components.Metric{
		seriesMetric("Projected Income", fc.Income, t.Income),
		seriesMetric("Projected Expenditure", fc.Expenditure, t.Expense),
		netCard,
		{Label: "Horizon", Value: fmt.Sprintf("%d days", fc.HorizonDays), Delta: cli.FormatDate(fc.Start) + " to " + cli.FormatDate(end)},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if a.filter.Active() {
		noteStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Background)
		b.WriteString(noteStyle.Render(" Forecast uses every transaction in the ledger; the current filter is not applied."))
		b.WriteString("\n")
	}

	// Row 2: one chart per series
	chartH := 10
	if a.isCompactLayout() {
		b.WriteString(a.seriesCard("Income Forecast", fc.Income, t.Income, cw, chartH))
		b.WriteString("\n")
		b.WriteString(a.seriesCard("Expenditure Forecast", fc.Expenditure, t.Expense, cw, chartH))
		return b.String()
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		a.seriesCard("Income Forecast", fc.Income, t.Income, halves[0], chartH),
		a.seriesCard("Expenditure Forecast", fc.Expenditure, t.Expense, halves[1], chartH),
	}))
	return b.String()
}

func seriesMetric(label string, s forecast.SeriesForecast, color lipgloss.Color) components.Metric {
	if !s.OK() {
		return components.Metric{Label: label, Value: "n/a", Delta: "not enough data"}
	}
	delta := fmt.Sprintf("%s/day avg", cli.FormatMoneyFloat(s.Total/float64(len(s.Points))))
	return components.Metric{Label: label, Value: cli.FormatMoneyFloat(s.Total), Delta: delta, Color: color}
}

func (a App) seriesCard(title string, s forecast.SeriesForecast, color lipgloss.Color, outerW, chartH int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)

	if !s.OK() {
		var body strings.Builder
		body.WriteString(errStyle.Render(s.Err.Error()))
		var insufficient *forecast.InsufficientDataError
		if errors.As(s.Err, &insufficient) {
			body.WriteString("\n\n")
			body.WriteString(mutedStyle.Render("A line needs records on at least two different days."))
		}
		return components.ContentCard(title, body.String(), outerW)
	}

	vals := make([]float64, len(s.Points))
	dates := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Amount
		dates[i] = p.Date
	}

	var body strings.Builder
	body.WriteString(components.SignedBarChart(vals, chartDateLabels(dates), color, t.Red, innerW, chartH))
	body.WriteString("\n")
	body.WriteString(mutedStyle.Render(fitSummary(s.Fit)))
	if s.Fit.Degenerate {
		body.WriteString("\n")
		body.WriteString(warnStyle.Render("All records fall on one day; projecting their mean as a flat line."))
	}
	if s.Fit.HoldoutN > 0 {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(fmt.Sprintf("holdout RMSE %s over %d points",
			cli.FormatMoneyFloat(s.Fit.HoldoutRMSE), s.Fit.HoldoutN)))
	}
	return components.ContentCard(fmt.Sprintf("%s · %s", title, cli.FormatMoneyFloat(s.Total)), body.String(), outerW)
}

// fitSummary renders the fitted line and its goodness of fit.
func fitSummary(f forecast.FitResult) string {
	return fmt.Sprintf("slope %s/day · intercept %s · R² %.2f · %d points",
		signedFloat(f.Slope), cli.FormatMoneyFloat(f.Intercept), f.RSquared, f.N)
}

func signedFloat(f float64) string {
	if f > 0 {
		return "+" + cli.FormatMoneyFloat(f)
	}
	return cli.FormatMoneyFloat(f)
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}
