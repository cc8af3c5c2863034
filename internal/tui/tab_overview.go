package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const recentDays = 7

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	stats := a.stats
	var b strings.Builder

	// Row 1: key metrics
	cards := []components.Metric{
		{
			Label: "Net",
			Value: cli.FormatMoney(stats.Net),
			Delta: cli.FormatNumber(int64(stats.Count)) + " transactions",
			Color: t.AmountColor(stats.Net.Sign()),
		},
		{
			Label: "Average",
			Value: cli.FormatMoney(stats.Average),
			Delta: "per transaction",
		},
		{
			Label: "Income",
			Value: cli.FormatMoney(stats.TotalIncome),
			Delta: fmt.Sprintf("%s records", cli.FormatNumber(int64(stats.IncomeCount))),
			Color: t.Income,
		},
		{
			Label: "Expenses",
			Value: cli.FormatMoney(stats.TotalExpenses),
			Delta: fmt.Sprintf("%s records", cli.FormatNumber(int64(stats.ExpenseCount))),
			Color: t.Expense,
		},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	if stats.Count == 0 {
		b.WriteString(components.ContentCard("No matches", "No transactions match the current filter. Press Esc to clear it.", cw))
		return b.String()
	}

	// Row 2: daily net chart over every day in range
	days := pipeline.FillDays(a.dailyStats)
	vals := make([]float64, len(days))
	dates := make([]time.Time, len(days))
	for i, d := range days {
		vals[i] = d.Total.InexactFloat64()
		dates[i] = d.Date
	}
	chartH := 12
	if a.isCompactLayout() {
		chartH = 8
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily Net (%s to %s)", cli.FormatDate(stats.FirstDate), cli.FormatDate(stats.LastDate)),
		components.SignedBarChart(vals, chartDateLabels(dates), t.Income, t.Expense, components.CardInnerWidth(cw), chartH),
		cw,
	))
	b.WriteString("\n")

	// Row 3: statistics + recent days
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Statistics", a.renderStatistics(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Recent Days", a.renderRecentDays(components.CardInnerWidth(cw)), cw))
		return b.String()
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Statistics", a.renderStatistics(components.CardInnerWidth(halves[0])), halves[0]),
		components.ContentCard("Recent Days", a.renderRecentDays(components.CardInnerWidth(halves[1])), halves[1]),
	}))
	return b.String()
}

func (a App) renderStatistics(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	stats := a.stats
	largestIn, largestOut := extremes(a.filtered)
	span := int(stats.LastDate.Sub(stats.FirstDate).Hours()/24) + 1

	rows := []struct {
		label string
		value string
		color lipgloss.Color
	}{
		{"Total amount", cli.FormatMoney(stats.Total), t.AmountColor(stats.Total.Sign())},
		{"Transactions", cli.FormatNumber(int64(stats.Count)), ""},
		{"Active days", fmt.Sprintf("%d of %d", len(a.dailyStats), span), ""},
		{"Categories", cli.FormatNumber(int64(len(pipeline.Categories(a.filtered)))), ""},
		{"Largest income", formatExtreme(largestIn), t.Income},
		{"Largest expense", formatExtreme(largestOut), t.Expense},
	}

	labelW := 16
	var b strings.Builder
	for i, r := range rows {
		vs := valueStyle
		if r.color != "" {
			vs = vs.Foreground(r.color)
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, r.label)))
		b.WriteString(vs.Render(components.Truncate(r.value, max(1, innerW-labelW))))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (a App) renderRecentDays(innerW int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	incomeStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	expenseStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	colW := max(10, (innerW-15)/3)
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-14s %*s%*s%*s", "Date", colW, "Income", colW, "Expenses", colW, "Net")))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", min(innerW, 15+3*colW))))

	days := a.dailyStats
	if len(days) > recentDays {
		days = days[len(days)-recentDays:]
	}
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		b.WriteString("\n")
		b.WriteString(dateStyle.Render(fmt.Sprintf("%-14s ", d.Date.Format("Mon Jan 02"))))
		b.WriteString(incomeStyle.Render(fmt.Sprintf("%*s", colW, cli.FormatMoney(d.Income))))
		b.WriteString(expenseStyle.Render(fmt.Sprintf("%*s", colW, cli.FormatMoney(d.Expenses))))
		netStyle := lipgloss.NewStyle().Foreground(t.AmountColor(d.Total.Sign())).Background(t.Surface)
		b.WriteString(netStyle.Render(fmt.Sprintf("%*s", colW, cli.FormatSignedMoney(d.Total))))
	}
	return b.String()
}

// extremes returns the largest single income and the largest single expense.
// A nil result means that side has no records.
func extremes(txs []model.Transaction) (in, out *model.Transaction) {
	for i := range txs {
		tx := &txs[i]
		switch {
		case tx.IsIncome() && (in == nil || tx.Amount.GreaterThan(in.Amount)):
			in = tx
		case tx.IsExpense() && (out == nil || tx.Amount.LessThan(out.Amount)):
			out = tx
		}
	}
	return in, out
}

func formatExtreme(tx *model.Transaction) string {
	if tx == nil {
		return "-"
	}
	return fmt.Sprintf("%s  %s on %s", cli.FormatMoney(tx.Amount.Abs()), tx.Category, cli.FormatDate(tx.Date))
}

// floats converts decimal amounts for charting.
func floats(ds []decimal.Decimal) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.InexactFloat64()
	}
	return out
}
