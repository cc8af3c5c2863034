package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderInsightsTab(cw int) string {
	t := theme.Active
	ins := a.insights
	var b strings.Builder

	monthCard := func(label string, m *model.MonthlyStats) components.Metric {
		if m == nil {
			return components.Metric{Label: label, Value: "-"}
		}
		return components.Metric{
			Label: label,
			Value: m.Month.String(),
			Delta: cli.FormatSignedMoney(m.Total),
			Color: t.AmountColor(m.Total.Sign()),
		}
	}

	trendColor := t.TextPrimary
	switch ins.Trend {
	case model.TrendPositive:
		trendColor = t.Income
	case model.TrendNegative:
		trendColor = t.Expense
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		monthCard("Best Month", ins.BestMonth),
		monthCard("Worst Month", ins.WorstMonth),
		{
			Label: "Recent Trend",
			Value: ins.Trend.String(),
			Delta: fmt.Sprintf("%s over last %d transactions", cli.FormatChange(ins.TrendValue), pipeline.TrendWindow),
			Color: trendColor,
		},
	}, cw))
	b.WriteString("\n")

	if len(a.monthly) == 0 {
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	monthStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	markStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	var body strings.Builder
	body.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %14s %7s  %s", "Month", "Total", "Count", "")))
	body.WriteString("\n")
	body.WriteString(ruleStyle.Render(strings.Repeat("─", min(innerW, 48))))
	for _, m := range a.monthly {
		amountStyle := lipgloss.NewStyle().Foreground(t.AmountColor(m.Total.Sign())).Background(t.Surface)
		body.WriteString("\n")
		body.WriteString(monthStyle.Render(fmt.Sprintf("%-16s ", m.Month.String())))
		body.WriteString(amountStyle.Render(fmt.Sprintf("%14s", cli.FormatSignedMoney(m.Total))))
		body.WriteString(mutedStyle.Render(fmt.Sprintf(" %7s  ", cli.FormatNumber(int64(m.Count)))))
		switch {
		case ins.BestMonth != nil && m.Month == ins.BestMonth.Month:
			body.WriteString(markStyle.Render("▲ best"))
		case ins.WorstMonth != nil && m.Month == ins.WorstMonth.Month:
			body.WriteString(markStyle.Render("▼ worst"))
		}
	}

	totals := make([]float64, len(a.monthly))
	for i, m := range a.monthly {
		totals[i] = m.Total.InexactFloat64()
	}
	body.WriteString("\n\n")
	body.WriteString(mutedStyle.Render("trend "))
	body.WriteString(components.Sparkline(totals, t.Accent))

	b.WriteString(components.ContentCard("Monthly Summary", body.String(), cw))
	return b.String()
}
