package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const maxCategoryRows = 12

func (a App) renderBreakdownTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: category distribution, only meaningful across categories
	if a.filter.HasCategory() {
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		b.WriteString(components.ContentCard("Distribution by Category",
			mutedStyle.Render(fmt.Sprintf("Showing only %q. Press [ or ] to cycle to All for the category split.", a.filter.Category)),
			cw))
	} else if a.isCompactLayout() {
		b.WriteString(a.categoryCard("Income by Category", a.incomeCats, t.Income, cw))
		b.WriteString("\n")
		b.WriteString(a.categoryCard("Expenses by Category", a.expenseCats, t.Expense, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.categoryCard("Income by Category", a.incomeCats, t.Income, halves[0]),
			a.categoryCard("Expenses by Category", a.expenseCats, t.Expense, halves[1]),
		}))
	}
	b.WriteString("\n")

	// Row 2: monthly totals
	if len(a.monthly) > 0 {
		totals := make([]decimal.Decimal, len(a.monthly))
		labels := make([]string, len(a.monthly))
		for i, m := range a.monthly {
			totals[i] = m.Total
			labels[i] = monthLabel(m.Month, i == 0)
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Monthly Totals (%d months)", len(a.monthly)),
			components.SignedBarChart(floats(totals), labels, t.Income, t.Expense, components.CardInnerWidth(cw), 10),
			cw,
		))
	}
	return b.String()
}

func (a App) categoryCard(title string, cats []model.CategoryStats, color lipgloss.Color, outerW int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(outerW)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	if len(cats) == 0 {
		return components.ContentCard(title, mutedStyle.Render("No records."), outerW)
	}

	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.Amount)
	}

	amountW := 13
	labelW := min(18, max(8, innerW/3))
	barW := max(4, innerW-labelW-amountW-9) // spaces + "100.0%"

	var body strings.Builder
	shown := cats
	if len(shown) > maxCategoryRows {
		shown = shown[:maxCategoryRows]
	}
	for i, c := range shown {
		body.WriteString(components.ShareBar(c.Category, c.SharePercent/100, color, labelW, barW))
		body.WriteString(spaceStyle.Render(" "))
		body.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(c.Amount))))
		if i < len(shown)-1 {
			body.WriteString("\n")
		}
	}
	if rest := len(cats) - len(shown); rest > 0 {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render(fmt.Sprintf("+ %d more", rest)))
	}

	return components.ContentCard(fmt.Sprintf("%s · %s", title, cli.FormatMoney(total)), body.String(), outerW)
}

// monthLabel is "Jan", or "Jan 24" for the first month and every January.
func monthLabel(m model.YearMonth, first bool) string {
	if first || m.Month == 1 {
		return m.Start().Format("Jan 06")
	}
	return m.Start().Format("Jan")
}
