package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// tableChrome is the number of lines the card and table header take.
const tableChrome = 6

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	title := fmt.Sprintf("Transactions · %s rows · net %s",
		cli.FormatNumber(int64(len(a.filtered))), cli.FormatMoney(a.stats.Total))
	if len(a.filtered) == 0 {
		return components.ContentCard(title, mutedStyle.Render("No transactions match the current filter."), cw)
	}

	dateW, amountW := 12, 14
	showSource := !a.isCompactLayout()
	sourceW := 0
	if showSource {
		sourceW = min(28, innerW/4)
	}
	catW := max(10, innerW-dateW-amountW-sourceW-3)

	var b strings.Builder
	header := fmt.Sprintf("%-*s %-*s %*s", dateW, "Date", catW, "Category", amountW, "Amount")
	if showSource {
		header += fmt.Sprintf(" %-*s", sourceW, "Source")
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(ruleStyle.Render(strings.Repeat("─", innerW)))

	visible := max(1, h-tableChrome)
	offset := max(0, a.txCursor-visible+1)
	end := min(len(a.filtered), offset+visible)

	for i := offset; i < end; i++ {
		tx := a.filtered[i]
		style := rowStyle
		if i == a.txCursor {
			style = selStyle
		}
		amountStyle := style.Foreground(t.AmountColor(tx.Amount.Sign()))

		b.WriteString("\n")
		b.WriteString(style.Render(fmt.Sprintf("%-*s %-*s ", dateW, cli.FormatDate(tx.Date), catW, components.Truncate(tx.Category, catW))))
		b.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSignedMoney(tx.Amount))))
		if showSource {
			src := fmt.Sprintf("%s:%d", filepath.Base(tx.File), tx.Line)
			b.WriteString(style.Foreground(t.TextDim).Render(fmt.Sprintf(" %-*s", sourceW, components.Truncate(src, sourceW))))
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d · j/k scroll · g/G jump", offset+1, end, len(a.filtered))))

	return components.ContentCard(title, b.String(), cw)
}
