package components

import (
	"strings"

	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar. notice replaces the key
// hints when set (export results, reload errors); info is right-aligned.
func RenderStatusBar(width int, notice, info string, reloading bool) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	noticeStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	infoStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := hintStyle.Render(" [?]help  [ ]category  { }month  [e]xport  [r]eload  [q]uit")
	if notice != "" {
		left = noticeStyle.Render(" " + notice)
	}

	right := info
	if reloading {
		right = "reloading... " + right
	}
	if right != "" {
		right = infoStyle.Render(right + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return barStyle.Width(width).Render(left + barStyle.Render(strings.Repeat(" ", padding)) + right)
}
