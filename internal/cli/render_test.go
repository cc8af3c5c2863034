package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Date", "Amount"},
		Rows: [][]string{
			{"2024-01-01", "$1.00"},
			{"---"},
			{"Total", "$1,000.00"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	width := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != width {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(l), width)
		}
	}
	if !strings.Contains(out, "   $1.00") {
		t.Errorf("numeric column not right-aligned:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("empty table = %q", got)
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	got := RenderHorizontalBar("Rent", 50, 100, 6, 10)
	if !strings.Contains(got, "Rent  ") || strings.Count(got, "█") != 5 {
		t.Errorf("bar = %q", got)
	}
}
