package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/source"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(d time.Time, cat, amount string) model.Transaction {
	return model.Transaction{Date: d, Category: cat, Amount: decimal.RequireFromString(amount), File: "ledger.csv"}
}

func testLedger() model.Ledger {
	return model.Ledger{
		Columns: model.DefaultColumns(),
		Transactions: []model.Transaction{
			tx(day(2024, 1, 3), "Salary", "3000"),
			tx(day(2024, 1, 5), "Rent", "-1200"),
			tx(day(2024, 1, 9), "Food", "-80.50"),
			tx(day(2024, 2, 3), "Salary", "3100"),
			tx(day(2024, 2, 6), "Food", "-95"),
			tx(day(2024, 3, 1), "Salary", "3200"),
			tx(day(2024, 3, 5), "Rent", "-1200"),
		},
	}
}

// loadedApp returns an App that has received a window size and a ledger.
func loadedApp(t *testing.T) App {
	t.Helper()
	a := NewApp(Options{
		DataPath:  "ledger.csv",
		Forecast:  forecast.DefaultConfig(),
		ExportDir: t.TempDir(),
		Logger:    zerolog.Nop(),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = m.(App).Update(DataLoadedMsg{Result: &pipeline.LoadResult{Ledger: testLedger(), TotalFiles: 1, ParsedFiles: 1}})
	return m.(App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a App, keys ...string) App {
	for _, k := range keys {
		m, _ := a.Update(key(k))
		a = m.(App)
	}
	return a
}

func TestDataLoaded_ComputesViews(t *testing.T) {
	a := loadedApp(t)

	require.True(t, a.loaded)
	require.NoError(t, a.loadErr)
	assert.Equal(t, []string{"Food", "Rent", "Salary"}, a.categories)
	assert.Len(t, a.months, 3)
	assert.Len(t, a.filtered, 7)
	assert.True(t, decimal.RequireFromString("6724.50").Equal(a.stats.Net), "net = %s", a.stats.Net)
	assert.Len(t, a.monthly, 3)
	require.NoError(t, a.forecastErr)
	assert.True(t, a.forecast.Income.OK())
	assert.True(t, a.forecast.Expenditure.OK())
	assert.Len(t, a.forecast.Income.Points, forecast.DefaultHorizonDays)
}

func TestCycleCategory(t *testing.T) {
	a := loadedApp(t)

	a = press(a, "]")
	assert.Equal(t, "Food", a.filter.Category)
	assert.Len(t, a.filtered, 2)

	a = press(a, "]", "]")
	assert.Equal(t, "Salary", a.filter.Category)

	a = press(a, "]")
	assert.False(t, a.filter.HasCategory(), "cycling past the last category returns to All")
	assert.Len(t, a.filtered, 7)

	a = press(a, "[")
	assert.Equal(t, "Salary", a.filter.Category, "cycling backwards from All wraps to the last category")
}

func TestCycleMonth(t *testing.T) {
	a := loadedApp(t)

	a = press(a, "}")
	assert.Equal(t, model.YearMonth{Year: 2024, Month: time.January}, a.filter.Month)
	assert.Len(t, a.filtered, 3)

	a = press(a, "{", "{")
	assert.Equal(t, model.YearMonth{Year: 2024, Month: time.March}, a.filter.Month)

	a = press(a, "esc")
	assert.False(t, a.filter.Active())
	assert.Len(t, a.filtered, 7)
}

func TestForecastIgnoresFilter(t *testing.T) {
	a := loadedApp(t)
	before := a.forecast.Income.Total

	a = press(a, "]", "}")
	require.True(t, a.filter.Active())
	assert.InDelta(t, before, a.forecast.Income.Total, 1e-9)
}

func TestTabKeys(t *testing.T) {
	a := loadedApp(t)
	tests := []struct {
		key  string
		want int
	}{
		{"f", tabForecast},
		{"t", tabTransactions},
		{"i", tabInsights},
		{"b", tabBreakdown},
		{"o", tabOverview},
	}
	for _, tt := range tests {
		a = press(a, tt.key)
		assert.Equal(t, tt.want, a.activeTab, "key %q", tt.key)
	}
}

func TestTransactionsNavigation(t *testing.T) {
	a := loadedApp(t)
	a = press(a, "t")

	a = press(a, "j", "j", "down")
	assert.Equal(t, 3, a.txCursor)
	a = press(a, "G")
	assert.Equal(t, 6, a.txCursor)
	a = press(a, "j")
	assert.Equal(t, 6, a.txCursor, "cursor stops at the last row")
	a = press(a, "g")
	assert.Equal(t, 0, a.txCursor)

	// Filtering clamps the cursor to the shorter list.
	a = press(a, "G", "]")
	assert.Equal(t, 0, a.txCursor)
}

func TestExportWritesFilteredCSV(t *testing.T) {
	a := loadedApp(t)
	a = press(a, "]") // Food

	_, cmd := a.Update(key("e"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(ExportedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, 2, msg.Rows)
	assert.Equal(t, filepath.Join(a.opts.ExportDir, ExportFileName), msg.Path)

	data, err := os.ReadFile(msg.Path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,Category,Transaction Amount", lines[0])
	assert.Contains(t, lines[1], "Food")

	m, _ := a.Update(msg)
	assert.Contains(t, m.(App).notice, "exported 2 rows")
}

func TestLoadErrorIsShown(t *testing.T) {
	a := NewApp(Options{DataPath: "bad.csv", Logger: zerolog.Nop()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	loadErr := &source.MalformedInputError{File: "bad.csv", Line: 4, Column: "date", Value: "yesterday", Err: errors.New("unrecognized date format")}
	m, _ = m.(App).Update(DataLoadedMsg{Err: loadErr})
	a = m.(App)

	require.Error(t, a.loadErr)
	view := a.View()
	assert.Contains(t, view, "Could not load bad.csv")
	assert.Contains(t, view, "line 4")

	// Filter keys do nothing without a ledger.
	a = press(a, "]")
	assert.False(t, a.filter.Active())
}

func TestReloadFailureKeepsLedger(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(DataLoadedMsg{Err: errors.New("disk gone"), Reload: true})
	a = m.(App)

	assert.NoError(t, a.loadErr)
	assert.Len(t, a.filtered, 7)
	assert.Contains(t, a.notice, "reload failed")
}

func TestReloadDropsVanishedFilter(t *testing.T) {
	a := loadedApp(t)
	a = press(a, "]") // Food
	require.Equal(t, "Food", a.filter.Category)

	l := testLedger()
	var kept []model.Transaction
	for _, tx := range l.Transactions {
		if tx.Category != "Food" {
			kept = append(kept, tx)
		}
	}
	l.Transactions = kept
	m, _ := a.Update(DataLoadedMsg{Result: &pipeline.LoadResult{Ledger: l}, Reload: true})
	a = m.(App)

	assert.False(t, a.filter.HasCategory())
	assert.Len(t, a.filtered, 5)
}

func TestForecastTabShowsInsufficientSeries(t *testing.T) {
	a := NewApp(Options{DataPath: "ledger.csv", Logger: zerolog.Nop()})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	l := model.Ledger{Transactions: []model.Transaction{
		tx(day(2024, 1, 1), "Salary", "1000"),
		tx(day(2024, 1, 2), "Food", "-10"),
		tx(day(2024, 1, 5), "Food", "-20"),
	}}
	m, _ = m.(App).Update(DataLoadedMsg{Result: &pipeline.LoadResult{Ledger: l}})
	a = press(m.(App), "f")

	var insufficient *forecast.InsufficientDataError
	require.ErrorAs(t, a.forecastErr, &insufficient)
	assert.True(t, a.forecast.Expenditure.OK())

	view := a.View()
	assert.Contains(t, view, "Income Forecast")
	assert.Contains(t, view, "A line needs records")
	assert.Contains(t, view, "Expenditure Forecast")
}

func TestViewRendersEveryTab(t *testing.T) {
	for _, width := range []int{90, 140} {
		a := loadedApp(t)
		m, _ := a.Update(tea.WindowSizeMsg{Width: width, Height: 45})
		a = m.(App)
		for tab := range []string{"o", "b", "t", "f", "i"} {
			a.activeTab = tab
			view := a.View()
			lines := strings.Split(view, "\n")
			assert.Len(t, lines, 45, "width %d tab %d fills the terminal height", width, tab)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.Contains(t, m.(App).View(), "Terminal too narrow")
}

func TestChartDateLabels(t *testing.T) {
	got := chartDateLabels([]time.Time{day(2024, 1, 30), day(2024, 1, 31), day(2024, 2, 1), day(2024, 2, 2)})
	assert.Equal(t, []string{"Jan", "31", "Feb", "2"}, got)
}

func TestWrap(t *testing.T) {
	assert.Equal(t, 0, wrap(3, 3))
	assert.Equal(t, 2, wrap(-1, 3))
	assert.Equal(t, 1, wrap(1, 3))
}
