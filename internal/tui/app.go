// Package tui provides the interactive Bubble Tea dashboard for fburn.
package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/fburn/internal/cli"
	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/source"
	"github.com/theirongolddev/fburn/internal/store"
	"github.com/theirongolddev/fburn/internal/tui/components"
	"github.com/theirongolddev/fburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// ExportFileName is the name of the CSV written by the export key.
const ExportFileName = "filtered_data.csv"

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabBreakdown
	tabTransactions
	tabForecast
	tabInsights
)

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Err      error
	LoadTime time.Duration
	Reload   bool
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// ExportedMsg reports the outcome of a CSV export.
type ExportedMsg struct {
	Path string
	Rows int
	Err  error
}

type clearNoticeMsg struct{ seq int }

// Options configures the dashboard.
type Options struct {
	DataPath  string
	Columns   model.Columns
	Filter    pipeline.Filter
	Forecast  forecast.Config
	UseCache  bool
	ExportDir string // defaults to the working directory
	FirstRun  bool   // show the setup form once data is loaded
	Logger    zerolog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	log  zerolog.Logger

	// Data
	ledger   model.Ledger
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Filter state and the values it can cycle through
	filter     pipeline.Filter
	categories []string
	months     []model.YearMonth

	// Pre-computed for current filter
	filtered    []model.Transaction
	stats       model.SummaryStats
	dailyStats  []model.DailyStats
	incomeCats  []model.CategoryStats
	expenseCats []model.CategoryStats
	monthly     []model.MonthlyStats
	insights    model.Insights

	// Forecast over the whole ledger, recomputed only on load
	forecast    forecast.Result
	forecastErr error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	txCursor  int
	notice    string
	noticeSeq int
	reloading bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg // progress + completion messages from loader goroutine
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	scrollOverhead    = 10 // approximate header + status bar height for half-page calc
	minHalfPageScroll = 1  // minimum lines for half-page scroll
	minContentHeight  = 5  // minimum content area height

	noticeDuration = 4 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Columns == (model.Columns{}) {
		opts.Columns = model.DefaultColumns()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:      opts,
		log:       opts.Logger,
		filter:    opts.Filter,
		needSetup: opts.FirstRun,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.opts, a.loadSub),
		a.spinner.Tick,
	)
}

// setLedger installs a freshly loaded ledger and recomputes everything.
func (a *App) setLedger(l model.Ledger) {
	a.ledger = l
	a.categories = pipeline.Categories(l.Transactions)
	a.months = pipeline.Months(l.Transactions)

	// A filter value that vanished from the data falls back to All.
	if a.filter.HasCategory() && indexOf(a.categories, a.filter.Category) < 0 {
		a.filter.Category = ""
	}
	if !a.filter.Month.IsZero() && monthIndex(a.months, a.filter.Month) < 0 {
		a.filter.Month = model.YearMonth{}
	}

	start := time.Now()
	a.forecast, a.forecastErr = forecast.New(a.opts.Forecast).Forecast(l.Transactions)
	ev := a.log.Debug().Dur("took", time.Since(start))
	if a.forecastErr != nil {
		ev = ev.AnErr("forecast_error", a.forecastErr)
	}
	ev.Msg("forecast computed")
	for _, s := range a.forecast.Degenerate() {
		a.log.Warn().Str("series", string(s)).Msg("degenerate fit, projecting the mean")
	}

	a.recompute()
}

func (a *App) recompute() {
	a.filtered = a.filter.Apply(a.ledger.Transactions)
	a.stats = pipeline.Summarize(a.filtered)
	a.dailyStats = pipeline.AggregateDays(a.filtered)
	a.incomeCats = pipeline.AggregateCategories(a.filtered, pipeline.Income)
	a.expenseCats = pipeline.AggregateCategories(a.filtered, pipeline.Expenses)
	a.monthly = pipeline.AggregateMonths(a.filtered)
	a.insights = pipeline.Insights(a.filtered)

	// Clamp the transactions cursor to the new filtered list bounds
	a.txCursor = max(0, min(a.txCursor, len(a.filtered)-1))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabTransactions {
				a.moveCursor(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabTransactions {
				a.moveCursor(1)
			}
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.reloading = false
		a.loadTime = msg.LoadTime
		if msg.Err != nil {
			a.log.Error().Err(msg.Err).Str("path", a.opts.DataPath).Msg("loading ledger")
			if msg.Reload && a.loadErr == nil {
				// Keep showing the last good ledger.
				return a.setNotice("reload failed: " + msg.Err.Error())
			}
			a.loadErr = msg.Err
			return a, nil
		}
		a.loadErr = nil
		a.setLedger(msg.Result.Ledger)
		a.log.Debug().
			Int("files", msg.Result.TotalFiles).
			Int("cache_hits", msg.Result.CacheHits).
			Int("reparsed", msg.Result.Reparsed).
			Int("transactions", len(msg.Result.Ledger.Transactions)).
			Msg("ledger loaded")

		if msg.Reload {
			return a.setNotice(fmt.Sprintf("reloaded %s transactions", cli.FormatNumber(int64(len(a.ledger.Transactions)))))
		}

		// Activate first-run setup after data loads
		if a.needSetup {
			a.setupVals = SetupValues{
				DataFile:        a.opts.DataPath,
				DefaultCategory: pipeline.All,
				Theme:           theme.Active.Name,
				HorizonDays:     strconv.Itoa(forecast.New(a.opts.Forecast).Config().HorizonDays),
			}
			a.setupForm = NewSetupForm(&a.setupVals, a.categories)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case ExportedMsg:
		if msg.Err != nil {
			a.log.Error().Err(msg.Err).Msg("exporting filtered data")
			return a.setNotice("export failed: " + msg.Err.Error())
		}
		return a.setNotice(fmt.Sprintf("exported %d rows to %s", msg.Rows, msg.Path))

	case clearNoticeMsg:
		if msg.seq == a.noticeSeq {
			a.notice = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.reloading {
			return a, nil
		}
		a.reloading = true
		return a, reloadDataCmd(a.opts)
	}

	// Everything below needs a ledger.
	if a.loadErr != nil {
		return a, nil
	}

	if a.activeTab == tabTransactions && a.updateTransactionsKey(key) {
		return a, nil
	}

	switch key {
	case "]":
		a.cycleCategory(1)
	case "[":
		a.cycleCategory(-1)
	case "}":
		a.cycleMonth(1)
	case "{":
		a.cycleMonth(-1)
	case "esc":
		if a.filter.Active() {
			a.filter = pipeline.Filter{}
			a.recompute()
		}
	case "e":
		return a, exportCmd(a.filtered, a.ledger.Columns, filepath.Join(a.opts.ExportDir, ExportFileName))
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

// updateTransactionsKey handles list navigation and reports whether key was used.
func (a *App) updateTransactionsKey(key string) bool {
	halfPage := max(minHalfPageScroll, (a.height-scrollOverhead)/2)
	switch key {
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "ctrl+d", "pgdown":
		a.moveCursor(halfPage)
	case "ctrl+u", "pgup":
		a.moveCursor(-halfPage)
	case "g", "home":
		a.txCursor = 0
	case "G", "end":
		a.moveCursor(len(a.filtered))
	default:
		return false
	}
	return true
}

func (a *App) moveCursor(delta int) {
	a.txCursor = max(0, min(a.txCursor+delta, len(a.filtered)-1))
}

// cycleCategory steps the category filter through All and every category.
func (a *App) cycleCategory(step int) {
	options := append([]string{pipeline.All}, a.categories...)
	cur := 0
	if a.filter.HasCategory() {
		cur = max(0, indexOf(options, a.filter.Category))
	}
	next := options[wrap(cur+step, len(options))]
	if next == pipeline.All {
		next = ""
	}
	a.filter.Category = next
	a.txCursor = 0
	a.recompute()
}

// cycleMonth steps the month filter through All and every month present.
func (a *App) cycleMonth(step int) {
	options := append([]model.YearMonth{{}}, a.months...)
	cur := max(0, monthIndex(options, a.filter.Month))
	a.filter.Month = options[wrap(cur+step, len(options))]
	a.txCursor = 0
	a.recompute()
}

func (a App) setNotice(s string) (tea.Model, tea.Cmd) {
	a.noticeSeq++
	a.notice = s
	seq := a.noticeSeq
	return a, tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		if err := a.saveSetupConfig(); err != nil {
			a.log.Error().Err(err).Msg("saving setup")
			return a.setNotice("setup not saved: " + err.Error())
		}
		a.recompute()
		return a.setNotice("setup saved to " + config.ConfigPath())
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(5, a.height)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fburn"))
	b.WriteString(subtitleStyle.Render(" · Financial Dashboard"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Parsing ledger files\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Reading " + a.opts.DataPath + "..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o b t f i", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Scroll transactions"},
			{"^d ^u", "Half-page scroll"},
			{"g G", "First / Last transaction"},
		}},
		{"Filters", [][2]string{
			{"[ ]", "Previous / Next category"},
			{"{ }", "Previous / Next month"},
			{"Esc", "Clear filters"},
		}},
		{"Actions", [][2]string{
			{"e", "Export filtered rows to " + ExportFileName},
			{"r", "Reload ledger"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// 1. Header: tab bar + filter line
	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderFilterLine(w)

	// 2. Status bar
	info := fmt.Sprintf("%s txns · %.1fs", cli.FormatNumber(int64(len(a.ledger.Transactions))), a.loadTime.Seconds())
	statusBar := components.RenderStatusBar(w, a.notice, info, a.reloading)

	// 3. Content zone height
	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	// 4. Tab content
	var content string
	switch {
	case a.loadErr != nil:
		content = a.renderLoadError(cw)
	case len(a.ledger.Transactions) == 0:
		content = components.ContentCard("No data", "The ledger at "+a.opts.DataPath+" has no transactions.", cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabBreakdown:
			content = a.renderBreakdownTab(cw)
		case tabTransactions:
			content = a.renderTransactionsTab(cw, contentH)
		case tabForecast:
			content = a.renderForecastTab(cw)
		case tabInsights:
			content = a.renderInsightsTab(cw)
		}
	}

	// 5. Truncate + pad to exactly contentH lines, filling each with background
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderFilterLine(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	category := pipeline.All
	if a.filter.HasCategory() {
		category = a.filter.Category
	}
	month := pipeline.All
	if !a.filter.Month.IsZero() {
		month = a.filter.Month.String()
	}

	line := dim.Render(" category ") + accent.Render(category) +
		dim.Render(" │ month ") + accent.Render(month) +
		dim.Render(fmt.Sprintf(" │ %s of %s rows",
			cli.FormatNumber(int64(len(a.filtered))),
			cli.FormatNumber(int64(len(a.ledger.Transactions)))))

	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(line)
}

func (a App) renderLoadError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(errStyle.Render(a.loadErr.Error()))
	b.WriteString("\n\n")
	var malformed *source.MalformedInputError
	if errors.As(a.loadErr, &malformed) {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Fix %s line %d and press r to reload.", malformed.File, malformed.Line)))
	} else {
		b.WriteString(mutedStyle.Render("Press r to retry or q to quit."))
	}
	return components.ContentCard("Could not load "+a.opts.DataPath, b.String(), cw)
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd starts the data loading pipeline in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(opts Options, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so workers aren't stalled; the next update catches up.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			res, err := loadLedger(opts, progressFn)
			sub <- DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start)}
		}()

		// Block until the first message (either ProgressMsg or DataLoadedMsg)
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// reloadDataCmd reloads the ledger in the background without progress UI.
func reloadDataCmd(opts Options) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := loadLedger(opts, nil)
		return DataLoadedMsg{Result: res, Err: err, LoadTime: time.Since(start), Reload: true}
	}
}

// loadLedger tries the parse cache first and falls back to a direct parse.
func loadLedger(opts Options, progressFn pipeline.ProgressFunc) (*pipeline.LoadResult, error) {
	if opts.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			res, loadErr := pipeline.LoadWithCache(opts.DataPath, opts.Columns, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return res, nil
			}
			opts.Logger.Warn().Err(loadErr).Msg("cached load failed, parsing directly")
		} else {
			opts.Logger.Warn().Err(err).Msg("opening parse cache")
		}
	}
	return pipeline.Load(opts.DataPath, opts.Columns, progressFn)
}

// exportCmd writes txs as CSV to path.
func exportCmd(txs []model.Transaction, cols model.Columns, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		if err := pipeline.WriteCSV(f, txs, cols); err != nil {
			_ = f.Close()
			return ExportedMsg{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return ExportedMsg{Path: path, Err: err}
		}
		return ExportedMsg{Path: path, Rows: len(txs)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// chartDateLabels builds compact X-axis labels for an ascending date series.
// The first label and month boundaries show the month abbreviation;
// everything else shows the day number.
func chartDateLabels(dates []time.Time) []string {
	labels := make([]string, len(dates))
	prevMonth := time.Month(0)
	for i, dt := range dates {
		if i == 0 || dt.Month() != prevMonth {
			labels[i] = dt.Format("Jan")
		} else {
			labels[i] = strconv.Itoa(dt.Day())
		}
		prevMonth = dt.Month()
	}
	return labels
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

func monthIndex(ms []model.YearMonth, m model.YearMonth) int {
	for i, x := range ms {
		if x == m {
			return i
		}
	}
	return -1
}

// wrap maps i into [0, n).
func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
