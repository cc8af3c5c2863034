package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/logging"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	filter, err := currentFilter()
	if err != nil {
		return err
	}

	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	logger, closeLog := tuiLogger()
	defer closeLog()

	app := tui.NewApp(tui.Options{
		DataPath: flagFile,
		Columns:  cfg.Columns.Model(),
		Filter:   filter,
		Forecast: cfg.Forecast.Model(),
		UseCache: !flagNoCache,
		FirstRun: !config.Exists(),
		Logger:   logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// tuiLogger sends diagnostics to a file while the alternate screen owns the
// terminal.
func tuiLogger() (zerolog.Logger, func()) {
	dir := pipeline.CacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), func() {}
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	return logging.New(logging.Config{Level: level, Format: "json", Out: f}), func() { _ = f.Close() }
}
