package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/tui/theme"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	DataFile        string
	DefaultCategory string
	Theme           string
	HorizonDays     string
}

// SetupValuesFrom seeds the form with the current configuration.
func SetupValuesFrom(cfg config.Config) SetupValues {
	category := cfg.General.DefaultCategory
	if category == "" {
		category = pipeline.All
	}
	return SetupValues{
		DataFile:        cfg.General.DataFile,
		DefaultCategory: category,
		Theme:           cfg.Appearance.Theme,
		HorizonDays:     strconv.Itoa(cfg.Forecast.HorizonDays),
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	days, err := strconv.Atoi(strings.TrimSpace(v.HorizonDays))
	if err != nil {
		return fmt.Errorf("forecast horizon: %w", err)
	}
	cfg.General.DataFile = strings.TrimSpace(v.DataFile)
	cfg.General.DefaultCategory = ""
	if v.DefaultCategory != pipeline.All {
		cfg.General.DefaultCategory = v.DefaultCategory
	}
	cfg.Appearance.Theme = v.Theme
	cfg.Forecast.HorizonDays = days
	return cfg.Validate()
}

// NewSetupForm builds the setup form. categories feeds the default
// category choice; with none, that question is skipped.
func NewSetupForm(vals *SetupValues, categories []string) *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Ledger file").
			Description("CSV file or directory of CSV files to load.").
			Value(&vals.DataFile).
			Validate(validateDataFile),
		huh.NewSelect[string]().
			Title("Color theme").
			Options(huh.NewOptions(theme.Names()...)...).
			Value(&vals.Theme),
		huh.NewInput().
			Title("Forecast horizon (days)").
			Value(&vals.HorizonDays).
			Validate(validateHorizon),
	}
	if len(categories) > 0 {
		opts := append([]string{pipeline.All}, categories...)
		fields = append(fields, huh.NewSelect[string]().
			Title("Default category filter").
			Options(huh.NewOptions(opts...)...).
			Value(&vals.DefaultCategory))
	}

	return huh.NewForm(
		huh.NewGroup(fields...).
			Title("fburn setup").
			Description("Saved to " + config.ConfigPath()),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}

func validateDataFile(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("a path is required")
	}
	if _, err := os.Stat(s); err != nil {
		return fmt.Errorf("cannot read %s", s)
	}
	return nil
}

func validateHorizon(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of days, at least 1")
	}
	return nil
}

// saveSetupConfig persists the first-run answers and applies them to the
// running dashboard.
func (a *App) saveSetupConfig() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)
	if cfg.General.DefaultCategory != "" {
		a.filter.Category = cfg.General.DefaultCategory
	}
	return config.Save(cfg)
}
