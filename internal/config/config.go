// Package config loads fburn settings from a TOML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FBURN_"

// Config holds all fburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Columns    ColumnsConfig    `toml:"columns"    envPrefix:"COLUMN_"`
	Forecast   ForecastConfig   `toml:"forecast"   envPrefix:"FORECAST_"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"        envPrefix:"LOG_"`
	Server     ServerConfig     `toml:"server"     envPrefix:"SERVER_"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataFile        string `toml:"data_file"                  env:"DATA_FILE"`
	DefaultCategory string `toml:"default_category,omitempty" env:"DEFAULT_CATEGORY"`
	DefaultMonth    string `toml:"default_month,omitempty"    env:"DEFAULT_MONTH"`
}

// ColumnsConfig names the CSV header columns.
type ColumnsConfig struct {
	Date     string `toml:"date"     env:"DATE"`
	Category string `toml:"category" env:"CATEGORY"`
	Amount   string `toml:"amount"   env:"AMOUNT"`
}

// Model returns the columns as a model.Columns.
func (c ColumnsConfig) Model() model.Columns {
	return model.Columns{Date: c.Date, Category: c.Category, Amount: c.Amount}
}

// ForecastConfig holds forecaster parameters.
type ForecastConfig struct {
	HorizonDays     int     `toml:"horizon_days"     env:"HORIZON_DAYS"`
	Seed            int64   `toml:"seed"             env:"SEED"`
	HoldoutFraction float64 `toml:"holdout_fraction" env:"HOLDOUT_FRACTION"`
}

// Model returns the forecaster configuration.
func (c ForecastConfig) Model() forecast.Config {
	return forecast.Config{HorizonDays: c.HorizonDays, Seed: c.Seed, HoldoutFraction: c.HoldoutFraction}
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" env:"THEME"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level  string `toml:"level"  env:"LEVEL"`
	Format string `toml:"format" env:"FORMAT"`
}

// ServerConfig holds settings for the local HTTP view.
type ServerConfig struct {
	Addr     string        `toml:"addr"      env:"ADDR"`
	CacheTTL time.Duration `toml:"cache_ttl" env:"CACHE_TTL"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	cols := model.DefaultColumns()
	fc := forecast.DefaultConfig()
	return Config{
		General: GeneralConfig{
			DataFile: "data.csv",
		},
		Columns: ColumnsConfig{
			Date:     cols.Date,
			Category: cols.Category,
			Amount:   cols.Amount,
		},
		Forecast: ForecastConfig{
			HorizonDays:     fc.HorizonDays,
			Seed:            fc.Seed,
			HoldoutFraction: fc.HoldoutFraction,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8787",
			CacheTTL: 10 * time.Minute,
		},
	}
}

// Validate rejects settings the forecaster or loader cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.Forecast.HorizonDays < 1 {
		errs = append(errs, fmt.Errorf("forecast.horizon_days must be at least 1, got %d", c.Forecast.HorizonDays))
	}
	if h := c.Forecast.HoldoutFraction; h < 0 || h >= forecast.MaxHoldoutFraction {
		errs = append(errs, fmt.Errorf("forecast.holdout_fraction must be in [0, %.1f), got %g", forecast.MaxHoldoutFraction, h))
	}
	if c.Columns.Date == "" || c.Columns.Category == "" || c.Columns.Amount == "" {
		errs = append(errs, errors.New("columns.date, columns.category and columns.amount must be set"))
	}
	if c.Server.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("server.cache_ttl must not be negative, got %s", c.Server.CacheTTL))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies FBURN_* environment overrides.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit file path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
