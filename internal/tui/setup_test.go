package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/config"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	assert.Equal(t, pipeline.All, vals.DefaultCategory)

	vals.DataFile = " /tmp/ledger.csv "
	vals.DefaultCategory = "Food"
	vals.Theme = "tokyo-night"
	vals.HorizonDays = "14"
	require.NoError(t, vals.Apply(&cfg))

	assert.Equal(t, "/tmp/ledger.csv", cfg.General.DataFile)
	assert.Equal(t, "Food", cfg.General.DefaultCategory)
	assert.Equal(t, "tokyo-night", cfg.Appearance.Theme)
	assert.Equal(t, 14, cfg.Forecast.HorizonDays)
}

func TestSetupValuesApply_AllClearsCategory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.DefaultCategory = "Rent"
	vals := SetupValuesFrom(cfg)
	vals.DefaultCategory = pipeline.All
	require.NoError(t, vals.Apply(&cfg))
	assert.Empty(t, cfg.General.DefaultCategory)
}

func TestSetupValuesApply_BadHorizon(t *testing.T) {
	cfg := config.DefaultConfig()
	vals := SetupValuesFrom(cfg)
	vals.HorizonDays = "soon"
	assert.Error(t, vals.Apply(&cfg))

	vals.HorizonDays = "0"
	assert.Error(t, vals.Apply(&cfg), "horizon below 1 fails validation")
}

func TestValidateDataFile(t *testing.T) {
	assert.Error(t, validateDataFile(""))
	assert.Error(t, validateDataFile("/definitely/not/here.csv"))
	assert.NoError(t, validateDataFile(t.TempDir()))
}
