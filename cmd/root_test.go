package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
)

func withFlags(t *testing.T, category, month string) {
	t.Helper()
	oldCat, oldMonth := flagCategory, flagMonth
	flagCategory, flagMonth = category, month
	t.Cleanup(func() { flagCategory, flagMonth = oldCat, oldMonth })
}

func TestCurrentFilter(t *testing.T) {
	withFlags(t, "Food", "2024-03")

	f, err := currentFilter()
	require.NoError(t, err)
	assert.Equal(t, "Food", f.Category)
	assert.Equal(t, model.YearMonth{Year: 2024, Month: time.March}, f.Month)
	assert.True(t, f.Active())
}

func TestCurrentFilter_AllMonth(t *testing.T) {
	withFlags(t, "", pipeline.All)

	f, err := currentFilter()
	require.NoError(t, err)
	assert.False(t, f.Active())
}

func TestCurrentFilter_BadMonth(t *testing.T) {
	withFlags(t, "", "March")

	_, err := currentFilter()
	assert.Error(t, err)
}

func TestFilterTitle(t *testing.T) {
	assert.Equal(t, "DAILY", filterTitle("DAILY", pipeline.Filter{}))
	assert.Equal(t, "DAILY  (category: Rent, month: All)", filterTitle("DAILY", pipeline.Filter{Category: "Rent"}))
}

func TestOrAll(t *testing.T) {
	assert.Equal(t, "All", orAll(""))
	assert.Equal(t, "Food", orAll("Food"))
}
