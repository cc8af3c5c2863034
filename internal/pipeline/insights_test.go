package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/model"
)

func TestInsights_BestWorstMonth(t *testing.T) {
	ins := Insights(sampleLedger())

	require.NotNil(t, ins.BestMonth)
	require.NotNil(t, ins.WorstMonth)
	assert.Equal(t, "March 2024", ins.BestMonth.Month.String())
	// The zero-filled gap month is the lowest.
	assert.Equal(t, "February 2024", ins.WorstMonth.Month.String())
}

func TestInsights_Empty(t *testing.T) {
	ins := Insights(nil)
	assert.Nil(t, ins.BestMonth)
	assert.Nil(t, ins.WorstMonth)
	assert.Equal(t, model.TrendStable, ins.Trend)
	assert.True(t, math.IsNaN(ins.TrendValue))
}

func TestRecentTrend(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		want    model.Trend
	}{
		{"rising", []string{"5", "10", "20", "40"}, model.TrendPositive},
		{"falling", []string{"100", "50", "25"}, model.TrendNegative},
		{"flat", []string{"10", "10", "10"}, model.TrendStable},
		{"single", []string{"10"}, model.TrendStable},
		{"from zero", []string{"0", "10", "10"}, model.TrendPositive},
		{"zero to zero skipped", []string{"0", "0", "-5"}, model.TrendNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var txs []model.Transaction
			for i, a := range tt.amounts {
				txs = append(txs, mk(date(2024, 1, 1+i), "x", a))
			}
			assert.Equal(t, tt.want, Insights(txs).Trend)
		})
	}
}

func TestRecentTrend_UsesLatestByDate(t *testing.T) {
	// Input order is not date order; only the last three by date count.
	txs := []model.Transaction{
		mk(date(2024, 1, 4), "x", "30"),
		mk(date(2024, 1, 1), "x", "1000"),
		mk(date(2024, 1, 2), "x", "10"),
		mk(date(2024, 1, 3), "x", "20"),
	}
	got := RecentTrend(txs, TrendWindow)
	assert.InDelta(t, (1.0+0.5)/2, got, 1e-12)
}

func TestRecentTrend_OppositeInfinities(t *testing.T) {
	txs := []model.Transaction{
		mk(date(2024, 1, 1), "x", "0"),
		mk(date(2024, 1, 2), "x", "5"),
		mk(date(2024, 1, 3), "x", "0"),
		mk(date(2024, 1, 4), "x", "-5"),
	}
	assert.True(t, math.IsNaN(RecentTrend(txs, 4)))
}
