package forecast

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func tx(day int, amount float64) model.Transaction {
	return model.Transaction{
		Date:     day0.AddDate(0, 0, day),
		Category: "test",
		Amount:   decimal.NewFromFloat(amount),
	}
}

func TestForecast_ShapeAndAnchor(t *testing.T) {
	txs := []model.Transaction{tx(0, 100), tx(3, -20), tx(7, 140), tx(9, -35)}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)

	wantStart := day0.AddDate(0, 0, 10)
	assert.True(t, res.Start.Equal(wantStart), "Start = %v, want %v", res.Start, wantStart)
	assert.True(t, res.Epoch.Equal(day0))

	for _, s := range []SeriesForecast{res.Income, res.Expenditure} {
		require.Len(t, s.Points, 30, s.Series)
		for i, p := range s.Points {
			want := wantStart.AddDate(0, 0, i)
			assert.True(t, p.Date.Equal(want), "%s[%d].Date = %v, want %v", s.Series, i, p.Date, want)
		}
	}
}

func TestForecast_Idempotent(t *testing.T) {
	txs := []model.Transaction{tx(0, 12.5), tx(1, -3), tx(4, 30), tx(4, -8.25), tx(6, 7)}
	f := New(Config{HorizonDays: 30, Seed: 42, HoldoutFraction: 0.2})

	a, errA := f.Forecast(txs)
	b, errB := f.Forecast(txs)
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestForecast_ExactLine(t *testing.T) {
	var txs []model.Transaction
	for d := 0; d < 20; d++ {
		txs = append(txs, tx(d, float64(2*d+10)))
		txs = append(txs, tx(d, -5))
	}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)

	inc := res.Income
	assert.InDelta(t, 2.0, inc.Fit.Slope, 1e-6)
	assert.InDelta(t, 10.0, inc.Fit.Intercept, 1e-6)
	assert.False(t, inc.Fit.Degenerate)
	for i, p := range inc.Points {
		want := float64(2*(20+i) + 10)
		assert.InDelta(t, want, p.Amount, 1e-6, "point %d", i)
	}
}

func TestForecast_Partition(t *testing.T) {
	txs := []model.Transaction{tx(0, 50), tx(1, -30), tx(2, 70)}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.Error(t, err)

	// Income: (0, 50), (2, 70).
	require.True(t, res.Income.OK())
	assert.InDelta(t, 10.0, res.Income.Fit.Slope, 1e-9)
	assert.InDelta(t, 50.0, res.Income.Fit.Intercept, 1e-9)
	assert.Equal(t, 2, res.Income.Fit.N)
	assert.InDelta(t, 80.0, res.Income.Points[0].Amount, 1e-9)

	// Expenditure: a single point at day 1 cannot be fit.
	var insufficient *InsufficientDataError
	require.ErrorAs(t, res.Expenditure.Err, &insufficient)
	assert.Equal(t, Expenditure, insufficient.Series)
	assert.Equal(t, 1, insufficient.Records)
	assert.Equal(t, 1, insufficient.DistinctDays)
	assert.Nil(t, res.Expenditure.Points)

	_, ok := res.PredictedNet()
	assert.False(t, ok)
}

func TestForecast_SharedEpoch(t *testing.T) {
	txs := []model.Transaction{
		tx(0, 100), tx(1, 100), tx(2, 100),
		tx(10, -10), tx(11, -20),
	}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)

	// Expenditure day indices are 10 and 11, not 0 and 1.
	assert.InDelta(t, 10.0, res.Expenditure.Fit.Slope, 1e-9)
	assert.InDelta(t, -90.0, res.Expenditure.Fit.Intercept, 1e-9)
	assert.InDelta(t, 30.0, res.Expenditure.Points[0].Amount, 1e-9)

	// Income is anchored after the latest overall date, not its own.
	assert.True(t, res.Income.Points[0].Date.Equal(day0.AddDate(0, 0, 12)))
}

func TestForecast_InsufficientIncomeKeepsExpenditure(t *testing.T) {
	txs := []model.Transaction{tx(0, 500), tx(0, -10), tx(1, -12), tx(2, -14)}

	res, err := New(DefaultConfig()).Forecast(txs)

	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, Income, insufficient.Series)
	assert.False(t, res.Income.OK())

	require.True(t, res.Expenditure.OK())
	require.Len(t, res.Expenditure.Points, 30)
	assert.InDelta(t, 2.0, res.Expenditure.Fit.Slope, 1e-9)
	assert.InDelta(t, 10.0, res.Expenditure.Fit.Intercept, 1e-9)
}

func TestForecast_NoIncomeRecords(t *testing.T) {
	res, err := New(DefaultConfig()).Forecast([]model.Transaction{tx(0, -1), tx(1, -2)})

	var insufficient *InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Records)
	assert.Contains(t, insufficient.Error(), "no income records")
	assert.True(t, res.Expenditure.OK())
}

func TestForecast_AlternatingNinetyDays(t *testing.T) {
	var txs []model.Transaction
	for d := 0; d < 90; d++ {
		if d%2 == 0 {
			txs = append(txs, tx(d, 100))
		} else {
			txs = append(txs, tx(d, -40))
		}
	}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)

	for i := range res.Income.Points {
		assert.InDelta(t, 100.0, res.Income.Points[i].Amount, 1e-6)
		assert.InDelta(t, 40.0, res.Expenditure.Points[i].Amount, 1e-6)
	}
	net, ok := res.PredictedNet()
	require.True(t, ok)
	assert.InDelta(t, 30*60.0, net, 1e-4)
	assert.InDelta(t, 3000.0, res.Income.Total, 1e-4)
}

func TestForecast_ZeroAmountsExcluded(t *testing.T) {
	txs := []model.Transaction{tx(0, 10), tx(1, 0), tx(2, 0), tx(2, 20), tx(1, -5), tx(3, -5)}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Income.Fit.N)
	assert.Equal(t, 2, res.Expenditure.Fit.N)
}

func TestForecast_NegativePredictionsNotClipped(t *testing.T) {
	txs := []model.Transaction{tx(0, 100), tx(1, 50), tx(0, -5), tx(1, -6)}

	res, err := New(DefaultConfig()).Forecast(txs)
	require.NoError(t, err)
	last := res.Income.Points[len(res.Income.Points)-1]
	assert.Less(t, last.Amount, 0.0)
}

func TestForecast_Empty(t *testing.T) {
	_, err := New(DefaultConfig()).Forecast(nil)
	assert.True(t, errors.Is(err, ErrNoTransactions))
}

func TestForecast_Holdout(t *testing.T) {
	var txs []model.Transaction
	for d := 0; d < 10; d++ {
		txs = append(txs, tx(d, float64(3*d+1)), tx(d, -2))
	}

	res, err := New(Config{HorizonDays: 7, Seed: 42, HoldoutFraction: 0.2}).Forecast(txs)
	require.NoError(t, err)

	assert.Len(t, res.Income.Points, 7)
	assert.Equal(t, 2, res.Income.Fit.HoldoutN)
	assert.Equal(t, 8, res.Income.Fit.N)
	assert.InDelta(t, 3.0, res.Income.Fit.Slope, 1e-9)
	assert.InDelta(t, 0.0, res.Income.Fit.HoldoutRMSE, 1e-9)
}

func TestNew_Defaults(t *testing.T) {
	cfg := New(Config{HorizonDays: 0, HoldoutFraction: 0.95}).Config()
	assert.Equal(t, DefaultHorizonDays, cfg.HorizonDays)
	assert.Zero(t, cfg.HoldoutFraction)
}

func TestDayIndex(t *testing.T) {
	epoch := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DayIndex(epoch, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DayIndex(epoch, epoch))
}
