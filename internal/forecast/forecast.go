// Package forecast projects daily income and expenditure forward with an
// independent least-squares line per series.
//
// Each transaction is placed on a day index counted from the earliest date
// in the input (the epoch). Income is every positive amount, expenditure the
// absolute value of every negative amount; zero amounts belong to neither.
// Both series are projected over the same dates, starting the day after the
// latest input date.
package forecast

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/theirongolddev/fburn/internal/model"
)

// Series names one of the two forecast subseries.
type Series string

const (
	Income      Series = "income"
	Expenditure Series = "expenditure"
)

const (
	DefaultHorizonDays = 30
	DefaultSeed        = 42

	// MaxHoldoutFraction is the exclusive upper bound for Config.HoldoutFraction.
	MaxHoldoutFraction = 0.9
)

// Config controls a Forecaster.
type Config struct {
	HorizonDays int
	Seed        int64

	// HoldoutFraction of each subseries is set aside before fitting and used
	// only to report HoldoutRMSE. Zero fits on every point.
	HoldoutFraction float64
}

// DefaultConfig returns a 30-day horizon, seed 42, and no holdout.
func DefaultConfig() Config {
	return Config{
		HorizonDays: DefaultHorizonDays,
		Seed:        DefaultSeed,
	}
}

// Point is one projected day.
type Point struct {
	Date   time.Time
	Amount float64
}

// SeriesForecast is the outcome for one subseries. When Err is set, Fit,
// Points, and Total are zero.
type SeriesForecast struct {
	Series Series
	Fit    FitResult
	Points []Point
	Total  float64
	Err    error
}

// OK reports whether the series was forecast.
func (s SeriesForecast) OK() bool { return s.Err == nil }

// Result holds both subseries forecasts over a shared epoch and anchor.
type Result struct {
	Epoch       time.Time // earliest input date, day index 0
	Start       time.Time // first projected date
	HorizonDays int
	Income      SeriesForecast
	Expenditure SeriesForecast
}

// PredictedNet is projected income minus projected expenditure. The second
// return is false unless both series succeeded.
func (r Result) PredictedNet() (float64, bool) {
	if !r.Income.OK() || !r.Expenditure.OK() {
		return 0, false
	}
	return r.Income.Total - r.Expenditure.Total, true
}

// Degenerate lists the series whose fit fell back to a flat mean.
func (r Result) Degenerate() []Series {
	var out []Series
	for _, s := range []SeriesForecast{r.Income, r.Expenditure} {
		if s.OK() && s.Fit.Degenerate {
			out = append(out, s.Series)
		}
	}
	return out
}

// Forecaster fits and projects. It holds no state between calls.
type Forecaster struct {
	cfg Config
}

// New returns a Forecaster. Non-positive HorizonDays falls back to the
// default; HoldoutFraction is clamped to [0, MaxHoldoutFraction).
func New(cfg Config) *Forecaster {
	if cfg.HorizonDays < 1 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	if cfg.HoldoutFraction < 0 || math.IsNaN(cfg.HoldoutFraction) {
		cfg.HoldoutFraction = 0
	}
	if cfg.HoldoutFraction >= MaxHoldoutFraction {
		cfg.HoldoutFraction = 0
	}
	return &Forecaster{cfg: cfg}
}

// Config returns the effective configuration.
func (f *Forecaster) Config() Config { return f.cfg }

// Forecast projects both series from txs, which should be the full
// unfiltered ledger. A failure in one series does not affect the other; the
// returned error joins the per-series errors and is nil when both succeed.
func (f *Forecaster) Forecast(txs []model.Transaction) (Result, error) {
	if len(txs) == 0 {
		return Result{}, ErrNoTransactions
	}

	epoch, last := model.DateSpan(txs)
	epoch = model.CalendarDate(epoch)
	start := model.CalendarDate(last).AddDate(0, 0, 1)

	var incX, incY, expX, expY []float64
	for _, t := range txs {
		x := float64(DayIndex(epoch, t.Date))
		switch {
		case t.Amount.IsPositive():
			incX = append(incX, x)
			incY = append(incY, t.Amount.InexactFloat64())
		case t.Amount.IsNegative():
			expX = append(expX, x)
			expY = append(expY, t.Amount.Abs().InexactFloat64())
		}
	}

	res := Result{
		Epoch:       epoch,
		Start:       start,
		HorizonDays: f.cfg.HorizonDays,
		Income:      f.series(Income, incX, incY, epoch, start),
		Expenditure: f.series(Expenditure, expX, expY, epoch, start),
	}
	return res, errors.Join(res.Income.Err, res.Expenditure.Err)
}

func (f *Forecaster) series(name Series, xs, ys []float64, epoch, start time.Time) SeriesForecast {
	out := SeriesForecast{Series: name}

	if days := distinct(xs); days < 2 {
		out.Err = &InsufficientDataError{Series: name, Records: len(xs), DistinctDays: days}
		return out
	}

	fitX, fitY, testX, testY := f.split(name, xs, ys)
	fit, err := Fit(fitX, fitY)
	if err != nil {
		out.Err = err
		return out
	}
	if len(testX) > 0 {
		fit.HoldoutN = len(testX)
		fit.HoldoutRMSE = rmse(fit.Line, testX, testY)
	}

	out.Fit = fit
	out.Points = make([]Point, f.cfg.HorizonDays)
	for i := range out.Points {
		d := start.AddDate(0, 0, i)
		y := fit.At(float64(DayIndex(epoch, d)))
		out.Points[i] = Point{Date: d, Amount: y}
		out.Total += y
	}
	return out
}

// split partitions points into fit and holdout sets. The shuffle is seeded
// per series so results are reproducible.
func (f *Forecaster) split(name Series, xs, ys []float64) (fitX, fitY, testX, testY []float64) {
	n := len(xs)
	nTest := int(math.Ceil(f.cfg.HoldoutFraction * float64(n)))
	if nTest == 0 {
		return xs, ys, nil, nil
	}
	if nTest > n-1 {
		nTest = n - 1
	}

	seed := f.cfg.Seed
	if name == Expenditure {
		seed++
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split, not security

	for i, j := range perm {
		if i < nTest {
			testX = append(testX, xs[j])
			testY = append(testY, ys[j])
		} else {
			fitX = append(fitX, xs[j])
			fitY = append(fitY, ys[j])
		}
	}
	return fitX, fitY, testX, testY
}

// DayIndex is the number of whole calendar days from epoch to d.
func DayIndex(epoch, d time.Time) int {
	return int(model.CalendarDate(d).Sub(model.CalendarDate(epoch)).Hours() / 24)
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
