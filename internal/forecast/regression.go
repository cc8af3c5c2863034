package forecast

import (
	"fmt"
	"math"
)

// Line is y = Slope*x + Intercept.
type Line struct {
	Slope     float64
	Intercept float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

// FitResult is a fitted line plus diagnostics.
type FitResult struct {
	Line
	N        int
	RSquared float64

	// Degenerate is set when the fit set had zero variance in x. The line is
	// then flat at the mean of y.
	Degenerate bool

	// Holdout diagnostics; zero when no points were held out.
	HoldoutN    int
	HoldoutRMSE float64
}

// Fit computes an ordinary least squares line through (xs[i], ys[i]).
// Zero variance in xs yields a flat line at mean(ys) with Degenerate set.
func Fit(xs, ys []float64) (FitResult, error) {
	if len(xs) != len(ys) {
		return FitResult{}, fmt.Errorf("forecast: fit length mismatch: %d xs, %d ys", len(xs), len(ys))
	}
	n := len(xs)
	if n == 0 {
		return FitResult{}, ErrEmptyFit
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	// Centered sums keep precision when day indices are large.
	var sxx, sxy, syy float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}

	if sxx == 0 {
		return FitResult{
			Line:       Line{Slope: 0, Intercept: meanY},
			N:          n,
			Degenerate: true,
		}, nil
	}

	slope := sxy / sxx
	line := Line{Slope: slope, Intercept: meanY - slope*meanX}

	r2 := 1.0
	if syy != 0 {
		var ssRes float64
		for i := range xs {
			d := ys[i] - line.At(xs[i])
			ssRes += d * d
		}
		r2 = 1 - ssRes/syy
	}

	return FitResult{Line: line, N: n, RSquared: r2}, nil
}

// rmse is the root mean squared error of l over the given points.
func rmse(l Line, xs, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i := range xs {
		d := ys[i] - l.At(xs[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
