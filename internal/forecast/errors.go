package forecast

import (
	"errors"
	"fmt"
)

// ErrNoTransactions is returned when Forecast is called with an empty series.
var ErrNoTransactions = errors.New("forecast: no transactions")

// ErrEmptyFit is returned by Fit when given no points.
var ErrEmptyFit = errors.New("forecast: cannot fit zero points")

// InsufficientDataError reports a subseries with fewer than two distinct day
// indices, which cannot support a line fit.
type InsufficientDataError struct {
	Series       Series
	Records      int
	DistinctDays int
}

func (e *InsufficientDataError) Error() string {
	if e.Records == 0 {
		return fmt.Sprintf("forecast %s: no %s records", e.Series, e.Series)
	}
	return fmt.Sprintf("forecast %s: need transactions on at least 2 distinct days, have %d record(s) on %d day(s)",
		e.Series, e.Records, e.DistinctDays)
}
