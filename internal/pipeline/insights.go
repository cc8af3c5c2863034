package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/fburn/internal/model"
)

// TrendWindow is the number of most recent transactions the trend looks at.
const TrendWindow = 3

// Insights derives best/worst month and the recent trend from txs.
// Best and worst are nil for an empty slice.
func Insights(txs []model.Transaction) model.Insights {
	var ins model.Insights

	months := AggregateMonths(txs)
	for i := range months {
		m := months[i]
		if ins.BestMonth == nil || m.Total.GreaterThan(ins.BestMonth.Total) {
			ins.BestMonth = &m
		}
		if ins.WorstMonth == nil || m.Total.LessThan(ins.WorstMonth.Total) {
			ins.WorstMonth = &m
		}
	}

	ins.TrendValue = RecentTrend(txs, TrendWindow)
	switch {
	case ins.TrendValue > 0:
		ins.Trend = model.TrendPositive
	case ins.TrendValue < 0:
		ins.Trend = model.TrendNegative
	default:
		ins.Trend = model.TrendStable
	}
	return ins
}

// RecentTrend is the mean relative change between consecutive amounts of the
// last n transactions by date. A change from zero is ±Inf (or undefined for
// zero to zero); undefined changes are skipped. NaN when nothing remains.
func RecentTrend(txs []model.Transaction, n int) float64 {
	sorted := make([]model.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}

	var sum float64
	var count int
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].Amount.InexactFloat64()
		cur := sorted[i].Amount.InexactFloat64()
		change := (cur - prev) / prev
		if math.IsNaN(change) {
			continue
		}
		sum += change
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
