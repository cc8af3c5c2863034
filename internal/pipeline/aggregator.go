// Package pipeline orchestrates ledger loading, caching, filtering, and aggregation.
package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

// Side selects the income or expenditure half of a ledger.
type Side int

const (
	Income Side = iota
	Expenses
)

func (s Side) String() string {
	if s == Expenses {
		return "expenditure"
	}
	return "income"
}

// Summarize computes the key metrics over txs.
func Summarize(txs []model.Transaction) model.SummaryStats {
	var stats model.SummaryStats
	stats.FirstDate, stats.LastDate = model.DateSpan(txs)

	for _, t := range txs {
		stats.Count++
		stats.Total = stats.Total.Add(t.Amount)
		switch {
		case t.IsIncome():
			stats.IncomeCount++
			stats.TotalIncome = stats.TotalIncome.Add(t.Amount)
		case t.IsExpense():
			stats.ExpenseCount++
			stats.TotalExpenses = stats.TotalExpenses.Add(t.Amount.Abs())
		}
	}

	if stats.Count > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Count)))
	}
	stats.Net = stats.TotalIncome.Sub(stats.TotalExpenses)
	return stats
}

// AggregateDays sums transactions per calendar date, oldest first.
// Days without transactions are omitted; see FillDays.
func AggregateDays(txs []model.Transaction) []model.DailyStats {
	dayMap := make(map[time.Time]*model.DailyStats)

	for _, t := range txs {
		d := model.CalendarDate(t.Date)
		ds, ok := dayMap[d]
		if !ok {
			ds = &model.DailyStats{Date: d}
			dayMap[d] = ds
		}
		ds.Count++
		ds.Total = ds.Total.Add(t.Amount)
		switch {
		case t.IsIncome():
			ds.Income = ds.Income.Add(t.Amount)
		case t.IsExpense():
			ds.Expenses = ds.Expenses.Add(t.Amount.Abs())
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// FillDays inserts zero entries for every missing day between the first and
// last entry of days, which must be sorted oldest first.
func FillDays(days []model.DailyStats) []model.DailyStats {
	if len(days) < 2 {
		return days
	}
	out := make([]model.DailyStats, 0, len(days))
	next := days[0].Date
	for _, ds := range days {
		for next.Before(ds.Date) {
			out = append(out, model.DailyStats{Date: next})
			next = next.AddDate(0, 0, 1)
		}
		out = append(out, ds)
		next = ds.Date.AddDate(0, 0, 1)
	}
	return out
}

// AggregateCategories sums one side of txs per category, largest first.
// Expenditure amounts are absolute values.
func AggregateCategories(txs []model.Transaction, side Side) []model.CategoryStats {
	catMap := make(map[string]*model.CategoryStats)
	total := decimal.Zero

	for _, t := range txs {
		if (side == Income && !t.IsIncome()) || (side == Expenses && !t.IsExpense()) {
			continue
		}
		cs, ok := catMap[t.Category]
		if !ok {
			cs = &model.CategoryStats{Category: t.Category}
			catMap[t.Category] = cs
		}
		amount := t.Amount.Abs()
		cs.Amount = cs.Amount.Add(amount)
		cs.Count++
		total = total.Add(amount)
	}

	out := make([]model.CategoryStats, 0, len(catMap))
	for _, cs := range catMap {
		if total.IsPositive() {
			cs.SharePercent = cs.Amount.Div(total).InexactFloat64() * 100
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// AggregateMonths sums txs per calendar month, oldest first. Months between
// the first and last with no transactions appear with a zero total.
func AggregateMonths(txs []model.Transaction) []model.MonthlyStats {
	if len(txs) == 0 {
		return nil
	}

	monthMap := make(map[model.YearMonth]*model.MonthlyStats)
	for _, t := range txs {
		m := model.MonthOf(t.Date)
		ms, ok := monthMap[m]
		if !ok {
			ms = &model.MonthlyStats{Month: m}
			monthMap[m] = ms
		}
		ms.Total = ms.Total.Add(t.Amount)
		ms.Count++
	}

	first, last := model.DateSpan(txs)
	var out []model.MonthlyStats
	for m := model.MonthOf(first); !model.MonthOf(last).Before(m); m = m.Next() {
		if ms, ok := monthMap[m]; ok {
			out = append(out, *ms)
		} else {
			out = append(out, model.MonthlyStats{Month: m})
		}
	}
	return out
}
