package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SummaryStats holds the key metrics over a set of transactions.
type SummaryStats struct {
	Count         int
	Total         decimal.Decimal
	Average       decimal.Decimal // zero when Count == 0
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal // absolute value
	Net           decimal.Decimal // TotalIncome - TotalExpenses
	IncomeCount   int
	ExpenseCount  int
	FirstDate     time.Time
	LastDate      time.Time
}

// DailyStats holds the summed amount for a single calendar day.
type DailyStats struct {
	Date     time.Time
	Total    decimal.Decimal
	Income   decimal.Decimal
	Expenses decimal.Decimal // absolute value
	Count    int
}

// MonthlyStats holds the summed amount for one calendar month.
type MonthlyStats struct {
	Month YearMonth
	Total decimal.Decimal
	Count int
}

// CategoryStats holds the summed magnitude for one category within either
// the income or the expenditure side.
type CategoryStats struct {
	Category     string
	Amount       decimal.Decimal // absolute value
	Count        int
	SharePercent float64
}

// Trend classifies the direction of recent transaction amounts.
type Trend int

const (
	TrendStable Trend = iota
	TrendPositive
	TrendNegative
)

func (t Trend) String() string {
	switch t {
	case TrendPositive:
		return "positive"
	case TrendNegative:
		return "negative"
	default:
		return "stable"
	}
}

// Insights holds the time-based conclusions for a set of transactions.
type Insights struct {
	BestMonth  *MonthlyStats
	WorstMonth *MonthlyStats
	Trend      Trend
	TrendValue float64 // mean percent change, may be NaN or +-Inf
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the YearMonth containing t.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// String renders the month as "January 2024".
func (m YearMonth) String() string {
	return m.Start().Format("January 2006")
}

// Key renders the month as "2024-01".
func (m YearMonth) Key() string {
	return m.Start().Format("2006-01")
}

// Start returns midnight UTC on the first day of the month.
func (m YearMonth) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (m YearMonth) Next() YearMonth {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Before reports whether m is strictly earlier than o.
func (m YearMonth) Before(o YearMonth) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// IsZero reports whether m is unset.
func (m YearMonth) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}
