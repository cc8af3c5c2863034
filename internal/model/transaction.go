// Package model defines domain types for fburn ledgers and derived metrics.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to rows with an empty category cell.
const DefaultCategory = "Uncategorized"

// Transaction is one ledger row. Date is a calendar date at UTC midnight.
// Amount sign encodes direction: positive is income, negative is expense.
type Transaction struct {
	Date     time.Time
	Category string
	Amount   decimal.Decimal
	File     string
	Line     int
}

// IsIncome reports whether the transaction is an income record.
func (t Transaction) IsIncome() bool { return t.Amount.IsPositive() }

// IsExpense reports whether the transaction is an expense record.
func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

// Columns holds the header names a ledger was read with, so exports can
// round-trip the same layout.
type Columns struct {
	Date     string `toml:"date" json:"date"`
	Category string `toml:"category" json:"category"`
	Amount   string `toml:"amount" json:"amount"`
}

// DefaultColumns returns the standard ledger header names.
func DefaultColumns() Columns {
	return Columns{
		Date:     "date",
		Category: "Category",
		Amount:   "Transaction Amount",
	}
}

// Ledger is the full, unfiltered transaction series ordered by date.
type Ledger struct {
	Transactions []Transaction
	Columns      Columns
	Files        []string
}

// Span returns the earliest and latest transaction dates.
// Both are zero when the ledger is empty.
func (l Ledger) Span() (time.Time, time.Time) {
	return DateSpan(l.Transactions)
}

// DateSpan returns the min and max dates over txs.
func DateSpan(txs []Transaction) (time.Time, time.Time) {
	var first, last time.Time
	for i, t := range txs {
		if i == 0 || t.Date.Before(first) {
			first = t.Date
		}
		if i == 0 || t.Date.After(last) {
			last = t.Date
		}
	}
	return first, last
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
