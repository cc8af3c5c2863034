package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/fburn/internal/model"
)

// All is the filter value that selects everything.
const All = "All"

// Filter is the active category/month selection.
type Filter struct {
	Category string          // "" or All for every category
	Month    model.YearMonth // zero for every month
}

// Active reports whether any filter narrows the ledger.
func (f Filter) Active() bool {
	return !isAll(f.Category) || !f.Month.IsZero()
}

// HasCategory reports whether a category filter is set.
func (f Filter) HasCategory() bool { return !isAll(f.Category) }

// Apply narrows txs by category then month.
func (f Filter) Apply(txs []model.Transaction) []model.Transaction {
	return FilterByMonth(FilterByCategory(txs, f.Category), f.Month)
}

func (f Filter) String() string {
	cat := f.Category
	if isAll(cat) {
		cat = All
	}
	month := All
	if !f.Month.IsZero() {
		month = f.Month.String()
	}
	return fmt.Sprintf("category: %s, month: %s", cat, month)
}

// FilterByCategory returns transactions in the given category.
// An empty category or All returns txs unchanged.
func FilterByCategory(txs []model.Transaction, category string) []model.Transaction {
	if isAll(category) {
		return txs
	}
	var out []model.Transaction
	for _, t := range txs {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// FilterByMonth returns transactions dated within month.
// A zero month returns txs unchanged.
func FilterByMonth(txs []model.Transaction, month model.YearMonth) []model.Transaction {
	if month.IsZero() {
		return txs
	}
	var out []model.Transaction
	for _, t := range txs {
		if model.MonthOf(t.Date) == month {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the sorted unique categories in txs.
func Categories(txs []model.Transaction) []string {
	seen := make(map[string]struct{})
	for _, t := range txs {
		seen[t.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Months returns the sorted unique months present in txs.
func Months(txs []model.Transaction) []model.YearMonth {
	seen := make(map[model.YearMonth]struct{})
	for _, t := range txs {
		seen[model.MonthOf(t.Date)] = struct{}{}
	}
	out := make([]model.YearMonth, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

var monthLayouts = []string{"January 2006", "Jan 2006", "2006-01", "2006/01", "01/2006"}

// ParseMonth parses "January 2024", "Jan 2024" or "2024-01".
// An empty string or All yields the zero month.
func ParseMonth(s string) (model.YearMonth, error) {
	s = strings.TrimSpace(s)
	if isAll(s) {
		return model.YearMonth{}, nil
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.MonthOf(t), nil
		}
	}
	return model.YearMonth{}, fmt.Errorf("invalid month %q (want e.g. \"January 2024\" or \"2024-01\")", s)
}

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, All)
}
