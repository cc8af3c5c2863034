// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats a decimal amount with two places and comma separators.
// e.g., -1234.5 -> "-$1,234.50"
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + fixed
	}
	return sign + "$" + FormatNumber(n) + "." + frac
}

// FormatMoneyFloat is FormatMoney for float64 values such as forecast points.
func FormatMoneyFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return FormatMoney(decimal.NewFromFloat(f))
}

// FormatSignedMoney is FormatMoney with an explicit "+" on positive values.
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + FormatMoney(d)
	}
	return FormatMoney(d)
}

// FormatCompactMoney formats an amount with human-readable suffixes for
// chart axes. e.g., 1234 -> "$1.2K", -2500000 -> "-$2.5M"
func FormatCompactMoney(f float64) string {
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	switch {
	case f >= 1_000_000_000:
		return fmt.Sprintf("%s$%.1fB", sign, f/1_000_000_000)
	case f >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, f/1_000_000)
	case f >= 1_000:
		return fmt.Sprintf("%s$%.1fK", sign, f/1_000)
	case f >= 10:
		return fmt.Sprintf("%s$%.0f", sign, f)
	default:
		return fmt.Sprintf("%s$%.2f", sign, f)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-100 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// FormatChange formats a relative change (0.25 = +25%). Infinite changes
// render as ±inf and undefined ones as n/a.
func FormatChange(f float64) string {
	switch {
	case math.IsNaN(f):
		return "n/a"
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return fmt.Sprintf("%+.1f%%", f*100)
}

// FormatDelta formats the change from previous to current with a sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return FormatMoney(delta)
	}
	return "+" + FormatMoney(delta)
}

// FormatDate renders a calendar date as "2006-01-02".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
