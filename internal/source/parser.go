// Package source discovers and parses CSV transaction ledgers.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/fburn/internal/model"

	"github.com/shopspring/decimal"
)

// amountAliases are tried when the configured amount column is absent.
var amountAliases = []string{"amount", "transaction amount", "value"}

// dateLayouts are tried in order. The time part, if any, is discarded.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// ParseFile reads a CSV ledger with a header row. cols names the columns to
// read; matching is case-insensitive. The first malformed row aborts the
// parse with a *MalformedInputError.
func ParseFile(df DiscoveredFile, cols model.Columns) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	txs, header, err := Parse(f, df.Path, cols)
	return ParseResult{Transactions: txs, Columns: header, Err: err}
}

// Parse reads a CSV ledger from r. name is used in error messages.
func Parse(r io.Reader, name string, cols model.Columns) ([]model.Transaction, model.Columns, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // checked per row so the error names the line

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.Columns{}, &MalformedInputError{File: name, Line: 1, Err: errors.New("missing header row")}
		}
		return nil, model.Columns{}, &MalformedInputError{File: name, Line: 1, Err: err}
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	idx := toIndex(headers)
	dateCol, dateName, ok := lookup(idx, headers, cols.Date)
	if !ok {
		return nil, model.Columns{}, missingColumn(name, cols.Date)
	}
	catCol, catName, ok := lookup(idx, headers, cols.Category)
	if !ok {
		return nil, model.Columns{}, missingColumn(name, cols.Category)
	}
	amtCol, amtName, ok := lookup(idx, headers, cols.Amount)
	if !ok {
		for _, alias := range amountAliases {
			if amtCol, amtName, ok = lookup(idx, headers, alias); ok {
				break
			}
		}
		if !ok {
			return nil, model.Columns{}, missingColumn(name, cols.Amount)
		}
	}
	header := model.Columns{Date: dateName, Category: catName, Amount: amtName}

	need := max(dateCol, catCol, amtCol) + 1
	var out []model.Transaction
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, header, &MalformedInputError{File: name, Line: line, Err: err}
		}
		line, _ := cr.FieldPos(0)
		if isBlank(rec) {
			continue
		}
		if len(rec) < need {
			return nil, header, &MalformedInputError{
				File: name,
				Line: line,
				Err:  fmt.Errorf("row has %d fields, want at least %d", len(rec), need),
			}
		}

		rawDate := strings.TrimSpace(rec[dateCol])
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, header, &MalformedInputError{File: name, Line: line, Column: dateName, Value: rawDate, Err: err}
		}

		rawAmount := strings.TrimSpace(rec[amtCol])
		amount, err := ParseAmount(rawAmount)
		if err != nil {
			return nil, header, &MalformedInputError{File: name, Line: line, Column: amtName, Value: rawAmount, Err: err}
		}

		category := strings.TrimSpace(rec[catCol])
		if category == "" {
			category = model.DefaultCategory
		}

		out = append(out, model.Transaction{
			Date:     date,
			Category: category,
			Amount:   amount,
			File:     name,
			Line:     line,
		})
	}

	return out, header, nil
}

// ParseDate parses a date cell into a calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return model.CalendarDate(t), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %w", lastErr)
}

// ParseAmount parses a signed decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}

func toIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

func lookup(idx map[string]int, headers []string, name string) (int, string, bool) {
	i, ok := idx[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, "", false
	}
	return i, strings.TrimSpace(headers[i]), true
}

func missingColumn(file, col string) error {
	return &MalformedInputError{File: file, Line: 1, Err: fmt.Errorf("missing column %q", col)}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// HeaderSatisfies reports whether a header read from a file would be
// resolved the same way for cols. Used to invalidate cached parses after a
// column configuration change.
func HeaderSatisfies(header, cols model.Columns) bool {
	if !strings.EqualFold(strings.TrimSpace(header.Date), strings.TrimSpace(cols.Date)) ||
		!strings.EqualFold(strings.TrimSpace(header.Category), strings.TrimSpace(cols.Category)) {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(header.Amount), strings.TrimSpace(cols.Amount)) {
		return true
	}
	for _, alias := range amountAliases {
		if strings.EqualFold(strings.TrimSpace(header.Amount), alias) {
			return true
		}
	}
	return false
}
