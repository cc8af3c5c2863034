package source

import (
	"fmt"

	"github.com/theirongolddev/fburn/internal/model"
)

// MalformedInputError reports a row that could not be parsed. Loading stops
// at the first one; rows are never dropped.
type MalformedInputError struct {
	File   string
	Line   int    // 1-based, header is line 1
	Column string // empty for structural errors
	Value  string
	Err    error
}

func (e *MalformedInputError) Error() string {
	switch {
	case e.Column == "":
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	case e.Value == "":
		return fmt.Sprintf("%s:%d: column %q is empty", e.File, e.Line, e.Column)
	default:
		return fmt.Sprintf("%s:%d: column %q: cannot parse %q: %v", e.File, e.Line, e.Column, e.Value, e.Err)
	}
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// DiscoveredFile is a CSV ledger found during scanning.
type DiscoveredFile struct {
	Path string
	Name string // base name without extension
}

// ParseResult holds the output of parsing a single ledger file.
type ParseResult struct {
	Transactions []model.Transaction
	Columns      model.Columns // header names as they appear in the file
	Err          error
}
