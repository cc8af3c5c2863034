package pipeline

import (
	"encoding/csv"
	"io"

	"github.com/theirongolddev/fburn/internal/model"
)

// WriteCSV writes txs with a header row using cols as column names.
// Dates are written as YYYY-MM-DD and amounts in their exact decimal form.
func WriteCSV(w io.Writer, txs []model.Transaction, cols model.Columns) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{cols.Date, cols.Category, cols.Amount}); err != nil {
		return err
	}
	for _, t := range txs {
		rec := []string{t.Date.Format("2006-01-02"), t.Category, t.Amount.String()}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
