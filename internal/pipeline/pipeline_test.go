package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mk(d time.Time, cat, amount string) model.Transaction {
	return model.Transaction{Date: d, Category: cat, Amount: decimal.RequireFromString(amount)}
}

func sampleLedger() []model.Transaction {
	return []model.Transaction{
		mk(date(2024, 1, 3), "Salary", "3000"),
		mk(date(2024, 1, 5), "Rent", "-1200"),
		mk(date(2024, 1, 5), "Food", "-80.50"),
		mk(date(2024, 3, 1), "Salary", "3000"),
		mk(date(2024, 3, 2), "Food", "-120.25"),
		mk(date(2024, 3, 9), "Refund", "0"),
	}
}
