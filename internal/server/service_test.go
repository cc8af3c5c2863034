package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
)

const header = "date,Category,Transaction Amount\n"

func writeLedger(t *testing.T, rows string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(p, []byte(header+rows), 0o600))
	return p
}

func alternatingRows(days int) string {
	var sb strings.Builder
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d).Format("2006-01-02")
		if d%2 == 0 {
			fmt.Fprintf(&sb, "%s,Salary,100\n", date)
		} else {
			fmt.Fprintf(&sb, "%s,Food,-40\n", date)
		}
	}
	return sb.String()
}

func newTestService(t *testing.T, path string) (*Service, http.Handler) {
	t.Helper()
	s := New(Config{
		DataPath: path,
		Columns:  model.DefaultColumns(),
		Forecast: forecast.DefaultConfig(),
		Logger:   zerolog.Nop(),
	})
	return s, s.Handler()
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, ""))
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestSummary(t *testing.T) {
	path := writeLedger(t, "2024-01-01,Salary,3000\n2024-01-02,Food,-50.25\n2024-02-01,Food,-20\n")
	_, h := newTestService(t, path)

	rec := get(t, h, "/v1/summary")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, "3000", resp.Income.String())
	assert.Equal(t, "70.25", resp.Expenses.String())
	assert.Equal(t, "2929.75", resp.Net.String())
	assert.Equal(t, "January 2024", resp.BestMonth)
	assert.Equal(t, "February 2024", resp.WorstMonth)
	assert.Len(t, resp.Daily, 3)
	assert.Len(t, resp.ExpenseByCategory, 1)
}

func TestSummary_Filtered(t *testing.T) {
	path := writeLedger(t, "2024-01-01,Salary,3000\n2024-01-02,Food,-50.25\n2024-02-01,Food,-20\n")
	_, h := newTestService(t, path)

	rec := get(t, h, "/v1/summary?category=Food&month=2024-02")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Food", resp.Category)
	assert.Equal(t, "February 2024", resp.Month)
	assert.Empty(t, resp.IncomeByCategory)
}

func TestSummary_BadMonth(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, "2024-01-01,Salary,3000\n"))
	rec := get(t, h, "/v1/summary?month=someday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummary_MalformedLedger(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, "2024-01-01,Salary,lots\n"))
	rec := get(t, h, "/v1/summary")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "Transaction Amount")
}

func TestForecast(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, alternatingRows(90)))

	// Filters are ignored: the forecast always covers the whole ledger.
	rec := get(t, h, "/v1/forecast?category=Food")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03-31", resp.Start)
	assert.Equal(t, 30, resp.HorizonDays)
	require.Len(t, resp.Income.Points, 30)
	require.Len(t, resp.Expenditure.Points, 30)
	assert.InDelta(t, 100.0, resp.Income.Points[0].Amount, 1e-6)
	assert.InDelta(t, 40.0, resp.Expenditure.Points[29].Amount, 1e-6)
	require.NotNil(t, resp.PredictedNet)
	assert.InDelta(t, 1800.0, *resp.PredictedNet, 1e-4)
}

func TestForecast_PartialFailure(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, "2024-01-01,Salary,3000\n2024-01-02,Food,-5\n2024-01-03,Food,-7\n"))

	rec := get(t, h, "/v1/forecast")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ForecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Income.Error, "income")
	assert.Empty(t, resp.Income.Points)
	assert.Len(t, resp.Expenditure.Points, 30)
	assert.Nil(t, resp.PredictedNet)
}

func TestForecast_EmptyLedger(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, ""))
	rec := get(t, h, "/v1/forecast")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTransactionsCSV(t *testing.T) {
	path := writeLedger(t, "2024-01-01,Salary,3000\n2024-01-02,Food,-50.25\n")
	_, h := newTestService(t, path)

	rec := get(t, h, "/v1/transactions.csv?category=Food")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, header+"2024-01-02,Food,-50.25\n", rec.Body.String())
}

func TestLedgerReloadsOnChange(t *testing.T) {
	path := writeLedger(t, "2024-01-01,Salary,3000\n")
	s, h := newTestService(t, path)

	first, err := s.ledger()
	require.NoError(t, err)
	assert.Len(t, first.ledger.Transactions, 1)

	again, err := s.ledger()
	require.NoError(t, err)
	assert.Equal(t, first.loadedAt, again.loadedAt, "unchanged file should hit the memo")

	require.NoError(t, os.WriteFile(path, []byte(header+"2024-01-01,Salary,3000\n2024-01-05,Rent,-900\n"), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	rec := get(t, h, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 2, st.Transactions)
	assert.Equal(t, "2024-01-05", st.LastDate)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestService(t, writeLedger(t, alternatingRows(10)))
	get(t, h, "/v1/forecast")
	get(t, h, "/v1/summary")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fburn_http_requests_total{method="GET",route="/v1/forecast",status="200"} 1`)
	assert.Contains(t, body, "fburn_forecast_duration_seconds_count 1")
	assert.Contains(t, body, "fburn_ledger_transactions 10")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestService(t, writeLedger(t, "2024-01-01,Salary,3000\n"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok\n", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
