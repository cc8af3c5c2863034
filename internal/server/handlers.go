package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
	"github.com/theirongolddev/fburn/internal/pipeline"
	"github.com/theirongolddev/fburn/internal/source"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt    time.Time     `json:"started_at"`
	DataPath     string        `json:"data_path"`
	Files        []string      `json:"files"`
	Columns      model.Columns `json:"columns"`
	Transactions int           `json:"transactions"`
	FirstDate    string        `json:"first_date,omitempty"`
	LastDate     string        `json:"last_date,omitempty"`
	LoadedAt     time.Time     `json:"loaded_at"`
	CacheTTLSec  int           `json:"cache_ttl_sec"`
}

// SummaryResponse is served at /v1/summary.
type SummaryResponse struct {
	Category   string          `json:"category"`
	Month      string          `json:"month"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Average    decimal.Decimal `json:"average"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Net        decimal.Decimal `json:"net"`
	BestMonth  string          `json:"best_month,omitempty"`
	WorstMonth string          `json:"worst_month,omitempty"`
	Trend      string          `json:"trend"`
	Daily      []DailyJSON     `json:"daily"`

	// Category splits are only meaningful across all categories.
	IncomeByCategory  []CategoryJSON `json:"income_by_category,omitempty"`
	ExpenseByCategory []CategoryJSON `json:"expense_by_category,omitempty"`
}

// DailyJSON is one day of the daily series.
type DailyJSON struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// CategoryJSON is one category share.
type CategoryJSON struct {
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	SharePercent float64         `json:"share_percent"`
}

// ForecastResponse is served at /v1/forecast.
type ForecastResponse struct {
	Epoch        string     `json:"epoch"`
	Start        string     `json:"start"`
	HorizonDays  int        `json:"horizon_days"`
	Income       SeriesJSON `json:"income"`
	Expenditure  SeriesJSON `json:"expenditure"`
	PredictedNet *float64   `json:"predicted_net"`
}

// SeriesJSON is one forecast subseries.
type SeriesJSON struct {
	Error       string      `json:"error,omitempty"`
	Slope       float64     `json:"slope"`
	Intercept   float64     `json:"intercept"`
	Degenerate  bool        `json:"degenerate"`
	HoldoutRMSE *float64    `json:"holdout_rmse,omitempty"`
	Total       float64     `json:"total"`
	Points      []PointJSON `json:"points"`
}

// PointJSON is one projected day.
type PointJSON struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Message: details})
}

// writeLoadError maps ledger load failures to HTTP statuses.
func writeLoadError(w http.ResponseWriter, err error) {
	var malformed *source.MalformedInputError
	if errors.As(err, &malformed) {
		writeError(w, http.StatusUnprocessableEntity, "malformed ledger", err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "loading ledger", err.Error())
}

// filterFromQuery reads ?category= and ?month=.
func filterFromQuery(r *http.Request) (pipeline.Filter, error) {
	q := r.URL.Query()
	month, err := pipeline.ParseMonth(q.Get("month"))
	if err != nil {
		return pipeline.Filter{}, err
	}
	return pipeline.Filter{Category: q.Get("category"), Month: month}, nil
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	entry, err := s.ledger()
	if err != nil {
		writeLoadError(w, err)
		return
	}

	st := Status{
		StartedAt:    s.startedAt,
		DataPath:     s.cfg.DataPath,
		Files:        entry.ledger.Files,
		Columns:      entry.ledger.Columns,
		Transactions: len(entry.ledger.Transactions),
		LoadedAt:     entry.loadedAt,
		CacheTTLSec:  int(s.cfg.CacheTTL.Seconds()),
	}
	if first, last := entry.ledger.Span(); !first.IsZero() {
		st.FirstDate = first.Format("2006-01-02")
		st.LastDate = last.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}
	entry, err := s.ledger()
	if err != nil {
		writeLoadError(w, err)
		return
	}

	txs := f.Apply(entry.ledger.Transactions)
	stats := pipeline.Summarize(txs)
	ins := pipeline.Insights(txs)

	resp := SummaryResponse{
		Category: pipeline.All,
		Month:    pipeline.All,
		Count:    stats.Count,
		Total:    stats.Total,
		Average:  stats.Average,
		Income:   stats.TotalIncome,
		Expenses: stats.TotalExpenses,
		Net:      stats.Net,
		Trend:    ins.Trend.String(),
		Daily:    []DailyJSON{},
	}
	if f.HasCategory() {
		resp.Category = f.Category
	}
	if !f.Month.IsZero() {
		resp.Month = f.Month.String()
	}
	if ins.BestMonth != nil {
		resp.BestMonth = ins.BestMonth.Month.String()
		resp.WorstMonth = ins.WorstMonth.Month.String()
	}
	for _, d := range pipeline.AggregateDays(txs) {
		resp.Daily = append(resp.Daily, DailyJSON{Date: d.Date.Format("2006-01-02"), Total: d.Total})
	}
	if !f.HasCategory() {
		resp.IncomeByCategory = categoriesJSON(pipeline.AggregateCategories(txs, pipeline.Income))
		resp.ExpenseByCategory = categoriesJSON(pipeline.AggregateCategories(txs, pipeline.Expenses))
	}

	writeJSON(w, http.StatusOK, resp)
}

func categoriesJSON(cats []model.CategoryStats) []CategoryJSON {
	out := make([]CategoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryJSON{Category: c.Category, Amount: c.Amount, SharePercent: c.SharePercent})
	}
	return out
}

// handleForecast always forecasts the full ledger; filters do not apply.
func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	entry, err := s.ledger()
	if err != nil {
		writeLoadError(w, err)
		return
	}

	start := time.Now()
	res, err := forecast.New(s.cfg.Forecast).Forecast(entry.ledger.Transactions)
	s.metrics.ForecastDuration.Observe(time.Since(start).Seconds())

	if errors.Is(err, forecast.ErrNoTransactions) {
		writeError(w, http.StatusUnprocessableEntity, "empty ledger", err.Error())
		return
	}

	resp := ForecastResponse{
		Epoch:       res.Epoch.Format("2006-01-02"),
		Start:       res.Start.Format("2006-01-02"),
		HorizonDays: res.HorizonDays,
		Income:      s.seriesJSON(res.Income),
		Expenditure: s.seriesJSON(res.Expenditure),
	}
	if net, ok := res.PredictedNet(); ok {
		resp.PredictedNet = &net
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) seriesJSON(sf forecast.SeriesForecast) SeriesJSON {
	out := SeriesJSON{Points: []PointJSON{}}
	if !sf.OK() {
		out.Error = sf.Err.Error()
		kind := "fit"
		var insufficient *forecast.InsufficientDataError
		if errors.As(sf.Err, &insufficient) {
			kind = "insufficient_data"
		}
		s.metrics.ForecastErrors.WithLabelValues(string(sf.Series), kind).Inc()
		return out
	}

	if sf.Fit.Degenerate {
		s.metrics.ForecastErrors.WithLabelValues(string(sf.Series), "degenerate").Inc()
		s.log.Warn().Str("series", string(sf.Series)).Msg("degenerate fit, using flat mean")
	}

	out.Slope = sf.Fit.Slope
	out.Intercept = sf.Fit.Intercept
	out.Degenerate = sf.Fit.Degenerate
	out.Total = sf.Total
	if sf.Fit.HoldoutN > 0 && !math.IsNaN(sf.Fit.HoldoutRMSE) {
		rmse := sf.Fit.HoldoutRMSE
		out.HoldoutRMSE = &rmse
	}
	for _, p := range sf.Points {
		out.Points = append(out.Points, PointJSON{Date: p.Date.Format("2006-01-02"), Amount: p.Amount})
	}
	return out
}

func (s *Service) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}
	entry, err := s.ledger()
	if err != nil {
		writeLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_data.csv"`)
	if err := pipeline.WriteCSV(w, f.Apply(entry.ledger.Transactions), entry.ledger.Columns); err != nil {
		s.log.Error().Err(err).Msg("writing csv")
	}
}
