package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the HTTP view.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ForecastDuration prometheus.Histogram
	ForecastErrors   *prometheus.CounterVec
	LedgerReloads    *prometheus.CounterVec
	Transactions     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fburn_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fburn_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		ForecastDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fburn_forecast_duration_seconds",
			Help:    "Duration of forecast computations",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		ForecastErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fburn_forecast_errors_total",
				Help: "Per-series forecast failures and degenerate fits",
			},
			[]string{"series", "kind"},
		),
		LedgerReloads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fburn_ledger_reloads_total",
				Help: "Ledger reloads from disk by outcome",
			},
			[]string{"result"},
		),
		Transactions: f.NewGauge(prometheus.GaugeOpts{
			Name: "fburn_ledger_transactions",
			Help: "Transactions in the currently loaded ledger",
		}),
	}
}

// newRegistry returns a registry carrying the Go runtime and process collectors.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
