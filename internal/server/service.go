// Package server provides the local read-only HTTP view of a ledger.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/theirongolddev/fburn/internal/forecast"
	"github.com/theirongolddev/fburn/internal/model"
)

// Config controls the HTTP view.
type Config struct {
	DataPath string
	Columns  model.Columns
	Forecast forecast.Config
	UseCache bool
	Addr     string

	// CacheTTL bounds how long a parsed ledger is reused even when the file
	// looks unchanged.
	CacheTTL time.Duration

	Logger zerolog.Logger
}

// Service serves summaries, forecasts, and CSV exports of one ledger.
type Service struct {
	cfg       Config
	log       zerolog.Logger
	startedAt time.Time

	memo    *cache.Cache
	reloads singleflight.Group

	registry *prometheus.Registry
	metrics  *Metrics
}

// New returns a Service with the provided config.
func New(cfg Config) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	reg := newRegistry()
	return &Service{
		cfg:       cfg,
		log:       cfg.Logger.With().Str("component", "server").Logger(),
		startedAt: time.Now(),
		memo:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		registry:  reg,
		metrics:   NewMetrics(reg),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/summary", s.handleSummary)
		r.Get("/forecast", s.handleForecast)
		r.Get("/transactions.csv", s.handleTransactionsCSV)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Service) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Parse once up front so the first request is fast and bad input is
	// reported at startup.
	if _, err := s.ledger(); err != nil {
		s.log.Warn().Err(err).Msg("initial ledger load failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("serving")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// observe records request metrics and logs each request.
func (s *Service) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		elapsed := time.Since(start)
		s.metrics.HTTPRequests.WithLabelValues(r.Method, route, fmt.Sprint(status)).Inc()
		s.metrics.HTTPDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request completed")
	})
}
