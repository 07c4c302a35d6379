// Package api provides the backend-for-frontend HTTP server the browser
// console talks to.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v0 "github.com/metagrid-io/catalog-console/internal/api/v0"
	"github.com/metagrid-io/catalog-console/internal/catalog"
	"github.com/metagrid-io/catalog-console/internal/runs"
)

// ServerOption configures the console API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	pageSize       int
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler mounts a metrics handler at /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithPageSize sets the default page size for listing routes
func WithPageSize(pageSize int) ServerOption {
	return func(cfg *serverConfig) {
		if pageSize > 0 {
			cfg.pageSize = pageSize
		}
	}
}

// NewServer creates and configures the HTTP router for the console API
func NewServer(svc catalog.Service, reconciler *runs.Reconciler, index *catalog.Index, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{
		pageSize: 25,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	r.Mount("/", v0.HealthRouter())
	r.Mount("/v0", v0.Router(svc, reconciler, index, cfg.pageSize))

	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
