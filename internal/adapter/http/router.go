package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/bankdash/internal/adapter/http/handler"
	"github.com/iho/bankdash/internal/adapter/http/middleware"
	"github.com/iho/bankdash/internal/infrastructure/metrics"
	"github.com/iho/bankdash/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	DraftHandler       *handler.DraftHandler
	EventHandler       *handler.EventHandler
	HealthHandler      *handler.HealthHandler

	// Optional
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/last-transaction", cfg.AccountHandler.LastTransaction)
		})
		r.Get("/summary", cfg.AccountHandler.Summary)

		// History
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Get("/recent", cfg.TransactionHandler.Recent)
		})

		// Workflow
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", cfg.DraftHandler.Submit)
			r.Post("/validate", cfg.DraftHandler.Validate)
			r.Get("/pending", cfg.DraftHandler.Pending)
			r.Post("/pending/confirm", cfg.DraftHandler.Confirm)
			r.Post("/pending/cancel", cfg.DraftHandler.Cancel)
		})
		r.Post("/quick-actions/{action}", cfg.DraftHandler.QuickAction)

		// UI events
		r.Get("/events", cfg.EventHandler.List)
	})

	return r
}
