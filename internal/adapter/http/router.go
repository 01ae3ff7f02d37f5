package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odv/mercsync/internal/adapter/http/handler"
	"github.com/odv/mercsync/internal/adapter/http/middleware"
	"github.com/odv/mercsync/internal/infrastructure/auth"
	"github.com/odv/mercsync/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	PolicyHandler     *handler.PolicyHandler
	ReceiptHandler    *handler.ReceiptHandler
	CredentialHandler *handler.CredentialHandler
	IntegrityHandler  *handler.IntegrityHandler
	AuditHandler      *handler.AuditHandler
	AuthHandler       *handler.AuthHandler
	HealthHandler     *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	Logging          *middleware.LoggingMiddleware
	Metrics          *middleware.MetricsMiddleware
	JWTManager       *auth.JWTManager
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts and their policy timelines
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/policy", cfg.PolicyHandler.GetCurrent)
			r.Put("/{id}/policy", cfg.PolicyHandler.ApplyEdit)
			r.Get("/{id}/policy/history", cfg.PolicyHandler.History)
			r.Post("/{id}/receipt-status", cfg.ReceiptHandler.Evaluate)

			// Credentials require an authenticated operator
			r.Group(func(r chi.Router) {
				if cfg.JWTManager != nil {
					r.Use(middleware.AuthMiddleware(cfg.JWTManager))
				}
				r.Put("/{id}/credentials", cfg.CredentialHandler.Set)
				r.Get("/{id}/credentials", cfg.CredentialHandler.Get)
			})
		})

		r.Group(func(r chi.Router) {
			if cfg.JWTManager != nil {
				r.Use(middleware.AuthMiddleware(cfg.JWTManager))
			}
			r.Get("/integrity", cfg.IntegrityHandler.Check)
			r.Get("/audit", cfg.AuditHandler.List)
		})
	})

	return r
}
