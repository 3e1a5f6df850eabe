package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/paylith/cardvault/internal/adapter/http/handler"
	"github.com/paylith/cardvault/internal/adapter/http/middleware"
	"github.com/paylith/cardvault/internal/infrastructure/auth"
	"github.com/paylith/cardvault/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler     *handler.AuthHandler
	CardHandler     *handler.CardHandler
	TransferHandler *handler.TransferHandler
	HealthHandler   *handler.HealthHandler
	JWTManager      *auth.JWTManager
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.RateLimiter
	Logger          zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", cfg.AuthHandler.Register)
		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager, cfg.Metrics))

			r.Get("/auth/me", cfg.AuthHandler.Me)

			// Cards
			r.Route("/cards", func(r chi.Router) {
				r.Get("/", cfg.CardHandler.List)
				r.Get("/{id}", cfg.CardHandler.Get)

				// Card management is restricted to admins
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)

					r.Post("/", cfg.CardHandler.Issue)
					r.Post("/expire-sweep", cfg.CardHandler.ExpireSweep)
					r.Patch("/{id}/status", cfg.CardHandler.UpdateStatus)
					r.Post("/{id}/topup", cfg.CardHandler.TopUp)
					r.Delete("/{id}", cfg.CardHandler.Delete)
				})
			})

			// Transfers
			r.Route("/transfers", func(r chi.Router) {
				r.Post("/", cfg.TransferHandler.Create)
				r.Get("/", cfg.TransferHandler.List)
				r.With(middleware.RequireAdmin).Get("/all", cfg.TransferHandler.ListAll)
				r.Get("/{id}", cfg.TransferHandler.Get)
				r.Post("/{id}/cancel", cfg.TransferHandler.Cancel)
			})
		})
	})

	return r
}
