// Cuecard - Live Show Question Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cuecard

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cuecard/internal/middleware"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSMaxAge         int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// RequestTimeout bounds JSON endpoints. The live feed is exempt.
	RequestTimeout time.Duration

	// SlowRequest is the access log warn threshold.
	SlowRequest time.Duration
}

// DefaultRouterConfig returns a development configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		CORSMaxAge:         86400,
		RateLimitRequests:  300,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     30 * time.Second,
		SlowRequest:        time.Second,
	}
}

// NewRouter builds the chi router.
//
//	GET  /health/live
//	GET  /health/ready
//	GET  /metrics
//	GET  /api/v1/shows
//	POST /api/v1/shows/{showID}/start
//	POST /api/v1/shows/{showID}/rank
//	POST /api/v1/shows/{showID}/used
//	POST /api/v1/shows/{showID}/end
//	GET  /api/v1/shows/{showID}/memory/stats
//	GET  /api/v1/shows/{showID}/memory/recent
//	GET  /api/v1/shows/{showID}/history
//	GET  /api/v1/shows/{showID}/feed
//	GET  /api/v1/hosts/{hostID}/profile
//	GET  /api/v1/hosts/{hostID}/insights
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(h *Handler, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	logger = logger.With().Str("component", "http").Logger()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.AccessLog(logger, cfg.SlowRequest))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         cfg.CORSMaxAge,
	}))
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound(ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))

		// The feed is long-lived and hijacks the connection.
		r.Get("/shows/{showID}/feed", h.ShowFeed)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Compress(5, "application/json"))
			if cfg.RequestTimeout > 0 {
				r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
			}

			r.Get("/shows", h.ListShows)
			r.Route("/shows/{showID}", func(r chi.Router) {
				r.Post("/start", h.StartShow)
				r.Post("/rank", h.RankQuestions)
				r.Post("/used", h.MarkUsed)
				r.Post("/end", h.EndShow)
				r.Get("/memory/stats", h.MemoryStats)
				r.Get("/memory/recent", h.RecentQuestions)
				r.Get("/history", h.ShowHistory)
			})
			r.Route("/hosts/{hostID}", func(r chi.Router) {
				r.Get("/profile", h.HostProfile)
				r.Get("/insights", h.HostInsights)
			})
		})
	})

	return r
}

// rateLimit returns an IP keyed httprate limiter, or a no-op when disabled.
func rateLimit(cfg RouterConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded")
		}),
	)
}
