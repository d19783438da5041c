package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/heritage-routes-api/pkg/middleware"
	"github.com/FACorreiaa/heritage-routes-api/pkg/observability"
)

// SetupRouter configures the middleware chain and mounts all routes.
func SetupRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		r.Use(middleware.NewRateLimiter(limiter))
	}

	r.Use(middleware.NewCORSHandler(deps.Config.Server.AllowedOrigins))

	r.Handle("/metrics", observability.MetricsHandler())
	deps.Logger.Info("registered metrics endpoint", "path", "/metrics")

	r.Mount("/", deps.Server.Routes())

	return r
}
