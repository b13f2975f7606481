package routes

import (
	"context"
	"net/http"
	"time"

	"runlab/stride/internal/api"
	"runlab/stride/internal/config"
	"runlab/stride/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RegisterRoutes builds the HTTP surface on top of already wired dependencies.
func RegisterRoutes(deps *api.Dependencies, cfg config.SecurityConfig, gatherer prometheus.Gatherer, upSince time.Time, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics, log))

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware)
	}

	r.Get("/healthCheck", api.HealthCheckHandler(healthChecks(deps), upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	registerAPIRoutes(r, deps, log)

	log.Info("Router initialized with metrics, CORS and rate limiting middleware")
	return r
}

func healthChecks(deps *api.Dependencies) map[string]api.Pinger {
	checks := map[string]api.Pinger{
		"database": deps.Reader,
	}
	if deps.Redis != nil {
		checks["redis"] = api.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}
	return checks
}
