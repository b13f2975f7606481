package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sqlx.DB and *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain func, such as a Redis ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]ServiceStatus `json:"services"`
}

// HealthCheckHandler handles GET /healthCheck
func HealthCheckHandler(checks map[string]Pinger, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := make(map[string]ServiceStatus, len(checks))
		overallStatus := "ok"
		for name, p := range checks {
			st := ServiceStatus{Status: "ok", Details: "connected"}
			if err := p.PingContext(ctx); err != nil {
				st = ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			services[name] = st
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		})
	}
}
