package providers

import (
	"context"
	"time"

	"runlab/stride/internal/metrics"

	"golang.org/x/time/rate"
)

// RateLimiter spaces outbound Strava calls at least minSpacing apart. Strava
// allows 100 requests per 15 minutes, so the default of 1.2s keeps a single
// sync under budget.
type RateLimiter struct {
	limiter *rate.Limiter
	metrics *metrics.MetricsRegistry
}

func NewRateLimiter(minSpacing time.Duration, m *metrics.MetricsRegistry) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(minSpacing), 1),
		metrics: m,
	}
}

// Wait blocks until the next call may be issued or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	err := r.limiter.Wait(ctx)
	if r.metrics != nil {
		r.metrics.RateLimiterWait.Observe(time.Since(start).Seconds())
	}
	return err
}
