package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for stride
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Upstream (Strava) Metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	RateLimiterWait       prometheus.Histogram

	// Circuit breaker around the Strava client
	CircuitBreakerState       *prometheus.GaugeVec
	CircuitBreakerTransitions *prometheus.CounterVec

	// Sync Metrics
	SyncRunsTotal         *prometheus.CounterVec
	SyncStageDuration     *prometheus.HistogramVec
	SyncItemsTotal        *prometheus.CounterVec
	ActivitiesSyncedTotal prometheus.Counter
}

// NewMetricsRegistry registers every metric on reg. Pass prometheus.DefaultRegisterer
// in binaries and a fresh prometheus.NewRegistry() in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	f := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stride_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stride_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_cache_hits_total",
				Help: "Total analytics cache hits by key prefix",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_cache_misses_total",
				Help: "Total analytics cache misses by key prefix",
			},
			[]string{"cache_key_pattern"},
		),

		UpstreamRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_upstream_requests_total",
				Help: "Strava API calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		RateLimiterWait: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stride_rate_limiter_wait_seconds",
				Help:    "Time spent blocked on the Strava request spacing limiter",
				Buckets: []float64{0.01, 0.1, 0.25, 0.5, 1, 1.5, 2.5, 5},
			},
		),
		CircuitBreakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stride_circuit_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
		CircuitBreakerTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_circuit_breaker_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"name", "from", "to"},
		),

		SyncRunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_sync_runs_total",
				Help: "Sync invocations by mode and final status",
			},
			[]string{"mode", "status"},
		),
		SyncStageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stride_sync_stage_duration_seconds",
				Help:    "Sync stage execution time in seconds",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		SyncItemsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stride_sync_items_total",
				Help: "Per-item sync results by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		ActivitiesSyncedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "stride_activities_synced_total",
				Help: "Total running activities upserted from Strava",
			},
		),
	}
}
