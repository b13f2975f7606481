package providers

import (
	"errors"
	"time"

	"runlab/stride/internal/constants"
	"runlab/stride/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Endpoint templates. Each one gets its own breaker so that a run of failing
// items on one endpoint cannot suspend the others.
const (
	endpointActivities = "/athlete/activities"
	endpointDetail     = "/activities/{id}"
	endpointSegment    = "/segments/{id}"
)

func newBreakers(m *metrics.MetricsRegistry, log *zap.SugaredLogger) map[string]*gobreaker.CircuitBreaker[int] {
	return map[string]*gobreaker.CircuitBreaker[int]{
		endpointActivities: newBreaker("strava-activities", m, log),
		endpointDetail:     newBreaker("strava-activity-detail", m, log),
		endpointSegment:    newBreaker("strava-segment", m, log),
	}
}

// newBreaker trips after five consecutive upstream failures and probes again
// after a minute. Client-side errors (404, 400) do not count as failures.
func newBreaker(name string, m *metrics.MetricsRegistry, log *zap.SugaredLogger) *gobreaker.CircuitBreaker[int] {
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(name).Set(0)
	}

	return gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var pe *ProviderError
			if errors.As(err, &pe) {
				switch pe.Code {
				case constants.ErrCodeResourceNotFound, constants.ErrCodeInvalidRequest, constants.ErrCodeNoAthlete:
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("[CIRCUIT BREAKER] State transition", "name", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
				m.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			}
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
