package services

import (
	"context"
	"time"

	"runlab/stride/internal/common"
	"runlab/stride/internal/constants"
	"runlab/stride/internal/db/repositories"
	"runlab/stride/internal/metrics"

	"go.uber.org/zap"
)

// AnalyticsService answers every read endpoint. Results are derived on each
// miss from the store and cached until the next sync flushes the cache.
type AnalyticsService struct {
	reader   *repositories.AnalyticsRepo
	athletes *repositories.AthleteRepo
	cache    common.CacheInterface
	ttl      time.Duration
	metrics  *metrics.MetricsRegistry
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAnalyticsService(
	reader *repositories.AnalyticsRepo,
	athletes *repositories.AthleteRepo,
	cache common.CacheInterface,
	ttl time.Duration,
	m *metrics.MetricsRegistry,
	log *zap.SugaredLogger,
) *AnalyticsService {
	return &AnalyticsService{
		reader:   reader,
		athletes: athletes,
		cache:    cache,
		ttl:      ttl,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// today is the local calendar date at midnight UTC, so AddDate and Format
// stay on whole days.
func (s *AnalyticsService) today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func cached[T any](ctx context.Context, s *AnalyticsService, prefix constants.CachePrefix, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}

	full := string(prefix) + key
	v, hit, err := common.GetOrSetJSON(s.cache, full, s.ttl, func() (T, error) {
		return load(ctx)
	})
	if err != nil {
		return v, err
	}

	if s.metrics != nil {
		if hit {
			s.metrics.CacheHitsTotal.WithLabelValues(string(prefix)).Inc()
		} else {
			s.metrics.CacheMissesTotal.WithLabelValues(string(prefix)).Inc()
		}
	}
	return v, nil
}

// bestTimes returns the fastest record time per distance type.
func bestTimes(records []repositories.RecordRow) map[string]int {
	best := make(map[string]int)
	for _, r := range records {
		if cur, ok := best[r.DistanceType]; !ok || r.Time < cur {
			best[r.DistanceType] = r.Time
		}
	}
	return best
}
