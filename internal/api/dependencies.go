package api

import (
	"fmt"
	"time"

	"runlab/stride/internal/auth"
	"runlab/stride/internal/common"
	"runlab/stride/internal/config"
	"runlab/stride/internal/db"
	"runlab/stride/internal/db/repositories"
	"runlab/stride/internal/jobs"
	"runlab/stride/internal/metrics"
	"runlab/stride/internal/providers"
	"runlab/stride/internal/services"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies is everything the binaries wire together. Nothing in it is a
// package-level singleton.
type Dependencies struct {
	ORM       *gorm.DB
	Reader    *sqlx.DB
	Redis     *redis.Client
	Cache     common.CacheInterface
	Metrics   *metrics.MetricsRegistry
	Signer    *auth.OperatorSigner
	SyncJob   *jobs.SyncJob
	Analytics *services.AnalyticsService
}

// InitDependencies opens the stores and builds the sync pipeline and the
// read services from cfg.
func InitDependencies(cfg *config.Config, m *metrics.MetricsRegistry, log *zap.SugaredLogger) (*Dependencies, error) {
	orm, err := db.OpenORM(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(orm); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	reader, err := db.OpenReader(cfg.Database, orm, log)
	if err != nil {
		return nil, fmt.Errorf("open analytics reader: %w", err)
	}

	deps := &Dependencies{
		ORM:     orm,
		Reader:  reader,
		Metrics: m,
		Signer:  auth.NewOperatorSigner([]byte(cfg.Security.OperatorSecret)),
	}

	var lease jobs.SyncLease
	if cfg.Redis.Enabled {
		deps.Redis = common.NewRedisClient(cfg.Redis, log)
		deps.Cache = common.NewRedisCacheService(deps.Redis, log)
		lease = jobs.NewRedisLease(deps.Redis, cfg.Sync.LeaseTTL, log)
		log.Infow("Using Redis for cache and sync lease", "addr", cfg.Redis.Addr)
	} else {
		deps.Cache = common.NewCacheService(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
		lease = jobs.NewLocalLease()
		log.Infow("Using in-memory cache and in-process sync lease")
	}

	athletes := repositories.NewAthleteRepo(orm)
	tokens := auth.NewAthleteTokenSource(athletes, cfg.Strava, log)
	limiter := providers.NewRateLimiter(cfg.Strava.RequestDelay, m)
	strava := providers.NewStravaProvider(cfg.Strava, tokens, limiter, m, log)

	deps.SyncJob = jobs.NewSyncJob(orm, strava, lease, deps.Cache, cfg.Strava, m, log)
	deps.Analytics = services.NewAnalyticsService(
		repositories.NewAnalyticsRepo(reader),
		athletes,
		deps.Cache,
		cacheTTL(cfg.Cache),
		m,
		log,
	)
	return deps, nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.TTL <= 0 {
		return time.Hour
	}
	return cfg.TTL
}

// Close releases every connection opened by InitDependencies.
func (d *Dependencies) Close() error {
	if d.Cache != nil {
		_ = d.Cache.Close()
	}
	if d.Reader != nil {
		_ = d.Reader.Close()
	}
	if sqlDB, err := d.ORM.DB(); err == nil {
		return sqlDB.Close()
	}
	return nil
}
