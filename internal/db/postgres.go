package db

import (
	"fmt"
	"time"

	"runlab/stride/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	gormlib "gorm.io/gorm"
)

const connectAttempts = 10

// OpenReader returns the sqlx handle used by read-only analytics queries.
// With an analytics DSN configured it dials that postgres replica through
// lib/pq; otherwise it shares the gorm connection pool.
func OpenReader(cfg config.DatabaseConfig, orm *gormlib.DB, log *zap.SugaredLogger) (*sqlx.DB, error) {
	if cfg.AnalyticsDSN != "" {
		return connectAnalytics(cfg.AnalyticsDSN, log)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap gorm pool: %w", err)
	}
	return sqlx.NewDb(sqlDB, DriverName(orm)), nil
}

func connectAnalytics(dsn string, log *zap.SugaredLogger) (*sqlx.DB, error) {
	var (
		reader *sqlx.DB
		err    error
	)
	for i := 0; i < connectAttempts; i++ {
		reader, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			log.Infow("Connected to analytics replica", "attempt", i+1)
			return reader, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("connect analytics replica: %w", err)
}
