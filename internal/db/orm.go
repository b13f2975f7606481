package db

import (
	"fmt"

	"runlab/stride/internal/config"
	"runlab/stride/internal/models/gorm"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	gormlib "gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver names as registered with database/sql by the gorm dialects. sqlx
// picks its bind style from these.
const (
	sqliteDriverName   = "sqlite3"
	postgresDriverName = "pgx"
)

// OpenORM connects gorm to the configured primary store.
func OpenORM(cfg config.DatabaseConfig, log *zap.SugaredLogger) (*gormlib.DB, error) {
	var dialector gormlib.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gormlib.Open(dialector, &gormlib.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if cfg.Driver != "postgres" {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY
		// and keeps shared in-memory databases alive.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Infow("Connected to store via GORM", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gormlib.DB) error {
	if err := db.AutoMigrate(gorm.AllModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// DriverName returns the database/sql driver name backing db.
func DriverName(db *gormlib.DB) string {
	if db.Dialector.Name() == "postgres" {
		return postgresDriverName
	}
	return sqliteDriverName
}
