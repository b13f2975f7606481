package config

import "time"

// Config is the full runtime configuration for stride.
type Config struct {
	App      AppConfig      `koanf:"app"`
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Strava   StravaConfig   `koanf:"strava"`
	Sync     SyncConfig     `koanf:"sync"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
}

type AppConfig struct {
	Env string `koanf:"env" validate:"required,oneof=development production test"`
}

type ServerConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// DatabaseConfig selects the gorm dialect. AnalyticsDSN optionally points the
// read-only analytics queries at a separate Postgres replica.
type DatabaseConfig struct {
	Driver       string `koanf:"driver" validate:"required,oneof=sqlite postgres"`
	DSN          string `koanf:"dsn" validate:"required"`
	AnalyticsDSN string `koanf:"analytics_dsn"`
}

type StravaConfig struct {
	BaseURL         string        `koanf:"base_url" validate:"required,url"`
	TokenURL        string        `koanf:"token_url" validate:"required,url"`
	ClientID        string        `koanf:"client_id"`
	ClientSecret    string        `koanf:"client_secret"`
	RequestDelay    time.Duration `koanf:"request_delay" validate:"gt=0"`
	RequestTimeout  time.Duration `koanf:"request_timeout" validate:"gt=0"`
	PageSize        int           `koanf:"page_size" validate:"min=100,max=200"`
	DetailBatchSize int           `koanf:"detail_batch_size" validate:"min=30,max=50"`
}

// SyncConfig controls the daily scheduler and the single-runner lease.
type SyncConfig struct {
	DailyAt      string        `koanf:"daily_at" validate:"required"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	LeaseTTL     time.Duration `koanf:"lease_ttl" validate:"gt=0"`
}

type RedisConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Addr     string `koanf:"addr" validate:"required_if=Enabled true"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type CacheConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

type SecurityConfig struct {
	OperatorSecret string   `koanf:"operator_secret"`
	CORSOrigins    []string `koanf:"cors_origins"`
	RateLimitRPS   float64  `koanf:"rate_limit_rps"`
	RateLimitBurst int      `koanf:"rate_limit_burst"`
}
