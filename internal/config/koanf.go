package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is looked up, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/stride/config.yaml",
}

// ConfigPathEnvVar overrides the config file lookup.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{Env: "development"},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute, // manual /sync runs inline
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "strava_dashboard.db",
		},
		Strava: StravaConfig{
			BaseURL:         "https://www.strava.com/api/v3",
			TokenURL:        "https://www.strava.com/oauth/token",
			RequestDelay:    1200 * time.Millisecond,
			RequestTimeout:  30 * time.Second,
			PageSize:        100,
			DetailBatchSize: 30,
		},
		Sync: SyncConfig{
			DailyAt:  "04:00",
			LeaseTTL: 30 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:    []string{"*"},
			RateLimitRPS:   5,
			RateLimitBurst: 20,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCommaList(k, "security.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}
	if _, _, err := c.Sync.ParseDailyAt(); err != nil {
		return err
	}
	return nil
}

// ParseDailyAt splits the HH:MM schedule into hour and minute.
func (s SyncConfig) ParseDailyAt() (int, int, error) {
	t, err := time.Parse("15:04", s.DailyAt)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid sync.daily_at %q: %w", s.DailyAt, err)
	}
	return t.Hour(), t.Minute(), nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitCommaList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok || raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(path, parts); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}

// envMappings keeps the variable names the dashboard has always used working
// alongside the STRIDE_ section__key form.
var envMappings = map[string]string{
	"app_env":              "app.env",
	"http_addr":            "server.addr",
	"db_driver":            "database.driver",
	"db_path":              "database.dsn",
	"database_url":         "database.dsn",
	"analytics_dsn":        "database.analytics_dsn",
	"strava_api_base":      "strava.base_url",
	"strava_token_url":     "strava.token_url",
	"strava_client_id":     "strava.client_id",
	"strava_client_secret": "strava.client_secret",
	"redis_enabled":        "redis.enabled",
	"redis_addr":           "redis.addr",
	"redis_password":       "redis.password",
	"operator_secret":      "security.operator_secret",
	"cors_origins":         "security.cors_origins",
}

// envTransformFunc maps an environment variable to a koanf path. Unknown
// variables map to "" and are ignored.
//
//	STRAVA_CLIENT_ID          -> strava.client_id
//	STRIDE_STRAVA__PAGE_SIZE  -> strava.page_size
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if rest, ok := strings.CutPrefix(key, "stride_"); ok {
		return strings.ReplaceAll(rest, "__", ".")
	}
	return envMappings[key]
}
