package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Strava.PageSize)
	assert.Equal(t, 30, cfg.Strava.DetailBatchSize)
	assert.Equal(t, 1200*time.Millisecond, cfg.Strava.RequestDelay)
	assert.Equal(t, 30*time.Second, cfg.Strava.RequestTimeout)
	assert.Equal(t, "04:00", cfg.Sync.DailyAt)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "strava:\n  page_size: 150\n  client_id: from-file\nsync:\n  daily_at: \"05:30\"\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("STRAVA_CLIENT_ID", "from-env")
	t.Setenv("STRIDE_STRAVA__DETAIL_BATCH_SIZE", "50")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.Strava.PageSize)
	assert.Equal(t, "from-env", cfg.Strava.ClientID)
	assert.Equal(t, 50, cfg.Strava.DetailBatchSize)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSOrigins)

	h, m, err := cfg.Sync.ParseDailyAt()
	require.NoError(t, err)
	assert.Equal(t, 5, h)
	assert.Equal(t, 30, m)
}

func TestValidate_RejectsOutOfRangeBatchSizes(t *testing.T) {
	cfg := defaultConfig()
	cfg.Strava.PageSize = 250
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Strava.DetailBatchSize = 10
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.Sync.DailyAt = "25:99"
	assert.Error(t, cfg.Validate())
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "database.dsn", envTransformFunc("DB_PATH"))
	assert.Equal(t, "strava.page_size", envTransformFunc("STRIDE_STRAVA__PAGE_SIZE"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}
