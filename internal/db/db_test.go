package db

import (
	"fmt"
	"testing"

	"runlab/stride/internal/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenORMAndReaderShareSqlitePool(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}
	log := zap.NewNop().Sugar()

	orm, err := OpenORM(cfg, log)
	require.NoError(t, err)
	require.NoError(t, Migrate(orm))
	require.Equal(t, "sqlite3", DriverName(orm))

	require.NoError(t, orm.Exec(
		"INSERT INTO activities (id, date, distance, moving_time, elapsed_time, type) VALUES (?, ?, ?, ?, ?, ?)",
		1, "2024-03-01T07:00:00Z", 10000, 2400, 2450, "Run",
	).Error)

	reader, err := OpenReader(cfg, orm, log)
	require.NoError(t, err)

	var n int
	require.NoError(t, reader.Get(&n, reader.Rebind("SELECT COUNT(*) FROM activities WHERE type = ?"), "Run"))
	require.Equal(t, 1, n)
}
