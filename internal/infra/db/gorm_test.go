package db

import (
	"context"
	"path/filepath"
	"testing"

	"divops/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SQLiteで接続してmigrationが2回流せる
func TestOpenAndMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	gormDB, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gormDB) })

	require.NoError(t, Migrate(ctx, gormDB))
	require.NoError(t, Migrate(ctx, gormDB))

	assert.True(t, gormDB.Migrator().HasTable("users"))
	assert.True(t, gormDB.Migrator().HasTable("sessions"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DBConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported")
}
