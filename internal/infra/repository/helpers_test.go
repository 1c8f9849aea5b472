package repository

import (
	"context"
	"path/filepath"
	"testing"

	"divops/internal/config"
	"divops/internal/infra/db"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// テスト用のSQLite（migration適用済み）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	gormDB, err := db.Open(ctx, config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "repo.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gormDB) })

	require.NoError(t, db.Migrate(ctx, gormDB))
	return gormDB
}
