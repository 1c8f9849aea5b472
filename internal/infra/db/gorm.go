package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"divops/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// Open はDBに接続して *gorm.DB を返す。
func Open(ctx context.Context, cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		// busy_timeoutで書き込み競合を待つ
		dialector = sqlite.Open(cfg.DSN() + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		// unique違反をgorm.ErrDuplicatedKeyにそろえる
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return gormDB, nil
}

// Migrate は埋め込みSQLでスキーマを最新にする。
func Migrate(ctx context.Context, gormDB *gorm.DB) error {
	name := gormDB.Dialector.Name()

	var dialect goose.Dialect
	switch name {
	case "postgres":
		dialect = goose.DialectPostgres
	case "sqlite":
		dialect = goose.DialectSQLite3
	default:
		return fmt.Errorf("no migrations for dialect %q", name)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	dir, err := fs.Sub(migrations, "migrations/"+name)
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, sqlDB, dir)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
