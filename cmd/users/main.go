package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"divops/internal/config"
	"divops/internal/infra/db"
	infraRepo "divops/internal/infra/repository"
	"divops/internal/server"
	user "divops/internal/usecase/user_usecase"
	"divops/internal/validator"
)

// bcryptのコスト
const bcryptCost = 12

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting user directory", "env", cfg.Env)

	if err := cfg.ValidateDB(); err != nil {
		log.Error("invalid_config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	//DB接続
	gormDB, err := db.Open(rootCtx, cfg.DB)
	if err != nil {
		log.Error("db_connect_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close(gormDB) }()

	if err := db.Migrate(rootCtx, gormDB); err != nil {
		log.Error("db_migrate_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	//bcrypt（登録：Hash / 認証：Verify）
	userUC := user.NewUsecase(
		infraRepo.NewUserGormRepository(gormDB),
		user.NewBcryptPasswordHasher(bcryptCost),
		user.NewBcryptPasswordVerifier(),
		validator.NewAuthValidator(),
		&realClock{},
	)

	e, err := server.NewUserServer(log, userUC)
	if err != nil {
		log.Error("server_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := server.Run(rootCtx, e, cfg.HTTP.Addr(), cfg.HTTP.ShutdownTimeout, log); err != nil {
		log.Error("server_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("user_directory_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvLocal, config.EnvDev:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
