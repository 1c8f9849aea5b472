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
	"divops/internal/infra/token"
	"divops/internal/infra/userdir"
	"divops/internal/pkg/logctx"
	"divops/internal/server"
	auth "divops/internal/usecase/auth_usecase"
	"divops/internal/validator"

	"github.com/google/uuid"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

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
	log.Info("starting gateway", "env", cfg.Env)

	if err := cfg.ValidateGateway(); err != nil {
		log.Error("invalid_config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err := cfg.ValidateDB(); err != nil {
		log.Error("invalid_config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// 終了シグナルで止まるcontext
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()
	rootCtx = logctx.Into(rootCtx, log)

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
	log.Info("db_ready", slog.String("driver", cfg.DB.Driver))

	//User Directoryクライアント
	dir, err := userdir.NewClient(cfg.UserService.BaseURL, cfg.UserService.Timeout)
	if err != nil {
		log.Error("user_service_client_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	//Token Service（署名鍵は起動時に固定）
	tokens := token.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, token.WithIssuer(cfg.Auth.Issuer))

	//Usecase生成
	sessions := auth.NewSessionStore(infraRepo.NewSessionRepository(gormDB), &uuidGenerator{})
	authUC := auth.NewUsecase(dir, sessions, tokens, validator.NewAuthValidator(), &realClock{}, cfg.Auth.RefreshTokenTTL)

	//期限切れsessionの掃除
	go authUC.RunJanitor(rootCtx, cfg.Sessions.JanitorInterval)

	e, err := server.NewGatewayServer(server.GatewayDeps{Logger: log, Auth: authUC, Tokens: tokens})
	if err != nil {
		log.Error("server_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := server.Run(rootCtx, e, cfg.HTTP.Addr(), cfg.HTTP.ShutdownTimeout, log); err != nil {
		log.Error("server_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	log.Info("gateway_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case config.EnvLocal, config.EnvDev:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
