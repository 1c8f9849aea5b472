package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"divops/internal/handler"
	"divops/internal/middleware"
	"divops/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	ServiceGateway = "gateway"
	ServiceUsers   = "users"
)

// gatewayの依存
type GatewayDeps struct {
	Logger *slog.Logger
	Auth   handler.AuthUsecase
	Tokens middleware.TokenValidator
}

// echoの共通設定（request id → logger → access log → recover）
func newEcho(service string, l *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		echomw.RequestID(),
		middleware.ContextLogger(l),
		middleware.RequestLogger(service),
		echomw.Recover(),
	)
	return e
}

// 公開API（/auth, /health, /v3/api-docs, /metrics）
func NewGatewayServer(deps GatewayDeps) (*echo.Echo, error) {
	system, err := handler.NewSystemHandler(ServiceGateway, handler.DocsGateway)
	if err != nil {
		return nil, err
	}

	e := newEcho(ServiceGateway, deps.Logger)
	e.Use(middleware.RequestGate(deps.Tokens))

	system.RegisterRoutes(e)
	handler.NewAuthHandler(deps.Auth).RegisterRoutes(e)
	return e, nil
}

// サービス間専用のUser Directory API
func NewUserServer(l *slog.Logger, dir repository.UserDirectory) (*echo.Echo, error) {
	system, err := handler.NewSystemHandler(ServiceUsers, handler.DocsUsers)
	if err != nil {
		return nil, err
	}

	e := newEcho(ServiceUsers, l)

	system.RegisterRoutes(e)
	handler.NewUserHandler(dir).RegisterRoutes(e)
	return e, nil
}

// Run はctxが終わるまでaddrで待ち受け、その後shutdownTimeout以内に停止する。
func Run(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration, l *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Warn("http_shutdown_incomplete", slog.String("err", err.Error()))
		return err
	}
	l.Info("http_stopped")
	return nil
}
