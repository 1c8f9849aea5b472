package middleware

import (
	"log/slog"
	"strconv"

	"divops/internal/metrics"
	"divops/internal/pkg/logctx"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ContextLogger はrequest_id付きのロガーをrequestのcontextに入れる。
// middleware.RequestID() より後に置く。
func ContextLogger(l *slog.Logger) echo.MiddlewareFunc {
	if l == nil {
		l = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqLogger := l
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				reqLogger = reqLogger.With(slog.String("request_id", rid))
			}
			req := c.Request()
			c.SetRequest(req.WithContext(logctx.Into(req.Context(), reqLogger)))
			return next(c)
		}
	}
}

// RequestLogger は1リクエスト1行のアクセスログとHTTPメトリクスを出す。
func RequestLogger(service string) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			route := v.RoutePath
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequest(service, v.Method, route, strconv.Itoa(v.Status))

			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("path", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("dur", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("err", v.Error.Error()))
				if v.Status >= 500 {
					level = slog.LevelError
				}
			}

			ctx := c.Request().Context()
			logctx.From(ctx).LogAttrs(ctx, level, "http", attrs...)
			return nil
		},
	})
}
