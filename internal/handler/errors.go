package handler

import (
	"errors"
	"net/http"

	"divops/internal/pkg/logctx"
	"divops/internal/repository"
	auth "divops/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// errorをHTTPステータスと短いメッセージに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		ctx := c.Request().Context()
		logctx.From(ctx).Error("request failed", "err", err)
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

func classify(err error) (int, string) {
	switch {
	// 400
	case errors.Is(err, auth.ErrValidation), errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	// 401
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, repository.ErrInvalidCredentials):
		return http.StatusUnauthorized, "unauthorized"
	// 404
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "not found"
	// 409
	case errors.Is(err, auth.ErrConflict), errors.Is(err, repository.ErrEmailAlreadyExists):
		return http.StatusConflict, "email already registered"
	// 503
	case errors.Is(err, auth.ErrUpstreamUnavailable), errors.Is(err, repository.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "upstream unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
