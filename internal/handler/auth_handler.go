package handler

import (
	"context"
	"fmt"
	"net/http"

	"divops/internal/domain/model"
	"divops/internal/middleware"
	auth "divops/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

// handlerが使うAuth Orchestrator
type AuthUsecase interface {
	SignUp(ctx context.Context, in model.Registration) (auth.TokenPair, error)
	SignIn(ctx context.Context, in auth.SignInInput) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.RefreshedToken, error)
	Whoami(ctx context.Context, subject model.Subject) (model.Profile, error)
	Logout(ctx context.Context, subject model.Subject) error
}

// /auth 配下のgateway API
type AuthHandler struct {
	uc AuthUsecase
}

// DI
func NewAuthHandler(uc AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// /auth/signin のリクエストボディ（Basic認証が無いとき）
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/refresh-token のリクエストボディ
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/auth")
	g.POST("/signup", h.signUp)
	g.POST("/signin", h.signIn)
	g.POST("/refresh-token", h.refresh)
	g.GET("/me", h.me, middleware.RequireAuth())
	g.POST("/logout", h.logout, middleware.RequireAuth())
}

func (h *AuthHandler) signUp(c echo.Context) error {
	var req model.Registration
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: invalid body", auth.ErrValidation))
	}

	out, err := h.uc.SignUp(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Basic認証を優先し、無ければJSON body
func (h *AuthHandler) signIn(c echo.Context) error {
	var in auth.SignInInput
	if email, password, ok := c.Request().BasicAuth(); ok {
		in = auth.SignInInput{Email: email, Password: password}
	} else {
		var req signInRequest
		if err := c.Bind(&req); err != nil {
			return writeError(c, fmt.Errorf("%w: invalid body", auth.ErrValidation))
		}
		in = auth.SignInInput{Email: req.Email, Password: req.Password}
	}

	out, err := h.uc.SignIn(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: invalid body", auth.ErrValidation))
	}

	out, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) me(c echo.Context) error {
	subject, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, auth.ErrUnauthorized)
	}

	profile, err := h.uc.Whoami(c.Request().Context(), subject)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) logout(c echo.Context) error {
	subject, ok := middleware.SubjectFrom(c)
	if !ok {
		return writeError(c, auth.ErrUnauthorized)
	}

	if err := h.uc.Logout(c.Request().Context(), subject); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
