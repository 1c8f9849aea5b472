package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"divops/internal/domain/model"
	"divops/internal/repository"

	"github.com/labstack/echo/v4"
)

// /internal 配下のUser Directory API（サービス間専用）
type UserHandler struct {
	dir repository.UserDirectory
}

// DI
func NewUserHandler(dir repository.UserDirectory) *UserHandler {
	return &UserHandler{dir: dir}
}

type verifyRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/internal")
	g.POST("/users", h.register)
	g.POST("/auth/verify", h.verify)
	g.GET("/users/:key", h.find)
}

func (h *UserHandler) register(c echo.Context) error {
	var req model.Registration
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: invalid body", repository.ErrInvalidInput))
	}

	profile, err := h.dir.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, profile)
}

func (h *UserHandler) verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: invalid body", repository.ErrInvalidInput))
	}

	profile, err := h.dir.Verify(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// keyは数値IDまたはemail
func (h *UserHandler) find(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("key"))
	if err != nil {
		return writeError(c, fmt.Errorf("%w: invalid key", repository.ErrInvalidInput))
	}

	profile, err := h.dir.Find(c.Request().Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}
