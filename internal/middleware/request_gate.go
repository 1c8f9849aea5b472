package middleware

import (
	"context"
	"net/http"
	"strings"

	"divops/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// echo.Contextに入れるSubjectのキー
const CtxSubjectKey = "subject"

type subjectCtxKey struct{}

// access tokenを検証してSubjectを返す約束
type TokenValidator interface {
	Validate(raw string) (model.Subject, error)
}

// 認証なしで通すパス（完全一致）
var publicPaths = map[string]struct{}{
	"/health":             {},
	"/metrics":            {},
	"/auth/signup":        {},
	"/auth/signin":        {},
	"/auth/refresh-token": {},
}

// 認証なしで通すパス（前方一致）
var publicPrefixes = []string{
	"/v3/api-docs",
	"/swagger",
}

// 公開パスかどうか
func IsPublicPath(path string) bool {
	if _, ok := publicPaths[path]; ok {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// RequestGate はBearerトークンを検証し、成功したらSubjectをcontextに入れる。
// ここでは拒否しない。拒否はRequireAuthが行う。
func RequestGate(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			//公開パスはそのまま
			if IsPublicPath(req.URL.Path) {
				return next(c)
			}

			rawToken, ok := bearerToken(req.Header.Get("Authorization"))
			if !ok {
				return next(c)
			}

			subject, err := v.Validate(rawToken)
			if err != nil || !subject.Valid() {
				return next(c)
			}

			//echoとrequest両方のcontextへ保存
			c.Set(CtxSubjectKey, subject)
			c.SetRequest(req.WithContext(WithSubject(req.Context(), subject)))

			return next(c)
		}
	}
}

// Bearer形式か確認してtokenを抜く
func bearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	if raw == "" {
		return "", false
	}
	return raw, true
}

func WithSubject(ctx context.Context, s model.Subject) context.Context {
	return context.WithValue(ctx, subjectCtxKey{}, s)
}

func SubjectFromContext(ctx context.Context) (model.Subject, bool) {
	s, ok := ctx.Value(subjectCtxKey{}).(model.Subject)
	return s, ok && s.Valid()
}

// SubjectFrom はRequestGateが入れたSubjectを取り出す。
func SubjectFrom(c echo.Context) (model.Subject, bool) {
	if s, ok := c.Get(CtxSubjectKey).(model.Subject); ok && s.Valid() {
		return s, true
	}
	return SubjectFromContext(c.Request().Context())
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// 認証必須のルートに付ける
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := SubjectFrom(c); !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}
