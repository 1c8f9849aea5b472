// tokenはアクセストークン（HS256 JWT）の発行と検証。
// 署名鍵は起動時に渡され、その後は読み取り専用。
package token

import (
	"errors"
	"fmt"
	"time"

	"divops/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
)

// 署名不正・形式不正・期限切れは区別しない
var ErrInvalidToken = errors.New("invalid token")

// 任意のカスタムclaim
type Extra struct {
	UserID      uint64
	Authorities []string
}

// 発行したアクセストークン
type AccessToken struct {
	Token     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type accessClaims struct {
	UserID      uint64   `json:"userId,omitempty"`
	Authorities []string `json:"authorities,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Option func(*Service)

// テスト用に時計を差し替える
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// DI
func NewService(secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TTL() time.Duration { return s.ttl }

// subject=identityでtokenを発行する
func (s *Service) Issue(identity string, extra Extra) (AccessToken, error) {
	if identity == "" {
		return AccessToken{}, fmt.Errorf("token.Issue: empty identity")
	}

	// JWTの時刻は秒単位
	now := s.now().Truncate(time.Second)
	exp := now.Add(s.ttl)

	claims := accessClaims{
		UserID:      extra.UserID,
		Authorities: extra.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("token.Issue: %w", err)
	}

	return AccessToken{
		Token:     signed,
		Subject:   identity,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// 署名と期限を確認してSubjectを返す。
// userId claimがあればUserID、無ければsubをそのまま解釈する（旧形式のemailのみtoken）。
func (s *Service) Validate(raw string) (model.Subject, error) {
	var claims accessClaims

	parsed, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return model.Subject{}, ErrInvalidToken
	}

	// 期限ちょうども無効にする（jwtはexp当日を許す）
	if claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time) {
		return model.Subject{}, ErrInvalidToken
	}

	if claims.UserID > 0 {
		return model.UserIDSubject(claims.UserID), nil
	}

	subject, ok := model.ParseSubject(claims.Subject)
	if !ok {
		return model.Subject{}, ErrInvalidToken
	}
	return subject, nil
}
