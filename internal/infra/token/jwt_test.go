package token

import (
	"testing"
	"time"

	"divops/internal/domain/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestService(clock *fakeClock) *Service {
	return NewService(testSecret, 15*time.Minute, WithClock(clock.Now), WithIssuer("test"))
}

func signRaw(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// 発行直後と期限直前は有効、期限ちょうど以降は無効
func TestService_IssueValidate_Lifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestService(clock)

	at, err := svc.Issue("a@x.com", Extra{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", at.Subject)
	assert.Equal(t, clock.t, at.IssuedAt)
	assert.Equal(t, clock.t.Add(15*time.Minute), at.ExpiresAt)

	sub, err := svc.Validate(at.Token)
	require.NoError(t, err)
	assert.Equal(t, model.EmailSubject("a@x.com"), sub)

	clock.t = at.ExpiresAt.Add(-time.Second)
	_, err = svc.Validate(at.Token)
	assert.NoError(t, err)

	clock.t = at.ExpiresAt
	_, err = svc.Validate(at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock.t = at.ExpiresAt.Add(time.Hour)
	_, err = svc.Validate(at.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// userId claimがあればUserIDとして返す
func TestService_Validate_UserIDClaim(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestService(clock)

	at, err := svc.Issue("a@x.com", Extra{UserID: 7, Authorities: []string{"USER"}})
	require.NoError(t, err)

	sub, err := svc.Validate(at.Token)
	require.NoError(t, err)
	assert.Equal(t, model.UserIDSubject(7), sub)
}

// 旧形式：subが数値ならUserID、emailならEmail
func TestService_Validate_LegacySubject(t *testing.T) {
	now := time.Now()
	svc := newTestService(&fakeClock{t: now})

	numeric := signRaw(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "15", "iat": now.Unix(), "exp": now.Add(time.Minute).Unix(),
	})
	sub, err := svc.Validate(numeric)
	require.NoError(t, err)
	assert.Equal(t, model.UserIDSubject(15), sub)

	email := signRaw(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "old@x.com", "iat": now.Unix(), "exp": now.Add(time.Minute).Unix(),
	})
	sub, err = svc.Validate(email)
	require.NoError(t, err)
	assert.Equal(t, model.EmailSubject("old@x.com"), sub)
}

// 署名違い・アルゴリズム違い・壊れたtoken・expなし => すべて同じエラー
func TestService_Validate_Rejects(t *testing.T) {
	now := time.Now()
	svc := newTestService(&fakeClock{t: now})
	valid := jwt.MapClaims{"sub": "a@x.com", "exp": now.Add(time.Minute).Unix()}

	cases := map[string]string{
		"bad signature": signRaw(t, "another-secret-another-secret-xx", jwt.SigningMethodHS256, valid),
		"wrong alg":     signRaw(t, testSecret, jwt.SigningMethodHS512, valid),
		"malformed":     "abc.def.ghi",
		"empty":         "",
		"no exp":        signRaw(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a@x.com"}),
		"no sub":        signRaw(t, testSecret, jwt.SigningMethodHS256, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestService_Issue_EmptyIdentity(t *testing.T) {
	svc := newTestService(&fakeClock{t: time.Now()})
	_, err := svc.Issue("", Extra{})
	assert.Error(t, err)
}
