package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"divops/internal/domain/model"
	"divops/internal/infra/token"
	"divops/internal/metrics"
	"divops/internal/pkg/logctx"
	"divops/internal/pkg/redact"
	"divops/internal/repository"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrConflict            = errors.New("email already registered")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// refresh tokenのバイト長
const refreshTokenBytes = 32

// sign-up / sign-in の出力
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// refresh の出力
type RefreshedToken struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type SignInInput struct {
	Email    string
	Password string
}

type Usecase struct {
	directory  repository.UserDirectory
	sessions   *SessionStore
	issuer     AccessTokenIssuer
	validator  Validator
	clock      Clock
	refreshTTL time.Duration
}

// DI
func NewUsecase(
	directory repository.UserDirectory,
	sessions *SessionStore,
	issuer AccessTokenIssuer,
	validator Validator,
	clock Clock,
	refreshTTL time.Duration,
) *Usecase {
	return &Usecase{
		directory:  directory,
		sessions:   sessions,
		issuer:     issuer,
		validator:  validator,
		clock:      clock,
		refreshTTL: refreshTTL,
	}
}

// 会員登録してそのままトークンを発行する
func (u *Usecase) SignUp(ctx context.Context, in model.Registration) (TokenPair, error) {
	const op = "signup"

	if err := u.validator.ValidateSignUp(ctx, in); err != nil {
		metrics.AuthOperation(op, "invalid")
		return TokenPair{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	profile, err := u.directory.Register(ctx, in)
	if err != nil {
		err = mapDirectoryError(err)
		metrics.AuthOperation(op, resultOf(err))
		logctx.From(ctx).Warn("sign-up rejected", slogEmail(in.Email), "err", err)
		return TokenPair{}, err
	}

	pair, err := u.issueTokens(ctx, profile)
	if err != nil {
		metrics.AuthOperation(op, "error")
		return TokenPair{}, err
	}

	metrics.AuthOperation(op, "ok")
	logctx.From(ctx).Info("user signed up", slogEmail(profile.Email), "user_id", profile.ID)
	return pair, nil
}

// email/passwordを確認してトークンを発行する。前のsessionは無効になる
func (u *Usecase) SignIn(ctx context.Context, in SignInInput) (TokenPair, error) {
	const op = "signin"

	if err := u.validator.ValidateSignIn(ctx, in.Email, in.Password); err != nil {
		metrics.AuthOperation(op, "invalid")
		return TokenPair{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	profile, err := u.directory.Verify(ctx, in.Email, in.Password)
	if err != nil {
		err = mapDirectoryError(err)
		metrics.AuthOperation(op, resultOf(err))
		logctx.From(ctx).Warn("sign-in rejected", slogEmail(in.Email), "err", err)
		return TokenPair{}, err
	}

	pair, err := u.issueTokens(ctx, profile)
	if err != nil {
		metrics.AuthOperation(op, "error")
		return TokenPair{}, err
	}

	metrics.AuthOperation(op, "ok")
	logctx.From(ctx).Info("user signed in", slogEmail(profile.Email), "user_id", profile.ID)
	return pair, nil
}

// access token発行 + refresh token生成 + session差し替え
func (u *Usecase) issueTokens(ctx context.Context, profile model.Profile) (TokenPair, error) {
	identity := profile.Email

	extra := token.Extra{}
	if profile.ID > 0 {
		extra.UserID = uint64(profile.ID)
	}
	if profile.Role != "" {
		extra.Authorities = []string{string(profile.Role)}
	}

	access, err := u.issuer.Issue(identity, extra)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	plainRefresh, err := generateSecureToken(refreshTokenBytes)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := u.clock.Now().Add(u.refreshTTL)
	if _, err := u.sessions.CreateOrReplace(ctx, identity, plainRefresh, expiresAt); err != nil {
		return TokenPair{}, fmt.Errorf("store session: %w", err)
	}

	return TokenPair{
		AccessToken:  access.Token,
		RefreshToken: plainRefresh,
		ExpiresIn:    expiresIn(access),
	}, nil
}

// refresh tokenから新しいaccess tokenを作る。refresh token自体はローテーションしない
func (u *Usecase) Refresh(ctx context.Context, refreshToken string) (RefreshedToken, error) {
	const op = "refresh"

	if err := u.validator.ValidateRefresh(ctx, refreshToken); err != nil {
		metrics.AuthOperation(op, "invalid")
		return RefreshedToken{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	session, ok, err := u.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		metrics.AuthOperation(op, "error")
		return RefreshedToken{}, fmt.Errorf("find session: %w", err)
	}
	if !ok {
		metrics.AuthOperation(op, "unauthorized")
		return RefreshedToken{}, ErrUnauthorized
	}

	//期限切れの行は残っていても無効
	if session.Expired(u.clock.Now()) {
		metrics.AuthOperation(op, "unauthorized")
		logctx.From(ctx).Info("expired refresh token presented", slogEmail(session.Identity))
		return RefreshedToken{}, ErrUnauthorized
	}

	access, err := u.issuer.Issue(session.Identity, token.Extra{})
	if err != nil {
		metrics.AuthOperation(op, "error")
		return RefreshedToken{}, fmt.Errorf("issue access token: %w", err)
	}

	metrics.AuthOperation(op, "ok")
	return RefreshedToken{
		AccessToken: access.Token,
		ExpiresIn:   expiresIn(access),
	}, nil
}

// 認証済みsubjectのプロフィールを返す
func (u *Usecase) Whoami(ctx context.Context, subject model.Subject) (model.Profile, error) {
	const op = "whoami"

	if !subject.Valid() {
		metrics.AuthOperation(op, "unauthorized")
		return model.Profile{}, ErrUnauthorized
	}

	profile, err := u.directory.Find(ctx, subject.Key())
	if err != nil {
		err = mapDirectoryError(err)
		metrics.AuthOperation(op, resultOf(err))
		return model.Profile{}, err
	}

	metrics.AuthOperation(op, "ok")
	return profile, nil
}

// 呼び出し元のsessionを消す。sessionが無くても成功
func (u *Usecase) Logout(ctx context.Context, subject model.Subject) error {
	const op = "logout"

	if !subject.Valid() {
		metrics.AuthOperation(op, "unauthorized")
		return ErrUnauthorized
	}

	identity := subject.Email
	if subject.Kind == model.SubjectUserID {
		// sessionはemailで持っているので引き直す
		profile, err := u.directory.Find(ctx, strconv.FormatUint(subject.UserID, 10))
		if err != nil {
			err = mapDirectoryError(err)
			metrics.AuthOperation(op, resultOf(err))
			return err
		}
		identity = profile.Email
	}

	if err := u.sessions.DeleteByIdentity(ctx, identity); err != nil {
		metrics.AuthOperation(op, "error")
		return fmt.Errorf("delete session: %w", err)
	}

	metrics.AuthOperation(op, "ok")
	logctx.From(ctx).Info("user logged out", slogEmail(identity))
	return nil
}

func expiresIn(access token.AccessToken) int {
	return int(access.ExpiresAt.Sub(access.IssuedAt).Seconds())
}

// User Directoryのエラーをusecaseのエラーに変換
func mapDirectoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailAlreadyExists):
		return ErrConflict
	case errors.Is(err, repository.ErrInvalidCredentials):
		return ErrUnauthorized
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, repository.ErrUpstreamUnavailable):
		return ErrUpstreamUnavailable
	default:
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
}

func resultOf(err error) string {
	switch {
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}

func slogEmail(email string) any {
	return slog.String("email", redact.Email(email))
}
