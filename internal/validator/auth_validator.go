package validator

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"divops/internal/domain/model"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailの形式が不正
	ErrInvalidEmail = errors.New("invalid email format")

	// 生年月日の形式が不正
	ErrInvalidBirthdate = errors.New("invalid birthdate")

	// refresh tokenが不正
	ErrInvalidRefresh = errors.New("invalid refresh")
)

// 1行に収まる簡易メール形式
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// bcryptが扱えるパスワードの上限（byte）
const maxPasswordBytes = 72

// 名前の上限（DBのVARCHAR(255)）
const maxNameLength = 255

// AuthValidator はgatewayとUser Directoryで共通の入力チェック。
type AuthValidator struct{}

func NewAuthValidator() *AuthValidator {
	return &AuthValidator{}
}

// サインアップの入力を検証
func (v *AuthValidator) ValidateSignUp(ctx context.Context, in model.Registration) error {
	return v.ValidateRegister(ctx, in)
}

// User Directoryへの登録入力を検証
func (v *AuthValidator) ValidateRegister(ctx context.Context, in model.Registration) error {
	email := strings.TrimSpace(in.Email)

	// 必須チェック
	if email == "" || in.Password == "" {
		return ErrInvalidInput
	}

	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	if len(in.Password) > maxPasswordBytes {
		return ErrInvalidInput
	}

	if len(in.FirstName) > maxNameLength || len(in.LastName) > maxNameLength {
		return ErrInvalidInput
	}

	if in.Birthdate != "" {
		if _, err := time.Parse(model.BirthdateLayout, in.Birthdate); err != nil {
			return ErrInvalidBirthdate
		}
	}

	return nil
}

// サインインの入力を検証
func (v *AuthValidator) ValidateSignIn(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	// 必須チェック
	if email == "" || password == "" {
		return ErrInvalidInput
	}

	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	return nil
}

// refresh 入力を検証
func (v *AuthValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return ErrInvalidRefresh
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailPattern.MatchString(s)
}
