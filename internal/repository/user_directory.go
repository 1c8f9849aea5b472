package repository

import (
	"context"
	"errors"

	"divops/internal/domain/model"
)

var (
	// email/passwordが一致しない、または停止ユーザー
	ErrInvalidCredentials = errors.New("invalid credentials")
	// 入力がUser Directoryで弾かれた
	ErrInvalidInput = errors.New("invalid input")
	// User Directoryに届かない・5xx・タイムアウト
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// UserDirectory はユーザー情報を持つ外部サービス。
type UserDirectory interface {
	// email重複はErrEmailAlreadyExists
	Register(ctx context.Context, in model.Registration) (model.Profile, error)
	// 不一致はErrInvalidCredentials
	Verify(ctx context.Context, email string, password string) (model.Profile, error)
	// keyは数値IDまたはemail。無ければErrUserNotFound
	Find(ctx context.Context, key string) (model.Profile, error)
}
