package repository

import (
	"context"
	"errors"

	"divops/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// email重複
var ErrEmailAlreadyExists = errors.New("email already exists")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成（email重複はErrEmailAlreadyExists）
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
