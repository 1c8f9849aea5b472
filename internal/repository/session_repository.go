package repository

import (
	"context"
	"errors"
	"time"

	"divops/internal/domain/model"
)

var ErrSessionNotFound = errors.New("session not found")

// Sessionの保存・取得・削除
type SessionRepository interface {
	// identityの既存Sessionを消してから保存する
	CreateOrReplace(ctx context.Context, session *model.Session) error
	// refresh tokenのハッシュで1件取得
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	// identityのSessionを削除
	DeleteByIdentity(ctx context.Context, identity string) error
	// 期限切れを削除して件数を返す
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
