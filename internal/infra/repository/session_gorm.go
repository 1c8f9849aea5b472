package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"divops/internal/domain/model"
	repo "divops/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sessionGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewSessionRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

// identityの既存Sessionを削除してから保存する。
// 同じidentityの同時書き込みはupsertで後勝ちにそろう。
func (r *sessionGormRepository) CreateOrReplace(ctx context.Context, session *model.Session) error {
	const op = "repository.session.CreateOrReplace"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identity = ?", session.Identity).
			Delete(&model.Session{}).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "refresh_token_hash", "expires_at", "updated_at"}),
		}).Create(session).Error
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// refresh_token_hashで1件検索します。
func (r *sessionGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("refresh_token_hash = ?", tokenHash).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, fmt.Errorf("repository.session.FindByTokenHash: %w", err)
	}

	return &s, nil
}

// 指定identityのSessionを削除します。
func (r *sessionGormRepository) DeleteByIdentity(ctx context.Context, identity string) error {
	res := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Delete(&model.Session{})
	if res.Error != nil {
		return fmt.Errorf("repository.session.DeleteByIdentity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}
	return nil
}

// expires_at <= now を削除します。
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&model.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("repository.session.DeleteExpired: %w", res.Error)
	}
	return res.RowsAffected, nil
}
