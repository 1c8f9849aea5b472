package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"divops/internal/domain/model"
	"divops/internal/repository"
)

// SessionStore はrefresh tokenの平文を受け取り、DBにはハッシュだけ保存する。
type SessionStore struct {
	repo  repository.SessionRepository
	idGen IDGenerator
}

func NewSessionStore(repo repository.SessionRepository, idGen IDGenerator) *SessionStore {
	return &SessionStore{repo: repo, idGen: idGen}
}

// identityの前のSessionを消して新しいSessionを作る
func (s *SessionStore) CreateOrReplace(ctx context.Context, identity string, refreshToken string, expiresAt time.Time) (*model.Session, error) {
	session := &model.Session{
		ID:               s.idGen.NewID(),
		Identity:         identity,
		RefreshTokenHash: hashToken(refreshToken),
		ExpiresAt:        expiresAt.UTC(),
	}
	if err := s.repo.CreateOrReplace(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// 無ければ (nil, false, nil)
func (s *SessionStore) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, bool, error) {
	session, err := s.repo.FindByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return session, true, nil
}

func (s *SessionStore) DeleteByIdentity(ctx context.Context, identity string) error {
	err := s.repo.DeleteByIdentity(ctx, identity)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return err
	}
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpired(ctx, now)
}

// refresh token生成（OSの乱数32byte）
func generateSecureToken(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		return "", fmt.Errorf("bytesLen must be positive")
	}

	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
