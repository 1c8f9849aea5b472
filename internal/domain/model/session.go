package model

import "time"

// Sessionはrefresh tokenとidentityを結びつける。
// identityごとに生きているSessionは最大1件。
type Session struct {
	ID               string    `gorm:"type:varchar(36);primaryKey"`
	Identity         string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	RefreshTokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt        time.Time `gorm:"not null;index"`
	Timestamps       Timestamp `gorm:"embedded"`
}

// 期限切れかどうか（expiresAtちょうどは無効）
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
