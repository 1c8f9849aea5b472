package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ユーザー（User Directoryが所有する）
type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName    string     `gorm:"type:varchar(255);not null"`
	LastName     string     `gorm:"type:varchar(255);not null"`
	Birthdate    *time.Time `gorm:"type:date"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         Role       `gorm:"type:varchar(20);not null"`
	Enabled      bool       `gorm:"not null"`
	Timestamps   Timestamp  `gorm:"embedded"`
}

// 作成・更新時刻
type Timestamp struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// API返却用のプロフィール（passwordHashは含めない）
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Birthdate string `json:"birthdate,omitempty"`
	Role      Role   `json:"role"`
	Enabled   bool   `json:"enabled"`
}

const BirthdateLayout = "2006-01-02"

// UserをProfileに変換
func (u *User) Profile() Profile {
	p := Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Enabled:   u.Enabled,
	}
	if u.Birthdate != nil {
		p.Birthdate = u.Birthdate.Format(BirthdateLayout)
	}
	return p
}
