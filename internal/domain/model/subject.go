package model

import (
	"strconv"
	"strings"
)

// tokenのsubjectがどの形式で発行されたか
type SubjectKind int

const (
	SubjectUserID SubjectKind = iota + 1
	SubjectEmail
)

// 認証済みのリクエスト主体。
// 旧形式のtokenはemailだけ、新しいtokenは数値のuser idを持つ。
type Subject struct {
	Kind   SubjectKind
	UserID uint64
	Email  string
}

func UserIDSubject(id uint64) Subject {
	return Subject{Kind: SubjectUserID, UserID: id}
}

func EmailSubject(email string) Subject {
	return Subject{Kind: SubjectEmail, Email: email}
}

// 10進数ならuser id、それ以外はemailとして扱う
func ParseSubject(raw string) (Subject, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Subject{}, false
	}
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
		return UserIDSubject(id), true
	}
	return EmailSubject(raw), true
}

// User Directoryの検索キー
func (s Subject) Key() string {
	switch s.Kind {
	case SubjectUserID:
		return strconv.FormatUint(s.UserID, 10)
	case SubjectEmail:
		return s.Email
	default:
		return ""
	}
}

func (s Subject) Valid() bool {
	switch s.Kind {
	case SubjectUserID:
		return s.UserID > 0
	case SubjectEmail:
		return s.Email != ""
	default:
		return false
	}
}

func (s Subject) String() string {
	switch s.Kind {
	case SubjectUserID:
		return "user:" + s.Key()
	case SubjectEmail:
		return "email:" + s.Email
	default:
		return "anonymous"
	}
}
