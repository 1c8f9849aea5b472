// userはUser Directoryサービスの処理（登録・認証・検索）。
package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"divops/internal/domain/model"
	"divops/internal/pkg/logctx"
	"divops/internal/pkg/redact"
	"divops/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 登録入力の検証
type Validator interface {
	ValidateRegister(ctx context.Context, in model.Registration) error
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type Usecase struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	verifier  PasswordVerifier
	validator Validator
	clock     Clock
}

// DI
func NewUsecase(
	users repository.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	validator Validator,
	clock Clock,
) *Usecase {
	return &Usecase{
		users:     users,
		hasher:    hasher,
		verifier:  verifier,
		validator: validator,
		clock:     clock,
	}
}

var _ repository.UserDirectory = (*Usecase)(nil)

// 会員登録。email重複はrepository.ErrEmailAlreadyExists
func (u *Usecase) Register(ctx context.Context, in model.Registration) (model.Profile, error) {
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %v", repository.ErrInvalidInput, err)
	}

	var birthdate *time.Time
	if in.Birthdate != "" {
		d, err := time.Parse(model.BirthdateLayout, in.Birthdate)
		if err != nil {
			return model.Profile{}, fmt.Errorf("%w: birthdate", repository.ErrInvalidInput)
		}
		birthdate = &d
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.Profile{}, fmt.Errorf("%w: password too long", repository.ErrInvalidInput)
		}
		return model.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Birthdate:    birthdate,
		PasswordHash: hashed, // 平文は保存しない
		Role:         model.RoleUser,
		Enabled:      true,
		Timestamps: model.Timestamp{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	// email重複はDBのunique制約で検出
	if err := u.users.Create(ctx, user); err != nil {
		return model.Profile{}, err
	}

	logctx.From(ctx).Info("user registered", "email", redact.Email(user.Email), "user_id", user.ID)
	return user.Profile(), nil
}

// email/passwordが一致する有効ユーザーのプロフィールを返す
func (u *Usecase) Verify(ctx context.Context, email string, password string) (model.Profile, error) {
	user, err := u.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.Profile{}, repository.ErrInvalidCredentials
		}
		return model.Profile{}, err
	}

	//停止ユーザーは不一致と同じ扱い
	if !user.Enabled {
		return model.Profile{}, repository.ErrInvalidCredentials
	}

	if ok := u.verifier.Verify(password, user.PasswordHash); !ok {
		return model.Profile{}, repository.ErrInvalidCredentials
	}

	return user.Profile(), nil
}

// keyを数値IDとして探し、無ければemailとして探す
func (u *Usecase) Find(ctx context.Context, key string) (model.Profile, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Profile{}, repository.ErrUserNotFound
	}

	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		user, err := u.users.FindByID(ctx, id)
		if err == nil {
			return user.Profile(), nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return model.Profile{}, err
		}
	}

	user, err := u.users.FindByEmail(ctx, key)
	if err != nil {
		return model.Profile{}, err
	}
	return user.Profile(), nil
}
