package repository

import (
	"context"
	"testing"
	"time"

	"divops/internal/domain/model"
	repo "divops/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *model.User {
	return &model.User{
		Email:        email,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "hash",
		Role:         model.RoleUser,
		Enabled:      true,
	}
}

// 作成するとIDが振られてemail/IDで引ける
func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	bd := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	u := newUser("ada@x.com")
	u.Birthdate = &bd
	require.NoError(t, r.Create(ctx, u))
	require.NotZero(t, u.ID)

	byEmail, err := r.FindByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "Ada", byEmail.FirstName)
	require.NotNil(t, byEmail.Birthdate)
	assert.Equal(t, "1990-01-02", byEmail.Birthdate.Format(model.BirthdateLayout))

	byID, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", byID.Email)
	assert.True(t, byID.Enabled)
}

// enabled=falseもそのまま保存される
func TestUserRepository_CreateDisabled(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	u := newUser("off@x.com")
	u.Enabled = false
	require.NoError(t, r.Create(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

// email重複 => ErrEmailAlreadyExists
func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	require.NoError(t, r.Create(ctx, newUser("dup@x.com")))
	err := r.Create(ctx, newUser("dup@x.com"))
	assert.ErrorIs(t, err, repo.ErrEmailAlreadyExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewUserGormRepository(newTestDB(t))

	_, err := r.FindByEmail(ctx, "none@x.com")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	_, err = r.FindByID(ctx, 999)
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}
