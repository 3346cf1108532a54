package service

import (
	"context"
	"testing"

	"paperly/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u, err := f.users.Register(ctx, RegisterInput{Username: "admin", Email: "admin@paperly.com", FullName: "Administrator", Password: "admin123"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "admin123", u.PasswordHash)

	// 相同用户名，不同邮箱
	_, err = f.users.Register(ctx, RegisterInput{Username: "admin", Email: "other@paperly.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.users.Register(ctx, RegisterInput{Username: "admin2", Email: "admin@paperly.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for name, in := range map[string]RegisterInput{
		"empty username": {Username: "  ", Email: "a@b.com", Password: "x"},
		"empty password": {Username: "a", Email: "a@b.com"},
		"bad email":      {Username: "a", Email: "not-an-email", Password: "x"},
		"display name":   {Username: "a", Email: "Bob <bob@x.com>", Password: "x"},
		"angle address":  {Username: "a", Email: "<bob@x.com>", Password: "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.users.Register(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserService_RegisterEmailWithDisplayName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Register(ctx, RegisterInput{Username: "bob", Email: "Bob <bob@x.com>", Password: "x"})
	require.ErrorIs(t, err, ErrValidation)

	u, err := f.users.Register(ctx, RegisterInput{Username: "bob2", Email: "bob@x.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "bob@x.com", u.Email)

	_, err = f.users.Register(ctx, RegisterInput{Username: "bob3", Email: " bob@x.com ", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.Register(ctx, RegisterInput{Username: "researcher1", Email: "r@paperly.com", Password: "research123"})
	require.NoError(t, err)

	u, err := f.users.Authenticate(ctx, "researcher1", "research123")
	require.NoError(t, err)
	assert.Equal(t, "researcher1", u.Username)

	_, err = f.users.Authenticate(ctx, "researcher1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.users.Authenticate(ctx, "ghost", "research123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.orm.Model(&model.User{}).Where("username = ?", "researcher1").Update("is_active", false).Error)
	_, err = f.users.Authenticate(ctx, "researcher1", "research123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.users.Register(ctx, RegisterInput{Username: "student1", Email: "s@paperly.com", Password: "student123"})
	require.NoError(t, err)

	res, err := f.users.Login(ctx, "student1", "student123")
	require.NoError(t, err)
	assert.EqualValues(t, 1800, res.ExpiresIn)

	subject, ok := f.jwt.VerifySubject(res.Token)
	require.True(t, ok)
	assert.Equal(t, "student1", subject)

	id := f.users.ResolveUserID(ctx, subject)
	require.NotNil(t, id)
	assert.Equal(t, registered.ID, *id)
	assert.Nil(t, f.users.ResolveUserID(ctx, "ghost"))
	assert.Nil(t, f.users.ResolveUserID(ctx, ""))

	_, err = f.users.Login(ctx, "student1", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Find(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.users.FindByID(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}
