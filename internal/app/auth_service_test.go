package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sarvuday-server/internal/model"
	"sarvuday-server/internal/pkg/jwtutil"
	"sarvuday-server/internal/repository"
	"sarvuday-server/internal/testutil"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(repository.NewUserRepository(testutil.NewDB(t)), "test-secret", time.Hour)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Example.com",
		Password: "secret123",
		City:     "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)
	assert.NotEqual(t, "secret123", reg.User.PasswordHash)

	login, err := svc.Login(ctx, LoginInput{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)

	id, err := jwtutil.ParseToken("test-secret", login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
	assert.Equal(t, model.RoleUser, id.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	input := RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"}

	_, err := svc.Register(ctx, input)
	require.NoError(t, err)
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(ctx, RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}
