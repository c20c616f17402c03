package service_test

import (
	"context"
	"testing"
	"time"

	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/repository/memory"
	"alcyxob/fitness-tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := service.NewAuthService(memory.NewUserRepository(memory.NewStore()), "secret", time.Hour, []string{"Boss@Example.com"})

	user, err := auth.Register(ctx, "Ann", "Ann@Example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	_, err = auth.Register(ctx, "Ann again", "ann@example.com", "other")
	assert.ErrorIs(t, err, service.ErrUserAlreadyExists)

	admin, err := auth.Register(ctx, "Boss", "boss@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, _, err = auth.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)
	assert.Equal(t, service.KindUnauthorized, service.KindOf(err))

	_, _, err = auth.Login(ctx, "nobody@example.com", "pw")
	assert.ErrorIs(t, err, service.ErrAuthenticationFailed)

	token, loggedIn, err := auth.Login(ctx, "ANN@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	me, err := auth.GetUser(ctx, claims.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", me.Name)
	assert.Empty(t, me.PasswordHash)
}

func TestAuthService_ParseTokenRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository(memory.NewStore())
	issuer := service.NewAuthService(users, "one", time.Hour, nil)
	verifier := service.NewAuthService(users, "two", time.Hour, nil)

	_, err := issuer.Register(ctx, "Ann", "ann@example.com", "pw")
	require.NoError(t, err)
	token, _, err := issuer.Login(ctx, "ann@example.com", "pw")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	_, err = verifier.ParseToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
