package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/cse-hub/crs-api/pkg/errors"
)

func newAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	u := repo.users["alice@university.edu"]
	u.PasswordHash = string(hash)
	repo.users["alice@university.edu"] = u

	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:     "test-signing-key",
		Expiration: time.Hour,
		Issuer:     "crs-api-test",
	})
	return svc, repo
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield a token", func(t *testing.T) {
		svc, _ := newAuthService(t)
		result, err := svc.Login(ctx, LoginRequest{Email: "alice@university.edu", Password: "s3cret"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "alice@university.edu", result.User.Email)
		assert.True(t, result.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.Login(ctx, LoginRequest{Email: "alice@university.edu", Password: "wrong"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	})

	t.Run("unknown email maps to the same error as a bad password", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.Login(ctx, LoginRequest{Email: "ghost@university.edu", Password: "s3cret"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	})

	t.Run("account without a stored hash cannot log in", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.Login(ctx, LoginRequest{Email: "bob@university.edu", Password: "anything"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
	})

	t.Run("malformed payload", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.Login(ctx, LoginRequest{Email: "not-an-email", Password: "s3cret"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrValidation))
	})
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc, _ := newAuthService(t)
		result, err := svc.Login(ctx, LoginRequest{Email: "alice@university.edu", Password: "s3cret"})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "alice@university.edu", claims.Email)
		assert.Equal(t, "Alice", claims.Name)
		assert.Equal(t, "crs-api-test", claims.Issuer)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _ := newAuthService(t)
		_, err := svc.ValidateToken("not.a.token")
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		svc, _ := newAuthService(t)
		result, err := svc.Login(ctx, LoginRequest{Email: "alice@university.edu", Password: "s3cret"})
		require.NoError(t, err)

		other := NewAuthService(newMockUserRepo(), nil, nil, AuthConfig{Secret: "another-key", Expiration: time.Hour})
		_, err = other.ValidateToken(result.Token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		repo := newMockUserRepo()
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		require.NoError(t, err)
		u := repo.users["alice@university.edu"]
		u.PasswordHash = string(hash)
		repo.users["alice@university.edu"] = u

		svc := NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-signing-key", Expiration: -time.Minute})
		result, err := svc.Login(ctx, LoginRequest{Email: "alice@university.edu", Password: "s3cret"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(result.Token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	})
}
