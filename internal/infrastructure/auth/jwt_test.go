package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/uuid"
	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/infrastructure/config"
)

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser(uuid.New(), "tindo", "s3cret-pass", "Tindo Moyo", identity.RoleCashier)
	require.NoError(t, err)
	return user
}

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "unit-test-secret-key-at-least-32-chars",
		TokenExpiration: expiration,
		Issuer:          "backoffice-test",
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	service := newTestService(time.Hour)
	user := newTestUser(t)

	token, expiresAt, err := service.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, user.BranchID.String(), claims.BranchID)
	assert.Equal(t, "tindo", claims.Username)
	assert.Equal(t, string(identity.RoleCashier), claims.Role)

	userID, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	branchID, err := claims.BranchUUID()
	require.NoError(t, err)
	assert.Equal(t, user.BranchID, branchID)
}

func TestJWTService_Validate_Errors(t *testing.T) {
	t.Run("rejects a garbage token", func(t *testing.T) {
		service := newTestService(time.Hour)
		_, err := service.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		service := newTestService(time.Hour)
		other := NewJWTService(config.JWTConfig{
			Secret:          "a-completely-different-signing-secret",
			TokenExpiration: time.Hour,
			Issuer:          "backoffice-test",
		})

		token, _, err := other.Issue(newTestUser(t))
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		service := newTestService(-time.Minute)
		token, _, err := service.Issue(newTestUser(t))
		require.NoError(t, err)

		_, err = service.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
