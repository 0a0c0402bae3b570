package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcity/backoffice/internal/domain/identity"
	"github.com/techcity/backoffice/internal/infrastructure/auth"
	"github.com/techcity/backoffice/internal/infrastructure/config"
	"github.com/techcity/backoffice/internal/interfaces/http/dto"
)

func newJWTService(expiration time.Duration) *auth.JWTService {
	return newJWTServiceWithSecret("test-signing-secret", expiration)
}

func newJWTServiceWithSecret(secret string, expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:          secret,
		TokenExpiration: expiration,
		Issuer:          "backoffice-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role identity.Role) string {
	t.Helper()
	user, err := identity.NewUser(uuid.New(), "tester", "s3cret-pass", "Test User", role)
	require.NoError(t, err)
	token, _, err := svc.Issue(user)
	require.NoError(t, err)
	return token
}

func authTestRouter(svc *auth.JWTService, roles ...identity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/", Auth(svc))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": c.GetString(ContextUsername),
			"role":     c.GetString(ContextRole),
		})
	})
	return engine
}

func doAuthRequest(t *testing.T, engine *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuth_ValidToken(t *testing.T) {
	svc := newJWTService(time.Hour)
	token := issueToken(t, svc, identity.RoleCashier)

	rec := doAuthRequest(t, authTestRouter(svc), "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tester", body["username"])
	assert.Equal(t, "cashier", body["role"])
}

func TestAuth_Rejections(t *testing.T) {
	svc := newJWTService(time.Hour)
	engine := authTestRouter(svc)

	tests := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong signing key", "Bearer " + issueToken(t, newJWTServiceWithSecret("some-other-secret", time.Hour), identity.RoleCashier)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthRequest(t, engine, tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var resp dto.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	expired := newJWTService(-time.Minute)
	token := issueToken(t, expired, identity.RoleCashier)

	rec := doAuthRequest(t, authTestRouter(expired), "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestRequireRole(t *testing.T) {
	svc := newJWTService(time.Hour)
	engine := authTestRouter(svc, identity.RoleManager)

	t.Run("allowed role passes", func(t *testing.T) {
		rec := doAuthRequest(t, engine, "Bearer "+issueToken(t, svc, identity.RoleManager))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin always passes", func(t *testing.T) {
		rec := doAuthRequest(t, engine, "Bearer "+issueToken(t, svc, identity.RoleAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		rec := doAuthRequest(t, engine, "Bearer "+issueToken(t, svc, identity.RoleCashier))
		require.Equal(t, http.StatusForbidden, rec.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeForbidden, resp.Error.Code)
	})
}
