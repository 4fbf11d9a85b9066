package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bms/backend/internal/infrastructure/auth"
	"github.com/bms/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTTestService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-bytes-long",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "bms-backend-test",
	})
}

func issueToken(t *testing.T, service *auth.JWTService, role auth.Role, buildingIDs ...uuid.UUID) string {
	t.Helper()
	token, err := service.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "tester",
		Role:        role,
		BuildingIDs: buildingIDs,
	})
	require.NoError(t, err)
	return token.Token
}

func TestJWTAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newJWTTestService(t)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(JWTAuthMiddleware(service))
		r.GET("/protected", func(c *gin.Context) {
			claims := GetJWTClaims(c)
			require.NotNil(t, claims)
			c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
		})
		r.GET("/health", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("allows valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleManager))
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"not.a.jwt")
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("skips health endpoint", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestBuildingAccessMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newJWTTestService(t)

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(JWTAuthMiddleware(service))
		r.GET("/buildings/:buildingId/charges", BuildingAccessMiddleware(), func(c *gin.Context) {
			id, ok := GetBuildingID(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{"building_id": id.String()})
		})
		return r
	}

	buildingID := uuid.New()

	t.Run("manager reaches own building", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/buildings/"+buildingID.String()+"/charges", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleManager, buildingID))
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), buildingID.String())
	})

	t.Run("manager blocked from foreign building", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/buildings/"+uuid.NewString()+"/charges", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleManager, buildingID))
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin reaches any building", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/buildings/"+uuid.NewString()+"/charges", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleAdmin))
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects malformed building id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/buildings/not-a-uuid/charges", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleAdmin))
		w := httptest.NewRecorder()
		newRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequireCapability(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := newJWTTestService(t)
	caps := auth.NewRoleCapabilities()

	r := gin.New()
	r.Use(JWTAuthMiddleware(service))
	r.PATCH("/payments/:id/verify", RequireCapability(caps.CanVerifyPayment), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("manager allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/payments/"+uuid.NewString()+"/verify", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleManager))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("resident forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/payments/"+uuid.NewString()+"/verify", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+issueToken(t, service, auth.RoleResident))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
