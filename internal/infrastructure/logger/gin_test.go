package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(log))
	router.Use(Recovery(log))
	return router, logs
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs request with building scope", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.GET("/buildings/:buildingId/charges", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/buildings/b-7/charges?status=ACTIVE", nil)
		router.ServeHTTP(w, req)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.InfoLevel, entries[0].Level)

		fields := entries[0].ContextMap()
		assert.Equal(t, "req-42", fields["request_id"])
		assert.Equal(t, "b-7", fields["building_id"])
		assert.Equal(t, "/buildings/b-7/charges", fields["path"])
		assert.Equal(t, "status=ACTIVE", fields["query"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.POST("/payments", func(c *gin.Context) {
			c.Status(http.StatusUnprocessableEntity)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.WarnLevel, entries[0].Level)
	})

	t.Run("server errors log at error", func(t *testing.T) {
		router, logs := newObservedRouter(t)
		router.GET("/fund", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fund", nil))

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
	})

	t.Run("plants request logger in request context", func(t *testing.T) {
		router, _ := newObservedRouter(t)
		var fromCtx *zap.Logger
		router.GET("/ping", func(c *gin.Context) {
			fromCtx = FromContext(c.Request.Context())
			assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.NotNil(t, fromCtx)
	})
}

func TestRecovery(t *testing.T) {
	router, logs := newObservedRouter(t)
	router.GET("/boom", func(c *gin.Context) {
		panic("distribution overflow")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var recovered bool
	for _, entry := range logs.All() {
		if entry.Message == "Panic recovered" {
			recovered = true
			assert.Equal(t, "distribution overflow", entry.ContextMap()["error"])
		}
	}
	assert.True(t, recovered)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns planted logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		log := zap.NewNop()
		c.Set("logger", log)
		assert.Same(t, log, GetGinLogger(c))
	})

	t.Run("nop logger outside a logged request", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}
