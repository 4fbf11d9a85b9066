package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyLimitRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(maxBytes))
	router.POST("/payments/bulk", func(c *gin.Context) {
		var body [64]byte
		n, _ := c.Request.Body.Read(body[:])
		c.String(http.StatusOK, "read %d", n)
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	t.Run("accepts bodies within the limit", func(t *testing.T) {
		router := newBodyLimitRouter(32)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/bulk", strings.NewReader(`{"amount":100}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects oversized declared length", func(t *testing.T) {
		router := newBodyLimitRouter(8)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/payments/bulk", strings.NewReader(`{"entries":[{"amount":100}]}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})
}
