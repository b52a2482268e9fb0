package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecoveryRouter(logBuffer *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelError}))

	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Recovery(logger))
	return router
}

func TestRecovery(t *testing.T) {
	t.Run("PanicBecomesInternalError", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)
		router.POST("/impairments", func(c *gin.Context) {
			panic("nil preview")
		})

		correlationID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodPost, "/impairments", nil)
		req.Header.Set(CorrelationIDHeader, correlationID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
		assert.Equal(t, "An internal server error occurred", body["error"])
		assert.Equal(t, correlationID, body["correlation_id"])

		logOutput := logBuffer.String()
		assert.Contains(t, logOutput, `"msg":"Panic recovered"`)
		assert.Contains(t, logOutput, `"error":"nil preview"`)
		assert.Contains(t, logOutput, `"stack":`)
		assert.Contains(t, logOutput, `"path":"/impairments"`)
		assert.Contains(t, logOutput, `"correlation_id":"`+correlationID+`"`)
		assert.NotContains(t, logOutput, `"tenant_id"`)
	})

	t.Run("LogsAuthenticatedCaller", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)
		tenantID := uuid.New()
		router.GET("/impairments/settings", func(c *gin.Context) {
			c.Set(TenantIDKey, tenantID)
			c.Set(UserIDKey, "controller@example.com")
			panic("settings row vanished")
		})

		req, _ := http.NewRequest(http.MethodGet, "/impairments/settings", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, logBuffer.String(), `"tenant_id":"`+tenantID.String()+`"`)
		assert.Contains(t, logBuffer.String(), `"user_id":"controller@example.com"`)
	})

	t.Run("StartedResponseIsKept", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)
		router.GET("/impairments/history", func(c *gin.Context) {
			c.String(http.StatusOK, "partial")
			panic("encoder failed")
		})

		req, _ := http.NewRequest(http.MethodGet, "/impairments/history", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "partial", rr.Body.String())
		assert.Contains(t, logBuffer.String(), `"msg":"Panic recovered"`)
	})

	t.Run("NoPanicNoLog", func(t *testing.T) {
		var logBuffer bytes.Buffer
		router := newRecoveryRouter(&logBuffer)
		router.GET("/health", func(c *gin.Context) {
			c.String(http.StatusOK, "OK")
		})

		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, logBuffer.String())
	})
}
