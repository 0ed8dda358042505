package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func onlyEntry(t *testing.T, recorded *observer.ObservedLogs, msg string) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage(msg).All()
	require.Len(t, entries, 1, "expected one %q entry", msg)
	return entries[0]
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, levelFor(http.StatusCreated))
	assert.Equal(t, zapcore.WarnLevel, levelFor(http.StatusConflict))
	assert.Equal(t, zapcore.ErrorLevel, levelFor(http.StatusServiceUnavailable))
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records route and status", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(AccessLog(zap.New(core)))
		router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42?expand=lines", nil))

		require.Equal(t, http.StatusOK, w.Code)
		entry := onlyEntry(t, recorded, "request served")
		assert.Equal(t, zapcore.InfoLevel, entry.Level)
		fields := entry.ContextMap()
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "/orders/:id", fields["route"])
		assert.Equal(t, "/orders/42", fields["path"])
		assert.Equal(t, "expand=lines", fields["query"])
	})

	t.Run("handlers see correlation fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-123")
			c.Next()
		}, AccessLog(zap.New(core)))
		router.POST("/payments", func(c *gin.Context) {
			L(c.Request.Context()).Info("inside handler")
			c.Status(http.StatusUnprocessableEntity)
		})

		req := httptest.NewRequest(http.MethodPost, "/payments", nil)
		req.Header.Set("Idempotency-Key", "pay-1")
		router.ServeHTTP(httptest.NewRecorder(), req)

		inner := onlyEntry(t, recorded, "inside handler").ContextMap()
		assert.Equal(t, "req-123", inner["request_id"])
		assert.Equal(t, "pay-1", inner["idempotency_key"])
		assert.Equal(t, "/payments", inner["path"])

		assert.Equal(t, zapcore.WarnLevel, onlyEntry(t, recorded, "request served").Level)
	})

	t.Run("below the core level nothing is written", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		router := gin.New()
		router.Use(AccessLog(zap.New(core)))
		router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Zero(t, recorded.Len())
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	entry := onlyEntry(t, recorded, "handler panicked")
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
}
