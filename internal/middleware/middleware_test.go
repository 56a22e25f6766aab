package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ecanteen/internal/logger"
	"ecanteen/internal/services"
)

type stubParser map[string]*services.Claims

func (p stubParser) Parse(token string) (*services.Claims, error) {
	if c, ok := p[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		for _, vv := range v {
			req.Header.Add(k, vv)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	parser := stubParser{"good": {UserID: 9, Role: "seller"}}
	r := gin.New()
	r.GET("/me", AuthMiddleware(parser), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetInt64(CtxUserID), "role": c.GetString(CtxRole)})
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			w := serve(r, http.MethodGet, "/me", h)
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"id":9,"role":"seller"}`, w.Body.String())
			}
		})
	}
}

func TestAuthMiddlewareQueryTokenOnlyForUpgrades(t *testing.T) {
	parser := stubParser{"good": {UserID: 9, Role: "seller"}}
	r := gin.New()
	r.GET("/stream", AuthMiddleware(parser), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/stream?token=good", nil).Code)

	ws := http.Header{"Upgrade": {"websocket"}, "Connection": {"Upgrade"}}
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/stream?token=good", ws).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/stream?token=nope", ws).Code)
}

func TestRequireRoles(t *testing.T) {
	parser := stubParser{"user": {UserID: 1, Role: "user"}, "admin": {UserID: 2, Role: "admin"}}
	r := gin.New()
	r.PATCH("/orders", AuthMiddleware(parser), RequireRoles("seller", "admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/open", RequireRoles("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })

	h := http.Header{"Authorization": {"Bearer user"}}
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPatch, "/orders", h).Code)

	h = http.Header{"Authorization": {"Bearer admin"}}
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPatch, "/orders", h).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/open", nil).Code)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter(5, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/otp", rl.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/otp", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/otp", nil).Code)
	w := serve(r, http.MethodPost, "/otp", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "12", w.Header().Get("Retry-After"))

	now = now.Add(13 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/otp", nil).Code)
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("1.2.3.4")

	now = now.Add(time.Hour)
	rl.getLimiter("5.6.7.8")
	rl.Cleanup()

	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "5.6.7.8")
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := serve(r, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)

	w = serve(r, http.MethodGet, "/ping", http.Header{HeaderRequestID: {"abc-123"}})
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "abc-123", entries[1].ContextMap()["request_id"])
	assert.Equal(t, int64(200), entries[1].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:3000"), Metrics())
	r.GET("/resource", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(r, http.MethodOptions, "/resource", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	w = serve(r, http.MethodGet, "/resource", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
