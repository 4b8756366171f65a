package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.POST("/events", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func post(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyRejectsReplay(t *testing.T) {
	r := newEngine(IdempotencyMiddleware(IdempotencyConfig{TTL: time.Minute}))

	assert.Equal(t, http.StatusOK, post(r, map[string]string{"X-Event-ID": "ev-1"}).Code)
	assert.Equal(t, http.StatusConflict, post(r, map[string]string{"X-Event-ID": "ev-1"}).Code)
	assert.Equal(t, http.StatusOK, post(r, map[string]string{"X-Event-ID": "ev-2"}).Code)

	// no key: identical answers are legitimate
	assert.Equal(t, http.StatusOK, post(r, nil).Code)
	assert.Equal(t, http.StatusOK, post(r, nil).Code)
}

func TestIdempotencyReleasesKeyOnRejection(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(IdempotencyMiddleware(IdempotencyConfig{TTL: time.Minute}))
	r.POST("/events", func(c *gin.Context) {
		if c.Query("bad") != "" {
			c.String(http.StatusBadRequest, "bad")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	send := func(path string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("X-Event-ID", "ev-7")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusBadRequest, send("/events?bad=1"))
	assert.Equal(t, http.StatusOK, send("/events"))
	assert.Equal(t, http.StatusConflict, send("/events"))
}

func TestIdempotencyWindowExpires(t *testing.T) {
	store := NewMemoryIdemStore(time.Minute)
	assert.True(t, store.Set("k", 50*time.Millisecond))
	assert.False(t, store.Set("k", 50*time.Millisecond))
	assert.Eventually(t, func() bool { return store.Set("k", time.Minute) }, time.Second, 20*time.Millisecond)

	store.Delete("k")
	assert.True(t, store.Set("k", time.Minute))
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: "2-M", AddHeaders: true, SkipPaths: []string{"/health"}}, nil)
	r := newEngine(rl.Middleware())

	w := post(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, http.StatusOK, post(r, nil).Code)

	w = post(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiterByHeader(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: "1-M", Identifier: "header", HeaderName: "X-Client-ID"}, nil)
	r := newEngine(rl.Middleware())

	assert.Equal(t, http.StatusOK, post(r, map[string]string{"X-Client-ID": "a"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, map[string]string{"X-Client-ID": "a"}).Code)
	assert.Equal(t, http.StatusOK, post(r, map[string]string{"X-Client-ID": "b"}).Code)
}

func TestAllowPerKey(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: "3-M"}, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, reached, err := rl.Allow(ctx, "user:u1")
		require.NoError(t, err)
		assert.False(t, reached)
	}
	_, reached, err := rl.Allow(ctx, "user:u1")
	require.NoError(t, err)
	assert.True(t, reached)

	_, reached, _ = rl.Allow(ctx, "user:u2")
	assert.False(t, reached)
}
