package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent("select", "accepted")
	m.RecordEvent("select", "accepted")
	m.RecordEvent("text", "empty_input")
	m.RecordDispatch("sent", 20*time.Millisecond)
	m.RecordSweep(3)
	m.RecordSweep(0)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	body := scrape(t, m)
	assert.Contains(t, body, `avisobot_events_total{kind="select",outcome="accepted"} 2`)
	assert.Contains(t, body, `avisobot_events_total{kind="text",outcome="empty_input"} 1`)
	assert.Contains(t, body, `avisobot_dispatch_total{status="sent"} 1`)
	assert.Contains(t, body, `avisobot_dispatch_duration_seconds_count 1`)
	assert.Contains(t, body, `avisobot_sessions_swept_total 3`)
	assert.Contains(t, body, `avisobot_websocket_connections 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordEvent("start", "ok")
		m.RecordDispatch("failed", time.Second)
		m.RecordHTTPRequest("GET", "/", "200", time.Millisecond)
		m.RecordSweep(1)
		m.ConnectionOpened()
		m.ConnectionClosed()
	})
}

func TestInstancesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewMetrics()
		_ = NewMetrics()
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	SetGlobal(m)
	defer SetGlobal(nil)
	require.Same(t, m, Global())

	r := gin.New()
	r.Use(Middleware(m))
	r.GET("/ping/:id", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `avisobot_http_requests_total{method="GET",path="/ping/:id",status="200"} 1`), body)
}
