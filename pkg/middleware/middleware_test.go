package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func do(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRequestIDGenerated(t *testing.T) {
	r := newEngine(middleware.RequestIDMiddleware())

	w := do(r, "/ping", nil)

	id := w.Header().Get(middleware.HeaderRequestID)
	if id == "" {
		t.Fatal("expected a generated request id")
	}

	if w.Body.String() != id {
		t.Fatalf("handler saw %q, header is %q", w.Body.String(), id)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	r := newEngine(middleware.RequestIDMiddleware())

	w := do(r, "/ping", http.Header{middleware.HeaderRequestID: {"abc-123"}})

	if got := w.Header().Get(middleware.HeaderRequestID); got != "abc-123" {
		t.Fatalf("request id = %q, want abc-123", got)
	}
}

func TestRateLimitGlobal(t *testing.T) {
	r := newEngine(middleware.RateLimitMiddleware(configs.RateLimitConfig{
		Enabled: true,
		RPS:     0.001,
		Burst:   2,
		Key:     "global",

		ExemptPaths: configs.DefaultRateLimitExempt,
	}))

	for i := range 2 {
		if w := do(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, w.Code)
		}
	}

	if w := do(r, "/ping", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	if w := do(r, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health should bypass the limiter, got %d", w.Code)
	}
}

func TestRateLimitByHeader(t *testing.T) {
	r := newEngine(middleware.RateLimitMiddleware(configs.RateLimitConfig{
		Enabled: true,
		RPS:     0.001,
		Burst:   1,
		Key:     "header:X-Client",
	}))

	a := http.Header{"X-Client": {"a"}}
	b := http.Header{"X-Client": {"b"}}

	if w := do(r, "/ping", a); w.Code != http.StatusOK {
		t.Fatalf("first a: %d", w.Code)
	}

	if w := do(r, "/ping", a); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second a: %d, want 429", w.Code)
	}

	if w := do(r, "/ping", b); w.Code != http.StatusOK {
		t.Fatalf("first b: %d", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	r := newEngine(middleware.RateLimitMiddleware(configs.RateLimitConfig{Enabled: false, RPS: 1, Burst: 0}))

	for range 5 {
		if w := do(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
}

func TestCORSRestrictsOrigins(t *testing.T) {
	r := newEngine(middleware.CORSMiddleware(configs.ServerConfig{CORSOrigins: []string{"http://app.local"}}))

	w := do(r, "/ping", http.Header{"Origin": {"http://app.local"}})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.local" {
		t.Fatalf("allow origin = %q", got)
	}

	w = do(r, "/ping", http.Header{"Origin": {"http://evil.local"}})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for foreign origin", w.Code)
	}
}
