package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestAdminKey(t *testing.T) {
	r := newEngine(AdminKey("secret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(AdminKeyHeader, "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with key, got %d", w.Code)
	}
}

func TestAdminKeyDisabled(t *testing.T) {
	r := newEngine(AdminKey(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected open access, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	r := newEngine(NewIPRateLimiter(2).RateLimit())
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	r := newEngine(RequestID(), Logger(zerolog.Nop()))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(RequestIDHeader, "req_fixed")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "req_fixed" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}
