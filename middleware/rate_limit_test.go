package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimitByIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := NewIPRateLimiter(1, 2, time.Minute)
	r := gin.New()
	r.GET("/limited", RateLimitByIP(rl), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest("GET", "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if code := do(); code != http.StatusOK {
		t.Fatalf("first request = %d, want 200", code)
	}
	if code := do(); code != http.StatusOK {
		t.Fatalf("second request = %d, want 200", code)
	}
	if code := do(); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", code)
	}

	// A different IP has its own bucket.
	req := httptest.NewRequest("GET", "/limited", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("fresh IP = %d, want 200", w.Code)
	}
}
