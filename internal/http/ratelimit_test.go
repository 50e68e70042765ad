package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLimiter(t *testing.T, cfg LoginRateLimiterConfig) *LoginRateLimiter {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	rl := NewLoginRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

func TestLoginRateLimiter_PerClientBudget(t *testing.T) {
	var limited atomic.Int32
	rl := newTestLimiter(t, LoginRateLimiterConfig{
		Rate:      PerMinute(1),
		Burst:     2,
		OnLimited: func() { limited.Add(1) },
	})
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001").Code)

	rec := send("10.0.0.1:1002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, int32(1), limited.Load())

	// Another client has its own budget.
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000").Code)
	assert.Equal(t, 2, rl.Len())
}

func TestLoginRateLimiter_Cleanup(t *testing.T) {
	rl := newTestLimiter(t, LoginRateLimiterConfig{Rate: rate.Inf, Burst: 1, CleanupInterval: time.Minute})
	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"))

	rl.cleanup(time.Now())
	assert.Equal(t, 2, rl.Len())

	rl.cleanup(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, rl.Len())
}

func TestLoginRateLimiter_StopTwice(t *testing.T) {
	rl := NewLoginRateLimiter(LoginRateLimiterConfig{Rate: rate.Inf})
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.4:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "192.0.2.4", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}

func TestPerMinute(t *testing.T) {
	assert.InDelta(t, 0.5, float64(PerMinute(30)), 1e-9)
}
