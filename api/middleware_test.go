package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-composer/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit(t *testing.T) {
	// GIVEN: One request per minute per client
	h := RateLimit(1)(okHandler())

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = ip + ":4242"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	// THEN: The second request from the same client is refused
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	rec := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// THEN: Other clients have their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimit_ZeroDisables(t *testing.T) {
	h := RateLimit(0)(okHandler())
	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP_IgnoresProxyHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "9.9.9.9:1", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": "5.6.7.8"}, "9.9.9.9:1", "9.9.9.9"},
		{"remote addr", nil, "9.9.9.9:1", "9.9.9.9"},
		{"remote without port", nil, "9.9.9.9", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestRateLimit_RotatingForwardedForSharesBucket(t *testing.T) {
	// GIVEN: One request per minute and a client rotating X-Forwarded-For
	h := RateLimit(1)(okHandler())
	send := func(forwarded string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:4242"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	// THEN: The header does not buy a fresh bucket
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("2.2.2.2"))
}

func TestRouter_TrustProxyUsesForwardedFor(t *testing.T) {
	// GIVEN: A router behind a trusted proxy with one request per minute
	env := newTestEnv(t, "")
	router := NewRouter(env.h, RouterOptions{RequestsPerMin: 1, TrustProxy: true})
	send := func(forwarded string) int {
		req := httptest.NewRequest("GET", "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:4242"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	// THEN: Clients behind the proxy are told apart
	assert.Equal(t, http.StatusOK, send("1.1.1.1"))
	assert.Equal(t, http.StatusOK, send("2.2.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.1.1.1"))
}

func TestRequestLogger(t *testing.T) {
	// GIVEN: A handler that logs through the request logger and fails
	core, logs := observer.New(zapcore.InfoLevel)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("inside")
		w.WriteHeader(http.StatusNotFound)
	})
	h := middleware.RequestID(RequestLogger(zap.New(core))(inner))

	// WHEN: A request is served
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/employees/x", nil))

	// THEN: The handler's line and the access line share the request id
	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside", entries[0].Message)
	assert.Equal(t, "request", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)

	fields := entries[1].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/api/employees/x", fields["path"])
	assert.NotEmpty(t, fields["request_id"])
	assert.Equal(t, fields["request_id"], entries[0].ContextMap()["request_id"])
}
