package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"beachscore/internal/types"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(seen) != 32 {
		t.Errorf("generated id %q, want 32 hex chars", seen)
	}
	if rec.Header().Get("X-Request-Id") != seen {
		t.Error("response header should echo the context id")
	}
}

func TestContextTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := ContextTimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !ok || time.Until(deadline) > 50*time.Millisecond {
		t.Errorf("deadline = %v (set=%v)", deadline, ok)
	}
}

func TestRequestLoggerRedactsHeaders(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestLogger(logger, []string{"Authorization"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/beaches", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("User-Agent", "beach-app/2.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Error("authorization header leaked into logs")
	}
	for _, want := range []string{`"status":418`, `"level":"WARN"`, "beach-app/2.0", "[REDACTED]"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", []string{"*"}, http.MethodGet, "https://x.example", "*", http.StatusOK},
		{"listed origin", []string{"https://app.example"}, http.MethodGet, "https://app.example", "https://app.example", http.StatusOK},
		{"unlisted origin", []string{"https://app.example"}, http.MethodGet, "https://evil.example", "", http.StatusOK},
		{"preflight", []string{"*"}, http.MethodOptions, "https://x.example", "*", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/beaches", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()

			NewCORSMiddleware(tt.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "10.0.0.2:443", "203.0.113.7"},
		{"remote with port", "", "198.51.100.4:5123", "198.51.100.4"},
		{"remote without port", "", "198.51.100.4", "198.51.100.4"},
		{"blank forwarded", " ", "192.0.2.1:80", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := extractClientIP(req); got != tt.want {
				t.Errorf("extractClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryRateLimitStoreWindows(t *testing.T) {
	start := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	clock := &steppingClock{now: start}
	store := NewMemoryRateLimitStore(clock)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, _ := store.IncrementAndCheck(ctx, "ip:a", 2, time.Minute)
		if want := i <= 2; res.Allowed != want {
			t.Errorf("request %d allowed = %v, want %v", i, res.Allowed, want)
		}
		if !res.ResetAt.Equal(start.Add(time.Minute)) {
			t.Errorf("ResetAt = %v", res.ResetAt)
		}
	}

	other, _ := store.IncrementAndCheck(ctx, "ip:b", 2, time.Minute)
	if !other.Allowed || other.Remaining != 1 {
		t.Errorf("keys must be independent: %+v", other)
	}

	clock.now = start.Add(time.Minute)
	res, _ := store.IncrementAndCheck(ctx, "ip:a", 2, time.Minute)
	if !res.Allowed || res.Remaining != 1 {
		t.Errorf("new window should reset the count: %+v", res)
	}
}

type steppingClock struct{ now time.Time }

func (c *steppingClock) Now() time.Time { return c.now }

type failingStore struct{}

func (failingStore) IncrementAndCheck(context.Context, string, int, time.Duration) (RateLimitResult, error) {
	return RateLimitResult{}, errors.New("store down")
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := newTestServer(t)
	srv.Config.Security.RateLimitRequests = 1
	srv.Config.Security.RateLimitWindow = time.Minute
	srv.RateLimitStore = NewMemoryRateLimitStore(nil)

	h := srv.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	call := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/beaches", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := call("203.0.113.1")
	if first.Code != http.StatusOK || first.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("first = %d remaining %q", first.Code, first.Header().Get("X-RateLimit-Remaining"))
	}

	second := call("203.0.113.1")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("429 without Retry-After")
	}
	if !strings.Contains(second.Body.String(), "rate_limit_exceeded") {
		t.Errorf("body = %s", second.Body.String())
	}

	if other := call("203.0.113.2"); other.Code != http.StatusOK {
		t.Errorf("other client = %d, want 200", other.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	srv := newTestServer(t)
	srv.Config.Security.RateLimitRequests = 1
	srv.Config.Security.RateLimitWindow = time.Minute
	srv.RateLimitStore = failingStore{}

	rec := httptest.NewRecorder()
	srv.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the store fails", rec.Code)
	}
}
