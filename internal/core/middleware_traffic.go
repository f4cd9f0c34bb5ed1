package core

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"beachscore/internal/types"
)

// RateLimitStore counts requests per key within a window.
type RateLimitStore interface {
	// IncrementAndCheck counts one request for key and reports whether it is
	// within limit for the current window.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

// RateLimitResult is the outcome of one IncrementAndCheck call.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimit enforces the configured per-client-IP request budget. It is a
// pass-through when no store is configured or the limit is zero. Store
// failures fail open.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, window := s.rateLimitPolicy()
		if s.RateLimitStore == nil || limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := extractClientIP(r)
		result, err := s.RateLimitStore.IncrementAndCheck(r.Context(), "ip:"+clientIP, limit, window)
		if err != nil {
			s.Logger.Error("rate limit store error",
				slog.String("client_ip", clientIP),
				slog.String("error", err.Error()),
			)
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			s.Logger.Warn("rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			Error(w, r, types.NewAppError(types.ErrCodeRateLimit, "rate limit exceeded, retry after the reset time", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimitPolicy() (int, time.Duration) {
	if s.Config == nil {
		return 0, 0
	}
	return s.Config.Security.RateLimitRequests, s.Config.Security.RateLimitWindow
}

// extractClientIP prefers the first X-Forwarded-For entry, then RemoteAddr
// without its port.
func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// MemoryRateLimitStore is a fixed-window counter held in process memory. It
// suits a single API instance; counters reset on restart.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*rateBucket
}

type rateBucket struct {
	count   int
	resetAt time.Time
}

// NewMemoryRateLimitStore creates an empty store driven by clock.
func NewMemoryRateLimitStore(clock types.Clock) *MemoryRateLimitStore {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &MemoryRateLimitStore{
		now:     clock.Now,
		buckets: make(map[string]*rateBucket),
	}
}

// IncrementAndCheck never fails.
func (m *MemoryRateLimitStore) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	b, ok := m.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &rateBucket{resetAt: now.Add(window)}
		m.buckets[key] = b
		m.evictExpired(now)
	}
	b.count++

	return RateLimitResult{
		Allowed:   b.count <= limit,
		Remaining: max(limit-b.count, 0),
		ResetAt:   b.resetAt,
	}, nil
}

// evictExpired drops finished windows. Callers hold mu.
func (m *MemoryRateLimitStore) evictExpired(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.resetAt) {
			delete(m.buckets, k)
		}
	}
}
