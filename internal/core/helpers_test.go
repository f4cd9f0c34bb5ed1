package core

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"beachscore/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Environment: "local",
		Service:     "beachscore-test",
		Server:      config.ServerConfig{RequestTimeout: time.Second},
		Security:    config.SecurityConfig{CorsAllowedOrigins: []string{"*"}},
		Build:       config.BuildInfo{Version: "1.2.3", Commit: "abc123", BuildTime: "2026-07-01T00:00:00Z"},
	}
	srv, err := NewServer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

type recordedRequest struct {
	method, endpoint, status string
}

type fakeMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *fakeMetrics) RecordRequest(method, endpoint, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method, endpoint, status})
}
