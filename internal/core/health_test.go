package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type stubProbe struct {
	name  string
	err   error
	delay time.Duration
	panic bool
}

func (p *stubProbe) Name() string { return p.name }

func (p *stubProbe) Check(ctx context.Context) error {
	if p.panic {
		panic("probe exploded")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.err
}

func runHealth(t *testing.T, probes ...HealthProbe) (int, healthResponse) {
	t.Helper()
	srv := newTestServer(t)
	srv.HealthProbes = probes

	rec := httptest.NewRecorder()
	srv.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	return rec.Code, resp
}

func TestHandleHealth_NoProbes(t *testing.T) {
	code, resp := runHealth(t)
	if code != http.StatusOK || resp.Status != "healthy" {
		t.Errorf("got %d %q", code, resp.Status)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	code, resp := runHealth(t,
		&stubProbe{name: "database"},
		PingProbe{ProbeName: "catalogue", Ping: func(context.Context) error { return nil }},
	)
	if code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	for _, name := range []string{"database", "catalogue"} {
		if resp.Components[name].Status != "healthy" {
			t.Errorf("%s = %+v", name, resp.Components[name])
		}
	}
}

func TestHandleHealth_Failures(t *testing.T) {
	tests := []struct {
		name    string
		probe   HealthProbe
		wantMsg string
	}{
		{"error", &stubProbe{name: "database", err: errors.New("connection refused")}, "connection refused"},
		{"panic", &stubProbe{name: "database", panic: true}, "probe panicked: probe exploded"},
		{"timeout", &stubProbe{name: "database", delay: 10 * time.Second}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			code, resp := runHealth(t, &stubProbe{name: "catalogue"}, tt.probe)

			if code != http.StatusServiceUnavailable || resp.Status != "unhealthy" {
				t.Errorf("got %d %q, want 503 unhealthy", code, resp.Status)
			}
			db := resp.Components["database"]
			if db.Status != "unhealthy" {
				t.Errorf("database = %+v", db)
			}
			if tt.wantMsg != "" && db.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", db.Message, tt.wantMsg)
			}
			if resp.Components["catalogue"].Status != "healthy" {
				t.Error("a failing probe must not mark others unhealthy")
			}
			if time.Since(start) > 5*time.Second {
				t.Error("health check ignored its deadline")
			}
		})
	}
}
