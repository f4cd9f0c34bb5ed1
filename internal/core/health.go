package core

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Every probe must finish within this deadline or is reported as timed out.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one dependency the API cannot serve without.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

// PingProbe adapts a ping function, such as PreferencesRepository.Ping, to
// HealthProbe.
type PingProbe struct {
	ProbeName string
	Ping      func(ctx context.Context) error
}

func (p PingProbe) Name() string                    { return p.ProbeName }
func (p PingProbe) Check(ctx context.Context) error { return p.Ping(ctx) }

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

type probeResult struct {
	name string
	err  error
}

// HandleHealth runs every probe concurrently. It answers 200 when all pass
// and 503 when any fails, panics or misses the deadline.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if len(s.HealthProbes) == 0 {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	// Buffered so late probes never block after the deadline.
	results := make(chan probeResult, len(s.HealthProbes))
	for _, probe := range s.HealthProbes {
		go func(p HealthProbe) {
			results <- probeResult{name: p.Name(), err: runProbe(ctx, p)}
		}(probe)
	}

	components := make(map[string]componentStatus, len(s.HealthProbes))
	for pending := len(s.HealthProbes); pending > 0; pending-- {
		select {
		case res := <-results:
			components[res.name] = statusOf(res.err)
		case <-ctx.Done():
			pending = 0
		}
	}

	healthy := true
	for _, probe := range s.HealthProbes {
		c, ok := components[probe.Name()]
		if !ok {
			c = componentStatus{Status: "unhealthy", Message: "health check timed out"}
			components[probe.Name()] = c
		}
		if c.Status != "healthy" {
			healthy = false
		}
	}

	if healthy {
		JSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Components: components})
		return
	}
	JSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Components: components})
}

func runProbe(ctx context.Context, p HealthProbe) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panicked: %v", rec)
		}
	}()
	return p.Check(ctx)
}

func statusOf(err error) componentStatus {
	if err != nil {
		return componentStatus{Status: "unhealthy", Message: err.Error()}
	}
	return componentStatus{Status: "healthy"}
}
