// Package core provides the HTTP chassis for the BeachScore API: the chi
// router, the global middleware chain, the JSON envelope and health probes.
// Domain handlers attach through V1RouteRegistrars.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beachscore/internal/config"
)

// MetricsCollector records API request telemetry.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds the dependencies shared by every request.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	RateLimitStore RateLimitStore
	HealthProbes   []HealthProbe

	// V1RouteRegistrars mount domain routes under /v1. main populates them so
	// core never imports handler packages.
	V1RouteRegistrars []func(chi.Router)

	// closers run on Shutdown in registration order.
	closers []func() error

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares an empty router.
// Call MountRoutes after registering probes and route registrars.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi mux for tests and route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers a resource to release during Shutdown, such as the
// pgx pool.
func (s *Server) OnShutdown(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Shutdown releases registered resources. The first failure is returned after
// every closer has run.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.InfoContext(ctx, "server shutdown initiated")

	var firstErr error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.Logger.ErrorContext(ctx, "error releasing server resource", "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("releasing server resource: %w", err)
			}
		}
	}

	s.Logger.InfoContext(ctx, "server shutdown complete")
	return firstErr
}
