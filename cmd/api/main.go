// Package main is the entry point for the BeachScore API server.
//
// It loads configuration, opens the preferences database, wires the
// condition providers and scoring components, and serves the HTTP API with
// graceful shutdown on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"beachscore/internal/api/handlers"
	"beachscore/internal/app"
	"beachscore/internal/config"
	"beachscore/internal/core"
	"beachscore/internal/db"
	"beachscore/internal/types"
)

// metricsFlushInterval is how often buffered request metrics are sent.
const metricsFlushInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("beachscore API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	prefsRepo := db.NewPreferencesRepository(pool)

	awsCfg, err := app.NewAWSConfig(ctx, cfg.AWS)
	if err != nil {
		pool.Close()
		return err
	}
	metrics := app.NewMetrics(awsCfg, cfg, logger)

	components, err := app.Build(cfg, logger, app.Options{
		Preferences: prefsRepo,
		Metrics:     metrics,
	})
	if err != nil {
		pool.Close()
		return fmt.Errorf("building components: %w", err)
	}

	srv, err := newServer(cfg, logger, components, core.PingProbe{ProbeName: "database", Ping: prefsRepo.Ping})
	if err != nil {
		pool.Close()
		return err
	}
	srv.OnShutdown(func() error {
		pool.Close()
		return nil
	})

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	metricsDone := make(chan struct{})
	if metrics != nil {
		srv.Metrics = metrics
		go func() {
			defer close(metricsDone)
			metrics.Run(metricsCtx, metricsFlushInterval)
		}()
	} else {
		close(metricsDone)
	}
	srv.OnShutdown(func() error {
		stopMetrics()
		<-metricsDone
		return nil
	})
	srv.MountRoutes()

	logger.Info("components wired",
		"beaches", components.Catalogue.Len(),
		"metrics_enabled", metrics != nil,
	)

	return runHTTPServer(ctx, srv, cfg, logger)
}

// newServer builds the core server with the BeachScore routes registered.
// The caller still sets Metrics and calls MountRoutes.
func newServer(cfg *config.Config, logger *slog.Logger, c *app.Components, probes ...core.HealthProbe) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}
	srv.RateLimitStore = core.NewMemoryRateLimitStore(types.RealClock{})
	srv.HealthProbes = append(srv.HealthProbes, probes...)

	beachHandler := handlers.NewBeachHandler(c.Recommender, logger)
	scoreHandler := handlers.NewScoreHandler(c.Engine, c.Generator, srv.Validator, logger)
	prefsHandler := handlers.NewPreferencesHandler(c.Recommender, srv.Validator, logger)

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		func(r chi.Router) { r.Route("/beaches", beachHandler.RegisterRoutes) },
		scoreHandler.RegisterRoutes,
		func(r chi.Router) { r.Route("/preferences", prefsHandler.RegisterRoutes) },
	)
	return srv, nil
}

// runHTTPServer serves until ctx is cancelled or the listener fails, then
// drains in-flight requests and releases server resources.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown: %w", err)
		}
	}

	if runErr == nil {
		logger.Info("server stopped cleanly")
	}
	return runErr
}

// newLogger creates a JSON slog.Logger at the given level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
