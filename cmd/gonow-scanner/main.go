// Package main is the entry point for the go-now scanner Lambda.
//
// An EventBridge schedule invokes it every few minutes. Each run scores the
// whole beach catalogue and publishes an SQS alert for every beach with a
// go-now window. Manual invocations may pass a ScanInput to restrict the
// beaches or request a dry run.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"beachscore/internal/app"
	"beachscore/internal/config"
	"beachscore/internal/scheduler"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("go-now scanner initializing (cold start)")

	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL")))
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := app.NewAWSConfig(ctx, cfg.AWS)
	if err != nil {
		logger.Error("failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	metrics := app.NewMetrics(awsCfg, cfg, logger)
	components, err := app.Build(cfg, logger, app.Options{Metrics: metrics})
	if err != nil {
		logger.Error("failed to build components", "error", err)
		os.Exit(1)
	}

	scanCfg := scheduler.GoNowScannerConfig{
		Recommender: components.Recommender,
		Logger:      logger,
	}
	if pub := app.NewGoNowPublisher(awsCfg, cfg.AWS, logger); pub != nil {
		scanCfg.Publisher = pub
	} else {
		logger.Warn("SQS_GO_NOW is not set; alerts will not be published")
	}
	var flusher metricsFlusher
	if metrics != nil {
		scanCfg.Metrics = metrics
		flusher = metrics
	}
	goNow := scheduler.NewGoNowScanner(scanCfg)

	logger.Info("go-now scanner initialized",
		"beaches", components.Catalogue.Len(),
		"queue", cfg.AWS.GoNowQueueURL,
	)

	handler := newHandler(goNow, flusher, logger)

	// Local mode: read one event from stdin instead of starting the runtime.
	// Usage: echo '{"dry_run":true}' | go run ./cmd/gonow-scanner
	if cfg.Environment == "local" {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("failed to read stdin", "error", err)
			os.Exit(1)
		}
		report, err := handler(ctx, json.RawMessage(payload))
		if err != nil {
			logger.Error("scan failed", "error", err)
			os.Exit(1)
		}
		_ = json.NewEncoder(os.Stdout).Encode(report)
		return
	}

	lambda.Start(handler)
}

// metricsFlusher is the part of telemetry.Recorder the handler needs.
type metricsFlusher interface {
	Flush(ctx context.Context) error
}

type scanner interface {
	Scan(ctx context.Context, input scheduler.ScanInput) (*scheduler.ScanReport, error)
}

// newHandler returns the Lambda handler. It accepts either a bare ScanInput
// or an EventBridge envelope whose detail is a ScanInput.
// A nil flusher skips metric publication.
func newHandler(s scanner, flusher metricsFlusher, logger *slog.Logger) func(ctx context.Context, raw json.RawMessage) (*scheduler.ScanReport, error) {
	return func(ctx context.Context, raw json.RawMessage) (*scheduler.ScanReport, error) {
		input, err := parseInput(raw)
		if err != nil {
			return nil, err
		}

		logger.InfoContext(ctx, "go-now scan invoked",
			"beach_ids", input.BeachIDs,
			"dry_run", input.DryRun,
		)

		report, err := s.Scan(ctx, input)
		if flusher != nil {
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if ferr := flusher.Flush(flushCtx); ferr != nil {
				logger.WarnContext(ctx, "metric flush failed", "error", ferr)
			}
			cancel()
		}
		if err != nil {
			return report, fmt.Errorf("go-now scan failed: %w", err)
		}
		return report, nil
	}
}

// parseInput decodes raw as an EventBridge event when it carries a
// detail-type, else as a ScanInput. An empty payload scans everything.
func parseInput(raw json.RawMessage) (scheduler.ScanInput, error) {
	var input scheduler.ScanInput
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return input, nil
	}

	var probe struct {
		DetailType string `json:"detail-type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return input, fmt.Errorf("decode scan event: %w", err)
	}

	if probe.DetailType != "" {
		var ev events.CloudWatchEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return input, fmt.Errorf("decode EventBridge event: %w", err)
		}
		if len(ev.Detail) == 0 || string(ev.Detail) == "null" {
			return input, nil
		}
		raw = ev.Detail
	}

	if err := json.Unmarshal(raw, &input); err != nil {
		return input, fmt.Errorf("decode scan input: %w", err)
	}
	return input, nil
}
