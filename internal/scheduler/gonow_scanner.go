// Package scheduler implements the periodic go-now scan. Each run walks the
// beach catalogue, builds recommendations and publishes an alert for every
// beach whose current window is worth going to right now.
package scheduler

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"beachscore/internal/recommend"
	"beachscore/internal/types"
)

// DefaultScanConcurrency bounds the beaches processed in parallel. Each one
// costs a weather, UV and tide call.
const DefaultScanConcurrency = 4

// Recommender is the part of recommend.Service the scanner needs.
type Recommender interface {
	Beaches() []types.Beach
	Recommend(ctx context.Context, beachID string, q recommend.Query) (*recommend.Recommendation, error)
}

// AlertPublisher delivers go-now alerts.
type AlertPublisher interface {
	Publish(ctx context.Context, alert types.GoNowAlert) error
}

// ScanMetrics receives per-run and per-beach scan telemetry.
type ScanMetrics interface {
	RecordScan(ctx context.Context, scanned, alerts, failures int)
	RecordBeachFailure(ctx context.Context, beachID string)
}

// ScanInput is the optional payload of a manual invocation.
type ScanInput struct {
	// BeachIDs restricts the scan. Empty means the whole catalogue.
	BeachIDs []string `json:"beach_ids,omitempty"`
	// DryRun computes alerts without publishing them.
	DryRun bool `json:"dry_run,omitempty"`
}

// ScanReport summarizes one run.
type ScanReport struct {
	Scanned  int                `json:"scanned"`
	Alerts   []types.GoNowAlert `json:"alerts"`
	Failures map[string]string  `json:"failures,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// GoNowScanner runs the go-now scan.
type GoNowScanner struct {
	recommender Recommender
	publisher   AlertPublisher
	metrics     ScanMetrics
	clock       types.Clock
	concurrency int
	logger      *slog.Logger
}

// GoNowScannerConfig holds the scanner's dependencies.
type GoNowScannerConfig struct {
	Recommender Recommender
	Publisher   AlertPublisher // nil behaves like DryRun
	Metrics     ScanMetrics    // optional
	Clock       types.Clock
	Concurrency int
	Logger      *slog.Logger
}

func NewGoNowScanner(cfg GoNowScannerConfig) *GoNowScanner {
	s := &GoNowScanner{
		recommender: cfg.Recommender,
		publisher:   cfg.Publisher,
		metrics:     cfg.Metrics,
		clock:       cfg.Clock,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger,
	}
	if s.clock == nil {
		s.clock = types.RealClock{}
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultScanConcurrency
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Scan processes the selected beaches. A failure on one beach is recorded in
// the report and does not stop the others; Scan only returns an error when
// ctx is cancelled.
func (s *GoNowScanner) Scan(ctx context.Context, input ScanInput) (*ScanReport, error) {
	start := s.clock.Now()
	targets := s.targets(input.BeachIDs)

	var mu sync.Mutex
	report := &ScanReport{
		Alerts:   make([]types.GoNowAlert, 0),
		Failures: make(map[string]string),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, beach := range targets {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			alert, err := s.scanBeach(gCtx, beach, input.DryRun)

			mu.Lock()
			defer mu.Unlock()
			report.Scanned++
			if err != nil {
				report.Failures[beach.ID] = err.Error()
				return nil
			}
			if alert != nil {
				report.Alerts = append(report.Alerts, *alert)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	sort.Slice(report.Alerts, func(i, j int) bool {
		return report.Alerts[i].BeachID < report.Alerts[j].BeachID
	})
	report.Duration = s.clock.Now().Sub(start)
	if s.metrics != nil {
		s.metrics.RecordScan(ctx, report.Scanned, len(report.Alerts), len(report.Failures))
	}
	s.logger.InfoContext(ctx, "go-now scan complete",
		"scanned", report.Scanned,
		"alerts", len(report.Alerts),
		"failures", len(report.Failures),
		"dry_run", input.DryRun,
	)
	return report, nil
}

// scanBeach returns the alert for beach, or nil when it has no go-now window.
func (s *GoNowScanner) scanBeach(ctx context.Context, beach types.Beach, dryRun bool) (*types.GoNowAlert, error) {
	rec, err := s.recommender.Recommend(ctx, beach.ID, recommend.Query{})
	if err != nil {
		s.beachFailed(ctx, beach.ID, "recommendation failed", err)
		return nil, err
	}
	if rec.GoNow == nil {
		return nil, nil
	}

	alert := types.GoNowAlert{
		BeachID:     beach.ID,
		BeachName:   beach.Name,
		WindowID:    rec.GoNow.ID,
		StartTime:   rec.GoNow.StartTime,
		EndTime:     rec.GoNow.EndTime,
		Score:       rec.GoNow.Score,
		Badges:      rec.GoNow.Badges,
		GeneratedAt: rec.GeneratedAt,
	}

	if dryRun || s.publisher == nil {
		return &alert, nil
	}
	if err := s.publisher.Publish(ctx, alert); err != nil {
		s.beachFailed(ctx, beach.ID, "go-now publish failed", err)
		return nil, err
	}
	return &alert, nil
}

func (s *GoNowScanner) beachFailed(ctx context.Context, beachID, msg string, err error) {
	s.logger.WarnContext(ctx, msg,
		"beach_id", beachID,
		"error", err.Error(),
		"code", string(types.ErrorCodeOf(err)),
	)
	if s.metrics != nil {
		s.metrics.RecordBeachFailure(ctx, beachID)
	}
}

// targets resolves the requested IDs against the catalogue. Unknown IDs are
// logged and skipped.
func (s *GoNowScanner) targets(ids []string) []types.Beach {
	all := s.recommender.Beaches()
	if len(ids) == 0 {
		return all
	}

	byID := make(map[string]types.Beach, len(all))
	for _, b := range all {
		byID[b.ID] = b
	}
	out := make([]types.Beach, 0, len(ids))
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			s.logger.Warn("skipping unknown beach", "beach_id", id)
			continue
		}
		out = append(out, b)
	}
	return out
}
