// Package app assembles the components shared by the API server and the
// go-now scanner from a loaded configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"beachscore/internal/beaches"
	"beachscore/internal/checklist"
	"beachscore/internal/conditions"
	"beachscore/internal/config"
	"beachscore/internal/db"
	"beachscore/internal/external"
	"beachscore/internal/queue"
	"beachscore/internal/recommend"
	"beachscore/internal/scoring"
	"beachscore/internal/telemetry"
	"beachscore/internal/types"
	"beachscore/internal/windows"
)

// Components are the wired domain services.
type Components struct {
	Catalogue   *beaches.Catalogue
	Engine      *scoring.Engine
	Generator   *windows.Generator
	Checklist   *checklist.Generator
	Aggregator  *conditions.Aggregator
	Recommender *recommend.Service
}

// Options carry the optional collaborators of Build.
type Options struct {
	Preferences recommend.PreferencesStore
	Metrics     *telemetry.Recorder
	Clock       types.Clock
	HTTPClient  *http.Client
}

// Build wires catalogue, providers, aggregator, engine and the recommendation
// service from cfg.
func Build(cfg *config.Config, logger *slog.Logger, opts Options) (*Components, error) {
	catalogue, err := LoadCatalogue(cfg.Scoring.BeachesFile)
	if err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Providers.Timeout}
	}

	p := cfg.Providers
	retries := external.WithMaxRetries(p.MaxRetries)
	weather := external.NewOpenWeatherClient(httpClient, p.OpenWeatherURL, p.OpenWeatherAPIKey, retries)
	uv := external.NewOpenMeteoUVClient(httpClient, p.OpenMeteoURL, retries)
	tideClient := external.NewNOAATideClient(httpClient, p.NOAAURL, retries)

	aggOpts := []conditions.Option{conditions.WithClock(clock)}
	if opts.Metrics != nil {
		aggOpts = append(aggOpts, conditions.WithFailureRecorder(opts.Metrics))
	}
	aggregator := conditions.NewAggregator(weather, uv, tideClient, cfg.Scoring.Conditions, logger, aggOpts...)

	engineCfg := cfg.Scoring.EngineConfig()
	engine := scoring.NewEngine(engineCfg)
	generator := windows.NewGenerator(engine, cfg.Scoring.Windows, clock)
	checklistGen := checklist.NewGenerator(engineCfg)

	svc := recommend.NewService(catalogue, aggregator, generator, checklistGen, opts.Preferences, clock, logger)

	return &Components{
		Catalogue:   catalogue,
		Engine:      engine,
		Generator:   generator,
		Checklist:   checklistGen,
		Aggregator:  aggregator,
		Recommender: svc,
	}, nil
}

// LoadCatalogue reads the beach file at path, or the embedded catalogue when
// path is empty.
func LoadCatalogue(path string) (*beaches.Catalogue, error) {
	if path == "" {
		return beaches.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open beach catalogue: %w", err)
	}
	defer f.Close()
	return beaches.Load(f)
}

// NewPool opens the preferences database pool and verifies connectivity.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = cfg.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	if err := db.NewPreferencesRepository(pool).Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewAWSConfig loads the SDK configuration for cfg.Region.
func NewAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS SDK config: %w", err)
	}
	return awsCfg, nil
}

// NewMetrics returns a CloudWatch recorder, or nil when metrics are disabled.
func NewMetrics(awsCfg aws.Config, cfg *config.Config, logger *slog.Logger) *telemetry.Recorder {
	if !cfg.Observability.EnableMetrics {
		return nil
	}
	client := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.AWS.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
	})
	return telemetry.NewRecorder(client, cfg.Observability.MetricNamespace, logger)
}

// NewGoNowPublisher returns the SQS publisher, or nil when no queue is configured.
func NewGoNowPublisher(awsCfg aws.Config, cfg config.AWSConfig, logger *slog.Logger) *queue.GoNowPublisher {
	if cfg.GoNowQueueURL == "" {
		return nil
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})
	return queue.NewGoNowPublisher(client, cfg, logger)
}
