// Package config defines the process configuration for the BeachScore services.
// It is loaded once at startup and is immutable afterwards.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// A missing required value or an invalid format fails startup.
package config

import (
	"time"

	"beachscore/internal/conditions"
	"beachscore/internal/types"
	"beachscore/internal/windows"
)

// SecretString is an alias for types.SecretString so secrets never reach logs.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Components receive only the
// sub-struct they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"beachscore"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Server        ServerConfig
	Database      DatabaseConfig
	AWS           AWSConfig
	Providers     ProvidersConfig
	Scoring       ScoringConfig
	Security      SecurityConfig
	Observability ObservabilityConfig

	// Injected via ldflags, not env.
	Build BuildInfo
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           string        `envconfig:"PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s" validate:"gt=0"`
	// ShutdownTimeout bounds graceful drain on SIGTERM.
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// DatabaseConfig holds the preferences database connection and pool tuning.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10" validate:"gt=0"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"1" validate:"gte=0"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// AWSConfig holds regional settings and resource identifiers.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"us-east-1"`

	// GoNowQueueURL receives go-now alerts from the scanner. Empty disables publishing.
	GoNowQueueURL string `envconfig:"SQS_GO_NOW" validate:"omitempty,url"`

	// LocalStack support; empty in prod.
	EndpointURL string `envconfig:"AWS_ENDPOINT_URL"`
}

// ProvidersConfig holds upstream weather, UV and tide endpoints.
type ProvidersConfig struct {
	OpenWeatherAPIKey SecretString  `envconfig:"OPENWEATHER_API_KEY" validate:"required"`
	OpenWeatherURL    string        `envconfig:"OPENWEATHER_URL" default:"https://api.openweathermap.org" validate:"url"`
	OpenMeteoURL      string        `envconfig:"OPENMETEO_URL" default:"https://api.open-meteo.com" validate:"url"`
	NOAAURL           string        `envconfig:"NOAA_TIDES_URL" default:"https://api.tidesandcurrents.noaa.gov" validate:"url"`
	Timeout           time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s" validate:"gt=0"`
	MaxRetries        int           `envconfig:"PROVIDER_MAX_RETRIES" default:"2" validate:"gte=0,lte=5"`
}

// ScoringConfig carries the tunable engine and window parameters.
type ScoringConfig struct {
	Weights    types.ScoreWeights
	Windows    windows.Config
	Conditions conditions.Config
	// BeachesFile overrides the embedded catalogue when set.
	BeachesFile string `envconfig:"BEACHES_FILE"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	RateLimitRequests  int           `envconfig:"RATE_LIMIT_REQUESTS" default:"120" validate:"gte=0"`
	RateLimitWindow    time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m" validate:"gt=0"`
}

// ObservabilityConfig holds telemetry settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"BeachScore"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"true"`
}

// BuildInfo holds build-time metadata injected via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrSSMResolution indicates a failure fetching secrets from AWS SSM.
	ErrSSMResolution ConfigErrorType = "SSM_FAILURE"
	// ErrValidation indicates the configuration failed struct validation.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates an environment value could not be parsed.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
