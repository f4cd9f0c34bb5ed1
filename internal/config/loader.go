package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"beachscore/internal/scoring"
)

// ConfigError wraps a load failure with its category.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ssmParamSuffix marks pointer variables: OPENWEATHER_API_KEY_SSM_PARAM holds
// the SSM path whose value becomes OPENWEATHER_API_KEY.
const ssmParamSuffix = "_SSM_PARAM"

const localEnv = "local"

const ssmResolveTimeout = 30 * time.Second

// environment is the process environment seen by the loader. Tests swap it
// for a map-backed fake.
type environment struct {
	lookup  func(string) (string, bool)
	set     func(string, string) error
	environ func() []string
}

func osEnvironment() environment {
	return environment{lookup: os.LookupEnv, set: os.Setenv, environ: os.Environ}
}

// LoadConfig runs the full lifecycle: UTC, .env, SSM pointers (outside
// APP_ENV=local), envconfig, build info, validation. provider may be nil in
// local mode.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return load(provider, osEnvironment())
}

func load(provider SecretProvider, env environment) (*Config, error) {
	time.Local = time.UTC

	// Existing variables are never overwritten by the dotenv file.
	_ = godotenv.Load()

	if appEnv, _ := env.lookup("APP_ENV"); appEnv != localEnv {
		if err := resolveSSMParams(provider, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Type: ErrParsing, Message: "failed to process environment configuration", Err: err}
	}
	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	if cfg.Scoring.Weights.Sum() <= 0 {
		return nil, &ConfigError{Type: ErrValidation, Message: "score weights must not all be zero"}
	}
	return &cfg, nil
}

// ResolveSecrets runs only the SSM step. Lambda entry points that skip the
// full Config call it before reading individual variables.
func ResolveSecrets(provider SecretProvider) error {
	if appEnv, _ := os.LookupEnv("APP_ENV"); appEnv == localEnv {
		return nil
	}
	return resolveSSMParams(provider, osEnvironment())
}

// resolveSSMParams fetches every *_SSM_PARAM target that is not already set
// and exports the values. Direct variables win over SSM.
func resolveSSMParams(provider SecretProvider, env environment) error {
	targets := make(map[string]string) // ssm path -> env var
	for _, entry := range env.environ() {
		key, path, ok := strings.Cut(entry, "=")
		if !ok || path == "" || !strings.HasSuffix(key, ssmParamSuffix) {
			continue
		}
		target := strings.TrimSuffix(key, ssmParamSuffix)
		if _, set := env.lookup(target); set {
			continue
		}
		targets[path] = target
	}
	if len(targets) == 0 {
		return nil
	}

	paths := make([]string, 0, len(targets))
	for p := range targets {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	if provider == nil {
		names := make([]string, 0, len(paths))
		for _, p := range paths {
			names = append(names, targets[p])
		}
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SecretProvider is required outside local mode (need to resolve: %s)", strings.Join(names, ", ")),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), ssmResolveTimeout)
	defer cancel()

	resolved, err := provider.GetParametersBatch(ctx, paths)
	if err != nil {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("failed to resolve %d SSM parameters", len(paths)),
			Err:     err,
		}
	}

	var missing []string
	for _, p := range paths {
		value, ok := resolved[p]
		if !ok {
			missing = append(missing, targets[p])
			continue
		}
		if err := env.set(targets[p], value); err != nil {
			return &ConfigError{
				Type:    ErrSSMResolution,
				Message: fmt.Sprintf("failed to set resolved value for %s", targets[p]),
				Err:     err,
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigError{
			Type:    ErrSSMResolution,
			Message: fmt.Sprintf("SSM parameters not found for: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// EngineConfig returns the scoring defaults with the configured weights.
func (c ScoringConfig) EngineConfig() scoring.Config {
	ec := scoring.DefaultConfig()
	ec.Weights = c.Weights
	ec.WindowDuration = c.Windows.DefaultDuration
	return ec
}
