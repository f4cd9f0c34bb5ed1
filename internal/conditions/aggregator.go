// Package conditions assembles ConditionSnapshot sequences for a beach by
// fanning out to the weather, UV and tide providers and merging the replies.
//
// Weather is required. UV and tide failures are logged and substituted so a
// flaky secondary provider never blanks the forecast.
package conditions

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"beachscore/internal/external"
	"beachscore/internal/tides"
	"beachscore/internal/types"
)

// Config holds the aggregator's substitution and matching rules.
type Config struct {
	// DefaultUV is used when the UV provider fails or has no reading near a
	// forecast step.
	DefaultUV float64 `envconfig:"CONDITIONS_DEFAULT_UV" default:"5"`
	// UVMatchWindow is the furthest a UV reading may be from a forecast step.
	UVMatchWindow time.Duration `envconfig:"CONDITIONS_UV_MATCH_WINDOW" default:"90m"`
	// TideLookback widens the tide query so the first forecast step is bracketed.
	TideLookback time.Duration `envconfig:"CONDITIONS_TIDE_LOOKBACK" default:"24h"`
	// TideHorizon is how far ahead tide predictions are requested.
	TideHorizon time.Duration `envconfig:"CONDITIONS_TIDE_HORIZON" default:"144h"`
	// SlackBand is handed to the tide classifier.
	SlackBand float64 `envconfig:"TIDE_SLACK_BAND" default:"0.15"`
}

// DefaultConfig returns the production aggregation settings.
func DefaultConfig() Config {
	return Config{
		DefaultUV:     5,
		UVMatchWindow: 90 * time.Minute,
		TideLookback:  24 * time.Hour,
		TideHorizon:   6 * 24 * time.Hour,
		SlackBand:     tides.DefaultSlackBand,
	}
}

// FailureRecorder counts provider failures that were absorbed.
type FailureRecorder interface {
	RecordProviderFailure(ctx context.Context, provider string)
}

// Aggregator builds snapshot sequences for beaches.
type Aggregator struct {
	weather    external.WeatherProvider
	uv         external.UVProvider
	tides      external.TideProvider
	classifier tides.Classifier
	cfg        Config
	clock      types.Clock
	failures   FailureRecorder
	logger     *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source used for the tide query range.
func WithClock(c types.Clock) Option {
	return func(a *Aggregator) { a.clock = c }
}

// WithFailureRecorder reports absorbed provider failures.
func WithFailureRecorder(r FailureRecorder) Option {
	return func(a *Aggregator) { a.failures = r }
}

// NewAggregator creates an Aggregator.
func NewAggregator(
	weather external.WeatherProvider,
	uv external.UVProvider,
	tideProvider external.TideProvider,
	cfg Config,
	logger *slog.Logger,
	opts ...Option,
) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Aggregator{
		weather:    weather,
		uv:         uv,
		tides:      tideProvider,
		classifier: tides.NewClassifier(cfg.SlackBand),
		cfg:        cfg,
		clock:      types.RealClock{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Snapshots returns the merged, time-ordered snapshots for beach. It fails
// only when the weather forecast cannot be fetched.
func (a *Aggregator) Snapshots(ctx context.Context, beach types.Beach) ([]types.ConditionSnapshot, error) {
	var (
		forecast *external.WeatherForecast
		uv       []external.UVReading
		events   []tides.Event
	)

	now := a.clock.Now()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fc, err := a.weather.Forecast(gCtx, beach.Lat, beach.Lon)
		if err != nil {
			return err
		}
		forecast = fc
		return nil
	})

	if a.uv != nil {
		g.Go(func() error {
			readings, err := a.uv.HourlyUV(gCtx, beach.Lat, beach.Lon)
			if err != nil {
				a.absorb(gCtx, external.ProviderOpenMeteo, beach, err)
				return nil
			}
			uv = readings
			return nil
		})
	}

	if a.tides != nil && beach.TideStationID != "" {
		g.Go(func() error {
			evs, err := a.tides.Predictions(gCtx, beach.TideStationID, now.Add(-a.cfg.TideLookback), now.Add(a.cfg.TideHorizon))
			if err != nil {
				a.absorb(gCtx, external.ProviderNOAA, beach, err)
				return nil
			}
			events = evs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.ErrorContext(ctx, "weather forecast failed",
			"beach_id", beach.ID,
			"error", err,
		)
		if ctx.Err() == nil {
			a.recordFailure(ctx, external.ProviderOpenWeather)
		}
		return nil, err
	}

	snaps := a.merge(forecast, uv)
	a.classifier.Annotate(snaps, events)
	return snaps, nil
}

func (a *Aggregator) absorb(ctx context.Context, provider string, beach types.Beach, err error) {
	// Cancellation comes from a failed weather call and is reported there.
	if ctx.Err() != nil {
		return
	}
	a.logger.WarnContext(ctx, "secondary provider failed; using defaults",
		"provider", provider,
		"beach_id", beach.ID,
		"error", err,
	)
	a.recordFailure(ctx, provider)
}

func (a *Aggregator) recordFailure(ctx context.Context, provider string) {
	if a.failures != nil {
		a.failures.RecordProviderFailure(ctx, provider)
	}
}

func (a *Aggregator) merge(fc *external.WeatherForecast, uv []external.UVReading) []types.ConditionSnapshot {
	points := make([]external.WeatherPoint, len(fc.Points))
	copy(points, fc.Points)
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })

	snaps := make([]types.ConditionSnapshot, 0, len(points))
	for _, p := range points {
		s := types.ConditionSnapshot{
			Timestamp:          p.Time,
			Temp:               p.Temp,
			FeelsLike:          p.FeelsLike,
			Humidity:           p.Humidity,
			CloudCover:         p.CloudCover,
			WeatherCode:        p.Code,
			WeatherDescription: p.Description,
			WindSpeed:          p.WindSpeed,
			WindGust:           p.WindGust,
			UVIndex:            nearestUV(uv, p.Time, a.cfg.UVMatchWindow, a.cfg.DefaultUV),
		}
		if !fc.Sunrise.IsZero() && !fc.Sunset.IsZero() {
			rise, set := SunTimesFor(p.Time, fc.Sunrise, fc.Sunset, fc.UTCOffset)
			s.Sunrise = types.Some(rise)
			s.Sunset = types.Some(set)
		}
		snaps = append(snaps, s)
	}
	return snaps
}

// nearestUV returns the reading closest to t if it lies within window,
// otherwise fallback.
func nearestUV(readings []external.UVReading, t time.Time, window time.Duration, fallback float64) float64 {
	best := fallback
	bestDist := time.Duration(math.MaxInt64)
	for _, r := range readings {
		d := r.Time.Sub(t)
		if d < 0 {
			d = -d
		}
		if d <= window && d < bestDist {
			best, bestDist = r.Index, d
		}
	}
	return best
}

// SunTimesFor shifts the reference sunrise and sunset onto the local
// calendar day containing t. Day-to-day drift of a few minutes is ignored.
func SunTimesFor(t, sunrise, sunset time.Time, offset time.Duration) (time.Time, time.Time) {
	zone := time.FixedZone("", int(offset/time.Second))
	days := localDay(t.In(zone)) - localDay(sunrise.In(zone))
	shift := time.Duration(days) * 24 * time.Hour
	return sunrise.Add(shift), sunset.Add(shift)
}

func localDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
