package scoring

import (
	"math"
	"time"

	"github.com/google/uuid"

	"beachscore/internal/types"
)

// windowNamespace seeds the name-based window IDs so the same start time
// always yields the same ID.
var windowNamespace = uuid.MustParse("6f1c2a4e-8b0d-4d57-9a53-1f0e4b7c9d21")

// WindowID returns the deterministic ID for a window starting at start.
func WindowID(start time.Time) string {
	return uuid.NewSHA1(windowNamespace, []byte(start.UTC().Format(time.RFC3339Nano))).String()
}

// Result is the output of one scoring call.
type Result struct {
	Window    types.Window         `json:"window"`
	Breakdown types.ScoreBreakdown `json:"breakdown"`
}

// Engine scores condition snapshots against a fixed Config.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine. A zero WindowDuration falls back to the default.
func NewEngine(cfg Config) *Engine {
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = DefaultWindowDuration
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Score computes the breakdown, total and badges for one snapshot. Malformed
// numbers are not rejected; they fall through to the boundary branches of
// the step tables.
func (e *Engine) Score(snap types.ConditionSnapshot, prefs types.Optional[types.UserPreferences]) Result {
	c := e.cfg
	p, _ := prefs.Get()

	weights := c.ResolveWeights(prefs)
	category := ClassifyWeather(snap.WeatherCode)
	wind := c.EffectiveWind(snap.WindSpeed, snap.WindGust)

	b := types.ScoreBreakdown{
		TempScore:    c.TempScore(snap.FeelsLike, p.TempRange),
		UVScore:      c.UVScore(snap.UVIndex),
		WindScore:    c.WindScore(wind, p.WindTolerance),
		TideScore:    c.TideScore(snap.TideType),
		WeatherScore: c.WeatherScore(category, snap.CloudCover),
		Weights:      weights,
	}
	b.TotalScore = weightedTotal(b)

	badges := c.badges(badgeInputs{
		feelsLike:     snap.FeelsLike,
		tempScore:     b.TempScore,
		uvIndex:       snap.UVIndex,
		effectiveWind: wind,
		tide:          snap.TideType,
		weather:       category,
	})

	start := snap.Timestamp
	return Result{
		Window: types.Window{
			ID:         WindowID(start),
			StartTime:  start,
			EndTime:    start.Add(c.WindowDuration),
			Score:      b.TotalScore,
			Badges:     badges,
			Conditions: snap,
		},
		Breakdown: b,
	}
}

func weightedTotal(b types.ScoreBreakdown) int {
	w := b.Weights
	total := b.TempScore*w.Temp +
		b.UVScore*w.UV +
		b.WindScore*w.Wind +
		b.TideScore*w.Tide +
		b.WeatherScore*w.Weather
	if math.IsNaN(total) {
		return 0
	}
	// Trim float noise from renormalised weights so x.5 totals round up.
	total = math.Round(total*1e6) / 1e6
	return int(clampScore(math.Round(total)))
}
