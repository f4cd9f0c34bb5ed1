// Package windows turns a forecast sequence into scored, chronologically
// ordered visit windows, applies nighttime suppression and marks at most one
// "go now" window.
package windows

import (
	"sort"
	"time"

	"beachscore/internal/scoring"
	"beachscore/internal/types"
)

// Config holds the generator's tunable constants.
type Config struct {
	// NightScore replaces the score of any window whose midpoint falls
	// outside daylight.
	NightScore int `envconfig:"WINDOW_NIGHT_SCORE" default:"30" validate:"gte=0,lte=100"`
	// GoNowLookahead bounds how far ahead the fallback go-now search looks.
	GoNowLookahead time.Duration `envconfig:"WINDOW_GO_NOW_LOOKAHEAD" default:"60m" validate:"gte=0"`
	// GoNowMinScore is the lowest score the fallback go-now window may have.
	GoNowMinScore int `envconfig:"WINDOW_GO_NOW_MIN_SCORE" default:"60" validate:"gte=0,lte=100"`
	// DefaultCount caps the snapshots considered when Options.Count is unset.
	DefaultCount int `envconfig:"WINDOW_DEFAULT_COUNT" default:"8" validate:"gt=0"`
	// DefaultDuration applies when Options.Duration is unset.
	DefaultDuration time.Duration `envconfig:"WINDOW_DEFAULT_DURATION" default:"3h" validate:"gt=0"`
}

// DefaultConfig returns the production window settings.
func DefaultConfig() Config {
	return Config{
		NightScore:      30,
		GoNowLookahead:  60 * time.Minute,
		GoNowMinScore:   60,
		DefaultCount:    8,
		DefaultDuration: scoring.DefaultWindowDuration,
	}
}

// Options are the per-call generation parameters.
type Options struct {
	// Duration is the length of each window. Zero means Config.DefaultDuration.
	Duration time.Duration
	// Count is the maximum number of leading snapshots considered. Zero or
	// negative means Config.DefaultCount.
	Count int
	// Preferences are forwarded to the score engine.
	Preferences types.Optional[types.UserPreferences]
}

// Generator scores snapshot sequences into windows.
type Generator struct {
	engine *scoring.Engine
	cfg    Config
	clock  types.Clock
}

// NewGenerator creates a Generator. A nil clock uses the system time.
func NewGenerator(engine *scoring.Engine, cfg Config, clock types.Clock) *Generator {
	if clock == nil {
		clock = types.RealClock{}
	}
	def := DefaultConfig()
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = def.DefaultCount
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = def.DefaultDuration
	}
	return &Generator{engine: engine, cfg: cfg, clock: clock}
}

// Generate scores the first Count snapshots that are not in the past and
// returns them in start-time order. The result is never nil.
func (g *Generator) Generate(snapshots []types.ConditionSnapshot, opts Options) []types.Window {
	now := g.clock.Now()

	duration := opts.Duration
	if duration <= 0 {
		duration = g.cfg.DefaultDuration
	}
	count := opts.Count
	if count <= 0 {
		count = g.cfg.DefaultCount
	}
	if count > len(snapshots) {
		count = len(snapshots)
	}

	windows := make([]types.Window, 0, count)
	for _, snap := range snapshots[:count] {
		if snap.Timestamp.Before(now) {
			continue
		}

		w := g.engine.Score(snap, opts.Preferences).Window
		w.EndTime = w.StartTime.Add(duration)

		if IsNighttime(w.StartTime, duration, snap.Sunrise, snap.Sunset) {
			w.Score = g.cfg.NightScore
			w.Badges = append(w.Badges, scoring.NighttimeBadge())
		}
		windows = append(windows, w)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].StartTime.Before(windows[j].StartTime)
	})

	if i := g.goNowIndex(windows, now); i >= 0 {
		windows[i].IsGoNow = true
	}
	return windows
}

// goNowIndex picks the window to mark as go-now: the first one in progress
// that was not nighttime-suppressed, else the earliest good daytime window
// starting within the lookahead. It returns -1 when nothing qualifies.
func (g *Generator) goNowIndex(windows []types.Window, now time.Time) int {
	for i, w := range windows {
		if w.Contains(now) && w.Score > g.cfg.NightScore && !w.HasBadge(scoring.BadgeNighttime) {
			return i
		}
	}

	horizon := now.Add(g.cfg.GoNowLookahead)
	for i, w := range windows {
		if w.StartTime.Before(now) || w.StartTime.After(horizon) {
			continue
		}
		if w.Score >= g.cfg.GoNowMinScore && !w.HasBadge(scoring.BadgeNighttime) {
			return i
		}
	}
	return -1
}

// IsNighttime reports whether the midpoint of [start, start+duration) falls
// before sunrise or after sunset. Without both times the window is never
// treated as nighttime.
func IsNighttime(start time.Time, duration time.Duration, sunrise, sunset types.Optional[time.Time]) bool {
	rise, okRise := sunrise.Get()
	set, okSet := sunset.Get()
	if !okRise || !okSet {
		return false
	}
	mid := start.Add(duration / 2)
	return mid.Before(rise) || mid.After(set)
}

// GoNow returns the window marked go-now, if any.
func GoNow(windows []types.Window) (types.Window, bool) {
	for _, w := range windows {
		if w.IsGoNow {
			return w, true
		}
	}
	return types.Window{}, false
}

// BestWindow returns the highest-scoring window, preferring the earlier one
// on ties. It reports false for an empty list.
func BestWindow(windows []types.Window) (types.Window, bool) {
	if len(windows) == 0 {
		return types.Window{}, false
	}
	best := windows[0]
	for _, w := range windows[1:] {
		if w.Score > best.Score || (w.Score == best.Score && w.StartTime.Before(best.StartTime)) {
			best = w
		}
	}
	return best, true
}
