// Package scoring implements the BeachScore engine: it maps one condition
// snapshot (plus optional user preferences) to five sub-scores, a weighted
// 0-100 total, and a list of explanatory badges.
//
// The engine is pure. All weights and thresholds travel in an explicit Config
// value, so overrides are composed per call rather than through shared
// package state.
package scoring

import (
	"time"

	"beachscore/internal/types"
)

// DefaultWindowDuration is the window length stamped on a scored snapshot
// when no other duration is supplied.
const DefaultWindowDuration = 3 * time.Hour

// TempBands are the inclusive feels-like bands used when the user has no
// preferred temperature range. They are evaluated in order: optimal, good,
// acceptable, poor, then the fallback score.
type TempBands struct {
	OptimalMin    float64
	OptimalMax    float64
	GoodMin       float64
	GoodMax       float64
	AcceptableMin float64
	AcceptableMax float64
	PoorMin       float64
	PoorMax       float64

	// GoodTaper is the number of points lost per degree outside the optimal
	// band while still inside the good band.
	GoodTaper float64

	AcceptableScore float64
	PoorScore       float64
	FallbackScore   float64
}

// PreferenceCurve shapes the temperature score around a user TempRange.
type PreferenceCurve struct {
	// EdgeDrop is how far the score falls from 100 at the midpoint to either edge.
	EdgeDrop float64
	// OutsideStart is the score just outside the range.
	OutsideStart float64
	// OutsidePerDegree is lost per degree beyond the range, floored at zero.
	OutsidePerDegree float64
}

// StepTable is an ascending threshold table mapped to scores. Scores has one
// more entry than Thresholds; the last entry applies beyond every threshold.
type StepTable struct {
	Thresholds []float64
	Scores     []float64
	// Inclusive selects value <= threshold instead of value < threshold.
	Inclusive bool
}

// Lookup returns the score for v.
func (t StepTable) Lookup(v float64) float64 {
	for i, th := range t.Thresholds {
		if (t.Inclusive && v <= th) || (!t.Inclusive && v < th) {
			return t.Scores[i]
		}
	}
	return t.Scores[len(t.Scores)-1]
}

// WindConfig controls the effective-wind rule and the tolerance clamp.
type WindConfig struct {
	Steps StepTable
	// GustMargin is how far a gust must exceed sustained speed before the
	// gust becomes the effective wind.
	GustMargin float64
	// DefaultTolerance applies when the user has not set a wind tolerance.
	DefaultTolerance float64
	// OverToleranceScore replaces the step table once effective wind exceeds tolerance.
	OverToleranceScore float64
}

// WeatherConfig holds the cloud-cover mismatch penalty.
type WeatherConfig struct {
	CloudPenaltyAbove    float64
	CloudPenaltyMinScore float64
	CloudPenalty         float64
}

// GoalAdjustments are weight deltas applied for activity goals before renormalisation.
type GoalAdjustments struct {
	PhotographyWeather float64
	PhotographyUV      float64
	SwimTide           float64
	SwimTemp           float64
	SwimWind           float64
}

// BadgeThresholds are the raw-value cut-offs used for badge selection.
type BadgeThresholds struct {
	PerfectTempScore float64
	ColdBelow        float64
	HotAtOrAbove     float64
	HotMaxTempScore  float64
	LowUVAtOrBelow   float64
	ModerateUVFrom   float64
	HighUVFrom       float64
	CalmBelow        float64
	BreezyFrom       float64
	VeryWindyFrom    float64
}

// Config is the complete, explicit parameter set for one scoring call.
type Config struct {
	Weights    types.ScoreWeights
	Goals      GoalAdjustments
	Temp       TempBands
	Preference PreferenceCurve
	UV         StepTable
	Wind       WindConfig
	Weather    WeatherConfig
	Badges     BadgeThresholds

	// WindowDuration is used for the EndTime of a directly scored snapshot.
	WindowDuration time.Duration
}

// DefaultConfig returns the production weights and thresholds.
func DefaultConfig() Config {
	return Config{
		Weights: types.ScoreWeights{
			Temp:    0.30,
			UV:      0.25,
			Wind:    0.25,
			Tide:    0.10,
			Weather: 0.10,
		},
		Goals: GoalAdjustments{
			PhotographyWeather: 0.10,
			PhotographyUV:      -0.05,
			SwimTide:           0.05,
			SwimTemp:           0.05,
			SwimWind:           -0.05,
		},
		Temp: TempBands{
			OptimalMin:      80,
			OptimalMax:      90,
			GoodMin:         75,
			GoodMax:         95,
			AcceptableMin:   70,
			AcceptableMax:   98,
			PoorMin:         65,
			PoorMax:         100,
			GoodTaper:       2,
			AcceptableScore: 70,
			PoorScore:       40,
			FallbackScore:   20,
		},
		Preference: PreferenceCurve{
			EdgeDrop:         20,
			OutsideStart:     80,
			OutsidePerDegree: 10,
		},
		UV: StepTable{
			Thresholds: []float64{2, 5, 7, 10},
			Scores:     []float64{100, 80, 60, 40, 20},
			Inclusive:  true,
		},
		Wind: WindConfig{
			Steps: StepTable{
				Thresholds: []float64{5, 10, 15, 20, 25},
				Scores:     []float64{100, 90, 70, 50, 30, 20},
			},
			GustMargin:         5,
			DefaultTolerance:   25,
			OverToleranceScore: 20,
		},
		Weather: WeatherConfig{
			CloudPenaltyAbove:    75,
			CloudPenaltyMinScore: 70,
			CloudPenalty:         10,
		},
		Badges: BadgeThresholds{
			PerfectTempScore: 90,
			ColdBelow:        70,
			HotAtOrAbove:     95,
			HotMaxTempScore:  50,
			LowUVAtOrBelow:   2,
			ModerateUVFrom:   6,
			HighUVFrom:       8,
			CalmBelow:        5,
			BreezyFrom:       15,
			VeryWindyFrom:    20,
		},
		WindowDuration: DefaultWindowDuration,
	}
}
