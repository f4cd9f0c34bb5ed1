package types

import (
	"math"
	"time"
)

// ScoreWeights holds the relative importance of each scoring dimension.
// Resolved weights always sum to 1.0.
type ScoreWeights struct {
	Temp    float64 `json:"temp" envconfig:"SCORE_WEIGHT_TEMP" default:"0.30" validate:"gte=0"`
	UV      float64 `json:"uv" envconfig:"SCORE_WEIGHT_UV" default:"0.25" validate:"gte=0"`
	Wind    float64 `json:"wind" envconfig:"SCORE_WEIGHT_WIND" default:"0.25" validate:"gte=0"`
	Tide    float64 `json:"tide" envconfig:"SCORE_WEIGHT_TIDE" default:"0.10" validate:"gte=0"`
	Weather float64 `json:"weather" envconfig:"SCORE_WEIGHT_WEATHER" default:"0.10" validate:"gte=0"`
}

// Sum returns the total of the five weights.
func (w ScoreWeights) Sum() float64 {
	return w.Temp + w.UV + w.Wind + w.Tide + w.Weather
}

// Normalize clamps negative weights to zero and rescales the remainder so
// they sum to 1.0. It returns false, leaving w untouched, when nothing
// positive remains to scale.
func (w ScoreWeights) Normalize() (ScoreWeights, bool) {
	w.Temp = math.Max(0, w.Temp)
	w.UV = math.Max(0, w.UV)
	w.Wind = math.Max(0, w.Wind)
	w.Tide = math.Max(0, w.Tide)
	w.Weather = math.Max(0, w.Weather)

	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return w, false
	}
	if math.Abs(sum-1) < 1e-9 {
		return w, true
	}
	return ScoreWeights{
		Temp:    w.Temp / sum,
		UV:      w.UV / sum,
		Wind:    w.Wind / sum,
		Tide:    w.Tide / sum,
		Weather: w.Weather / sum,
	}, true
}

// ScoreBreakdown exposes each sub-score alongside the weighted total and
// the weights that produced it.
type ScoreBreakdown struct {
	TempScore    float64      `json:"temp_score"`
	UVScore      float64      `json:"uv_score"`
	WindScore    float64      `json:"wind_score"`
	TideScore    float64      `json:"tide_score"`
	WeatherScore float64      `json:"weather_score"`
	TotalScore   int          `json:"total_score"`
	Weights      ScoreWeights `json:"weights"`
}

// BadgeType classifies the tone of a badge.
type BadgeType string

const (
	BadgePositive BadgeType = "positive"
	BadgeNeutral  BadgeType = "neutral"
	BadgeWarning  BadgeType = "warning"
	BadgeNegative BadgeType = "negative"
)

// Badge is a short explanatory annotation attached to a Window.
type Badge struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Icon  string    `json:"icon"`
	Type  BadgeType `json:"type"`
}

// Window is a fixed-duration visit interval scored from one snapshot.
type Window struct {
	ID         string            `json:"id"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Score      int               `json:"score"`
	Badges     []Badge           `json:"badges"`
	Conditions ConditionSnapshot `json:"conditions"`
	IsGoNow    bool              `json:"is_go_now"`
}

// Contains reports whether t falls inside [StartTime, EndTime].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.StartTime) && !t.After(w.EndTime)
}

// HasBadge reports whether a badge with the given ID is attached.
func (w Window) HasBadge(id string) bool {
	for _, b := range w.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// ActivityGoal is something the user plans to do at the beach.
type ActivityGoal string

const (
	GoalSwim        ActivityGoal = "swim"
	GoalPhotography ActivityGoal = "photography"
	GoalSurf        ActivityGoal = "surf"
	GoalRelax       ActivityGoal = "relax"
	GoalTidepool    ActivityGoal = "tidepool"
)

// TempRange is the user's comfortable feels-like band in Fahrenheit.
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max" validate:"gtefield=Min"`
}

// UserPreferences alter the weighting and the temperature and wind curves.
type UserPreferences struct {
	TempRange     Optional[TempRange] `json:"temp_range"`
	WindTolerance Optional[float64]   `json:"wind_tolerance"`
	ActivityGoals []ActivityGoal      `json:"activity_goals" validate:"max=10,dive,oneof=swim photography surf relax tidepool"`
}

// HasGoal reports whether the preferences include goal.
func (p UserPreferences) HasGoal(goal ActivityGoal) bool {
	for _, g := range p.ActivityGoals {
		if g == goal {
			return true
		}
	}
	return false
}
