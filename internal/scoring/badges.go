package scoring

import (
	"fmt"

	"beachscore/internal/types"
)

// Badge IDs. At most one badge per category is attached to a window.
const (
	BadgePerfectTemp = "temp-perfect"
	BadgeCold        = "temp-cold"
	BadgeHot         = "temp-hot"
	BadgeLowUV       = "uv-low"
	BadgeModerateUV  = "uv-moderate"
	BadgeHighUV      = "uv-high"
	BadgeCalm        = "wind-calm"
	BadgeBreezy      = "wind-breezy"
	BadgeVeryWindy   = "wind-very-windy"
	BadgeSlackTide   = "tide-slack"
	BadgeLowTide     = "tide-low"
	BadgeClearSkies  = "weather-clear"
	BadgeRain        = "weather-rain"
	BadgeStorm       = "weather-storm"
	BadgeNighttime   = "nighttime"
)

// NighttimeBadge is attached by the window generator to suppressed windows.
func NighttimeBadge() types.Badge {
	return types.Badge{ID: BadgeNighttime, Label: "Nighttime", Icon: "🌙", Type: types.BadgeNegative}
}

// badgeInputs are the values badge selection reads. Temperature, UV and wind
// mirror the sub-score inputs; the rest come straight off the snapshot.
type badgeInputs struct {
	feelsLike     float64
	tempScore     float64
	uvIndex       float64
	effectiveWind float64
	tide          types.TideType
	weather       WeatherCategory
}

// badges evaluates temperature, UV, wind, tide and weather in that order.
// Mid-range values produce no badge.
func (c Config) badges(in badgeInputs) []types.Badge {
	t := c.Badges
	out := make([]types.Badge, 0, 5)

	switch {
	case in.tempScore >= t.PerfectTempScore:
		out = append(out, types.Badge{ID: BadgePerfectTemp, Label: "Perfect temp", Icon: "🌡️", Type: types.BadgePositive})
	case in.feelsLike < t.ColdBelow:
		out = append(out, types.Badge{ID: BadgeCold, Label: "Chilly", Icon: "🥶", Type: types.BadgeWarning})
	case in.feelsLike >= t.HotAtOrAbove && in.tempScore < t.HotMaxTempScore:
		out = append(out, types.Badge{ID: BadgeHot, Label: "Very hot", Icon: "🥵", Type: types.BadgeWarning})
	}

	switch {
	case in.uvIndex <= t.LowUVAtOrBelow:
		out = append(out, types.Badge{ID: BadgeLowUV, Label: "Low UV", Icon: "😎", Type: types.BadgePositive})
	case in.uvIndex >= t.HighUVFrom:
		out = append(out, types.Badge{
			ID:    BadgeHighUV,
			Label: fmt.Sprintf("High UV (%.0f) - SPF 50+", in.uvIndex),
			Icon:  "🧴",
			Type:  types.BadgeWarning,
		})
	case in.uvIndex >= t.ModerateUVFrom:
		out = append(out, types.Badge{ID: BadgeModerateUV, Label: "Moderate UV - wear sunscreen", Icon: "🧴", Type: types.BadgeNeutral})
	}

	switch {
	case in.effectiveWind < t.CalmBelow:
		out = append(out, types.Badge{ID: BadgeCalm, Label: "Gentle breeze", Icon: "🍃", Type: types.BadgePositive})
	case in.effectiveWind >= t.VeryWindyFrom:
		out = append(out, types.Badge{
			ID:    BadgeVeryWindy,
			Label: fmt.Sprintf("Very windy (%.0f mph)", in.effectiveWind),
			Icon:  "💨",
			Type:  types.BadgeWarning,
		})
	case in.effectiveWind >= t.BreezyFrom:
		out = append(out, types.Badge{ID: BadgeBreezy, Label: "Breezy", Icon: "🌬️", Type: types.BadgeWarning})
	}

	switch in.tide {
	case types.TideSlack:
		out = append(out, types.Badge{ID: BadgeSlackTide, Label: "Slack tide - calm water", Icon: "🌊", Type: types.BadgePositive})
	case types.TideLow:
		out = append(out, types.Badge{ID: BadgeLowTide, Label: "Low tide - tide pools", Icon: "🐚", Type: types.BadgePositive})
	}

	switch {
	case in.weather.IsClear():
		out = append(out, types.Badge{ID: BadgeClearSkies, Label: "Clear skies", Icon: "☀️", Type: types.BadgePositive})
	case in.weather.IsRain():
		out = append(out, types.Badge{ID: BadgeRain, Label: "Rain expected", Icon: "🌧️", Type: types.BadgeNegative})
	case in.weather.IsStorm():
		out = append(out, types.Badge{ID: BadgeStorm, Label: "Thunderstorms", Icon: "⛈️", Type: types.BadgeNegative})
	}

	return out
}
