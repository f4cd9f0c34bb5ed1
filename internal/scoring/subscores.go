package scoring

import (
	"math"

	"beachscore/internal/types"
)

// TempScore scores a feels-like temperature. A user TempRange replaces the
// default bands with a curve centred on the range midpoint.
func (c Config) TempScore(feelsLike float64, preferred types.Optional[types.TempRange]) float64 {
	if tr, ok := preferred.Get(); ok {
		return c.preferredTempScore(feelsLike, tr)
	}

	b := c.Temp
	switch {
	case feelsLike >= b.OptimalMin && feelsLike <= b.OptimalMax:
		return 100
	case feelsLike >= b.GoodMin && feelsLike <= b.GoodMax:
		var dist float64
		if feelsLike < b.OptimalMin {
			dist = b.OptimalMin - feelsLike
		} else {
			dist = feelsLike - b.OptimalMax
		}
		return clampScore(100 - b.GoodTaper*dist)
	case feelsLike >= b.AcceptableMin && feelsLike <= b.AcceptableMax:
		return b.AcceptableScore
	case feelsLike >= b.PoorMin && feelsLike <= b.PoorMax:
		return b.PoorScore
	default:
		return b.FallbackScore
	}
}

func (c Config) preferredTempScore(t float64, tr types.TempRange) float64 {
	p := c.Preference
	switch {
	case t < tr.Min:
		return math.Max(0, p.OutsideStart-p.OutsidePerDegree*(tr.Min-t))
	case t > tr.Max:
		return math.Max(0, p.OutsideStart-p.OutsidePerDegree*(t-tr.Max))
	case t >= tr.Min && t <= tr.Max:
		half := (tr.Max - tr.Min) / 2
		if half <= 0 {
			return 100
		}
		mid := tr.Min + half
		return clampScore(100 - p.EdgeDrop*math.Abs(t-mid)/half)
	default:
		// NaN feels-like temperature.
		return 0
	}
}

// UVScore is a step function that never increases with UV index.
func (c Config) UVScore(uvIndex float64) float64 {
	return c.UV.Lookup(uvIndex)
}

// EffectiveWind is the gust when it exceeds sustained speed by more than
// GustMargin, otherwise the sustained speed.
func (c Config) EffectiveWind(speed float64, gust types.Optional[float64]) float64 {
	if g, ok := gust.Get(); ok && g-speed > c.Wind.GustMargin {
		return g
	}
	return speed
}

// WindScore scores an effective wind speed. Anything above the tolerance
// ceiling is clamped to OverToleranceScore regardless of the step table.
func (c Config) WindScore(effective float64, tolerance types.Optional[float64]) float64 {
	ceiling := tolerance.OrElse(c.Wind.DefaultTolerance)
	if effective > ceiling {
		return c.Wind.OverToleranceScore
	}
	return c.Wind.Steps.Lookup(effective)
}

// TideScore maps the tide state to a fixed score; unrecognized states score 80.
func (c Config) TideScore(tide types.TideType) float64 {
	switch tide {
	case types.TideSlack:
		return 100
	case types.TideLow:
		return 90
	case types.TideRising, types.TideFalling:
		return 80
	case types.TideHigh:
		return 70
	default:
		return 80
	}
}

// WeatherScore takes the category table score and subtracts the cloud
// penalty when a nominally bright sky is heavily clouded.
func (c Config) WeatherScore(category WeatherCategory, cloudCover float64) float64 {
	base := category.BaseScore()
	if cloudCover > c.Weather.CloudPenaltyAbove && base > c.Weather.CloudPenaltyMinScore {
		base -= c.Weather.CloudPenalty
	}
	return clampScore(base)
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
