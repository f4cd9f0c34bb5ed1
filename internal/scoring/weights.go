package scoring

import "beachscore/internal/types"

// ResolveWeights derives the weights for one call. Without preferences the
// configured defaults are returned as-is (renormalised if an override left
// them off 1.0). Activity goals shift weight before renormalisation.
func (c Config) ResolveWeights(prefs types.Optional[types.UserPreferences]) types.ScoreWeights {
	w := c.Weights

	if p, ok := prefs.Get(); ok {
		if p.HasGoal(types.GoalPhotography) {
			w.Weather += c.Goals.PhotographyWeather
			w.UV += c.Goals.PhotographyUV
		}
		if p.HasGoal(types.GoalSwim) {
			w.Tide += c.Goals.SwimTide
			w.Temp += c.Goals.SwimTemp
			w.Wind += c.Goals.SwimWind
		}
	}

	if n, ok := w.Normalize(); ok {
		return n
	}
	if n, ok := c.Weights.Normalize(); ok {
		return n
	}
	return DefaultConfig().Weights
}
