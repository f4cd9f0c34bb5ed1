// Package checklist derives a packing list from a scored window.
package checklist

import (
	"fmt"

	"beachscore/internal/scoring"
	"beachscore/internal/types"
)

// Category groups checklist items for display.
type Category string

const (
	CategorySun       Category = "sun"
	CategoryHydration Category = "hydration"
	CategoryClothing  Category = "clothing"
	CategoryGear      Category = "gear"
	CategorySafety    Category = "safety"
)

// Item is one thing to bring.
type Item struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Category  Category `json:"category"`
	Reason    string   `json:"reason"`
	Essential bool     `json:"essential"`
}

// Generator builds checklists. It reads wind and weather the same way the
// score engine does.
type Generator struct {
	cfg scoring.Config
}

// NewGenerator creates a Generator.
func NewGenerator(cfg scoring.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate returns the packing list for w. The list is never empty: a towel
// and water are always included.
func (g *Generator) Generate(w types.Window, prefs types.Optional[types.UserPreferences]) []Item {
	c := w.Conditions
	p, _ := prefs.Get()
	wind := g.cfg.EffectiveWind(c.WindSpeed, c.WindGust)
	weather := scoring.ClassifyWeather(c.WeatherCode)
	night := w.HasBadge(scoring.BadgeNighttime)

	var items []Item
	add := func(it Item) { items = append(items, it) }

	if !night {
		spf := "SPF 15+"
		switch {
		case c.UVIndex >= g.cfg.Badges.HighUVFrom:
			spf = "SPF 50+"
		case c.UVIndex > g.cfg.Badges.LowUVAtOrBelow:
			spf = "SPF 30+"
		}
		add(Item{
			ID:        "sunscreen",
			Label:     "Sunscreen (" + spf + ")",
			Category:  CategorySun,
			Reason:    fmt.Sprintf("UV index %.0f", c.UVIndex),
			Essential: c.UVIndex > g.cfg.Badges.LowUVAtOrBelow,
		})
		if c.UVIndex >= g.cfg.Badges.ModerateUVFrom || weather.IsClear() {
			add(Item{ID: "hat", Label: "Hat", Category: CategorySun, Reason: "Strong sun"})
			add(Item{ID: "sunglasses", Label: "Sunglasses", Category: CategorySun, Reason: "Strong sun"})
		}
	}

	water := Item{ID: "water", Label: "Water", Category: CategoryHydration, Reason: "Stay hydrated"}
	if c.FeelsLike >= 85 {
		water.Label = "Extra water"
		water.Reason = fmt.Sprintf("Feels like %.0f°F", c.FeelsLike)
		water.Essential = true
	}
	add(water)

	if c.FeelsLike < g.cfg.Badges.ColdBelow {
		add(Item{
			ID:        "layers",
			Label:     "Warm layers",
			Category:  CategoryClothing,
			Reason:    fmt.Sprintf("Feels like %.0f°F", c.FeelsLike),
			Essential: true,
		})
	}
	if wind >= g.cfg.Badges.BreezyFrom {
		add(Item{
			ID:       "windbreaker",
			Label:    "Windbreaker",
			Category: CategoryClothing,
			Reason:   fmt.Sprintf("Wind %.0f mph", wind),
		})
	}

	switch {
	case weather.IsStorm():
		add(Item{ID: "rain-jacket", Label: "Rain jacket", Category: CategoryClothing, Reason: "Thunderstorms forecast", Essential: true})
		add(Item{ID: "lightning-plan", Label: "Shelter plan", Category: CategorySafety, Reason: "Leave the beach at the first thunder", Essential: true})
	case weather.IsRain():
		add(Item{ID: "rain-jacket", Label: "Rain jacket", Category: CategoryClothing, Reason: "Rain forecast"})
		add(Item{ID: "umbrella", Label: "Umbrella", Category: CategoryGear, Reason: "Rain forecast"})
	}

	add(Item{ID: "towel", Label: "Towel", Category: CategoryGear, Reason: "Always"})

	if p.HasGoal(types.GoalSwim) {
		add(Item{ID: "swimsuit", Label: "Swimsuit", Category: CategoryClothing, Reason: "Planning to swim", Essential: true})
	}
	if p.HasGoal(types.GoalSurf) && c.FeelsLike < 75 {
		add(Item{ID: "wetsuit", Label: "Wetsuit", Category: CategoryClothing, Reason: "Cool conditions for surfing"})
	}
	if p.HasGoal(types.GoalPhotography) {
		add(Item{ID: "camera", Label: "Camera", Category: CategoryGear, Reason: "Photography"})
	}
	if c.TideType == types.TideLow || p.HasGoal(types.GoalTidepool) {
		add(Item{ID: "tide-chart", Label: "Tide chart", Category: CategoryGear, Reason: "Time the low water"})
		add(Item{ID: "water-shoes", Label: "Water shoes", Category: CategoryGear, Reason: "Rocky tide pools"})
	}
	if night {
		add(Item{ID: "flashlight", Label: "Flashlight", Category: CategorySafety, Reason: "After dark", Essential: true})
	}

	return items
}
