package checklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beachscore/internal/scoring"
	"beachscore/internal/types"
)

func window(mod func(c *types.ConditionSnapshot)) types.Window {
	c := types.ConditionSnapshot{
		Timestamp:   time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC),
		FeelsLike:   78,
		WeatherCode: "03d",
		WindSpeed:   8,
		UVIndex:     4,
		TideType:    types.TideRising,
	}
	if mod != nil {
		mod(&c)
	}
	return types.Window{StartTime: c.Timestamp, EndTime: c.Timestamp.Add(3 * time.Hour), Conditions: c}
}

func ids(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func find(t *testing.T, items []Item, id string) Item {
	t.Helper()
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	require.Failf(t, "item not found", "%s not in %v", id, ids(items))
	return Item{}
}

func newTestGenerator() *Generator {
	return NewGenerator(scoring.DefaultConfig())
}

func TestGenerate_Baseline(t *testing.T) {
	items := newTestGenerator().Generate(window(nil), types.None[types.UserPreferences]())

	assert.Equal(t, []string{"sunscreen", "water", "towel"}, ids(items))
	assert.Equal(t, "Sunscreen (SPF 30+)", find(t, items, "sunscreen").Label)
	assert.True(t, find(t, items, "sunscreen").Essential)
}

func TestGenerate_SunscreenStrength(t *testing.T) {
	tests := []struct {
		uv        float64
		label     string
		essential bool
	}{
		{1, "Sunscreen (SPF 15+)", false},
		{5, "Sunscreen (SPF 30+)", true},
		{9, "Sunscreen (SPF 50+)", true},
	}
	for _, tt := range tests {
		items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) { c.UVIndex = tt.uv }), types.None[types.UserPreferences]())
		s := find(t, items, "sunscreen")
		assert.Equal(t, tt.label, s.Label)
		assert.Equal(t, tt.essential, s.Essential)
	}
}

func TestGenerate_HotClearDay(t *testing.T) {
	items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) {
		c.FeelsLike = 92
		c.UVIndex = 8
		c.WeatherCode = "01d"
	}), types.None[types.UserPreferences]())

	assert.Contains(t, ids(items), "hat")
	assert.Contains(t, ids(items), "sunglasses")
	water := find(t, items, "water")
	assert.Equal(t, "Extra water", water.Label)
	assert.True(t, water.Essential)
}

func TestGenerate_ColdWindyRain(t *testing.T) {
	items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) {
		c.FeelsLike = 62
		c.WindSpeed = 12
		c.WindGust = types.Some(24.0)
		c.WeatherCode = "10d"
	}), types.None[types.UserPreferences]())

	got := ids(items)
	assert.Contains(t, got, "layers")
	assert.Contains(t, got, "windbreaker")
	assert.Contains(t, got, "rain-jacket")
	assert.Contains(t, got, "umbrella")
	assert.Equal(t, "Wind 24 mph", find(t, items, "windbreaker").Reason)
}

func TestGenerate_Storm(t *testing.T) {
	items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) { c.WeatherCode = "11n" }), types.None[types.UserPreferences]())

	assert.True(t, find(t, items, "lightning-plan").Essential)
	assert.NotContains(t, ids(items), "umbrella")
}

func TestGenerate_Goals(t *testing.T) {
	prefs := types.Some(types.UserPreferences{
		ActivityGoals: []types.ActivityGoal{types.GoalSwim, types.GoalPhotography, types.GoalSurf, types.GoalTidepool},
	})

	items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) { c.FeelsLike = 70 }), prefs)

	got := ids(items)
	for _, id := range []string{"swimsuit", "camera", "wetsuit", "tide-chart", "water-shoes"} {
		assert.Contains(t, got, id)
	}
}

func TestGenerate_LowTide(t *testing.T) {
	items := newTestGenerator().Generate(window(func(c *types.ConditionSnapshot) { c.TideType = types.TideLow }), types.None[types.UserPreferences]())

	assert.Contains(t, ids(items), "tide-chart")
}

func TestGenerate_Nighttime(t *testing.T) {
	w := window(nil)
	w.Badges = append(w.Badges, scoring.NighttimeBadge())

	items := newTestGenerator().Generate(w, types.None[types.UserPreferences]())

	got := ids(items)
	assert.Contains(t, got, "flashlight")
	assert.NotContains(t, got, "sunscreen")
}
