package types

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreWeights_Normalize(t *testing.T) {
	w, ok := ScoreWeights{Temp: 3, UV: 1, Wind: 1, Tide: 0, Weather: 0}.Normalize()
	assert.True(t, ok)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.6, w.Temp, 1e-9)
	assert.InDelta(t, 0.2, w.UV, 1e-9)
}

func TestScoreWeights_NormalizeClampsNegatives(t *testing.T) {
	w, ok := ScoreWeights{Temp: 0.5, UV: -0.5, Wind: 0.5, Tide: 0, Weather: 0}.Normalize()
	assert.True(t, ok)
	assert.Zero(t, w.UV)
	assert.InDelta(t, 0.5, w.Temp, 1e-9)
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
}

func TestScoreWeights_NormalizeRejectsEmpty(t *testing.T) {
	_, ok := ScoreWeights{}.Normalize()
	assert.False(t, ok)

	_, ok = ScoreWeights{Temp: math.Inf(1)}.Normalize()
	assert.False(t, ok)
}

func TestWindow_Contains(t *testing.T) {
	start := time.Date(2026, 7, 4, 12, 0, 0, 0, time.UTC)
	w := Window{StartTime: start, EndTime: start.Add(3 * time.Hour)}

	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(3*time.Hour)))
	assert.False(t, w.Contains(start.Add(-time.Second)))
	assert.False(t, w.Contains(start.Add(3*time.Hour+time.Second)))
}

func TestUserPreferences_HasGoal(t *testing.T) {
	p := UserPreferences{ActivityGoals: []ActivityGoal{GoalSwim}}
	assert.True(t, p.HasGoal(GoalSwim))
	assert.False(t, p.HasGoal(GoalPhotography))
}

func TestTideType_IsValid(t *testing.T) {
	for _, tt := range ValidTideTypes {
		assert.True(t, tt.IsValid(), tt)
	}
	assert.False(t, TideType("ebb").IsValid())
	assert.False(t, TideType("").IsValid())
}
