package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"beachscore/internal/types"
)

// PreferencesRepository stores one UserPreferences row per user in the
// user_preferences table. Optional fields map to nullable columns.
type PreferencesRepository struct {
	db DBTX
}

// NewPreferencesRepository creates a PreferencesRepository.
func NewPreferencesRepository(db DBTX) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the stored preferences for userID, or a not_found_preferences
// error when the user has none.
func (r *PreferencesRepository) Get(ctx context.Context, userID string) (types.UserPreferences, error) {
	var (
		tempMin, tempMax, windTolerance *float64
		goals                           []string
	)
	err := r.db.QueryRow(ctx,
		`SELECT temp_min, temp_max, wind_tolerance, activity_goals
		 FROM user_preferences WHERE user_id = $1`,
		userID,
	).Scan(&tempMin, &tempMax, &windTolerance, &goals)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.UserPreferences{}, types.NewAppErrorWithDetails(
				types.ErrCodeNotFoundPreferences,
				"preferences not found",
				nil,
				map[string]any{"user_id": userID},
			)
		}
		return types.UserPreferences{}, types.NewAppError(types.ErrCodeInternalDB, "failed to load preferences", err)
	}

	var p types.UserPreferences
	if tempMin != nil && tempMax != nil {
		p.TempRange = types.Some(types.TempRange{Min: *tempMin, Max: *tempMax})
	}
	if windTolerance != nil {
		p.WindTolerance = types.Some(*windTolerance)
	}
	for _, g := range goals {
		p.ActivityGoals = append(p.ActivityGoals, types.ActivityGoal(g))
	}
	return p, nil
}

// Upsert inserts or replaces the preferences for userID.
func (r *PreferencesRepository) Upsert(ctx context.Context, userID string, p types.UserPreferences) error {
	var tempMin, tempMax, windTolerance *float64
	if tr, ok := p.TempRange.Get(); ok {
		tempMin, tempMax = &tr.Min, &tr.Max
	}
	if wt, ok := p.WindTolerance.Get(); ok {
		windTolerance = &wt
	}
	goals := make([]string, 0, len(p.ActivityGoals))
	for _, g := range p.ActivityGoals {
		goals = append(goals, string(g))
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO user_preferences (user_id, temp_min, temp_max, wind_tolerance, activity_goals, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   temp_min = EXCLUDED.temp_min,
		   temp_max = EXCLUDED.temp_max,
		   wind_tolerance = EXCLUDED.wind_tolerance,
		   activity_goals = EXCLUDED.activity_goals,
		   updated_at = EXCLUDED.updated_at`,
		userID, tempMin, tempMax, windTolerance, goals, time.Now().UTC(),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to save preferences", err)
	}
	return nil
}

// Ping checks connectivity. It backs the readiness probe.
func (r *PreferencesRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "database unreachable", err)
	}
	return nil
}
