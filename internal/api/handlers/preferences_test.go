package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beachscore/internal/core"
	"beachscore/internal/types"
)

type mockPreferences struct{ mock.Mock }

func (m *mockPreferences) StoredPreferences(ctx context.Context, userID string) (types.UserPreferences, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(types.UserPreferences)
	return p, args.Error(1)
}

func (m *mockPreferences) SavePreferences(ctx context.Context, userID string, p types.UserPreferences) error {
	return m.Called(ctx, userID, p).Error(0)
}

func newPreferencesRouter(svc PreferencesService) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/preferences", NewPreferencesHandler(svc, core.NewValidator(testLogger()), testLogger()).RegisterRoutes)
	return r
}

func TestPreferencesGet(t *testing.T) {
	svc := &mockPreferences{}
	svc.On("StoredPreferences", mock.Anything, "user-1").Return(types.UserPreferences{
		WindTolerance: types.Some(12.0),
		ActivityGoals: []types.ActivityGoal{types.GoalSurf},
	}, nil)

	rec := serve(newPreferencesRouter(svc), http.MethodGet, "/v1/preferences/user-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"temp_range":null,"wind_tolerance":12,"activity_goals":["surf"]}}`, rec.Body.String())
}

func TestPreferencesGet_NotFound(t *testing.T) {
	svc := &mockPreferences{}
	svc.On("StoredPreferences", mock.Anything, "ghost").
		Return(nil, types.NewAppError(types.ErrCodeNotFoundPreferences, "no preferences stored", nil))

	rec := serve(newPreferencesRouter(svc), http.MethodGet, "/v1/preferences/ghost", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found_preferences", decodeError(t, rec).Code)
}

func TestPreferencesPut(t *testing.T) {
	want := types.UserPreferences{
		TempRange:     types.Some(types.TempRange{Min: 72, Max: 86}),
		ActivityGoals: []types.ActivityGoal{types.GoalSwim, types.GoalRelax},
	}
	svc := &mockPreferences{}
	svc.On("SavePreferences", mock.Anything, "user-1", want).Return(nil)

	body := `{"temp_range":{"min":72,"max":86},"activity_goals":["swim","relax"]}`
	rec := serve(newPreferencesRouter(svc), http.MethodPut, "/v1/preferences/user-1", strings.NewReader(body))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct{ Data types.UserPreferences }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, want, resp.Data)
	svc.AssertExpectations(t)
}

func TestPreferencesPut_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		code   string
	}{
		{"oversized user id", "/v1/preferences/" + strings.Repeat("x", 129), `{}`, "validation_invalid_parameter"},
		{"malformed body", "/v1/preferences/user-1", `{"temp_range":`, "validation_invalid_json"},
		{"inverted range", "/v1/preferences/user-1", `{"temp_range":{"min":90,"max":60}}`, "validation_invalid_preferences"},
		{"negative tolerance", "/v1/preferences/user-1", `{"wind_tolerance":-3}`, "validation_invalid_preferences"},
		{"unknown goal", "/v1/preferences/user-1", `{"activity_goals":["sail"]}`, "validation_invalid_parameter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPreferences{}
			rec := serve(newPreferencesRouter(svc), http.MethodPut, tt.target, strings.NewReader(tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
			svc.AssertNotCalled(t, "SavePreferences", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPreferencesPut_StoreFailure(t *testing.T) {
	svc := &mockPreferences{}
	svc.On("SavePreferences", mock.Anything, "user-1", mock.Anything).
		Return(types.NewAppError(types.ErrCodeInternalDB, "database unavailable", nil))

	rec := serve(newPreferencesRouter(svc), http.MethodPut, "/v1/preferences/user-1", strings.NewReader(`{}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_database_error", decodeError(t, rec).Code)
}
