package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"beachscore/internal/checklist"
	"beachscore/internal/core"
	"beachscore/internal/recommend"
	"beachscore/internal/types"
)

type mockRecommendations struct{ mock.Mock }

func (m *mockRecommendations) Beaches() []types.Beach {
	return m.Called().Get(0).([]types.Beach)
}

func (m *mockRecommendations) Beach(id string) (types.Beach, error) {
	args := m.Called(id)
	b, _ := args.Get(0).(types.Beach)
	return b, args.Error(1)
}

func (m *mockRecommendations) Recommend(ctx context.Context, beachID string, q recommend.Query) (*recommend.Recommendation, error) {
	args := m.Called(ctx, beachID, q)
	rec, _ := args.Get(0).(*recommend.Recommendation)
	return rec, args.Error(1)
}

func (m *mockRecommendations) Checklist(ctx context.Context, beachID string, q recommend.Query) (*recommend.ChecklistResult, error) {
	args := m.Called(ctx, beachID, q)
	res, _ := args.Get(0).(*recommend.ChecklistResult)
	return res, args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBeachRouter(svc RecommendationService) http.Handler {
	r := chi.NewRouter()
	r.Route("/v1/beaches", NewBeachHandler(svc, testLogger()).RegisterRoutes)
	return r
}

func serve(h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) core.ErrorDetail {
	t.Helper()
	var body core.APIErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

var duck = types.Beach{ID: "duck", Name: "Duck", Lat: 36.17, Lon: -75.75, TideStationID: "8651370"}

func TestBeachList(t *testing.T) {
	svc := &mockRecommendations{}
	svc.On("Beaches").Return([]types.Beach{duck})

	rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct{ Data []types.Beach }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []types.Beach{duck}, body.Data)
}

func TestBeachGet_NotFound(t *testing.T) {
	svc := &mockRecommendations{}
	svc.On("Beach", "atlantis").Return(nil, types.NewAppError(types.ErrCodeNotFoundBeach, "beach not found", nil))

	rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/atlantis", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found_beach", decodeError(t, rec).Code)
}

func TestBeachWindows_ParsesQuery(t *testing.T) {
	start := time.Date(2026, 7, 4, 15, 0, 0, 0, time.UTC)
	win := types.Window{ID: "w1", StartTime: start, EndTime: start.Add(2 * time.Hour), Score: 88, IsGoNow: true}
	svc := &mockRecommendations{}
	svc.On("Recommend", mock.Anything, "duck", recommend.Query{UserID: "u1", Duration: 90 * time.Minute, Count: 4}).
		Return(&recommend.Recommendation{
			Beach:     duck,
			Windows:   []types.Window{win},
			GoNow:     &win,
			Best:      &win,
			Checklist: []checklist.Item{{ID: "towel"}},
		}, nil)

	rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/duck/windows?user_id=u1&duration_hours=1.5&count=4", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct{ Data recommend.Recommendation }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data.Windows, 1)
	assert.Equal(t, 88, body.Data.Windows[0].Score)
	require.NotNil(t, body.Data.GoNow)
	assert.Equal(t, "w1", body.Data.GoNow.ID)
	assert.Equal(t, "private, max-age=300", rec.Header().Get("Cache-Control"))
	svc.AssertExpectations(t)
}

func TestBeachWindows_RejectsBadQuery(t *testing.T) {
	tests := map[string]string{
		"zero duration":    "duration_hours=0",
		"long duration":    "duration_hours=25",
		"nan duration":     "duration_hours=NaN",
		"text duration":    "duration_hours=soon",
		"zero count":       "count=0",
		"large count":      "count=49",
		"fractional count": "count=2.5",
		"long user":        "user_id=" + strings.Repeat("u", 129),
	}

	for name, query := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &mockRecommendations{}
			rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/duck/windows?"+query, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation_invalid_parameter", decodeError(t, rec).Code)
			svc.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestBeachWindows_UpstreamFailure(t *testing.T) {
	svc := &mockRecommendations{}
	svc.On("Recommend", mock.Anything, "duck", recommend.Query{}).
		Return(nil, types.NewAppError(types.ErrCodeUpstreamWeather, "weather provider unavailable", nil))

	rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/duck/windows", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_weather_unavailable", decodeError(t, rec).Code)
}

func TestBeachChecklist(t *testing.T) {
	svc := &mockRecommendations{}
	svc.On("Checklist", mock.Anything, "duck", recommend.Query{}).Return(&recommend.ChecklistResult{
		BeachID: "duck",
		Items:   []checklist.Item{{ID: "water", Essential: true}},
	}, nil)

	rec := serve(newBeachRouter(svc), http.MethodGet, "/v1/beaches/duck/checklist", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct{ Data recommend.ChecklistResult }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "water", body.Data.Items[0].ID)
}
