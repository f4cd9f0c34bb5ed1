package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beachscore/internal/types"
)

func requestWithID(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(types.WithRequestID(req.Context(), id))
}

func TestData_WrapsInEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Data(rec, requestWithID("r1"), http.StatusCreated, map[string]int{"score": 93})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"score":93}}`, rec.Body.String())
}

func TestJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, requestWithID("r2"), http.StatusOK, map[string]float64{"bad": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_id":"r2"`)
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", types.NewAppError(types.ErrCodeValidationInvalidParam, "bad count", nil), http.StatusBadRequest, "validation_invalid_parameter"},
		{"not found", types.NewAppError(types.ErrCodeNotFoundBeach, "beach not found", nil), http.StatusNotFound, "not_found_beach"},
		{"upstream", types.NewAppError(types.ErrCodeUpstreamWeather, "weather down", nil), http.StatusBadGateway, "upstream_weather_unavailable"},
		{"wrapped", fmt.Errorf("handler: %w", types.NewAppError(types.ErrCodeNotFoundPreferences, "no prefs", nil)), http.StatusNotFound, "not_found_preferences"},
		{"generic", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal_unexpected_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, requestWithID("req-9"), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-9", body.Error.RequestID)
			assert.NotContains(t, rec.Body.String(), "password")
		})
	}
}

func TestError_IncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := types.NewAppErrorWithDetails(types.ErrCodeNotFoundBeach, "beach not found", nil, map[string]any{"beach_id": "atlantis"})
	Error(rec, requestWithID("r"), err)

	assert.Contains(t, rec.Body.String(), `"beach_id":"atlantis"`)
}

type decodeTarget struct {
	BeachID string  `json:"beach_id"`
	Count   int     `json:"count"`
	Score   float64 `json:"score"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"beach_id":"duck","count":4}`, ""},
		{"empty", ``, "must not be empty"},
		{"syntax", `{"beach_id":`, "malformed"},
		{"unknown field", `{"beach":"duck"}`, "unknown field"},
		{"type mismatch", `{"count":"four"}`, "invalid value"},
		{"trailing value", `{"count":1}{"count":2}`, "single JSON object"},
		{"too large", `{"beach_id":"` + strings.Repeat("a", maxRequestBodySize) + `"}`, "exceed 1MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(tt.body))
			var dst decodeTarget

			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, decodeTarget{BeachID: "duck", Count: 4}, dst)
				return
			}
			var appErr *types.AppError
			require.True(t, errors.As(err, &appErr), "want AppError, got %v", err)
			assert.Equal(t, types.ErrCodeValidationInvalidJSON, appErr.Code)
			assert.Contains(t, appErr.Message, tt.wantErr)
		})
	}
}

type validated struct {
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Count     int       `json:"count" validate:"gte=0,lte=48"`
	Inner     struct {
		Name string `json:"name" validate:"omitempty,oneof=a b"`
	} `json:"inner"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := NewValidator(discardLogger())

	ok := validated{Timestamp: time.Now(), Count: 8}
	assert.NoError(t, v.ValidateStruct(ok))

	t.Run("missing required", func(t *testing.T) {
		err := v.ValidateStruct(validated{Count: 1})
		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeValidationMissingField, appErr.Code)
		assert.Equal(t, map[string]string{"timestamp": "required"}, appErr.Details["fields"])
	})

	t.Run("out of range", func(t *testing.T) {
		bad := validated{Timestamp: time.Now(), Count: 49}
		bad.Inner.Name = "c"
		err := v.ValidateStruct(bad)
		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeValidationInvalidParam, appErr.Code)
		assert.Equal(t, map[string]string{"count": "lte=48", "inner.name": "oneof=a b"}, appErr.Details["fields"])
	})

	t.Run("non struct", func(t *testing.T) {
		err := v.ValidateStruct(42)
		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
	})
}
