// Package handlers contains the HTTP handlers for the BeachScore API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"beachscore/internal/core"
	"beachscore/internal/recommend"
	"beachscore/internal/types"
)

const (
	maxWindowCount = 48
	maxUserIDLen   = 128
)

// RecommendationService is the slice of recommend.Service the beach routes use.
type RecommendationService interface {
	Beaches() []types.Beach
	Beach(id string) (types.Beach, error)
	Recommend(ctx context.Context, beachID string, q recommend.Query) (*recommend.Recommendation, error)
	Checklist(ctx context.Context, beachID string, q recommend.Query) (*recommend.ChecklistResult, error)
}

// BeachHandler serves the catalogue and live recommendations.
type BeachHandler struct {
	service RecommendationService
	logger  *slog.Logger
}

func NewBeachHandler(svc RecommendationService, logger *slog.Logger) *BeachHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BeachHandler{service: svc, logger: logger}
}

// RegisterRoutes mounts the handler under /beaches.
func (h *BeachHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{beachID}", h.HandleGet)
	r.Get("/{beachID}/windows", h.HandleWindows)
	r.Get("/{beachID}/checklist", h.HandleChecklist)
}

// HandleList handles GET /v1/beaches.
func (h *BeachHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	core.Data(w, r, http.StatusOK, h.service.Beaches())
}

// HandleGet handles GET /v1/beaches/{beachID}.
func (h *BeachHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	beach, err := h.service.Beach(chi.URLParam(r, "beachID"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, beach)
}

// HandleWindows handles GET /v1/beaches/{beachID}/windows with optional
// user_id, duration_hours and count query parameters.
func (h *BeachHandler) HandleWindows(w http.ResponseWriter, r *http.Request) {
	q, err := parseRecommendQuery(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	rec, err := h.service.Recommend(r.Context(), chi.URLParam(r, "beachID"), q)
	if err != nil {
		h.logFailure(r, err)
		core.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=300")
	core.Data(w, r, http.StatusOK, rec)
}

// HandleChecklist handles GET /v1/beaches/{beachID}/checklist.
func (h *BeachHandler) HandleChecklist(w http.ResponseWriter, r *http.Request) {
	q, err := parseRecommendQuery(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	res, err := h.service.Checklist(r.Context(), chi.URLParam(r, "beachID"), q)
	if err != nil {
		h.logFailure(r, err)
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, res)
}

func (h *BeachHandler) logFailure(r *http.Request, err error) {
	if types.ErrorCodeOf(err).HTTPStatus() >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "recommendation failed",
			slog.String("beach_id", chi.URLParam(r, "beachID")),
			slog.String("request_id", types.GetRequestID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
}

func parseRecommendQuery(r *http.Request) (recommend.Query, error) {
	values := r.URL.Query()
	q := recommend.Query{UserID: values.Get("user_id")}

	if len(q.UserID) > maxUserIDLen {
		return q, invalidParam("user_id", "user_id is too long")
	}
	if raw := values.Get("duration_hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(hours > 0 && hours <= types.MaxWindowDuration.Hours()) {
			return q, invalidParam("duration_hours", "duration_hours must be a number in (0, 24]")
		}
		q.Duration = time.Duration(hours * float64(time.Hour))
	}
	if raw := values.Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWindowCount {
			return q, invalidParam("count", "count must be an integer in [1, 48]")
		}
		q.Count = n
	}
	return q, nil
}

func invalidParam(param, msg string) error {
	return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidParam, msg, nil, map[string]any{"parameter": param})
}
