package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beachscore/internal/core"
	"beachscore/internal/types"
)

// PreferencesService stores per-user scoring preferences.
type PreferencesService interface {
	StoredPreferences(ctx context.Context, userID string) (types.UserPreferences, error)
	SavePreferences(ctx context.Context, userID string, p types.UserPreferences) error
}

// PreferencesHandler reads and replaces a user's preferences.
type PreferencesHandler struct {
	service   PreferencesService
	validator *core.Validator
	logger    *slog.Logger
}

func NewPreferencesHandler(svc PreferencesService, val *core.Validator, logger *slog.Logger) *PreferencesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreferencesHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts the handler under /preferences.
func (h *PreferencesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{userID}", h.HandleGet)
	r.Put("/{userID}", h.HandlePut)
}

// HandleGet handles GET /v1/preferences/{userID}.
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	p, err := h.service.StoredPreferences(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, p)
}

// HandlePut handles PUT /v1/preferences/{userID}. The body replaces the
// stored row.
func (h *PreferencesHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var p types.UserPreferences
	if err := core.DecodeJSON(w, r, &p); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := checkPreferences(h.validator, p); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.service.SavePreferences(r.Context(), userID, p); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to save preferences",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, p)
}

func userIDParam(r *http.Request) (string, error) {
	id := chi.URLParam(r, "userID")
	if id == "" || len(id) > maxUserIDLen {
		return "", invalidParam("user_id", "user_id must be 1-128 characters")
	}
	return id, nil
}
