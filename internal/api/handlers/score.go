package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"beachscore/internal/core"
	"beachscore/internal/scoring"
	"beachscore/internal/types"
	"beachscore/internal/windows"
)

// ScoreRequest is the body of POST /v1/score.
type ScoreRequest struct {
	Conditions  types.ConditionSnapshot               `json:"conditions" validate:"required"`
	Preferences types.Optional[types.UserPreferences] `json:"preferences"`
}

// WindowsRequest is the body of POST /v1/windows.
type WindowsRequest struct {
	Snapshots     []types.ConditionSnapshot             `json:"snapshots" validate:"required,dive"`
	DurationHours float64                               `json:"duration_hours" validate:"gte=0,lte=24"`
	Count         int                                   `json:"count" validate:"gte=0,lte=200"`
	Preferences   types.Optional[types.UserPreferences] `json:"preferences"`
}

// WindowsResponse is the body returned by POST /v1/windows.
type WindowsResponse struct {
	Windows []types.Window `json:"windows"`
	GoNow   *types.Window  `json:"go_now,omitempty"`
}

// ScoreHandler exposes the score engine and the window generator directly
// for clients that bring their own conditions.
type ScoreHandler struct {
	engine    *scoring.Engine
	generator *windows.Generator
	validator *core.Validator
	logger    *slog.Logger
}

func NewScoreHandler(engine *scoring.Engine, generator *windows.Generator, val *core.Validator, logger *slog.Logger) *ScoreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoreHandler{engine: engine, generator: generator, validator: val, logger: logger}
}

// RegisterRoutes mounts POST /score and POST /windows.
func (h *ScoreHandler) RegisterRoutes(r chi.Router) {
	r.Post("/score", h.HandleScore)
	r.Post("/windows", h.HandleWindows)
}

// HandleScore handles POST /v1/score.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validatePreferences(req.Preferences); err != nil {
		core.Error(w, r, err)
		return
	}

	core.Data(w, r, http.StatusOK, h.engine.Score(req.Conditions, req.Preferences))
}

// HandleWindows handles POST /v1/windows.
func (h *ScoreHandler) HandleWindows(w http.ResponseWriter, r *http.Request) {
	var req WindowsRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if len(req.Snapshots) > types.MaxSnapshots {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("at most %d snapshots per request", types.MaxSnapshots),
			nil,
			map[string]any{"received": len(req.Snapshots)},
		))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validatePreferences(req.Preferences); err != nil {
		core.Error(w, r, err)
		return
	}

	ws := h.generator.Generate(req.Snapshots, windows.Options{
		Duration:    time.Duration(req.DurationHours * float64(time.Hour)),
		Count:       req.Count,
		Preferences: req.Preferences,
	})

	resp := WindowsResponse{Windows: ws}
	if gn, ok := windows.GoNow(ws); ok {
		resp.GoNow = &gn
	}
	core.Data(w, r, http.StatusOK, resp)
}

// validatePreferences runs the struct rules and the cross-field checks on
// optional preferences.
func (h *ScoreHandler) validatePreferences(opt types.Optional[types.UserPreferences]) error {
	p, ok := opt.Get()
	if !ok {
		return nil
	}
	return checkPreferences(h.validator, p)
}

func checkPreferences(v *core.Validator, p types.UserPreferences) error {
	if err := v.ValidateStruct(p); err != nil {
		return err
	}
	if err := types.ValidatePreferences(p); err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidPreferences, err.Error(), err)
	}
	return nil
}
