// Package recommend ties the catalogue, live conditions, the window
// generator, the checklist and stored preferences into the recommendation
// read model served by the API and the go-now scanner.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"beachscore/internal/checklist"
	"beachscore/internal/types"
	"beachscore/internal/windows"
)

// BeachCatalogue resolves beach IDs.
type BeachCatalogue interface {
	List() []types.Beach
	Get(id string) (types.Beach, error)
}

// SnapshotSource produces the ordered forecast snapshots for a beach.
type SnapshotSource interface {
	Snapshots(ctx context.Context, beach types.Beach) ([]types.ConditionSnapshot, error)
}

// PreferencesStore persists per-user preferences.
type PreferencesStore interface {
	Get(ctx context.Context, userID string) (types.UserPreferences, error)
	Upsert(ctx context.Context, userID string, p types.UserPreferences) error
}

// Query narrows one recommendation request.
type Query struct {
	// UserID selects stored preferences. Empty means anonymous.
	UserID   string
	Duration time.Duration
	Count    int
}

// Recommendation is the scored outlook for one beach.
type Recommendation struct {
	Beach       types.Beach      `json:"beach"`
	Windows     []types.Window   `json:"windows"`
	GoNow       *types.Window    `json:"go_now,omitempty"`
	Best        *types.Window    `json:"best,omitempty"`
	Checklist   []checklist.Item `json:"checklist"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// ChecklistResult is the packing list for the window a visitor is most
// likely to pick.
type ChecklistResult struct {
	BeachID string           `json:"beach_id"`
	Window  *types.Window    `json:"window,omitempty"`
	Items   []checklist.Item `json:"items"`
}

// Service builds recommendations. It holds no mutable state.
type Service struct {
	catalogue BeachCatalogue
	source    SnapshotSource
	generator *windows.Generator
	checklist *checklist.Generator
	prefs     PreferencesStore
	clock     types.Clock
	logger    *slog.Logger
}

// NewService wires a Service. prefs may be nil, in which case every request
// is scored with default weights.
func NewService(
	catalogue BeachCatalogue,
	source SnapshotSource,
	generator *windows.Generator,
	checklistGen *checklist.Generator,
	prefs PreferencesStore,
	clock types.Clock,
	logger *slog.Logger,
) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalogue: catalogue,
		source:    source,
		generator: generator,
		checklist: checklistGen,
		prefs:     prefs,
		clock:     clock,
		logger:    logger,
	}
}

// Beaches lists the catalogue.
func (s *Service) Beaches() []types.Beach {
	return s.catalogue.List()
}

// Beach resolves one catalogue entry.
func (s *Service) Beach(id string) (types.Beach, error) {
	return s.catalogue.Get(id)
}

// Preferences loads the stored preferences for userID. Anonymous users and
// users without a saved row score with defaults.
func (s *Service) Preferences(ctx context.Context, userID string) (types.Optional[types.UserPreferences], error) {
	if userID == "" || s.prefs == nil {
		return types.None[types.UserPreferences](), nil
	}
	p, err := s.prefs.Get(ctx, userID)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundPreferences {
			return types.None[types.UserPreferences](), nil
		}
		return types.None[types.UserPreferences](), err
	}
	return types.Some(p), nil
}

// SavePreferences validates and stores p for userID.
func (s *Service) SavePreferences(ctx context.Context, userID string, p types.UserPreferences) error {
	if s.prefs == nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "preferences storage is not configured", nil)
	}
	if err := types.ValidatePreferences(p); err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidPreferences, err.Error(), err)
	}
	return s.prefs.Upsert(ctx, userID, p)
}

// StoredPreferences returns the saved row, or not_found_preferences.
func (s *Service) StoredPreferences(ctx context.Context, userID string) (types.UserPreferences, error) {
	if s.prefs == nil {
		return types.UserPreferences{}, types.NewAppError(types.ErrCodeNotFoundPreferences, "preferences not found", nil)
	}
	return s.prefs.Get(ctx, userID)
}

// Recommend fetches live conditions for beachID and scores them into windows
// with go-now, best window and checklist.
func (s *Service) Recommend(ctx context.Context, beachID string, q Query) (*Recommendation, error) {
	beach, err := s.catalogue.Get(beachID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.Preferences(ctx, q.UserID)
	if err != nil {
		return nil, err
	}

	snaps, err := s.source.Snapshots(ctx, beach)
	if err != nil {
		return nil, err
	}

	ws := s.generator.Generate(snaps, windows.Options{
		Duration:    q.Duration,
		Count:       q.Count,
		Preferences: prefs,
	})

	rec := &Recommendation{
		Beach:       beach,
		Windows:     ws,
		Checklist:   []checklist.Item{},
		GeneratedAt: s.clock.Now(),
	}
	if w, ok := windows.GoNow(ws); ok {
		rec.GoNow = &w
	}
	if w, ok := windows.BestWindow(ws); ok {
		rec.Best = &w
	}
	if target := focusWindow(rec); target != nil {
		rec.Checklist = s.checklist.Generate(*target, prefs)
	}

	s.logger.DebugContext(ctx, "recommendation built",
		slog.String("beach_id", beach.ID),
		slog.Int("windows", len(ws)),
		slog.Bool("go_now", rec.GoNow != nil),
	)
	return rec, nil
}

// Checklist returns the packing list for the go-now window, or the best
// window when nothing is on right now.
func (s *Service) Checklist(ctx context.Context, beachID string, q Query) (*ChecklistResult, error) {
	rec, err := s.Recommend(ctx, beachID, q)
	if err != nil {
		return nil, err
	}
	return &ChecklistResult{
		BeachID: rec.Beach.ID,
		Window:  focusWindow(rec),
		Items:   rec.Checklist,
	}, nil
}

func focusWindow(rec *Recommendation) *types.Window {
	if rec.GoNow != nil {
		return rec.GoNow
	}
	return rec.Best
}
