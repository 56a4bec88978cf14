package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/photofolio/server/internal/models"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/repository"
)

// AppState is one visitor's page state. Mutators update the state and
// persist it before returning.
type AppState struct {
	mu    sync.Mutex
	store repository.PreferencesRepo
	prefs *models.Preferences
}

// LoadAppState reads the visitor's persisted preferences, defaulting
// to the dark theme when there are none.
func LoadAppState(ctx context.Context, store repository.PreferencesRepo, visitorID string) (*AppState, error) {
	prefs, err := store.Get(ctx, visitorID)
	if errors.Is(err, models.ErrPreferencesNotFound) {
		prefs = models.NewPreferences(visitorID)
	} else if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	return &AppState{store: store, prefs: prefs}, nil
}

// Theme returns the current theme
func (a *AppState) Theme() models.Theme {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.prefs.Theme
}

// VisitorID returns the visitor the state belongs to
func (a *AppState) VisitorID() string {
	return a.prefs.VisitorID
}

// SetTheme switches to theme and persists it; on a failed write the
// previous theme is kept.
func (a *AppState) SetTheme(ctx context.Context, theme models.Theme) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	previous := a.prefs.Theme
	a.prefs.Theme = theme
	if err := a.store.Upsert(ctx, a.prefs); err != nil {
		a.prefs.Theme = previous
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// ToggleTheme flips between dark and light and persists the result
func (a *AppState) ToggleTheme(ctx context.Context) (models.Theme, error) {
	next := a.Theme().Toggled()
	if err := a.SetTheme(ctx, next); err != nil {
		return a.Theme(), err
	}
	return next, nil
}

// PreferencesService loads and changes visitor preferences, telling the
// visitor's other open tabs when the theme changes.
type PreferencesService struct {
	repo    repository.PreferencesRepo
	hub     *WebSocketHub
	metrics *observability.GalleryMetrics
}

// NewPreferencesService creates a preferences service; hub and metrics may be nil
func NewPreferencesService(repo repository.PreferencesRepo, hub *WebSocketHub, metrics *observability.GalleryMetrics) *PreferencesService {
	return &PreferencesService{repo: repo, hub: hub, metrics: metrics}
}

// Load returns the visitor's state
func (s *PreferencesService) Load(ctx context.Context, visitorID string) (*AppState, error) {
	return LoadAppState(ctx, s.repo, visitorID)
}

// SetTheme stores an explicit theme choice
func (s *PreferencesService) SetTheme(ctx context.Context, visitorID string, theme models.Theme) (models.Theme, error) {
	state, err := s.Load(ctx, visitorID)
	if err != nil {
		return "", err
	}
	if err := state.SetTheme(ctx, theme); err != nil {
		return "", err
	}
	s.changed(ctx, visitorID, theme)
	return theme, nil
}

// ToggleTheme flips the visitor's theme
func (s *PreferencesService) ToggleTheme(ctx context.Context, visitorID string) (models.Theme, error) {
	state, err := s.Load(ctx, visitorID)
	if err != nil {
		return "", err
	}
	theme, err := state.ToggleTheme(ctx)
	if err != nil {
		return "", err
	}
	s.changed(ctx, visitorID, theme)
	return theme, nil
}

func (s *PreferencesService) changed(ctx context.Context, visitorID string, theme models.Theme) {
	s.metrics.RecordThemeChange(ctx, string(theme))
	if s.hub != nil {
		s.hub.SendToVisitor(visitorID, WSMessage{
			Type:    WSTypeThemeChanged,
			Payload: ThemeChangedPayload{Theme: string(theme)},
		})
	}
}
