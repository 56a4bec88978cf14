package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/photofolio/server/internal/models"
)

type preferencesRepository struct {
	db DBTX
}

// NewPreferencesRepository creates a preferences repository.
// Queries use $N placeholders, which both lib/pq and go-sqlite3 accept.
func NewPreferencesRepository(db DBTX) PreferencesRepo {
	return &preferencesRepository{db: db}
}

// Get retrieves preferences by visitor ID
func (r *preferencesRepository) Get(ctx context.Context, visitorID string) (*models.Preferences, error) {
	query := `
		SELECT visitor_id, theme, created_at, updated_at
		FROM preferences
		WHERE visitor_id = $1
	`

	var prefs models.Preferences
	var theme string
	err := r.db.QueryRowContext(ctx, query, visitorID).Scan(
		&prefs.VisitorID,
		&theme,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPreferencesNotFound
	}
	if err != nil {
		return nil, err
	}

	// a row written by an older build may hold a theme we no longer know
	if prefs.Theme, err = models.ParseTheme(theme); err != nil {
		prefs.Theme = models.DefaultTheme
	}

	return &prefs, nil
}

// Upsert creates or updates preferences
func (r *preferencesRepository) Upsert(ctx context.Context, prefs *models.Preferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = prefs.UpdatedAt
	}

	query := `
		INSERT INTO preferences (visitor_id, theme, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (visitor_id) DO UPDATE
		SET theme = excluded.theme,
		    updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		prefs.VisitorID,
		string(prefs.Theme),
		prefs.CreatedAt,
		prefs.UpdatedAt,
	)
	return err
}
