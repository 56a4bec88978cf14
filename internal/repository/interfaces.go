package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/photofolio/server/internal/models"
)

// PhotoSource reads photo documents from the content store
type PhotoSource interface {
	ListPhotos(ctx context.Context) ([]*models.PhotoDocument, error)
	ImageURL(asset *models.ImageAsset, width int) string
}

// PreferencesRepo persists visitor preferences
type PreferencesRepo interface {
	Get(ctx context.Context, visitorID string) (*models.Preferences, error)
	Upsert(ctx context.Context, prefs *models.Preferences) error
}

// ExifCacheRepo remembers EXIF recovered from image bytes across render passes
type ExifCacheRepo interface {
	Get(ctx context.Context, assetID string) (*models.BinaryExif, error)
	Put(ctx context.Context, entry *models.BinaryExif) error
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// DBTX is satisfied by *sql.DB and *observability.TraceDB
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
