package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/photofolio/server/internal/models"
)

type exifCacheRepository struct {
	db DBTX
}

// NewExifCacheRepository creates an EXIF cache repository
func NewExifCacheRepository(db DBTX) ExifCacheRepo {
	return &exifCacheRepository{db: db}
}

// Get returns the cached entry for an asset, or nil when there is none
func (r *exifCacheRepository) Get(ctx context.Context, assetID string) (*models.BinaryExif, error) {
	query := `
		SELECT asset_id, tags, width, height, extracted_at
		FROM exif_cache
		WHERE asset_id = $1
	`

	var entry models.BinaryExif
	var tags string
	err := r.db.QueryRowContext(ctx, query, assetID).Scan(
		&entry.AssetID,
		&tags,
		&entry.Width,
		&entry.Height,
		&entry.ExtractedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
		return nil, fmt.Errorf("decode cached tags for %s: %w", assetID, err)
	}

	return &entry, nil
}

// Put stores or replaces the entry for an asset
func (r *exifCacheRepository) Put(ctx context.Context, entry *models.BinaryExif) error {
	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO exif_cache (asset_id, tags, width, height, extracted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (asset_id) DO UPDATE
		SET tags = excluded.tags,
		    width = excluded.width,
		    height = excluded.height,
		    extracted_at = excluded.extracted_at
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.AssetID,
		string(tags),
		entry.Width,
		entry.Height,
		entry.ExtractedAt,
	)
	return err
}

// Prune drops entries extracted before the cutoff and reports how many went
func (r *exifCacheRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM exif_cache WHERE extracted_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
