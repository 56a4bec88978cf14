package repository

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteDB creates and initializes a SQLite database
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// writes are rare (theme toggles, cache fills); one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- Visitor display preferences
	CREATE TABLE IF NOT EXISTS preferences (
		visitor_id TEXT PRIMARY KEY,
		theme TEXT NOT NULL DEFAULT 'dark',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	-- EXIF recovered from image bytes, keyed by content store asset id
	CREATE TABLE IF NOT EXISTS exif_cache (
		asset_id TEXT PRIMARY KEY,
		tags TEXT NOT NULL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		extracted_at DATETIME NOT NULL
	);
	`

	_, err := db.Exec(schema)
	return err
}
