package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	apperrors "transcript-rag/internal/app/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	episode_title TEXT NOT NULL,
	speakers      TEXT NOT NULL DEFAULT '[]',
	source        TEXT NOT NULL DEFAULT '',
	summary       TEXT,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_episodes_title ON episodes (episode_title);
`

// Open opens (creating if needed) the database at path. ":memory:" is
// supported and pinned to one connection so every query sees the same data.
func Open(path string) (*sql.DB, error) {
	dsn := ":memory:"
	if path != ":memory:" && path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, apperrors.Store(err, "failed to create database directory")
		}
		dsn = fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.Store(err, "failed to open sqlite database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.Store(err, "failed to create episodes table")
	}
	return db, nil
}
