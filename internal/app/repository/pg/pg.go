package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	apperrors "transcript-rag/internal/app/errors"
)

// Schema creates the episodes table with its weighted search vector
const Schema = `
CREATE TABLE IF NOT EXISTS episodes (
	id            BIGSERIAL PRIMARY KEY,
	episode_title TEXT NOT NULL,
	speakers      TEXT[] NOT NULL DEFAULT '{}',
	source        TEXT NOT NULL DEFAULT '',
	summary       TEXT,
	search_vector TSVECTOR,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

ALTER TABLE episodes ALTER COLUMN summary DROP NOT NULL;

CREATE INDEX IF NOT EXISTS idx_episodes_title ON episodes (episode_title);
CREATE INDEX IF NOT EXISTS idx_episodes_search ON episodes USING GIN (search_vector);

CREATE OR REPLACE FUNCTION episodes_search_vector_update() RETURNS trigger AS $$
BEGIN
	NEW.search_vector :=
		setweight(to_tsvector('english', coalesce(NEW.episode_title, '')), 'A') ||
		setweight(to_tsvector('english', coalesce(NEW.summary, '')), 'B') ||
		setweight(to_tsvector('english', coalesce(array_to_string(NEW.speakers, ' '), '')), 'C');
	RETURN NEW;
END
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS episodes_search_vector_trigger ON episodes;
CREATE TRIGGER episodes_search_vector_trigger
	BEFORE INSERT OR UPDATE ON episodes
	FOR EACH ROW EXECUTE FUNCTION episodes_search_vector_update();
`

// Open opens a PostgreSQL connection pool
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, apperrors.Store(err, "failed to open postgres")
	}
	return db, nil
}

// Migrate creates the episodes schema idempotently
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return apperrors.Store(err, "failed to migrate episodes schema")
	}
	return nil
}
