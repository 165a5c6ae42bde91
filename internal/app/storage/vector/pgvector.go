package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	apperrors "transcript-rag/internal/app/errors"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Schema creates the pgvector tables used by PgVectorStore
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS vector_collections (
	name       TEXT PRIMARY KEY,
	dimension  INTEGER NOT NULL CHECK (dimension > 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS chunk_vectors (
	id         TEXT NOT NULL,
	collection TEXT NOT NULL REFERENCES vector_collections(name) ON DELETE CASCADE,
	embedding  vector NOT NULL,
	metadata   JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_chunk_vectors_episode
	ON chunk_vectors (collection, (metadata->>'episode_title'));
`

// PgVectorStore implements Store on PostgreSQL with the pgvector extension
type PgVectorStore struct {
	db *sql.DB
}

// NewPgVectorStore creates a new PostgreSQL vector store
func NewPgVectorStore(db *sql.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// Migrate creates the extension and tables if missing
func (s *PgVectorStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return apperrors.Store(err, "failed to migrate vector schema")
	}
	return nil
}

// CreateCollection registers name with its dimension
func (s *PgVectorStore) CreateCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return apperrors.Store(apperrors.InvalidField("dimension", "must be positive"), "invalid collection %q", name)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vector_collections (name, dimension) VALUES ($1, $2)`,
		name, dimension)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil
		}
		return apperrors.Store(err, "failed to create collection %q", name)
	}
	return nil
}

// DeleteCollection drops name and, by cascade, all of its vectors
func (s *PgVectorStore) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vector_collections WHERE name = $1`, name)
	if err != nil {
		return apperrors.Store(err, "failed to delete collection %q", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Store(apperrors.ErrCollectionNotFound, "collection %q", name)
	}
	return nil
}

// Upsert writes records in one transaction, replacing rows with the same id
func (s *PgVectorStore) Upsert(ctx context.Context, name string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Store(err, "failed to begin upsert")
	}
	defer tx.Rollback()

	var dimension int
	err = tx.QueryRowContext(ctx,
		`SELECT dimension FROM vector_collections WHERE name = $1`, name).Scan(&dimension)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Store(apperrors.ErrCollectionNotFound, "collection %q", name)
	}
	if err != nil {
		return apperrors.Store(err, "failed to read collection %q", name)
	}

	for _, rec := range records {
		if len(rec.Vector) != dimension {
			return apperrors.Store(nil, "vector %s has dimension %d, collection %q expects %d",
				rec.ID, len(rec.Vector), name, dimension)
		}
		literal, err := encodeVectorLiteral(rec.Vector)
		if err != nil {
			return apperrors.Store(err, "invalid vector %s", rec.ID)
		}
		meta, err := json.Marshal(metadataOrEmpty(rec.Metadata))
		if err != nil {
			return apperrors.Store(err, "failed to encode metadata for %s", rec.ID)
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO chunk_vectors (id, collection, embedding, metadata)
VALUES ($1, $2, $3::vector, $4::jsonb)
ON CONFLICT (collection, id) DO UPDATE
SET embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata`,
			rec.ID, name, literal, string(meta))
		if err != nil {
			if isPgError(err, pgForeignKeyViolation) {
				return apperrors.Store(apperrors.ErrCollectionNotFound, "collection %q", name)
			}
			return apperrors.Store(err, "failed to upsert vector %s", rec.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Store(err, "failed to commit upsert")
	}
	return nil
}

// Query returns the topK closest vectors by cosine distance that satisfy filter
func (s *PgVectorStore) Query(ctx context.Context, name string, vector []float32, topK int, filter *Filter) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	literal, err := encodeVectorLiteral(vector)
	if err != nil {
		return nil, apperrors.Store(err, "invalid query vector")
	}

	query, args := buildQuery(name, literal, topK, filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Store(err, "vector query on %q failed", name)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			m        Match
			rawMeta  []byte
			distance float64
		)
		if err := rows.Scan(&m.ID, &rawMeta, &distance); err != nil {
			return nil, apperrors.Store(err, "failed to scan vector match")
		}
		m.Score = float32(1 - distance)
		if len(rawMeta) > 0 {
			if err := json.Unmarshal(rawMeta, &m.Metadata); err != nil {
				return nil, apperrors.Store(err, "failed to decode metadata for %s", m.ID)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store(err, "vector query on %q failed", name)
	}
	return matches, nil
}

// Close closes the database connection
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// buildQuery renders the similarity query; $1 is always the query vector
func buildQuery(collection, literal string, topK int, filter *Filter) (string, []interface{}) {
	args := []interface{}{literal, collection}
	where := []string{"collection = $2"}

	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter != nil {
		if filter.EpisodeTitle != "" {
			add("metadata->>'episode_title' = $%d", filter.EpisodeTitle)
		}
		if filter.Speaker != "" {
			add("metadata->'speakers_in_chunk' @> jsonb_build_array($%d::text)", filter.Speaker)
		}
		if filter.StartSeconds != nil {
			add("(metadata->>'start_seconds')::int >= $%d", *filter.StartSeconds)
		}
		if filter.EndSeconds != nil {
			add("(metadata->>'end_seconds')::int <= $%d", *filter.EndSeconds)
		}
	}

	args = append(args, topK)
	query := fmt.Sprintf(`SELECT id, metadata, embedding <=> $1::vector AS distance
FROM chunk_vectors
WHERE %s
ORDER BY embedding <=> $1::vector
LIMIT $%d`, strings.Join(where, " AND "), len(args))

	return query, args
}

func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", fmt.Errorf("vector must not be empty")
	}
	var builder strings.Builder
	builder.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	builder.WriteByte(']')
	return builder.String(), nil
}

func metadataOrEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func isPgError(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
