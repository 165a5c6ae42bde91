package pg

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/repository"
)

type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB opens dsn
func NewPostgresDB(dsn string) (*PostgresDB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresDB{db: db}, nil
}

// NewPostgresDBFromConn wraps an existing pool
func NewPostgresDBFromConn(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

// Migrate creates the schema on this connection
func (pdb *PostgresDB) Migrate(ctx context.Context) error {
	return Migrate(ctx, pdb.db)
}

func (pdb *PostgresDB) GetByTitle(ctx context.Context, title string) (*model.Episode, error) {
	query := `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes
		WHERE episode_title = $1
		ORDER BY id
		LIMIT 1`

	var e model.Episode
	err := pdb.db.QueryRowContext(ctx, query, title).Scan(
		&e.ID, &e.EpisodeTitle, pq.Array(&e.Speakers), &e.Source, &e.Summary, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrEpisodeNotFound, "episode %q", title)
	}
	if err != nil {
		return nil, apperrors.Store(err, "failed to load episode %q", title)
	}
	return &e, nil
}

func (pdb *PostgresDB) Insert(ctx context.Context, episode *model.Episode) (int64, error) {
	query := `
		INSERT INTO episodes (episode_title, speakers, source, summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	speakers := episode.Speakers
	if speakers == nil {
		speakers = []string{}
	}

	var id int64
	err := pdb.db.QueryRowContext(ctx, query,
		episode.EpisodeTitle, pq.Array(speakers), episode.Source, episode.Summary).Scan(&id)
	if err != nil {
		return 0, apperrors.Store(err, "failed to insert episode %q", episode.EpisodeTitle)
	}
	episode.ID = id
	return id, nil
}

func (pdb *PostgresDB) UpdateSummary(ctx context.Context, title, summary string) error {
	res, err := pdb.db.ExecContext(ctx,
		`UPDATE episodes SET summary = $1 WHERE episode_title = $2`, summary, title)
	if err != nil {
		return apperrors.Store(err, "failed to update summary of %q", title)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Wrapf(apperrors.ErrEpisodeNotFound, "episode %q", title)
	}
	return nil
}

func (pdb *PostgresDB) List(ctx context.Context, limit int) ([]model.Episode, error) {
	query := `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	rows, err := pdb.db.QueryContext(ctx, query, repository.NormalizeLimit(limit))
	if err != nil {
		return nil, apperrors.Store(err, "failed to list episodes")
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		var e model.Episode
		if err := rows.Scan(&e.ID, &e.EpisodeTitle, pq.Array(&e.Speakers), &e.Source, &e.Summary, &e.CreatedAt); err != nil {
			return nil, apperrors.Store(err, "db scan failed")
		}
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store(err, "rows iteration failed")
	}
	return episodes, nil
}

// Search ranks rows with ts_rank over the trigger-maintained search_vector
func (pdb *PostgresDB) Search(ctx context.Context, q string, limit int) ([]model.EpisodeMatch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	query := `
		SELECT id, episode_title, speakers, source, summary, created_at,
		       ts_rank(search_vector, websearch_to_tsquery('english', $1)) AS rank
		FROM episodes
		WHERE search_vector @@ websearch_to_tsquery('english', $1)
		ORDER BY rank DESC, id
		LIMIT $2`

	rows, err := pdb.db.QueryContext(ctx, query, q, repository.NormalizeLimit(limit))
	if err != nil {
		return nil, apperrors.Store(err, "episode search failed")
	}
	defer rows.Close()

	var matches []model.EpisodeMatch
	for rows.Next() {
		var m model.EpisodeMatch
		if err := rows.Scan(&m.ID, &m.EpisodeTitle, pq.Array(&m.Speakers), &m.Source, &m.Summary, &m.CreatedAt, &m.Rank); err != nil {
			return nil, apperrors.Store(err, "db scan failed")
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store(err, "rows iteration failed")
	}
	return matches, nil
}
