package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/repository"
)

// Field boosts mirror the PostgreSQL A/B/C weights
const (
	titleBoost    = 4.0
	summaryBoost  = 2.0
	speakersBoost = 1.0
)

// SQLiteDB stores episodes in SQLite and ranks them with an in-memory bleve
// index that is rebuilt from the table when the store is opened
type SQLiteDB struct {
	db    *sql.DB
	index bleve.Index
}

// NewSQLiteDB opens path and indexes existing episodes
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}

	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		db.Close()
		return nil, apperrors.Store(err, "failed to create search index")
	}

	s := &SQLiteDB{db: db, index: index}
	if err := s.reindex(context.Background()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) Close() error {
	if s.index != nil {
		_ = s.index.Close()
	}
	return s.db.Close()
}

func (s *SQLiteDB) reindex(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, episode_title, speakers, source, summary, created_at FROM episodes`)
	if err != nil {
		return apperrors.Store(err, "failed to load episodes for indexing")
	}
	defer rows.Close()

	batch := s.index.NewBatch()
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return err
		}
		if err := batch.Index(docID(e.ID), document(e)); err != nil {
			return apperrors.Store(err, "failed to index episode %d", e.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return apperrors.Store(err, "rows iteration failed")
	}
	if err := s.index.Batch(batch); err != nil {
		return apperrors.Store(err, "failed to build search index")
	}
	return nil
}

func (s *SQLiteDB) GetByTitle(ctx context.Context, title string) (*model.Episode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes
		WHERE episode_title = ?
		ORDER BY id
		LIMIT 1`, title)

	e, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrEpisodeNotFound, "episode %q", title)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLiteDB) Insert(ctx context.Context, episode *model.Episode) (int64, error) {
	speakers, err := encodeSpeakers(episode.Speakers)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (episode_title, speakers, source, summary) VALUES (?, ?, ?, ?)`,
		episode.EpisodeTitle, speakers, episode.Source, episode.Summary)
	if err != nil {
		return 0, apperrors.Store(err, "failed to insert episode %q", episode.EpisodeTitle)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.Store(err, "failed to read episode id")
	}
	episode.ID = id

	if err := s.index.Index(docID(id), document(episode)); err != nil {
		return id, apperrors.Store(err, "failed to index episode %q", episode.EpisodeTitle)
	}
	return id, nil
}

func (s *SQLiteDB) UpdateSummary(ctx context.Context, title, summary string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE episodes SET summary = ? WHERE episode_title = ?`, summary, title)
	if err != nil {
		return apperrors.Store(err, "failed to update summary of %q", title)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.Wrapf(apperrors.ErrEpisodeNotFound, "episode %q", title)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes WHERE episode_title = ?`, title)
	if err != nil {
		return apperrors.Store(err, "failed to reload episode %q", title)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return err
		}
		if err := s.index.Index(docID(e.ID), document(e)); err != nil {
			return apperrors.Store(err, "failed to reindex episode %q", title)
		}
	}
	return rows.Err()
}

func (s *SQLiteDB) List(ctx context.Context, limit int) ([]model.Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, repository.NormalizeLimit(limit))
	if err != nil {
		return nil, apperrors.Store(err, "failed to list episodes")
	}
	defer rows.Close()

	var episodes []model.Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Store(err, "rows iteration failed")
	}
	return episodes, nil
}

// Search runs a boosted match query per field and loads the hits in rank order
func (s *SQLiteDB) Search(ctx context.Context, q string, limit int) ([]model.EpisodeMatch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	req := bleve.NewSearchRequestOptions(boostedQuery(q), repository.NormalizeLimit(limit), 0, false)
	res, err := s.index.Search(req)
	if err != nil {
		return nil, apperrors.Store(err, "episode search failed")
	}

	matches := make([]model.EpisodeMatch, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		e, err := s.getByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		matches = append(matches, model.EpisodeMatch{Episode: *e, Rank: hit.Score})
	}
	return matches, nil
}

func (s *SQLiteDB) getByID(ctx context.Context, id int64) (*model.Episode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, episode_title, speakers, source, summary, created_at
		FROM episodes WHERE id = ?`, id)
	return scanEpisode(row)
}

func boostedQuery(q string) query.Query {
	title := bleve.NewMatchQuery(q)
	title.SetField("title")
	title.SetBoost(titleBoost)

	summary := bleve.NewMatchQuery(q)
	summary.SetField("summary")
	summary.SetBoost(summaryBoost)

	speakers := bleve.NewMatchQuery(q)
	speakers.SetField("speakers")
	speakers.SetBoost(speakersBoost)

	return bleve.NewDisjunctionQuery(title, summary, speakers)
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func document(e *model.Episode) map[string]interface{} {
	return map[string]interface{}{
		"title":    e.EpisodeTitle,
		"summary":  e.SummaryText(),
		"speakers": strings.Join(e.Speakers, " "),
	}
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEpisode(row scanner) (*model.Episode, error) {
	var (
		e        model.Episode
		speakers string
		created  time.Time
	)
	if err := row.Scan(&e.ID, &e.EpisodeTitle, &speakers, &e.Source, &e.Summary, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Store(err, "db scan failed")
	}
	if err := json.Unmarshal([]byte(speakers), &e.Speakers); err != nil {
		return nil, apperrors.Store(err, "invalid speakers for episode %d", e.ID)
	}
	e.CreatedAt = created
	return &e, nil
}

func encodeSpeakers(speakers []string) (string, error) {
	if speakers == nil {
		speakers = []string{}
	}
	b, err := json.Marshal(speakers)
	if err != nil {
		return "", apperrors.Store(err, "failed to encode speakers")
	}
	return string(b), nil
}
