// Package query answers similarity and filtered lookups over the chunk
// vectors and full-text lookups over episodes. Empty results are not errors
// and no fallback between modes happens here.
package query

import (
	"context"
	"strings"

	"transcript-rag/internal/app/embedding/provider"
	"transcript-rag/internal/app/embedding/similarity"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/repository"
	"transcript-rag/internal/app/storage/vector"
)

const (
	DefaultTopK          = 12
	DefaultTimeRangeTopK = 20
	DefaultAggregateTopK = 100
)

// Config sets the collection and per-mode result counts
type Config struct {
	Collection    string
	TopK          int
	TimeRangeTopK int
	AggregateTopK int
}

// Result is one chunk hit
type Result struct {
	Text            string   `json:"text"`
	TimestampStart  string   `json:"timestamp_start"`
	TimestampEnd    string   `json:"timestamp_end"`
	SpeakersInChunk []string `json:"speakers_in_chunk"`
	EpisodeTitle    string   `json:"episode_title"`
	Source          string   `json:"source"`
	ChunkID         string   `json:"chunk_id"`
	Score           float32  `json:"score"`
}

// TimeRange bounds a time-range search. Empty fields are unbounded.
type TimeRange struct {
	Start        string
	End          string
	EpisodeTitle string
}

// EpisodeSummary aggregates the chunk hits of one episode
type EpisodeSummary struct {
	EpisodeTitle  string   `json:"episode_title"`
	Speakers      []string `json:"speakers"`
	Source        string   `json:"source"`
	MatchedChunks int      `json:"matched_chunks"`
}

// Service is the retrieval query layer
type Service struct {
	embedder provider.EmbeddingProvider
	store    vector.Store
	episodes repository.EpisodeDAO
	cfg      Config
	logger   logging.Logger
	metrics  *Metrics
}

// NewService creates a query service. episodes may be nil when only vector
// search is needed.
func NewService(embedder provider.EmbeddingProvider, store vector.Store, episodes repository.EpisodeDAO, cfg Config, logger logging.Logger, metrics *Metrics) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.TimeRangeTopK <= 0 {
		cfg.TimeRangeTopK = DefaultTimeRangeTopK
	}
	if cfg.AggregateTopK <= 0 {
		cfg.AggregateTopK = DefaultAggregateTopK
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{embedder: embedder, store: store, episodes: episodes, cfg: cfg, logger: logger, metrics: metrics}
}

// Search returns the chunks nearest to q
func (s *Service) Search(ctx context.Context, q string, topK int) (results []Result, err error) {
	defer func() { s.metrics.observe("general", err) }()

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperrors.RequiredField("query")
	}
	return s.similar(ctx, q, orDefault(topK, s.cfg.TopK), nil)
}

// SearchBySpeaker restricts results to chunks where speaker talks. The
// speaker name is embedded when q is empty.
func (s *Service) SearchBySpeaker(ctx context.Context, speaker, q string, topK int) (results []Result, err error) {
	defer func() { s.metrics.observe("speaker", err) }()

	speaker = strings.TrimSpace(speaker)
	if speaker == "" {
		return nil, apperrors.RequiredField("speaker")
	}
	text := strings.TrimSpace(q)
	if text == "" {
		text = speaker
	}
	return s.similar(ctx, text, orDefault(topK, s.cfg.TopK), &vector.Filter{Speaker: speaker})
}

// SearchByTimeRange selects chunks by time bounds and episode using a
// neutral query vector, so ordering carries no semantic meaning
func (s *Service) SearchByTimeRange(ctx context.Context, tr TimeRange, topK int) (results []Result, err error) {
	defer func() { s.metrics.observe("time_range", err) }()

	filter := &vector.Filter{EpisodeTitle: strings.TrimSpace(tr.EpisodeTitle)}
	if strings.TrimSpace(tr.Start) != "" {
		start, err := model.ParseTimestamp(tr.Start)
		if err != nil {
			return nil, apperrors.Parse(err, "invalid start")
		}
		filter.StartSeconds = &start
	}
	if strings.TrimSpace(tr.End) != "" {
		end, err := model.ParseTimestamp(tr.End)
		if err != nil {
			return nil, apperrors.Parse(err, "invalid end")
		}
		filter.EndSeconds = &end
	}
	if filter.StartSeconds != nil && filter.EndSeconds != nil && *filter.StartSeconds > *filter.EndSeconds {
		return nil, apperrors.InvalidField("time range", "start is after end")
	}

	return s.neutral(ctx, orDefault(topK, s.cfg.TimeRangeTopK), filter)
}

// Episodes groups a broad search by episode, in order of best match
func (s *Service) Episodes(ctx context.Context, episodeTitle string) (summaries []EpisodeSummary, err error) {
	defer func() { s.metrics.observe("episodes", err) }()

	results, err := s.neutralMatches(ctx, s.cfg.AggregateTopK, &vector.Filter{EpisodeTitle: strings.TrimSpace(episodeTitle)})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	for _, m := range results {
		title := stringField(m.Metadata, model.MetaEpisodeTitle)
		if i, ok := index[title]; ok {
			summaries[i].MatchedChunks++
			continue
		}
		index[title] = len(summaries)
		summaries = append(summaries, EpisodeSummary{
			EpisodeTitle:  title,
			Speakers:      stringsField(m.Metadata, model.MetaSpeakers),
			Source:        stringField(m.Metadata, model.MetaSource),
			MatchedChunks: 1,
		})
	}
	return summaries, nil
}

// SearchEpisodes runs the relational full-text search over episode title,
// summary and speakers
func (s *Service) SearchEpisodes(ctx context.Context, q string, limit int) (matches []model.EpisodeMatch, err error) {
	defer func() { s.metrics.observe("fulltext", err) }()

	if s.episodes == nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, "no episode store configured")
	}
	if strings.TrimSpace(q) == "" {
		return nil, apperrors.RequiredField("query")
	}
	return s.episodes.Search(ctx, q, limit)
}

func (s *Service) similar(ctx context.Context, text string, topK int, filter *vector.Filter) ([]Result, error) {
	vec, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.Query(ctx, s.cfg.Collection, vec, topK, filter)
	if err != nil {
		return nil, err
	}
	return toResults(matches), nil
}

func (s *Service) neutral(ctx context.Context, topK int, filter *vector.Filter) ([]Result, error) {
	matches, err := s.neutralMatches(ctx, topK, filter)
	if err != nil {
		return nil, err
	}
	return toResults(matches), nil
}

// neutralMatches sizes its vector from the configured dimension; ingest
// rejects embeddings of any other length
func (s *Service) neutralMatches(ctx context.Context, topK int, filter *vector.Filter) ([]vector.Match, error) {
	dim := s.embedder.GetProviderInfo().Dimension
	vec := similarity.Uniform(dim)
	if vec == nil {
		return nil, apperrors.Embedding(nil, "provider reports dimension %d", dim)
	}
	return s.store.Query(ctx, s.cfg.Collection, vec, topK, filter)
}

func toResults(matches []vector.Match) []Result {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Text:            stringField(m.Metadata, model.MetaText),
			TimestampStart:  stringField(m.Metadata, model.MetaTimestampStart),
			TimestampEnd:    stringField(m.Metadata, model.MetaTimestampEnd),
			SpeakersInChunk: stringsField(m.Metadata, model.MetaSpeakersInChunk),
			EpisodeTitle:    stringField(m.Metadata, model.MetaEpisodeTitle),
			Source:          stringField(m.Metadata, model.MetaSource),
			ChunkID:         stringField(m.Metadata, model.MetaChunkID),
			Score:           m.Score,
		})
	}
	return results
}

func stringField(meta map[string]interface{}, key string) string {
	s, _ := meta[key].(string)
	return s
}

// stringsField reads a string list that may have round-tripped through JSON
func stringsField(meta map[string]interface{}, key string) []string {
	switch v := meta[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
