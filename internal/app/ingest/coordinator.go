// Package ingest drives transcripts from their sources into the vector
// store: fetch, record the episode, chunk, enrich, embed and upsert.
package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"transcript-rag/internal/app/chunker"
	"transcript-rag/internal/app/embedding/provider"
	"transcript-rag/internal/app/enricher"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/app/model"
	"transcript-rag/internal/app/repository"
	"transcript-rag/internal/app/source"
	"transcript-rag/internal/app/storage/vector"
	"transcript-rag/internal/app/summarizer"
)

const DefaultCollection = "podcast-transcripts"

// idNamespace seeds deterministic vector ids derived from chunk ids
var idNamespace = uuid.MustParse("6f1d2a8e-5c43-4e0b-9a57-3d2b1f0c8e41")

// Config controls a Coordinator
type Config struct {
	Collection  string
	Concurrency int
	SummaryMode summarizer.Mode
	Chunking    chunker.Options
	// IdempotentIDs derives vector ids from chunk ids so re-ingesting a
	// transcript overwrites its vectors instead of duplicating them
	IdempotentIDs bool
}

// FailedURL records why a reference was dropped from a batch
type FailedURL struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// Result summarizes one ingestion call
type Result struct {
	Success       bool        `json:"success"`
	TotalChunks   int         `json:"totalChunks"`
	ProcessedURLs []string    `json:"processedUrls"`
	FailedURLs    []FailedURL `json:"failedUrls"`
}

// Coordinator runs the ingestion pipeline. Episodes and summarizer are
// optional; without them the episode step is skipped.
type Coordinator struct {
	source     source.Source
	episodes   repository.EpisodeDAO
	summarizer summarizer.Summarizer
	embedder   provider.EmbeddingProvider
	store      vector.Store
	chunker    *chunker.Chunker
	cfg        Config
	logger     logging.Logger
	metrics    *Metrics
	progress   Progress
}

// NewCoordinator wires a coordinator. logger and metrics may be nil.
func NewCoordinator(
	src source.Source,
	episodes repository.EpisodeDAO,
	sum summarizer.Summarizer,
	embedder provider.EmbeddingProvider,
	store vector.Store,
	cfg Config,
	logger logging.Logger,
	metrics *Metrics,
) *Coordinator {
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.SummaryMode == "" {
		cfg.SummaryMode = summarizer.ModeShort
	}
	if cfg.Chunking.ChunkSize == 0 && cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking = chunker.DefaultOptions()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Coordinator{
		source:     src,
		episodes:   episodes,
		summarizer: sum,
		embedder:   embedder,
		store:      store,
		chunker:    chunker.New(cfg.Chunking),
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		progress:   nopProgress{},
	}
}

// SetProgress installs a progress observer for fetches
func (c *Coordinator) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	c.progress = p
}

// Collection returns the vector collection this coordinator writes to
func (c *Coordinator) Collection() string {
	return c.cfg.Collection
}

type fetched struct {
	ref        string
	transcript *model.Transcript
	err        error
}

// IngestBatch ingests every reference. Fetch and parse failures drop the
// reference and are reported in FailedURLs; embedding and store failures
// abort the call.
func (c *Coordinator) IngestBatch(ctx context.Context, refs []string) (*Result, error) {
	results := c.fetchAll(ctx, refs)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{ProcessedURLs: []string{}, FailedURLs: []FailedURL{}}
	var transcripts []*model.Transcript
	for _, r := range results {
		if r.err != nil {
			c.logger.Warn("skipping transcript", "ref", r.ref, "kind", string(apperrors.KindOf(r.err)), "error", r.err)
			c.metrics.References.WithLabelValues("failed").Inc()
			result.FailedURLs = append(result.FailedURLs, FailedURL{URL: r.ref, Error: r.err.Error()})
			continue
		}
		if r.transcript == nil {
			r.err = apperrors.Parse(nil, "source returned no transcript for %s", r.ref)
			c.logger.Warn("skipping transcript", "ref", r.ref, "kind", string(apperrors.KindParse), "error", r.err)
			c.metrics.References.WithLabelValues("failed").Inc()
			result.FailedURLs = append(result.FailedURLs, FailedURL{URL: r.ref, Error: r.err.Error()})
			continue
		}
		c.metrics.References.WithLabelValues("processed").Inc()
		result.ProcessedURLs = append(result.ProcessedURLs, r.ref)
		transcripts = append(transcripts, r.transcript)
	}

	total, err := c.ingest(ctx, transcripts)
	if err != nil {
		return nil, err
	}
	result.TotalChunks = total
	result.Success = true

	c.logger.Info("batch ingested",
		"collection", c.cfg.Collection,
		"processed", len(result.ProcessedURLs),
		"failed", len(result.FailedURLs),
		"chunks", total)
	return result, nil
}

// IngestTranscripts ingests already parsed transcripts. ProcessedURLs lists
// each transcript's source.
func (c *Coordinator) IngestTranscripts(ctx context.Context, transcripts []*model.Transcript) (*Result, error) {
	transcripts = lo.Filter(transcripts, func(t *model.Transcript, _ int) bool { return t != nil })

	total, err := c.ingest(ctx, transcripts)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success:     true,
		TotalChunks: total,
		ProcessedURLs: lo.Map(transcripts, func(t *model.Transcript, _ int) string {
			return t.Metadata.Source
		}),
		FailedURLs: []FailedURL{},
	}, nil
}

// fetchAll fetches on up to cfg.Concurrency workers and returns results in
// input order
func (c *Coordinator) fetchAll(ctx context.Context, refs []string) []fetched {
	results := make([]fetched, len(refs))
	c.progress.Start(len(refs))
	defer c.progress.Finish()

	fetchOne := func(i int) {
		ref := refs[i]
		t, err := c.source.Fetch(ctx, ref)
		results[i] = fetched{ref: ref, transcript: t, err: err}
		c.progress.Advance(ref, err == nil)
	}

	if c.cfg.Concurrency == 1 {
		for i := range refs {
			fetchOne(i)
		}
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.cfg.Concurrency)
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fetchOne(i)
		}(i)
	}
	wg.Wait()
	return results
}

func (c *Coordinator) ingest(ctx context.Context, transcripts []*model.Transcript) (int, error) {
	seen := make(map[string]bool)
	var chunks []model.Chunk
	for _, t := range transcripts {
		if err := c.recordEpisode(ctx, t, seen); err != nil {
			return 0, err
		}
		chunks = append(chunks, enricher.EnrichAll(t, c.chunker.Chunk(t))...)
	}

	if len(chunks) == 0 {
		c.logger.Info("no chunks produced, skipping embedding")
		return 0, nil
	}

	texts := lo.Map(chunks, func(ch model.Chunk, _ int) string { return ch.Text })
	start := time.Now()
	vectors, err := c.embedder.GenerateEmbeddings(ctx, texts)
	c.metrics.EmbedDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, asKind(apperrors.KindEmbedding, err, "embedding %d chunks", len(chunks))
	}
	if len(vectors) != len(chunks) {
		return 0, apperrors.Embedding(nil, "got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	if want := c.embedder.GetProviderInfo().Dimension; want > 0 && want != dim {
		return 0, apperrors.Embedding(nil, "embedder returned %d-dimensional vectors, configured for %d", dim, want)
	}
	if err := c.store.CreateCollection(ctx, c.cfg.Collection, dim); err != nil {
		return 0, asKind(apperrors.KindStore, err, "creating collection %s", c.cfg.Collection)
	}

	records := make([]vector.Record, len(chunks))
	for i, ch := range chunks {
		records[i] = vector.Record{
			ID:       c.vectorID(ch),
			Vector:   vectors[i],
			Metadata: ch.Metadata(),
		}
	}
	if err := c.store.Upsert(ctx, c.cfg.Collection, records); err != nil {
		return 0, asKind(apperrors.KindStore, err, "upserting %d vectors", len(records))
	}

	c.metrics.Chunks.Add(float64(len(records)))
	return len(records), nil
}

// recordEpisode stores the episode row once per title. A stored row without
// a summary gets one backfilled. A summarization failure skips the insert
// but not the chunks; lookup and write failures are fatal.
func (c *Coordinator) recordEpisode(ctx context.Context, t *model.Transcript, seen map[string]bool) error {
	if c.episodes == nil {
		return nil
	}
	title := strings.TrimSpace(t.Metadata.EpisodeTitle)
	if title == "" {
		c.logger.Warn("transcript has no episode title, not recording episode", "source", t.Metadata.Source)
		return nil
	}
	if seen[title] {
		c.metrics.Summaries.WithLabelValues("existing").Inc()
		return nil
	}
	seen[title] = true

	existing, err := c.episodes.GetByTitle(ctx, title)
	switch {
	case err == nil && existing.HasSummary():
		c.logger.Info("episode already recorded, reusing stored summary", "episode", title)
		c.metrics.Summaries.WithLabelValues("existing").Inc()
		return nil
	case err == nil:
		return c.backfillSummary(ctx, t, title)
	case !errors.Is(err, apperrors.ErrEpisodeNotFound):
		return asKind(apperrors.KindStore, err, "looking up episode %q", title)
	}

	summary, ok := c.summary(ctx, t)
	if !ok {
		return nil
	}

	ep := &model.Episode{
		EpisodeTitle: title,
		Speakers:     t.Metadata.Speakers,
		Source:       t.Metadata.Source,
	}
	if summary != "" {
		ep.Summary = &summary
	}
	if _, err := c.episodes.Insert(ctx, ep); err != nil {
		return asKind(apperrors.KindStore, err, "recording episode %q", title)
	}
	c.logger.Info("episode recorded", "episode", title, "id", ep.ID)
	return nil
}

// backfillSummary fills the summary of an episode recorded without one
func (c *Coordinator) backfillSummary(ctx context.Context, t *model.Transcript, title string) error {
	summary, ok := c.summary(ctx, t)
	if !ok || summary == "" {
		return nil
	}
	if err := c.episodes.UpdateSummary(ctx, title, summary); err != nil {
		return asKind(apperrors.KindStore, err, "backfilling summary of %q", title)
	}
	c.logger.Info("episode summary backfilled", "episode", title)
	return nil
}

func (c *Coordinator) summary(ctx context.Context, t *model.Transcript) (string, bool) {
	if t.Metadata.Summary != nil && strings.TrimSpace(*t.Metadata.Summary) != "" {
		c.metrics.Summaries.WithLabelValues("provided").Inc()
		return strings.TrimSpace(*t.Metadata.Summary), true
	}
	if c.summarizer == nil {
		c.metrics.Summaries.WithLabelValues("disabled").Inc()
		return "", true
	}

	summary, err := c.summarizer.Summarize(ctx, t.FullText(), c.cfg.SummaryMode)
	if err != nil {
		c.logger.Error("summarization failed, episode not recorded",
			"episode", t.Metadata.EpisodeTitle, "error", err)
		c.metrics.Summaries.WithLabelValues("failed").Inc()
		return "", false
	}
	c.metrics.Summaries.WithLabelValues("generated").Inc()
	return summary, true
}

func (c *Coordinator) vectorID(ch model.Chunk) string {
	if c.cfg.IdempotentIDs {
		return uuid.NewSHA1(idNamespace, []byte(c.cfg.Collection+"/"+ch.ChunkID)).String()
	}
	return uuid.NewString()
}

// asKind keeps err's kind when it already has one, else marks it as kind
func asKind(kind apperrors.Kind, err error, format string, args ...interface{}) error {
	if apperrors.KindOf(err) != apperrors.KindUnknown {
		return apperrors.Wrapf(err, format, args...)
	}
	if kind == apperrors.KindEmbedding {
		return apperrors.Embedding(err, format, args...)
	}
	return apperrors.Store(err, format, args...)
}
