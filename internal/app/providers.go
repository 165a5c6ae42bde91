package app

import (
	"context"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"transcript-rag/internal/app/chunker"
	"transcript-rag/internal/app/embedding/provider"
	"transcript-rag/internal/app/ingest"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/app/query"
	"transcript-rag/internal/app/repository"
	"transcript-rag/internal/app/repository/pg"
	"transcript-rag/internal/app/repository/sqlite"
	"transcript-rag/internal/app/source"
	"transcript-rag/internal/app/storage/vector"
	"transcript-rag/internal/app/summarizer"
	"transcript-rag/internal/config"
)

// App holds the long-lived components built from a Config
type App struct {
	Config      *config.Config
	Coordinator *ingest.Coordinator
	Query       *query.Service
	Episodes    repository.EpisodeDAO
	Store       vector.Store
	Embedder    provider.EmbeddingProvider
	Feeds       *source.FeedResolver
	Registry    *prometheus.Registry
}

// ProviderSet builds every App dependency from *config.Config,
// context.Context and logging.Logger
var ProviderSet = wire.NewSet(
	provideHTTPSource,
	provideObjectSource,
	source.NewFetcher,
	wire.Bind(new(source.Source), new(*source.Fetcher)),
	provideFeedResolver,
	provideEpisodeDAO,
	provideVectorStore,
	provideEmbeddingCache,
	provideEmbedder,
	provideSummarizer,
	provideRegistry,
	provideIngestMetrics,
	provideQueryMetrics,
	provideIngestConfig,
	provideQueryConfig,
	ingest.NewCoordinator,
	query.NewService,
	wire.Struct(new(App), "*"),
)

func provideHTTPSource(cfg *config.Config) *source.HTTPSource {
	return source.NewHTTPSource(source.HTTPConfig{
		Timeout:      cfg.Ingest.HTTPTimeout(),
		UserAgent:    cfg.Ingest.UserAgent,
		MaxBodyBytes: cfg.Ingest.MaxBodyBytes,
	})
}

// provideObjectSource returns nil when no S3 endpoint is configured; s3://
// references then fail with a fetch error
func provideObjectSource(cfg *config.Config) (*source.ObjectSource, error) {
	if cfg.S3.Endpoint == "" {
		return nil, nil
	}
	getter, err := source.NewMinioGetter(source.ObjectConfig{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return source.NewObjectSource(getter), nil
}

func provideFeedResolver(cfg *config.Config) *source.FeedResolver {
	return source.NewFeedResolver(&http.Client{Timeout: cfg.Ingest.HTTPTimeout()})
}

func provideEpisodeDAO(ctx context.Context, cfg *config.Config) (repository.EpisodeDAO, func(), error) {
	var dao repository.EpisodeDAO

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := pg.NewPostgresDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		dao = db
	default:
		db, err := sqlite.NewSQLiteDB(cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		dao = db
	}

	return dao, func() { dao.Close() }, nil
}

func provideVectorStore(ctx context.Context, cfg *config.Config) (vector.Store, func(), error) {
	if cfg.Vector.Backend == config.BackendMemory {
		store := vector.NewMemoryStore()
		return store, func() { store.Close() }, nil
	}

	db, err := pg.Open(cfg.Vector.DSN)
	if err != nil {
		return nil, nil, err
	}
	store := vector.NewPgVectorStore(db)
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}

// provideEmbeddingCache returns a nil Cache when no redis address is set
func provideEmbeddingCache(cfg *config.Config) (provider.Cache, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}
	cache := provider.NewRedisCache(provider.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
	return cache, func() { cache.Close() }
}

func provideEmbedder(ctx context.Context, cfg *config.Config, cache provider.Cache, logger logging.Logger) (provider.EmbeddingProvider, error) {
	return provider.NewProvider(ctx, provider.Config{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.APIKeys.ForProvider(cfg.Embedding.Provider),
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimension:  cfg.Embedding.Dimension,
		MaxRetries: uint64(cfg.Embedding.MaxRetries),
		CacheTTL:   cfg.Embedding.CacheTTL(),
	}, cache, logger)
}

// provideSummarizer returns nil when summaries are disabled or no OpenAI key
// is available; episodes are then recorded without a summary
func provideSummarizer(cfg *config.Config, logger logging.Logger) summarizer.Summarizer {
	if !cfg.Summarizer.Enabled {
		return nil
	}
	if cfg.APIKeys.OpenAI == "" {
		logger.Warn("summarizer disabled: OPENAI_API_KEY not set")
		return nil
	}
	return summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{
		APIKey:        cfg.APIKeys.OpenAI,
		BaseURL:       cfg.Summarizer.BaseURL,
		Model:         cfg.Summarizer.Model,
		MaxInputChars: cfg.Summarizer.MaxInputChars,
	})
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideIngestMetrics(reg *prometheus.Registry) *ingest.Metrics {
	return ingest.NewMetrics(reg)
}

func provideQueryMetrics(reg *prometheus.Registry) *query.Metrics {
	return query.NewMetrics(reg)
}

func provideIngestConfig(cfg *config.Config) ingest.Config {
	mode, err := summarizer.ParseMode(cfg.Summarizer.Mode)
	if err != nil {
		mode = summarizer.ModeShort
	}
	return ingest.Config{
		Collection:  cfg.Vector.Collection,
		Concurrency: cfg.Ingest.Concurrency,
		SummaryMode: mode,
		Chunking: chunker.Options{
			ChunkSize:    cfg.Chunking.ChunkSize,
			ChunkOverlap: cfg.Chunking.ChunkOverlap,
		},
		IdempotentIDs: cfg.Vector.IdempotentIDs,
	}
}

func provideQueryConfig(cfg *config.Config) query.Config {
	return query.Config{
		Collection:    cfg.Vector.Collection,
		TopK:          cfg.Query.TopK,
		TimeRangeTopK: cfg.Query.TimeRangeTopK,
		AggregateTopK: cfg.Query.AggregateTopK,
	}
}

// OpenEpisodes opens the configured episode store alone, for commands that
// need no embedder.
func OpenEpisodes(ctx context.Context, cfg *config.Config) (repository.EpisodeDAO, func(), error) {
	return provideEpisodeDAO(ctx, cfg)
}

// OpenVectorStore opens the configured vector backend alone
func OpenVectorStore(ctx context.Context, cfg *config.Config) (vector.Store, func(), error) {
	return provideVectorStore(ctx, cfg)
}
