package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "transcript-rag/internal/app/errors"
)

const testOpenAIKey = "sk-1234567890abcdef1234567890abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "DATABASE_URL", "REDIS_ADDR",
		"TRAG_COLLECTION", "S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"TRAG_PORT", "TRAG_CONFIG",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaultsWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", testOpenAIKey)
	t.Setenv("DATABASE_URL", "postgres://localhost/trag?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, 600, cfg.Chunking.ChunkSize)
	assert.Equal(t, 60, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, "podcast-transcripts", cfg.Vector.Collection)
	assert.False(t, cfg.Vector.IdempotentIDs)
	assert.Equal(t, "postgres://localhost/trag?sslmode=disable", cfg.Vector.DSN)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join("data", "episodes.db"), cfg.Database.DSN)
	assert.Equal(t, 1, cfg.Ingest.Concurrency)
	assert.Equal(t, 12, cfg.Query.TopK)
	assert.Equal(t, 20, cfg.Query.TimeRangeTopK)
	assert.Equal(t, 100, cfg.Query.AggregateTopK)
	assert.Equal(t, testOpenAIKey, cfg.APIKeys.OpenAI)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadFileWithExpansionAndOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "AIzaTest-1234567890abcdef1234567890")
	t.Setenv("TRAG_TEST_REDIS_PASSWORD", "hunter2")
	t.Setenv("TRAG_COLLECTION", "from-env")
	t.Setenv("DATABASE_URL", "postgres://db/trag")

	path := writeConfig(t, `
embedding:
  provider: Gemini
  model: text-embedding-004
  dimension: 768
chunking:
  chunk_size: 400
  chunk_overlap: 40
vector:
  backend: pgvector
  collection: from-file
  idempotent_ids: true
database:
  driver: postgres
redis:
  addr: localhost:6379
  password: ${TRAG_TEST_REDIS_PASSWORD}
query:
  top_k: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Embedding.Provider)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	assert.Equal(t, "from-env", cfg.Vector.Collection)
	assert.True(t, cfg.Vector.IdempotentIDs)
	assert.Equal(t, "postgres://db/trag", cfg.Database.DSN)
	assert.Equal(t, "postgres://db/trag", cfg.Vector.DSN)
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, 5, cfg.Query.TopK)
	// untouched sections keep defaults
	assert.Equal(t, 20, cfg.Query.TimeRangeTopK)
	assert.Equal(t, 30, cfg.Ingest.HTTPTimeoutSec)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")

	_, err = Load(writeConfig(t, "embedding: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")

	t.Setenv("OPENAI_API_KEY", "bogus")
	_, err = Load("")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Embedding.Provider = "mock"
		cfg.Vector.Backend = BackendMemory
		return cfg
	}

	testCases := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing openai key", func(c *Config) { c.Embedding.Provider = "openai" }, "OpenAI API key is required"},
		{"custom base url only needs presence", func(c *Config) {
			c.Embedding.Provider = "openai"
			c.Embedding.BaseURL = "http://localhost:11434/v1"
			c.APIKeys.OpenAI = "local"
		}, ""},
		{"base url without scheme", func(c *Config) { c.Summarizer.BaseURL = "localhost:8000" }, "must start with http"},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, "unknown embedding provider"},
		{"too many retries", func(c *Config) { c.Embedding.MaxRetries = 11 }, "retries too high"},
		{"bad mode", func(c *Config) { c.Summarizer.Mode = "medium" }, "summarizer mode"},
		{"overlap not below size", func(c *Config) { c.Chunking.ChunkOverlap = 600 }, "must be smaller than chunk size"},
		{"zero chunk size", func(c *Config) { c.Chunking.ChunkSize = 0 }, "chunk size must be positive"},
		{"pgvector without dsn", func(c *Config) { c.Vector.Backend = BackendPgVector }, "requires vector.dsn"},
		{"unknown backend", func(c *Config) { c.Vector.Backend = "qdrant" }, "unknown vector backend"},
		{"empty collection", func(c *Config) { c.Vector.Collection = " " }, "collection is required"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "requires a dsn"},
		{"zero concurrency", func(c *Config) { c.Ingest.Concurrency = 0 }, "concurrency must be positive"},
		{"zero timeout", func(c *Config) { c.Ingest.HTTPTimeoutSec = 0 }, "timeout must be positive"},
		{"zero top_k", func(c *Config) { c.Query.TopK = 0 }, "query top_k must be positive"},
		{"s3 without credentials", func(c *Config) { c.S3.Endpoint = "localhost:9000" }, "s3 endpoint requires"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			cfg.normalize()

			err := cfg.Validate()
			if tc.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Embedding.Provider = "mock"
	cfg.Vector.Backend = BackendMemory
	cfg.Query.TopK = 7

	path := filepath.Join(t.TempDir(), "nested", "trag.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Query.TopK)
	assert.Equal(t, BackendMemory, loaded.Vector.Backend)
}

func TestFindConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRAG_CONFIG", "/etc/trag/trag.yaml")
	assert.Equal(t, "/etc/trag/trag.yaml", FindConfigFile())

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	nested := filepath.Join(root, "cmd", "trag")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644))
	t.Setenv("TRAG_CONFIG", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	assert.Equal(t, "", FindConfigFile())

	require.NoError(t, os.WriteFile(filepath.Join(root, "trag.yaml"), []byte("{}\n"), 0644))
	assert.Equal(t, filepath.Join(root, "trag.yaml"), FindConfigFile())
}

func TestValidateChunking(t *testing.T) {
	assert.NoError(t, ValidateChunking(600, 60))
	assert.NoError(t, ValidateChunking(100, 0))
	assert.Error(t, ValidateChunking(100, -1))
	assert.Error(t, ValidateChunking(100, 100))
	assert.Error(t, ValidateChunking(-5, 0))
}
