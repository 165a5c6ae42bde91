// Package config loads trag settings from an optional YAML file, .env files
// and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	apperrors "transcript-rag/internal/app/errors"
)

// Config is the full trag configuration
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Vector     VectorConfig     `yaml:"vector"`
	Database   DatabaseConfig   `yaml:"database"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Query      QueryConfig      `yaml:"query"`
	Redis      RedisConfig      `yaml:"redis"`
	S3         S3Config         `yaml:"s3"`
	Server     ServerConfig     `yaml:"server"`

	// APIKeys only ever come from the environment
	APIKeys APIKeys `yaml:"-"`
}

type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	BaseURL     string `yaml:"base_url,omitempty"`
	MaxRetries  int    `yaml:"max_retries"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"`
}

// CacheTTL is the query-embedding cache lifetime
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSec) * time.Second
}

type SummarizerConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Model         string `yaml:"model"`
	Mode          string `yaml:"mode"`
	BaseURL       string `yaml:"base_url,omitempty"`
	MaxInputChars int    `yaml:"max_input_chars"`
}

type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

type VectorConfig struct {
	Backend    string `yaml:"backend"`
	DSN        string `yaml:"dsn,omitempty"`
	Collection string `yaml:"collection"`

	// IdempotentIDs derives vector ids from chunk ids; re-ingesting then
	// overwrites vectors instead of adding duplicates
	IdempotentIDs bool `yaml:"idempotent_ids"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type IngestConfig struct {
	Concurrency    int    `yaml:"concurrency"`
	HTTPTimeoutSec int    `yaml:"http_timeout_sec"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
	UserAgent      string `yaml:"user_agent,omitempty"`
}

// HTTPTimeout is the per-request fetch timeout
func (i IngestConfig) HTTPTimeout() time.Duration {
	return time.Duration(i.HTTPTimeoutSec) * time.Second
}

type QueryConfig struct {
	TopK          int `yaml:"top_k"`
	TimeRangeTopK int `yaml:"time_range_top_k"`
	AggregateTopK int `yaml:"aggregate_top_k"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region,omitempty"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`

	// CORSOrigins lists browser origins allowed to call the API; empty allows any
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Backend and driver names
const (
	BackendPgVector = "pgvector"
	BackendMemory   = "memory"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider:    "openai",
			Model:       "text-embedding-ada-002",
			Dimension:   1536,
			MaxRetries:  3,
			CacheTTLSec: 3600,
		},
		Summarizer: SummarizerConfig{
			Enabled:       true,
			Model:         "gpt-4o-mini",
			Mode:          "short",
			MaxInputChars: 48000,
		},
		Chunking: ChunkingConfig{
			ChunkSize:    600,
			ChunkOverlap: 60,
		},
		Vector: VectorConfig{
			Backend:    BackendPgVector,
			Collection: "podcast-transcripts",
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    filepath.Join("data", "episodes.db"),
		},
		Ingest: IngestConfig{
			Concurrency:    1,
			HTTPTimeoutSec: 30,
			MaxBodyBytes:   32 << 20,
		},
		Query: QueryConfig{
			TopK:          12,
			TimeRangeTopK: 20,
			AggregateTopK: 100,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Environment: "development",
		},
	}
}

// DefaultConfigPaths are searched by FindConfigFile
var DefaultConfigPaths = []string{
	"trag.yaml",
	filepath.Join("config", "trag.yaml"),
}

// FindConfigFile returns TRAG_CONFIG when set, otherwise the first default
// path that exists, otherwise ""
func FindConfigFile() string {
	if path := os.Getenv("TRAG_CONFIG"); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	// subcommands run from a nested directory still find the repo config
	if root, err := GetProjectRoot(); err == nil {
		for _, path := range DefaultConfigPaths {
			full := filepath.Join(root, path)
			if _, err := os.Stat(full); err == nil {
				return full
			}
		}
	}
	return ""
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		path = os.ExpandEnv(path)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		cfg.expandEnvironmentVariables()
	}

	keys, err := GetAPIKeys()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	cfg.APIKeys = *keys
	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the parent directory
func Save(cfg *Config, path string) error {
	path = os.ExpandEnv(path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandEnvironmentVariables resolves ${VAR} references in fields that
// usually hold secrets or deployment-specific addresses
func (c *Config) expandEnvironmentVariables() {
	for _, field := range []*string{
		&c.Embedding.BaseURL,
		&c.Summarizer.BaseURL,
		&c.Vector.DSN,
		&c.Database.DSN,
		&c.Redis.Addr,
		&c.Redis.Password,
		&c.S3.Endpoint,
		&c.S3.AccessKey,
		&c.S3.SecretKey,
	} {
		*field = os.ExpandEnv(*field)
	}
}

// applyEnvOverrides lets well-known environment variables win over the file.
// DATABASE_URL always feeds the pgvector store and also the episode store
// when it runs on PostgreSQL.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Vector.DSN = v
		if c.Database.Driver == DriverPostgres {
			c.Database.DSN = v
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TRAG_COLLECTION"); v != "" {
		c.Vector.Collection = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		c.S3.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		c.S3.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		c.S3.SecretKey = v
	}
	if v := os.Getenv("TRAG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) normalize() {
	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	c.Vector.Backend = strings.ToLower(strings.TrimSpace(c.Vector.Backend))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Summarizer.Mode = strings.ToLower(strings.TrimSpace(c.Summarizer.Mode))

	if c.Vector.DSN == "" && c.Database.Driver == DriverPostgres {
		c.Vector.DSN = c.Database.DSN
	}
}

// Validate checks ranges and the presence of settings the selected backends
// need. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidConfig, err.Error())
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Embedding.Provider {
	case "openai":
		keyType := "OpenAI"
		if c.Embedding.BaseURL != "" {
			keyType = "custom"
		}
		if err := ValidateAPIKey(c.APIKeys.OpenAI, keyType); err != nil {
			return err
		}
	case "gemini":
		if err := ValidateAPIKey(c.APIKeys.Gemini, "Gemini"); err != nil {
			return err
		}
	case "mock":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("embedding dimension cannot be negative")
	}
	for _, u := range []struct{ value, name string }{
		{c.Embedding.BaseURL, "embedding base"},
		{c.Summarizer.BaseURL, "summarizer base"},
	} {
		if u.value == "" {
			continue
		}
		if err := ValidateURL(u.value, u.name); err != nil {
			return err
		}
	}
	if err := ValidateRetries(c.Embedding.MaxRetries, "embedding"); err != nil {
		return err
	}
	if c.Embedding.CacheTTLSec < 0 {
		return fmt.Errorf("embedding cache ttl cannot be negative")
	}

	switch c.Summarizer.Mode {
	case "short", "long":
	default:
		return fmt.Errorf("summarizer mode must be short or long, got %q", c.Summarizer.Mode)
	}

	if err := ValidateChunking(c.Chunking.ChunkSize, c.Chunking.ChunkOverlap); err != nil {
		return err
	}

	switch c.Vector.Backend {
	case BackendPgVector:
		if c.Vector.DSN == "" {
			return fmt.Errorf("pgvector backend requires vector.dsn or DATABASE_URL")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown vector backend %q", c.Vector.Backend)
	}
	if strings.TrimSpace(c.Vector.Collection) == "" {
		return fmt.Errorf("vector collection is required")
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("%s database requires a dsn", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if err := ValidateConcurrency(c.Ingest.Concurrency, "ingest"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.Ingest.HTTPTimeout(), "ingest http"); err != nil {
		return err
	}

	for _, k := range []struct {
		value int
		name  string
	}{
		{c.Query.TopK, "query top_k"},
		{c.Query.TimeRangeTopK, "query time_range_top_k"},
		{c.Query.AggregateTopK, "query aggregate_top_k"},
	} {
		if err := ValidateTopK(k.value, k.name); err != nil {
			return err
		}
	}

	if c.S3.Endpoint != "" && (c.S3.AccessKey == "" || c.S3.SecretKey == "") {
		return fmt.Errorf("s3 endpoint requires access_key and secret_key")
	}

	return ValidatePort(c.Server.Port, "server")
}

