package provider

import (
	"context"
	"strings"
	"time"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/logging"
)

// Config selects and tunes an embedding provider
type Config struct {
	Provider   string // openai, gemini or mock
	APIKey     string
	BaseURL    string
	Model      string
	Dimension  int
	MaxRetries uint64
	CacheTTL   time.Duration
}

// NewProvider builds the configured provider, wrapped with retries and, when
// cache is non-nil, the query cache
func NewProvider(ctx context.Context, cfg Config, cache Cache, logger logging.Logger) (EmbeddingProvider, error) {
	var base EmbeddingProvider

	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, apperrors.Wrap(apperrors.ErrMissingAPIKey, "openai embedding provider")
		}
		base = NewOpenAIProviderWithConfig(OpenAIConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})
	case "gemini":
		p, err := NewGeminiProvider(ctx, GeminiConfig{
			APIKey:    cfg.APIKey,
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Dimension: cfg.Dimension,
		})
		if err != nil {
			return nil, err
		}
		base = p
	case "mock":
		dim := cfg.Dimension
		if dim <= 0 {
			dim = defaultOpenAIDimension
		}
		return NewMockProvider(dim), nil
	default:
		return nil, apperrors.Wrapf(apperrors.ErrProviderNotFound, "unknown embedding provider %q", cfg.Provider)
	}

	retry := DefaultRetryConfig()
	retry.MaxRetries = cfg.MaxRetries
	var p EmbeddingProvider = NewRetryingProvider(base, retry)

	if cache != nil {
		p = NewCachedProvider(p, cache, cfg.CacheTTL, logger)
	}
	return p, nil
}
