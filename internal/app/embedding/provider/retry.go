package provider

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	apperrors "transcript-rag/internal/app/errors"
)

// RetryConfig controls exponential backoff around provider calls
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig returns the retry policy used for embedding calls
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		MaxElapsedTime:  30 * time.Second,
	}
}

// RetryingProvider retries transient failures of the wrapped provider
type RetryingProvider struct {
	inner  EmbeddingProvider
	config RetryConfig
}

// NewRetryingProvider wraps inner with exponential backoff
func NewRetryingProvider(inner EmbeddingProvider, config RetryConfig) *RetryingProvider {
	return &RetryingProvider{inner: inner, config: config}
}

func (r *RetryingProvider) backOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	if r.config.InitialInterval > 0 {
		bo.InitialInterval = r.config.InitialInterval
	}
	if r.config.MaxInterval > 0 {
		bo.MaxInterval = r.config.MaxInterval
	}
	if r.config.MaxElapsedTime > 0 {
		bo.MaxElapsedTime = r.config.MaxElapsedTime
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, r.config.MaxRetries), ctx)
}

// permanent stops retries for errors that cannot succeed on a second attempt
func permanent(err error) error {
	if errors.Is(err, apperrors.ErrEmptyText) ||
		errors.Is(err, apperrors.ErrMissingAPIKey) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	return err
}

// GenerateEmbedding retries the single-text call
func (r *RetryingProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := backoff.Retry(func() error {
		v, err := r.inner.GenerateEmbedding(ctx, text)
		if err != nil {
			return permanent(err)
		}
		vector = v
		return nil
	}, r.backOff(ctx))
	if err != nil {
		return nil, asEmbeddingError(err)
	}
	return vector, nil
}

// GenerateEmbeddings retries the whole batch as one unit
func (r *RetryingProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := backoff.Retry(func() error {
		v, err := r.inner.GenerateEmbeddings(ctx, texts)
		if err != nil {
			return permanent(err)
		}
		vectors = v
		return nil
	}, r.backOff(ctx))
	if err != nil {
		return nil, asEmbeddingError(err)
	}
	return vectors, nil
}

// GetProviderInfo delegates to the wrapped provider
func (r *RetryingProvider) GetProviderInfo() ProviderInfo {
	return r.inner.GetProviderInfo()
}

func asEmbeddingError(err error) error {
	if apperrors.KindOf(err) == apperrors.KindEmbedding {
		return err
	}
	return apperrors.Embedding(err, "embedding failed after retries")
}
