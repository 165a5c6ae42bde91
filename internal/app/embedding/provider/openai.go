package provider

import (
	"context"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	apperrors "transcript-rag/internal/app/errors"
)

const (
	defaultOpenAIModel     = string(openai.SmallEmbedding3)
	defaultOpenAIDimension = 1536
	defaultOpenAIBatchSize = 512
)

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // empty means api.openai.com
	Model     string
	Dimension int
	BatchSize int
}

// OpenAIProvider implements EmbeddingProvider using OpenAI API
type OpenAIProvider struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	batchSize int
}

// NewOpenAIProvider creates a new OpenAI embedding provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(OpenAIConfig{APIKey: apiKey})
}

// NewOpenAIProviderWithConfig creates a provider against any
// OpenAI-compatible server
func NewOpenAIProviderWithConfig(cfg OpenAIConfig) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultOpenAIDimension
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultOpenAIBatchSize
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     openai.EmbeddingModel(cfg.Model),
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
	}
}

// GenerateEmbedding generates an embedding using OpenAI API
func (o *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := o.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings embeds texts, issuing one request per batchSize texts
func (o *OpenAIProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, o.batchSize) {
		response, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: o.model,
			Input: batch,
		})
		if err != nil {
			return nil, apperrors.Embedding(err, "openai embeddings request failed")
		}
		if len(response.Data) != len(batch) {
			return nil, apperrors.Embedding(nil, "openai returned %d embeddings for %d inputs", len(response.Data), len(batch))
		}

		data := response.Data
		sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
		for _, d := range data {
			vectors = append(vectors, d.Embedding)
		}
	}

	return vectors, nil
}

// GetProviderInfo returns information about the OpenAI provider
func (o *OpenAIProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "openai",
		Model:     string(o.model),
		Dimension: o.dimension,
	}
}
