package provider

import (
	"context"

	apperrors "transcript-rag/internal/app/errors"
	"google.golang.org/genai"
)

const (
	defaultGeminiModel     = "text-embedding-004"
	defaultGeminiDimension = 768
	// batchEmbedContents accepts at most 100 requests
	defaultGeminiBatchSize = 100
)

// GeminiConfig configures the Gemini embedding provider
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
}

// GeminiProvider implements EmbeddingProvider using Google Gemini API
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider creates a new Gemini embedding provider
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.Embedding(apperrors.ErrMissingAPIKey, "gemini provider")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = defaultGeminiDimension
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, apperrors.Embedding(err, "failed to create gemini client")
	}

	return &GeminiProvider{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
	}, nil
}

// GenerateEmbedding generates an embedding using Gemini API
func (g *GeminiProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings embeds texts through batchEmbedContents
func (g *GeminiProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(texts))
	for _, batch := range batches(texts, defaultGeminiBatchSize) {
		contents := make([]*genai.Content, len(batch))
		for i, text := range batch {
			contents[i] = genai.NewContentFromText(text, genai.RoleUser)
		}

		resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, &genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_DOCUMENT",
		})
		if err != nil {
			return nil, apperrors.Embedding(err, "gemini embed request failed")
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, apperrors.Embedding(nil, "gemini returned %d embeddings for %d inputs", len(resp.Embeddings), len(batch))
		}
		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Values)
		}
	}

	return vectors, nil
}

// GetProviderInfo returns information about the Gemini provider
func (g *GeminiProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "gemini",
		Model:     g.model,
		Dimension: g.dimension,
	}
}
