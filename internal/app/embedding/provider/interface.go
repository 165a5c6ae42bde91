package provider

import "context"

// EmbeddingProvider defines the interface for all embedding providers
type EmbeddingProvider interface {
	// GenerateEmbedding generates an embedding vector for the given text
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)

	// GenerateEmbeddings embeds a whole batch in one logical call. Vectors are
	// returned in input order.
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// GetProviderInfo returns metadata about the provider
	GetProviderInfo() ProviderInfo
}

// ProviderInfo contains metadata about an embedding provider
type ProviderInfo struct {
	Name      string // Provider name (e.g., "openai", "gemini")
	Model     string // Model identifier (e.g., "text-embedding-3-small")
	Dimension int    // Embedding dimension (e.g., 1536 for OpenAI, 768 for Gemini)
}
