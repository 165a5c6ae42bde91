package provider

import (
	"context"
	"crypto/sha256"
	"strings"
	"sync"

	apperrors "transcript-rag/internal/app/errors"
)

// MockProvider is a mock implementation for testing and offline runs.
// Embeddings are derived from the SHA-256 of the text.
type MockProvider struct {
	dimension int

	mu    sync.Mutex
	calls int
}

// NewMockProvider creates a new mock provider with specified dimension
func NewMockProvider(dimension int) *MockProvider {
	return &MockProvider{dimension: dimension}
}

// GenerateEmbedding generates deterministic embeddings based on SHA256 hash
func (m *MockProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// GenerateEmbeddings embeds each text independently
func (m *MockProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Embedding(err, "mock embedding cancelled")
	}
	if err := validateTexts(texts); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embed(text)
	}
	return vectors, nil
}

func (m *MockProvider) embed(text string) []float32 {
	hash := sha256.Sum256([]byte(strings.TrimSpace(text)))
	embedding := make([]float32, max(m.dimension, 0))

	// Convert hash bytes to float32 values in range [-1, 1]
	for i := 0; i < m.dimension; i++ {
		byteIndex := i % len(hash)
		embedding[i] = (float32(hash[byteIndex])/255.0)*2 - 1
	}
	return embedding
}

// Calls reports how many batch calls were served
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// GetProviderInfo returns mock provider information
func (m *MockProvider) GetProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:      "mock",
		Model:     "mock-model",
		Dimension: m.dimension,
	}
}
