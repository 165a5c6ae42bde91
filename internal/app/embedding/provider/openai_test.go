package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "transcript-rag/internal/app/errors"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// newOpenAIServer answers /embeddings with vectors whose first element is the
// input length, returned in reverse order to exercise index sorting
func newOpenAIServer(t *testing.T, requests *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]interface{}, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]interface{}{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(len(req.Input[i])), 0.5},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"model":  req.Model,
			"data":   data,
		})
	}))
}

func TestOpenAIProviderInfo(t *testing.T) {
	// Arrange
	var provider EmbeddingProvider = NewOpenAIProvider("test-key")

	// Act
	info := provider.GetProviderInfo()

	// Assert
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, "text-embedding-3-small", info.Model)
	assert.Equal(t, 1536, info.Dimension)
}

func TestOpenAIGenerateEmbeddings(t *testing.T) {
	// Arrange
	var requests int32
	server := newOpenAIServer(t, &requests)
	defer server.Close()

	provider := NewOpenAIProviderWithConfig(OpenAIConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL + "/v1",
		Dimension: 2,
		BatchSize: 2,
	})

	// Act
	vectors, err := provider.GenerateEmbeddings(context.Background(), []string{"a", "bb", "ccc"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0.5}, {2, 0.5}, {3, 0.5}}, vectors)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestOpenAIGenerateEmbedding(t *testing.T) {
	var requests int32
	server := newOpenAIServer(t, &requests)
	defer server.Close()

	provider := NewOpenAIProviderWithConfig(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1/"})

	vector, err := provider.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 0.5}, vector)
}

func TestOpenAIErrorScenarios(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	testCases := []struct {
		name      string
		input     []string
		sentinels []error
	}{
		{"empty text", []string{""}, []error{apperrors.ErrEmptyText, apperrors.ErrEmbedding}},
		{"whitespace only text", []string{"ok", "   \t\n  "}, []error{apperrors.ErrEmptyText}},
		{"api error", []string{"hello"}, []error{apperrors.ErrEmbedding}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			provider := NewOpenAIProviderWithConfig(OpenAIConfig{APIKey: "bad-key", BaseURL: server.URL + "/v1"})

			// Act
			vectors, err := provider.GenerateEmbeddings(context.Background(), tc.input)

			// Assert
			assert.Nil(t, vectors)
			require.Error(t, err)
			for _, sentinel := range tc.sentinels {
				assert.ErrorIs(t, err, sentinel)
			}
		})
	}
}

func TestOpenAIEmbeddingLive(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping OpenAI tests")
	}

	provider := NewOpenAIProvider(apiKey)
	embedding, err := provider.GenerateEmbedding(context.Background(), "Hello, world!")

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
}
