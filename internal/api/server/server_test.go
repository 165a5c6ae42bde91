package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1routes "transcript-rag/internal/api/v1/routes"
	"transcript-rag/internal/api/v1/services"
	"transcript-rag/internal/app"
	"transcript-rag/internal/app/logging"
	"transcript-rag/internal/config"
)

const episodeDoc = `{
	"metadata": {"episode_title": "Databases", "source": "test", "speakers": ["Host", "Guest"]},
	"transcript": [
		{"timestamp": "00:00", "speaker": "Host", "text": "Today we talk about indexes."},
		{"timestamp": "00:06", "speaker": "Guest", "text": "Indexes make lookups fast."}
	]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Embedding.Provider = "mock"
	cfg.Embedding.Dimension = 16
	cfg.Vector.Backend = config.BackendMemory
	cfg.Database.DSN = ":memory:"
	cfg.Summarizer.Enabled = false

	logger := logging.NewNopLogger()
	a, cleanup, err := app.InitializeApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	container := &v1routes.ServiceContainer{
		IngestService: services.NewIngestService(a.Coordinator, a.Feeds, logger),
		QueryService:  a.Query,
		ExportService: services.NewExportService(a.Episodes),
	}
	return NewServer(DefaultConfig(), container, a.Registry, logger)
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIngestThenSearch(t *testing.T) {
	s := newTestServer(t)

	path := filepath.Join(t.TempDir(), "databases.json")
	require.NoError(t, os.WriteFile(path, []byte(episodeDoc), 0644))
	missing := filepath.Join(t.TempDir(), "missing.json")

	body, _ := json.Marshal(map[string][]string{"urls": {path, missing}})
	rec := serve(s, http.MethodPost, "/api/v1/ingest", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Success       bool     `json:"success"`
		TotalChunks   int      `json:"totalChunks"`
		ProcessedURLs []string `json:"processedUrls"`
		FailedURLs    []struct {
			URL string `json:"url"`
		} `json:"failedUrls"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.TotalChunks)
	assert.Equal(t, []string{path}, result.ProcessedURLs)
	require.Len(t, result.FailedURLs, 1)
	assert.Equal(t, missing, result.FailedURLs[0].URL)

	rec = serve(s, http.MethodGet, "/api/v1/search?q=indexes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"episode_title":"Databases"`)

	rec = serve(s, http.MethodGet, "/api/v1/search/speaker?speaker=Guest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = serve(s, http.MethodGet, "/api/v1/search/time?start=00:00&end=00:10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = serve(s, http.MethodGet, "/api/v1/search/time?start=00:10&end=00:00", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, http.MethodGet, "/api/v1/episodes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"matched_chunks":1`)

	rec = serve(s, http.MethodGet, "/api/v1/episodes/search?q=databases", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"episode_title":"Databases"`)

	rec = serve(s, http.MethodGet, "/api/v1/episodes/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, rec.Body.Len())
}

func TestIngestAllFailedIsNotAnError(t *testing.T) {
	s := newTestServer(t)

	body := `{"urls": ["/definitely/not/here.json"]}`
	rec := serve(s, http.MethodPost, "/api/v1/ingest", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalChunks":0`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	serve(s, http.MethodGet, "/api/v1/search?q=anything", "")

	rec := serve(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "trag_http_requests_total")
	assert.Contains(t, rec.Body.String(), "trag_query_requests_total")
}
