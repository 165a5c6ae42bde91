package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "transcript-rag/internal/app/errors"
)

const sampleDocument = `{
	"metadata": {"episode_title": "Greetings", "speakers": ["A", "B"], "source": "https://example.com/ep1"},
	"transcript": [
		{"timestamp": "00:00", "speaker": "A", "text": "Hello there."},
		{"timestamp": "00:05", "speaker": "B", "text": "Hi Alice, how are you?"}
	]
}`

func newTranscriptServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/doc", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleDocument)
	})
	mux.HandleFunc("/captions/episode-7.vtt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/vtt")
		io.WriteString(w, sampleVTT)
	})
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "A transcript without any structure.")
	})
	mux.HandleFunc("/episode", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<!DOCTYPE html>
<html><head>
	<meta property="og:title" content="Episode Seven">
	<title>fallback</title>
</head><body>
	<a href="/about">About</a>
	<a href="/files/notes.pdf">Show notes</a>
	<a href="/captions/episode-7.vtt">Read the transcript</a>
</body></html>`)
	})
	mux.HandleFunc("/no-link", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><head><title>x</title></head><body><a href="/about">About</a></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"metadata": `)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := newTranscriptServer(t)
	src := NewHTTPSource(HTTPConfig{})
	ctx := context.Background()

	t.Run("json document", func(t *testing.T) {
		tr, err := src.Fetch(ctx, srv.URL+"/doc")
		require.NoError(t, err)
		assert.Equal(t, "Greetings", tr.Metadata.EpisodeTitle)
		assert.Len(t, tr.Utterances, 2)
	})

	t.Run("captions take title from file name", func(t *testing.T) {
		tr, err := src.Fetch(ctx, srv.URL+"/captions/episode-7.vtt")
		require.NoError(t, err)
		assert.Equal(t, "episode-7", tr.Metadata.EpisodeTitle)
		assert.Equal(t, srv.URL+"/captions/episode-7.vtt", tr.Metadata.Source)
		assert.Len(t, tr.Utterances, 3)
	})

	t.Run("title query parameter wins", func(t *testing.T) {
		tr, err := src.Fetch(ctx, srv.URL+"/captions/episode-7.vtt?title=Seven")
		require.NoError(t, err)
		assert.Equal(t, "Seven", tr.Metadata.EpisodeTitle)
	})

	t.Run("plain text is a simple transcript", func(t *testing.T) {
		tr, err := src.Fetch(ctx, srv.URL+"/plain")
		require.NoError(t, err)
		assert.True(t, tr.IsSimple())
		assert.Equal(t, "A transcript without any structure.", tr.Text)
		assert.Equal(t, "plain", tr.Metadata.EpisodeTitle)
	})

	t.Run("html page follows transcript link", func(t *testing.T) {
		tr, err := src.Fetch(ctx, srv.URL+"/episode")
		require.NoError(t, err)
		assert.Equal(t, "Episode Seven", tr.Metadata.EpisodeTitle)
		assert.Equal(t, srv.URL+"/episode", tr.Metadata.Source)
		assert.Equal(t, "Alice", tr.Utterances[0].Speaker)
	})

	t.Run("html page without link is a parse error", func(t *testing.T) {
		_, err := src.Fetch(ctx, srv.URL+"/no-link")
		assert.ErrorIs(t, err, apperrors.ErrParse)
	})

	t.Run("http status is a fetch error", func(t *testing.T) {
		_, err := src.Fetch(ctx, srv.URL+"/missing")
		assert.ErrorIs(t, err, apperrors.ErrFetch)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("malformed json is a parse error", func(t *testing.T) {
		_, err := src.Fetch(ctx, srv.URL+"/broken")
		assert.ErrorIs(t, err, apperrors.ErrParse)
	})

	t.Run("unreachable host is a fetch error", func(t *testing.T) {
		_, err := src.Fetch(ctx, "http://127.0.0.1:1/doc")
		assert.ErrorIs(t, err, apperrors.ErrFetch)
	})
}

func TestHTTPSourceBodyLimit(t *testing.T) {
	srv := newTranscriptServer(t)
	src := NewHTTPSource(HTTPConfig{MaxBodyBytes: 10})

	_, err := src.Fetch(context.Background(), srv.URL+"/doc")
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}

type fakeGetter struct {
	objects map[string]string
}

func (f *fakeGetter) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, string, error) {
	body, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, "", os.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(body)), "", nil
}

func TestFetcherRouting(t *testing.T) {
	srv := newTranscriptServer(t)
	dir := t.TempDir()
	local := filepath.Join(dir, "local.srt")
	require.NoError(t, os.WriteFile(local, []byte(sampleSRT), 0o644))

	objects := NewObjectSource(&fakeGetter{objects: map[string]string{
		"transcripts/2024/ep.json": sampleDocument,
	}})
	f := NewFetcher(nil, objects)
	ctx := context.Background()

	tr, err := f.Fetch(ctx, srv.URL+"/doc")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", tr.Metadata.EpisodeTitle)

	tr, err = f.Fetch(ctx, local)
	require.NoError(t, err)
	assert.Equal(t, "local", tr.Metadata.EpisodeTitle)
	assert.Equal(t, "Host", tr.Utterances[0].Speaker)

	tr, err = f.Fetch(ctx, "file://"+local)
	require.NoError(t, err)
	assert.Len(t, tr.Utterances, 2)

	tr, err = f.Fetch(ctx, "s3://transcripts/2024/ep.json")
	require.NoError(t, err)
	assert.Equal(t, "Greetings", tr.Metadata.EpisodeTitle)

	_, err = f.Fetch(ctx, "s3://transcripts/missing.json")
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	_, err = f.Fetch(ctx, "s3://bucket-only")
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	_, err = f.Fetch(ctx, filepath.Join(dir, "nope.json"))
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	_, err = f.Fetch(ctx, "ftp://example.com/x.json")
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	_, err = f.Fetch(ctx, "  ")
	assert.ErrorIs(t, err, apperrors.ErrFetch)

	_, err = NewFetcher(nil, nil).Fetch(ctx, "s3://transcripts/2024/ep.json")
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		name        string
		ref         string
		contentType string
		data        string
		expected    format
	}{
		{"extension json", "x/ep.json", "", "", formatJSON},
		{"extension srt beats content type", "x/ep.srt", "text/plain", "", formatSRT},
		{"content type vtt", "x/ep", "text/vtt; charset=utf-8", "", formatVTT},
		{"content type html", "x/ep", "text/html", "", formatHTML},
		{"sniff json", "x/ep", "application/octet-stream", `  {"a":1}`, formatJSON},
		{"sniff vtt", "x/ep", "", "WEBVTT\n\n", formatVTT},
		{"sniff srt", "x/ep", "", "1\n00:00:00,000 --> 00:00:01,000\nhi", formatSRT},
		{"sniff html", "x/ep", "", "<!DOCTYPE html><html>", formatHTML},
		{"fallback text", "x/ep", "", "hello", formatText},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, detectFormat(tc.ref, tc.contentType, []byte(tc.data)))
		})
	}
}

func TestParseObjectRef(t *testing.T) {
	bucket, key, err := parseObjectRef("s3://b/a/b/c.vtt")
	require.NoError(t, err)
	assert.Equal(t, "b", bucket)
	assert.Equal(t, "a/b/c.vtt", key)
}
