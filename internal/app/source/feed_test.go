package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "transcript-rag/internal/app/errors"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:podcast="https://podcastindex.org/namespace/1.0">
<channel>
	<title>Example Cast</title>
	<item>
		<title>Episode 1</title>
		<podcast:transcript url="https://cdn.example.com/ep1.txt" type="text/plain" />
		<podcast:transcript url="https://cdn.example.com/ep1.json" type="application/json" />
		<podcast:transcript url="https://cdn.example.com/ep1.vtt" type="text/vtt" />
	</item>
	<item>
		<title>Episode 2</title>
		<podcast:transcript url="https://cdn.example.com/ep2.srt" type="application/x-subrip" />
	</item>
	<item>
		<title>Episode 3 has no transcript</title>
	</item>
</channel>
</rss>`

func TestFeedResolverResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	urls, err := NewFeedResolver(nil).Resolve(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://cdn.example.com/ep1.json",
		"https://cdn.example.com/ep2.srt?title=Episode+2",
	}, urls)
}

func TestFeedResolverErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not a feed")
	}))
	defer srv.Close()

	_, err := NewFeedResolver(srv.Client()).Resolve(context.Background(), srv.URL)
	assert.ErrorIs(t, err, apperrors.ErrFetch)
}
