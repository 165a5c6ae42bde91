package source

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	apperrors "transcript-rag/internal/app/errors"
)

// transcriptTypes orders the podcast:transcript MIME types we can ingest,
// most structured first
var transcriptTypes = []string{
	"application/json",
	"text/vtt",
	"application/x-subrip",
	"application/srt",
	"text/plain",
}

// FeedResolver expands a podcast RSS feed into transcript URLs using the
// podcast namespace <podcast:transcript> item extension
type FeedResolver struct {
	parser *gofeed.Parser
}

// NewFeedResolver creates a resolver. client may be nil.
func NewFeedResolver(client *http.Client) *FeedResolver {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	return &FeedResolver{parser: p}
}

// Resolve returns one transcript URL per item, preferring JSON over captions
// over plain text. Each URL carries the item title as its "title" query
// parameter when the chosen format has no metadata of its own.
func (r *FeedResolver) Resolve(ctx context.Context, feedURL string) ([]string, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, apperrors.Fetch(err, "failed to parse feed %s", feedURL)
	}

	var urls []string
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		best, mimeType := pickTranscript(item.Extensions["podcast"]["transcript"])
		if best == "" {
			continue
		}
		if mimeType != "application/json" && item.Title != "" {
			best = withTitle(best, item.Title)
		}
		urls = append(urls, best)
	}
	return urls, nil
}

func pickTranscript(candidates []ext.Extension) (string, string) {
	bestRank := len(transcriptTypes) + 1
	var bestURL, bestType string
	for _, c := range candidates {
		u := strings.TrimSpace(c.Attrs["url"])
		if u == "" {
			continue
		}
		t := strings.ToLower(strings.TrimSpace(c.Attrs["type"]))
		rank := len(transcriptTypes)
		for i, known := range transcriptTypes {
			if t == known {
				rank = i
				break
			}
		}
		if rank < bestRank {
			bestRank, bestURL, bestType = rank, u, t
		}
	}
	return bestURL, bestType
}

func withTitle(rawURL, title string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Get("title") == "" {
		q.Set("title", title)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
