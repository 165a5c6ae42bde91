package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

const (
	defaultHTTPTimeout  = 30 * time.Second
	defaultMaxBodyBytes = 32 << 20
	defaultUserAgent    = "trag/1.0 (+transcript ingestion)"
)

// HTTPConfig configures HTTPSource. Zero values select defaults.
type HTTPConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Client       *http.Client
}

// HTTPSource fetches transcripts over HTTP. JSON documents, captions and
// plain text are decoded directly; HTML episode pages are scanned for a
// transcript link which is then fetched.
type HTTPSource struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &HTTPSource{client: client, userAgent: ua, maxBody: maxBody}
}

func (s *HTTPSource) Fetch(ctx context.Context, ref string) (*model.Transcript, error) {
	body, contentType, err := s.get(ctx, ref)
	if err != nil {
		return nil, err
	}

	f := detectFormat(ref, contentType, body)
	if f == formatHTML {
		return s.fromPage(ctx, ref, body)
	}
	return decode(body, f, metadataFor(ref))
}

// get returns the body and content type. Transport failures, non-2xx
// statuses and truncated bodies are FetchErrors.
func (s *HTTPSource) get(ctx context.Context, ref string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", apperrors.Fetch(err, "invalid url %s", ref)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json, text/vtt, application/x-subrip, text/plain, text/html;q=0.9, */*;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", apperrors.Fetch(err, "request to %s failed", ref)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, "", apperrors.Fetch(fmt.Errorf("status %d: %s", resp.StatusCode, snippet), "fetching %s", ref)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, "", apperrors.Fetch(err, "reading %s", ref)
	}
	if int64(len(body)) > s.maxBody {
		return nil, "", apperrors.Fetch(nil, "%s exceeds %d bytes", ref, s.maxBody)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
