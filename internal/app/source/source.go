// Package source fetches raw transcript documents and normalizes them into
// model.Transcript values. Adapters never retry; retry policy belongs to the
// caller.
package source

import (
	"context"
	"mime"
	"net/url"
	"path"
	"strings"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

// Source produces a transcript for a reference (URL, object key, path)
type Source interface {
	Fetch(ctx context.Context, ref string) (*model.Transcript, error)
}

// Fetcher routes references to the adapter that understands them:
// http(s) URLs, s3:// objects and local files
type Fetcher struct {
	web     *HTTPSource
	objects *ObjectSource
	files   *FileSource
}

// NewFetcher creates a router. objects may be nil when no object storage is
// configured; s3:// references then fail with a FetchError.
func NewFetcher(web *HTTPSource, objects *ObjectSource) *Fetcher {
	if web == nil {
		web = NewHTTPSource(HTTPConfig{})
	}
	return &Fetcher{web: web, objects: objects, files: NewFileSource()}
}

func (f *Fetcher) Fetch(ctx context.Context, ref string) (*model.Transcript, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.Fetch(nil, "empty transcript reference")
	}

	switch scheme(ref) {
	case "http", "https":
		return f.web.Fetch(ctx, ref)
	case "s3":
		if f.objects == nil {
			return nil, apperrors.Fetch(nil, "object storage is not configured for %s", ref)
		}
		return f.objects.Fetch(ctx, ref)
	case "", "file":
		return f.files.Fetch(ctx, ref)
	default:
		return nil, apperrors.Fetch(nil, "unsupported reference %q", ref)
	}
}

func scheme(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || len(u.Scheme) < 2 {
		// treat Windows drive letters and unparsable input as paths
		return ""
	}
	return strings.ToLower(u.Scheme)
}

type format int

const (
	formatJSON format = iota
	formatVTT
	formatSRT
	formatText
	formatHTML
)

// detectFormat decides by extension, then content type, then content
func detectFormat(ref, contentType string, data []byte) format {
	switch strings.ToLower(path.Ext(refPath(ref))) {
	case ".json":
		return formatJSON
	case ".vtt":
		return formatVTT
	case ".srt":
		return formatSRT
	case ".txt":
		return formatText
	case ".html", ".htm":
		return formatHTML
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch mediaType {
	case "application/json":
		return formatJSON
	case "text/vtt":
		return formatVTT
	case "application/x-subrip", "text/srt":
		return formatSRT
	case "text/html", "application/xhtml+xml":
		return formatHTML
	}

	head := strings.TrimSpace(strings.TrimPrefix(string(prefix(data, 512)), "\ufeff"))
	switch {
	case strings.HasPrefix(head, "{"):
		return formatJSON
	case strings.HasPrefix(head, "WEBVTT"):
		return formatVTT
	case strings.Contains(head, "-->"):
		return formatSRT
	case strings.HasPrefix(strings.ToLower(head), "<!doctype html"), strings.HasPrefix(strings.ToLower(head), "<html"):
		return formatHTML
	}
	return formatText
}

// decode parses a non-HTML body. hint supplies metadata for formats that
// carry none (captions, plain text); JSON documents keep their own.
func decode(data []byte, f format, hint model.TranscriptMetadata) (*model.Transcript, error) {
	switch f {
	case formatJSON:
		return ParseDocument(data)
	case formatVTT:
		return ParseVTT(data, hint)
	case formatSRT:
		return ParseSRT(data, hint)
	case formatText:
		text := strings.TrimSpace(string(data))
		if text == "" {
			return nil, apperrors.Parse(nil, "empty transcript text")
		}
		return &model.Transcript{Metadata: hint, Text: text}, nil
	default:
		return nil, apperrors.Parse(nil, "unsupported transcript format")
	}
}

// metadataFor derives episode metadata from a reference: the "title" query
// parameter when present, else the file base name without extension
func metadataFor(ref string) model.TranscriptMetadata {
	title := ""
	if u, err := url.Parse(ref); err == nil {
		title = strings.TrimSpace(u.Query().Get("title"))
	}
	if title == "" {
		base := path.Base(refPath(ref))
		title = strings.TrimSuffix(base, path.Ext(base))
	}
	return model.TranscriptMetadata{EpisodeTitle: title, Source: ref}
}

func refPath(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		return u.Path
	}
	return strings.ReplaceAll(ref, "\\", "/")
}

func prefix(data []byte, n int) []byte {
	if len(data) < n {
		return data
	}
	return data[:n]
}
