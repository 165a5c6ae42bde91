package source

import (
	"context"
	"net/url"
	"os"
	"strings"

	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

// FileSource reads transcripts from the local filesystem. Both plain paths
// and file:// URLs are accepted.
type FileSource struct{}

func NewFileSource() *FileSource {
	return &FileSource{}
}

func (s *FileSource) Fetch(ctx context.Context, ref string) (*model.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Fetch(err, "reading %s", ref)
	}

	p := ref
	if strings.HasPrefix(ref, "file://") {
		u, err := url.Parse(ref)
		if err != nil {
			return nil, apperrors.Fetch(err, "invalid file url %s", ref)
		}
		p = u.Path
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return nil, apperrors.Fetch(err, "reading %s", p)
	}

	f := detectFormat(p, "", data)
	if f == formatHTML {
		return nil, apperrors.Parse(nil, "%s is an HTML page, not a transcript", p)
	}
	return decode(data, f, metadataFor(p))
}
