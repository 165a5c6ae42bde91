package source

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	apperrors "transcript-rag/internal/app/errors"
	"transcript-rag/internal/app/model"
)

// ObjectConfig holds S3-compatible storage credentials
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// ObjectGetter opens an object for reading
type ObjectGetter interface {
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
}

// MinioGetter reads objects through the MinIO client
type MinioGetter struct {
	client *minio.Client
}

// NewMinioGetter creates a client for an S3-compatible endpoint
func NewMinioGetter(cfg ObjectConfig) (*MinioGetter, error) {
	if cfg.Endpoint == "" {
		return nil, apperrors.RequiredField("s3.endpoint")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperrors.Fetch(err, "failed to create object storage client")
	}
	return &MinioGetter{client: client}, nil
}

func (m *MinioGetter) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, "", err
	}
	return obj, info.ContentType, nil
}

// ObjectSource fetches transcripts addressed as s3://bucket/key
type ObjectSource struct {
	getter  ObjectGetter
	maxBody int64
}

func NewObjectSource(getter ObjectGetter) *ObjectSource {
	return &ObjectSource{getter: getter, maxBody: defaultMaxBodyBytes}
}

func (s *ObjectSource) Fetch(ctx context.Context, ref string) (*model.Transcript, error) {
	bucket, key, err := parseObjectRef(ref)
	if err != nil {
		return nil, err
	}

	rc, contentType, err := s.getter.GetObject(ctx, bucket, key)
	if err != nil {
		return nil, apperrors.Fetch(err, "getting %s", ref)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxBody+1))
	if err != nil {
		return nil, apperrors.Fetch(err, "reading %s", ref)
	}
	if int64(len(data)) > s.maxBody {
		return nil, apperrors.Fetch(nil, "%s exceeds %d bytes", ref, s.maxBody)
	}

	f := detectFormat(key, contentType, data)
	if f == formatHTML {
		return nil, apperrors.Parse(nil, "%s is an HTML page, not a transcript", ref)
	}
	hint := metadataFor(key)
	hint.Source = ref
	return decode(data, f, hint)
}

func parseObjectRef(ref string) (string, string, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "s3" {
		return "", "", apperrors.Fetch(err, "invalid object reference %q", ref)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", apperrors.Fetch(nil, "object reference %q needs a bucket and a key", ref)
	}
	return u.Host, key, nil
}
