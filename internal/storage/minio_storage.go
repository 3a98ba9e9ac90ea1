package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "application/octet-stream"

// MinioClient is the subset of *minio.Client the store uses
type MinioClient interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinioOptions configures an S3-compatible object store
type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	UseSSL          bool
	// PublicBaseURL addresses the bucket root for reads, e.g. a CDN. When
	// empty, path-style URLs on the endpoint are used.
	PublicBaseURL string
}

// MinioObjectStore stores media in an S3-compatible bucket. Download URLs
// never expire, so the bucket (or the CDN in front of it) must allow
// anonymous reads.
type MinioObjectStore struct {
	client     MinioClient
	bucketName string
	baseURL    *url.URL
}

// NewMinioObjectStore connects to the endpoint with path-style bucket
// lookup, so stored URLs always have the form <base>/<bucket>/<key>.
func NewMinioObjectStore(opts MinioOptions) (*MinioObjectStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure:       opts.UseSSL,
		Region:       opts.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	base := opts.PublicBaseURL
	if base == "" {
		endpoint := client.EndpointURL()
		base = endpoint.Scheme + "://" + endpoint.Host + "/" + url.PathEscape(opts.Bucket)
	}
	return NewMinioObjectStoreWithClient(client, opts.Bucket, base)
}

// NewMinioObjectStoreWithClient creates a MinioObjectStore over an existing
// client. baseURL must address the bucket root.
func NewMinioObjectStoreWithClient(client MinioClient, bucketName, baseURL string) (*MinioObjectStore, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid public base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("public base url %q must be absolute", baseURL)
	}
	return &MinioObjectStore{client: client, bucketName: bucketName, baseURL: u}, nil
}

func (s *MinioObjectStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultContentType
	}
	if size <= 0 {
		size = -1
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, content, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *MinioObjectStore) URL(_ context.Context, key string) (string, error) {
	return s.baseURL.String() + "/" + escapeKey(key), nil
}

func (s *MinioObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *MinioObjectStore) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownURL, err)
	}
	if u.Host != s.baseURL.Host {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, rawURL)
	}
	prefix := s.baseURL.Path + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, rawURL)
	}
	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, rawURL)
	}
	return key, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
