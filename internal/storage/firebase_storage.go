package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const (
	downloadTokenKey = "firebaseStorageDownloadTokens"
	downloadURLHost  = "firebasestorage.googleapis.com"
)

// FirebaseObjectStore stores media in the Firebase Storage bucket and issues
// token-bearing download URLs, the same ones the Firebase client SDKs return.
type FirebaseObjectStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewFirebaseObjectStore creates a FirebaseObjectStore over bucket
func NewFirebaseObjectStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseObjectStore {
	return &FirebaseObjectStore{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseObjectStore) Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: uuid.NewString()}

	if _, err := io.Copy(w, content); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", key, err)
	}
	return nil
}

func (s *FirebaseObjectStore) URL(ctx context.Context, key string) (string, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("read object %s: %w", key, err)
	}
	token := attrs.Metadata[downloadTokenKey]
	if i := strings.IndexByte(token, ','); i >= 0 {
		token = token[:i]
	}
	if token == "" {
		return "", fmt.Errorf("object %s has no download token", key)
	}
	return fmt.Sprintf("https://%s/v0/b/%s/o/%s?alt=media&token=%s",
		downloadURLHost, s.bucketName, url.PathEscape(key), url.QueryEscape(token)), nil
}

func (s *FirebaseObjectStore) Delete(ctx context.Context, key string) error {
	if err := s.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

func (s *FirebaseObjectStore) KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownURL, err)
	}
	prefix := "/v0/b/" + s.bucketName + "/o/"
	escaped := u.EscapedPath()
	if u.Host != downloadURLHost || !strings.HasPrefix(escaped, prefix) {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, rawURL)
	}
	key, err := url.PathUnescape(strings.TrimPrefix(escaped, prefix))
	if err != nil || key == "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownURL, rawURL)
	}
	return key, nil
}
