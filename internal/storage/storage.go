// Package storage holds the object stores media is ingested into.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrUnknownURL is returned when a URL was not issued by the store
var ErrUnknownURL = errors.New("url does not reference an object in this store")

// ObjectStore writes, addresses and removes blobs by caller-chosen key
type ObjectStore interface {
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error
	// URL returns a durable download URL for key
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL recovers the key of a URL previously returned by URL
	KeyFromURL(rawURL string) (string, error)
}
