package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/anonto42/memories/backend/internal/metrics"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/storage"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LocalMedia is a picked media file that has not been uploaded yet
type LocalMedia struct {
	Kind         models.MediaKind
	OriginalName string
	ContentType  string
	Open         func() (io.ReadCloser, error)
}

// MediaIngester moves local media into the object store
type MediaIngester struct {
	store  storage.ObjectStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewMediaIngester(store storage.ObjectStore, logger zerolog.Logger) *MediaIngester {
	return &MediaIngester{store: store, logger: logger, now: time.Now}
}

// Ingest uploads every item concurrently and returns their remote
// addresses in input order. If any upload fails nothing is returned and
// objects already written by this call are removed.
func (in *MediaIngester) Ingest(ctx context.Context, items []LocalMedia) ([]models.MediaItem, error) {
	if len(items) == 0 {
		return nil, models.NewValidationError("media", "at least one media item is required")
	}
	for i, item := range items {
		if !item.Kind.Valid() {
			return nil, models.NewValidationError("media", fmt.Sprintf("item %d has unknown kind %q", i, item.Kind))
		}
		if item.Open == nil {
			return nil, models.NewValidationError("media", fmt.Sprintf("item %d has no content", i))
		}
	}

	results := make([]models.MediaItem, len(items))
	written := make([]string, len(items))

	g, gctx := errgroup.WithContext(ctx)
	for i := range items {
		i := i
		g.Go(func() error {
			key := storage.NewObjectKey(in.now(), items[i].OriginalName)
			if err := in.upload(gctx, key, items[i]); err != nil {
				metrics.MediaUploadsTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("upload media %d: %w", i, err)
			}
			written[i] = key

			url, err := in.store.URL(gctx, key)
			if err != nil {
				metrics.MediaUploadsTotal.WithLabelValues("failed").Inc()
				return fmt.Errorf("resolve media %d url: %w", i, err)
			}
			metrics.MediaUploadsTotal.WithLabelValues("ok").Inc()
			results[i] = models.MediaItem{RemoteURL: url, Kind: items[i].Kind}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		in.discard(context.WithoutCancel(ctx), written)
		return nil, err
	}
	return results, nil
}

func (in *MediaIngester) upload(ctx context.Context, key string, item LocalMedia) error {
	rc, err := item.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", item.OriginalName, err)
	}
	defer rc.Close()

	blob, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", item.OriginalName, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return in.store.Put(ctx, key, bytes.NewReader(blob), int64(len(blob)), item.ContentType)
}

// discard removes objects uploaded by a failed ingestion
func (in *MediaIngester) discard(ctx context.Context, keys []string) {
	var wg sync.WaitGroup
	for _, key := range keys {
		if key == "" {
			continue
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := in.store.Delete(ctx, key); err != nil {
				in.logger.Warn().Err(err).Str("key", key).Msg("failed to discard uploaded media")
			}
		}(key)
	}
	wg.Wait()
}
