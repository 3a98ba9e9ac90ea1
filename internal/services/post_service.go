package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/memories/backend/internal/cache"
	"github.com/anonto42/memories/backend/internal/events"
	"github.com/anonto42/memories/backend/internal/metrics"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/repositories"
	"github.com/anonto42/memories/backend/internal/storage"
	"github.com/rs/zerolog"
)

// PostService implements post creation, retrieval and mutation
type PostService struct {
	posts     repositories.PostRepository
	people    *UserService
	store     storage.ObjectStore
	ingester  *MediaIngester
	timelines cache.TimelineCache
	events    events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repositories.PostRepository,
	people *UserService,
	store storage.ObjectStore,
	timelines cache.TimelineCache,
	publisher events.Publisher,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		posts:     postRepo,
		people:    people,
		store:     store,
		ingester:  NewMediaIngester(store, logger),
		timelines: timelines,
		events:    publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreatePost uploads media, then writes the post record. No record is
// written unless every media item was uploaded.
func (s *PostService) CreatePost(ctx context.Context, session models.Session, media []LocalMedia, form models.PostForm) (*models.Post, error) {
	if session.UserID == "" {
		return nil, models.NewValidationError("owner", "an authenticated user is required")
	}
	if len(media) == 0 {
		return nil, models.NewValidationError("media", "at least one media item is required")
	}

	uploaded, err := s.ingester.Ingest(ctx, media)
	if err != nil {
		return nil, err
	}

	record, err := BuildPostRecord(session, uploaded, form, s.now())
	if err != nil {
		return nil, err
	}

	id, err := s.posts.CreatePost(ctx, record)
	if err != nil {
		s.ingester.discard(context.WithoutCancel(ctx), keysOf(s.store, uploaded))
		return nil, fmt.Errorf("create post: %w", err)
	}
	metrics.PostsCreatedTotal.Inc()

	post := record.ToPost(id)
	s.invalidateTimelines(ctx, audienceOf(post)...)
	if err := s.events.PublishPostCreated(ctx, post); err != nil {
		s.logger.Warn().Err(err).Str("post_id", id).Msg("failed to publish post created event")
	}
	s.logger.Info().Str("post_id", id).Str("owner_id", session.UserID).Int("media", len(uploaded)).Msg("post created")
	return &post, nil
}

// GetPost returns a post visible to the session with tagged people resolved
func (s *PostService) GetPost(ctx context.Context, session models.Session, id string) (*models.PostWithPeople, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsVisibleTo(session.UserID) {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return &models.PostWithPeople{
		Post:   *post,
		People: s.people.ResolvePeople(ctx, post.TaggedPeople),
	}, nil
}

// audienceOf lists the users whose timeline contains post
func audienceOf(post models.Post) []string {
	ids := make([]string, 0, len(post.TaggedPeople)+1)
	ids = append(ids, post.OwnerID)
	for _, id := range post.TaggedPeople {
		if id != post.OwnerID {
			ids = append(ids, id)
		}
	}
	return ids
}

func keysOf(store storage.ObjectStore, media []models.MediaItem) []string {
	keys := make([]string, 0, len(media))
	for _, m := range media {
		if key, err := store.KeyFromURL(m.RemoteURL); err == nil {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *PostService) invalidateTimelines(ctx context.Context, userIDs ...string) {
	if err := s.timelines.Invalidate(ctx, userIDs...); err != nil {
		s.logger.Warn().Err(err).Strs("user_ids", userIDs).Msg("failed to invalidate cached timelines")
	}
}
