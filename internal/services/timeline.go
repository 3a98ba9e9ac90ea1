package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/anonto42/memories/backend/internal/metrics"
	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/repositories"
	"golang.org/x/sync/errgroup"
)

// Timeline returns every post the session owns or is tagged in, newest
// first. On failure the result is empty, never partial.
func (s *PostService) Timeline(ctx context.Context, session models.Session) ([]models.Post, error) {
	if session.UserID == "" {
		return []models.Post{}, models.NewValidationError("owner", "an authenticated user is required")
	}

	cached, ok, err := s.timelines.Get(ctx, session.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", session.UserID).Msg("failed to read cached timeline")
	}
	if ok {
		return cached, nil
	}

	posts, degraded, err := s.loadTimeline(ctx, session.UserID)
	if err != nil {
		return []models.Post{}, err
	}
	if !degraded {
		if err := s.timelines.Set(ctx, session.UserID, posts); err != nil {
			s.logger.Warn().Err(err).Str("user_id", session.UserID).Msg("failed to cache timeline")
		}
	}
	return posts, nil
}

// loadTimeline queries owned and tagged posts concurrently and merges
// them. When the store cannot serve the compound queries yet it falls back
// to the owned posts only and reports degraded.
func (s *PostService) loadTimeline(ctx context.Context, userID string) ([]models.Post, bool, error) {
	var owned, tagged []models.Post

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.posts.QueryPosts(gctx, models.PostQuery{OwnerID: userID, Ordered: true})
		return err
	})
	g.Go(func() error {
		var err error
		tagged, err = s.posts.QueryPosts(gctx, models.PostQuery{TaggedUserID: userID, Ordered: true})
		return err
	})

	err := g.Wait()
	if err == nil {
		return MergePosts(owned, tagged), false, nil
	}
	if !errors.Is(err, repositories.ErrPrecondition) {
		return nil, false, fmt.Errorf("load timeline: %w", err)
	}

	s.logger.Warn().Err(err).Str("user_id", userID).Msg("timeline query unavailable, falling back to owned posts")
	metrics.TimelineFallbacksTotal.Inc()

	owned, err = s.posts.QueryPosts(ctx, models.PostQuery{OwnerID: userID})
	if err != nil {
		return nil, false, fmt.Errorf("load owned posts: %w", err)
	}
	sortByOccurredDesc(owned)
	return owned, true, nil
}

// MergePosts unions result sets, keeping the first post seen for each id,
// and sorts the union by occurrence time, newest first.
func MergePosts(sets ...[]models.Post) []models.Post {
	total := 0
	for _, set := range sets {
		total += len(set)
	}

	seen := make(map[string]bool, total)
	merged := make([]models.Post, 0, total)
	for _, set := range sets {
		for _, p := range set {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			merged = append(merged, p)
		}
	}
	sortByOccurredDesc(merged)
	return merged
}

func sortByOccurredDesc(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].OccurredAt.Equal(posts[j].OccurredAt) {
			return posts[i].OccurredAt.After(posts[j].OccurredAt)
		}
		return posts[i].ID < posts[j].ID
	})
}

// Feed is the session's timeline narrowed by params
func (s *PostService) Feed(ctx context.Context, session models.Session, params models.SearchParams) ([]models.Post, error) {
	posts, err := s.Timeline(ctx, session)
	if err != nil {
		return posts, err
	}
	return FilterPosts(posts, params), nil
}
