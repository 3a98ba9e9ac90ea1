package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anonto42/memories/backend/internal/metrics"
	"github.com/anonto42/memories/backend/internal/models"
)

// UpdatePost writes the supplied fields of a post owned by the session and
// returns the updated post. Nothing is changed when the write fails.
func (s *PostService) UpdatePost(ctx context.Context, session models.Session, id string, update models.PostUpdate) (*models.Post, error) {
	update = normalizeUpdate(update)
	if update.IsEmpty() {
		return nil, models.NewValidationError("update", "no fields to update")
	}

	existing, err := s.ownedPost(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := s.posts.UpdatePost(ctx, id, update.Fields()); err != nil {
		return nil, fmt.Errorf("update post %s: %w", id, err)
	}

	updated := update.Apply(*existing)
	kept, removed, added := splitAudience(audienceOf(*existing), audienceOf(updated))
	s.reconcileTimelines(ctx, kept, func(list []models.Post) []models.Post {
		list = ReplacePost(list, updated)
		sortByOccurredDesc(list)
		return list
	})
	s.reconcileTimelines(ctx, removed, func(list []models.Post) []models.Post {
		return RemovePost(list, id)
	})
	// newly tagged users' cached lists lack the post entirely
	s.invalidateTimelines(ctx, added...)
	return &updated, nil
}

// DeletePost removes every media object of a post owned by the session,
// then the record. Media deletes are best effort; the record delete is
// attempted regardless of their outcome.
func (s *PostService) DeletePost(ctx context.Context, session models.Session, id string) error {
	post, err := s.ownedPost(ctx, session, id)
	if err != nil {
		return err
	}

	s.deleteMedia(ctx, post.ID, post.MediaItems)

	if err := s.posts.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	metrics.PostsDeletedTotal.Inc()

	s.reconcileTimelines(ctx, audienceOf(*post), func(list []models.Post) []models.Post {
		return RemovePost(list, id)
	})
	if err := s.events.PublishPostDeleted(ctx, *post); err != nil {
		s.logger.Warn().Err(err).Str("post_id", id).Msg("failed to publish post deleted event")
	}
	s.logger.Info().Str("post_id", id).Str("owner_id", session.UserID).Msg("post deleted")
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, session models.Session, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != session.UserID {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrForbidden)
	}
	return post, nil
}

// deleteMedia attempts each delete exactly once, concurrently. Failures are
// logged and leave the object orphaned.
func (s *PostService) deleteMedia(ctx context.Context, postID string, media []models.MediaItem) {
	var wg sync.WaitGroup
	for _, m := range media {
		wg.Add(1)
		go func(m models.MediaItem) {
			defer wg.Done()
			key, err := s.store.KeyFromURL(m.RemoteURL)
			if err == nil {
				err = s.store.Delete(ctx, key)
			}
			if err != nil {
				metrics.MediaDeleteFailuresTotal.Inc()
				s.logger.Error().Err(err).Str("post_id", postID).Str("url", m.RemoteURL).Msg("failed to delete media")
			}
		}(m)
	}
	wg.Wait()
}

// reconcileTimelines rewrites cached timelines of userIDs with fn
func (s *PostService) reconcileTimelines(ctx context.Context, userIDs []string, fn func([]models.Post) []models.Post) {
	for _, uid := range userIDs {
		list, ok, err := s.timelines.Get(ctx, uid)
		if err == nil && ok {
			err = s.timelines.Set(ctx, uid, fn(list))
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", uid).Msg("failed to reconcile cached timeline, dropping it")
			s.invalidateTimelines(ctx, uid)
		}
	}
}

// RemovePost returns list without the post with id
func RemovePost(list []models.Post, id string) []models.Post {
	out := make([]models.Post, 0, len(list))
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// ReplacePost returns list with the post of the same id swapped for post
func ReplacePost(list []models.Post, post models.Post) []models.Post {
	out := make([]models.Post, len(list))
	for i, p := range list {
		if p.ID == post.ID {
			p = post
		}
		out[i] = p
	}
	return out
}

func normalizeUpdate(u models.PostUpdate) models.PostUpdate {
	if u.Location != nil {
		loc := strings.TrimSpace(*u.Location)
		u.Location = &loc
	}
	if u.Tags != nil {
		tags := normalizeTags(*u.Tags)
		u.Tags = &tags
	}
	if u.TaggedPeople != nil {
		people := uniqueNonEmpty(*u.TaggedPeople)
		u.TaggedPeople = &people
	}
	return u
}

// splitAudience partitions users into those in both audiences, only the
// old one and only the new one.
func splitAudience(before, after []string) (kept, removed, added []string) {
	inAfter := make(map[string]bool, len(after))
	for _, id := range after {
		inAfter[id] = true
	}
	inBefore := make(map[string]bool, len(before))
	for _, id := range before {
		inBefore[id] = true
		if inAfter[id] {
			kept = append(kept, id)
		} else {
			removed = append(removed, id)
		}
	}
	for _, id := range after {
		if !inBefore[id] {
			added = append(added, id)
		}
	}
	return kept, removed, added
}
