package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/anonto42/memories/backend/internal/repositories"
)

// TagService manages the tag vocabulary offered when composing a post
type TagService struct {
	tags repositories.UserTagRepository
}

func NewTagService(tags repositories.UserTagRepository) *TagService {
	return &TagService{tags: tags}
}

// Vocabulary returns the predefined tags followed by the user's own,
// without case-insensitive duplicates.
func (s *TagService) Vocabulary(ctx context.Context, userID string) ([]string, error) {
	custom, err := s.tags.GetTagsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load tags for %s: %w", userID, err)
	}
	all := make([]string, 0, len(models.PredefinedTags)+len(custom))
	all = append(all, models.PredefinedTags...)
	all = append(all, custom...)
	return normalizeTags(all), nil
}

// AddTag adds tag to the user's vocabulary and returns the updated list.
// A tag already present in any casing is not added twice.
func (s *TagService) AddTag(ctx context.Context, userID, tag string) ([]string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, models.NewValidationError("tag", "tag must not be blank")
	}

	vocabulary, err := s.Vocabulary(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, existing := range vocabulary {
		if strings.EqualFold(existing, tag) {
			return vocabulary, nil
		}
	}

	if err := s.tags.AddTag(ctx, userID, tag); err != nil {
		return nil, fmt.Errorf("add tag %q: %w", tag, err)
	}
	return append(vocabulary, tag), nil
}
