package services

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabulary_PredefinedThenCustom(t *testing.T) {
	repo := &fakeTagRepo{tags: map[string][]string{"u1": {"Skiing", "food"}}}
	svc := NewTagService(repo)

	got, err := svc.Vocabulary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.PredefinedTags, got[:len(models.PredefinedTags)])
	assert.Equal(t, "Skiing", got[len(got)-1])
	assert.NotContains(t, got, "food", "case-insensitive duplicate of Food")
}

func TestAddTag(t *testing.T) {
	repo := &fakeTagRepo{tags: map[string][]string{}}
	svc := NewTagService(repo)

	got, err := svc.AddTag(context.Background(), "u1", "  Skiing ")
	require.NoError(t, err)
	assert.Contains(t, got, "Skiing")
	assert.Equal(t, []string{"Skiing"}, repo.tags["u1"])

	_, err = svc.AddTag(context.Background(), "u1", "skiing")
	require.NoError(t, err)
	_, err = svc.AddTag(context.Background(), "u1", "TRAVEL")
	require.NoError(t, err)
	assert.Equal(t, []string{"Skiing"}, repo.tags["u1"], "existing tags are not added twice")

	_, err = svc.AddTag(context.Background(), "u1", "   ")
	assert.True(t, errors.Is(err, models.ErrValidation))
}
