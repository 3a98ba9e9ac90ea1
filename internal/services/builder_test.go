package services

import (
	"errors"
	"testing"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMedia = []models.MediaItem{{RemoteURL: "https://objects.test/posts/1-a.jpg", Kind: models.MediaKindImage}}

func TestBuildPostRecord_OmitsAbsentOptionalFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	record, err := BuildPostRecord(models.Session{UserID: "u1"}, testMedia, models.PostForm{
		Description: "beach trip",
		Location:    "   ",
	}, now)
	require.NoError(t, err)

	fields := record.Fields()
	assert.NotContains(t, fields, models.FieldLocation)
	assert.NotContains(t, fields, models.FieldTaggedPeople)
	assert.Equal(t, []string{}, fields[models.FieldTags])
	assert.Equal(t, "u1", fields[models.FieldOwnerID])
	assert.Equal(t, now, fields[models.FieldOccurredAt], "missing occurrence time defaults to now")
	assert.Equal(t, now, fields[models.FieldCreatedAt])
}

func TestBuildPostRecord_KeepsProvidedFields(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	occurred := time.Date(2023, 8, 14, 9, 30, 0, 0, time.UTC)
	record, err := BuildPostRecord(models.Session{UserID: "u1"}, testMedia, models.PostForm{
		Description:  "hike",
		OccurredAt:   occurred,
		Location:     " Alps ",
		Tags:         []string{"Nature", "nature", " ", "Travel"},
		TaggedPeople: []string{"u2", "u2", "", "u3"},
	}, now)
	require.NoError(t, err)

	fields := record.Fields()
	assert.Equal(t, "Alps", fields[models.FieldLocation])
	assert.Equal(t, []string{"u2", "u3"}, fields[models.FieldTaggedPeople])
	assert.Equal(t, []string{"Nature", "Travel"}, fields[models.FieldTags])
	assert.Equal(t, occurred, fields[models.FieldOccurredAt])
	assert.Equal(t, []map[string]interface{}{{"url": testMedia[0].RemoteURL, "type": "image"}}, fields[models.FieldMediaItems])
}

func TestBuildPostRecord_Validation(t *testing.T) {
	now := time.Now()
	_, err := BuildPostRecord(models.Session{}, testMedia, models.PostForm{}, now)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = BuildPostRecord(models.Session{UserID: "u1"}, nil, models.PostForm{}, now)
	assert.True(t, errors.Is(err, models.ErrValidation))
}
