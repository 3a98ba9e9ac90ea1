package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_WritesRecordAfterUploads(t *testing.T) {
	env := newTestEnv(t)
	occurred := time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)

	got, err := env.svc.CreatePost(context.Background(), models.Session{UserID: "me"},
		[]LocalMedia{
			bytesMedia("a.jpg", models.MediaKindImage, "aaa"),
			bytesMedia("b.mp4", models.MediaKindVideo, "bbb"),
		},
		models.PostForm{
			Description:  "picnic",
			OccurredAt:   occurred,
			Tags:         []string{"Food"},
			TaggedPeople: []string{"u2"},
		})
	require.NoError(t, err)

	assert.Equal(t, "post-1", got.ID)
	assert.Equal(t, "me", got.OwnerID)
	assert.Equal(t, occurred, got.OccurredAt)
	require.Len(t, got.MediaItems, 2)
	assert.Equal(t, models.MediaKindVideo, got.MediaItems[1].Kind)
	assert.Equal(t, 1, env.posts.createCalls)
	assert.Equal(t, 2, env.store.objectCount())
	assert.ElementsMatch(t, []string{"me", "u2"}, env.timelines.invalidated)
	assert.Equal(t, []string{"post-1"}, env.events.created)
}

func TestCreatePost_UploadFailureWritesNoRecord(t *testing.T) {
	env := newTestEnv(t)
	env.store.failPut = "b.jpg"

	got, err := env.svc.CreatePost(context.Background(), models.Session{UserID: "me"},
		[]LocalMedia{
			bytesMedia("a.jpg", models.MediaKindImage, "aaa"),
			bytesMedia("b.jpg", models.MediaKindImage, "bbb"),
			bytesMedia("c.jpg", models.MediaKindImage, "ccc"),
		},
		models.PostForm{Description: "x"})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Zero(t, env.posts.createCalls)
	assert.Empty(t, env.events.created)
}

func TestCreatePost_RecordFailureDiscardsUploads(t *testing.T) {
	env := newTestEnv(t)
	env.posts.createErr = errors.New("quota exceeded")

	_, err := env.svc.CreatePost(context.Background(), models.Session{UserID: "me"},
		[]LocalMedia{bytesMedia("a.jpg", models.MediaKindImage, "aaa")},
		models.PostForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Zero(t, env.store.objectCount())
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreatePost(context.Background(), models.Session{}, []LocalMedia{bytesMedia("a.jpg", models.MediaKindImage, "a")}, models.PostForm{})
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = env.svc.CreatePost(context.Background(), models.Session{UserID: "me"}, nil, models.PostForm{})
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Zero(t, env.posts.createCalls)
}

func TestGetPost_Visibility(t *testing.T) {
	env := newTestEnv(t, mkPost("p1", "owner", at(1), "u2", "ghost"))
	env.users.users["u2"] = models.User{ID: "u2", DisplayName: "Ana"}

	got, err := env.svc.GetPost(context.Background(), models.Session{UserID: "u2"}, "p1")
	require.NoError(t, err)
	assert.Equal(t, []models.UserCompact{{ID: "u2", DisplayName: "Ana"}}, got.People)

	_, err = env.svc.GetPost(context.Background(), models.Session{UserID: "stranger"}, "p1")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = env.svc.GetPost(context.Background(), models.Session{UserID: "owner"}, "missing")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
