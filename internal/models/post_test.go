package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostUpdate_FieldsMarkRemovals(t *testing.T) {
	empty := ""
	none := []string{}
	u := PostUpdate{Location: &empty, TaggedPeople: &none}

	fields := u.Fields()
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, FieldLocation)
	assert.Nil(t, fields[FieldLocation])
	assert.Contains(t, fields, FieldTaggedPeople)
	assert.Nil(t, fields[FieldTaggedPeople])
}

func TestPostUpdate_ApplyLeavesOmittedFields(t *testing.T) {
	when := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	desc := "edited"
	p := Post{ID: "p1", Description: "orig", Location: "Porto", Tags: []string{"Food"}}

	got := (&PostUpdate{Description: &desc, OccurredAt: &when}).Apply(p)
	assert.Equal(t, "edited", got.Description)
	assert.Equal(t, when, got.OccurredAt)
	assert.Equal(t, "Porto", got.Location)
	assert.Equal(t, []string{"Food"}, got.Tags)
	assert.Equal(t, "orig", p.Description, "original is not modified")
}

func TestPostUpdate_IsEmpty(t *testing.T) {
	assert.True(t, (&PostUpdate{}).IsEmpty())
	tags := []string{}
	assert.False(t, (&PostUpdate{Tags: &tags}).IsEmpty())
}

func TestPost_IsVisibleTo(t *testing.T) {
	p := Post{OwnerID: "owner", TaggedPeople: []string{"friend"}}
	assert.True(t, p.IsVisibleTo("owner"))
	assert.True(t, p.IsVisibleTo("friend"))
	assert.False(t, p.IsVisibleTo("stranger"))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("media", "at least one media item is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation error: media: at least one media item is required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "media", ve.Field)
}
