package services

import (
	"strings"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
)

// BuildPostRecord assembles the record to write for a new post. Location
// and tagged people are attached only when they carry a value.
func BuildPostRecord(session models.Session, media []models.MediaItem, form models.PostForm, now time.Time) (*models.PostRecord, error) {
	if session.UserID == "" {
		return nil, models.NewValidationError("owner", "an authenticated user is required")
	}
	if len(media) == 0 {
		return nil, models.NewValidationError("media", "at least one media item is required")
	}

	occurredAt := form.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	record := &models.PostRecord{
		OwnerID:     session.UserID,
		MediaItems:  media,
		Description: form.Description,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
		Tags:        normalizeTags(form.Tags),
	}
	if location := strings.TrimSpace(form.Location); location != "" {
		record.Location = &location
	}
	if people := uniqueNonEmpty(form.TaggedPeople); len(people) > 0 {
		record.TaggedPeople = people
	}
	return record, nil
}

// normalizeTags trims tags and drops blanks and case-insensitive repeats,
// keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

func uniqueNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
