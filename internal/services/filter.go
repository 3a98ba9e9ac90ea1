package services

import (
	"strings"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
)

// FilterPosts returns the posts matching every predicate of params, in
// their original order. posts is not modified.
func FilterPosts(posts []models.Post, params models.SearchParams) []models.Post {
	text := strings.ToLower(strings.TrimSpace(params.Text))
	location := strings.ToLower(strings.TrimSpace(params.Location))
	tags := make([]string, 0, len(params.Tags))
	for _, t := range params.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if text != "" && !strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}
		if params.Date != nil && !sameDay(p.OccurredAt, *params.Date) {
			continue
		}
		if location != "" && (p.Location == "" || !strings.Contains(strings.ToLower(p.Location), location)) {
			continue
		}
		if len(tags) > 0 && !matchesAnyTag(p.Tags, tags) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// sameDay compares calendar dates in the location of day
func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func matchesAnyTag(postTags, wanted []string) bool {
	for _, w := range wanted {
		for _, pt := range postTags {
			if strings.Contains(strings.ToLower(pt), w) {
				return true
			}
		}
	}
	return false
}

// ParseSearchParams builds params from a search box query. Words starting
// with '#' become tag filters; the remaining words are the text filter.
func ParseSearchParams(query string, date *time.Time, location string, tags []string) models.SearchParams {
	params := models.SearchParams{
		Date:     date,
		Location: strings.TrimSpace(location),
		Tags:     make([]string, 0, len(tags)),
	}
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			params.Tags = append(params.Tags, t)
		}
	}

	words := make([]string, 0)
	for _, w := range strings.Fields(query) {
		if strings.HasPrefix(w, "#") {
			if tag := strings.TrimLeft(w, "#"); tag != "" {
				params.Tags = append(params.Tags, tag)
			}
			continue
		}
		words = append(words, w)
	}
	params.Text = strings.Join(words, " ")
	return params
}
