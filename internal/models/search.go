package models

import "time"

// SearchParams describes an active filter over a post list
type SearchParams struct {
	Text     string     `json:"text"`
	Date     *time.Time `json:"date,omitempty"`
	Location string     `json:"location,omitempty"`
	Tags     []string   `json:"tags"`
}

// IsEmpty reports whether the params match every post
func (s SearchParams) IsEmpty() bool {
	return s.Text == "" && s.Date == nil && s.Location == "" && len(s.Tags) == 0
}
