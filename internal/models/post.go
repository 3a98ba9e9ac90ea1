package models

import (
	"time"
)

// MediaKind is the type of a media item attached to a post
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// Valid reports whether k is a known media kind
func (k MediaKind) Valid() bool {
	return k == MediaKindImage || k == MediaKindVideo
}

// Stored field names, shared by every document store adapter.
const (
	FieldOwnerID      = "userId"
	FieldMediaItems   = "mediaUrls"
	FieldDescription  = "description"
	FieldOccurredAt   = "datetime"
	FieldCreatedAt    = "createdAt"
	FieldLocation     = "location"
	FieldTags         = "tags"
	FieldTaggedPeople = "people"
)

// MediaItem is a durable remote media object referenced by a post
type MediaItem struct {
	RemoteURL string    `json:"url" firestore:"url" bson:"url"`
	Kind      MediaKind `json:"type" firestore:"type" bson:"type"`
}

// Post represents a memory as read back from the document store
type Post struct {
	ID           string      `json:"id" firestore:"-" bson:"-"`
	OwnerID      string      `json:"owner_id" firestore:"userId" bson:"userId"`
	MediaItems   []MediaItem `json:"media" firestore:"mediaUrls" bson:"mediaUrls"`
	Description  string      `json:"description" firestore:"description" bson:"description"`
	OccurredAt   time.Time   `json:"occurred_at" firestore:"datetime" bson:"datetime"`
	CreatedAt    time.Time   `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	Location     string      `json:"location,omitempty" firestore:"location,omitempty" bson:"location,omitempty"`
	Tags         []string    `json:"tags" firestore:"tags" bson:"tags"`
	TaggedPeople []string    `json:"tagged_people,omitempty" firestore:"people,omitempty" bson:"people,omitempty"`
}

// IsVisibleTo reports whether userID owns the post or is tagged in it
func (p *Post) IsVisibleTo(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, id := range p.TaggedPeople {
		if id == userID {
			return true
		}
	}
	return false
}

// PostRecord is a new post ready to be written. Required fields are always
// written; Location and TaggedPeople only when set.
type PostRecord struct {
	OwnerID      string
	MediaItems   []MediaItem
	Description  string
	OccurredAt   time.Time
	CreatedAt    time.Time
	Tags         []string
	Location     *string
	TaggedPeople []string
}

// Fields returns the document to write. Absent optional fields have no key.
func (r *PostRecord) Fields() map[string]interface{} {
	media := make([]map[string]interface{}, len(r.MediaItems))
	for i, m := range r.MediaItems {
		media[i] = map[string]interface{}{"url": m.RemoteURL, "type": string(m.Kind)}
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	fields := map[string]interface{}{
		FieldOwnerID:     r.OwnerID,
		FieldMediaItems:  media,
		FieldDescription: r.Description,
		FieldOccurredAt:  r.OccurredAt,
		FieldCreatedAt:   r.CreatedAt,
		FieldTags:        tags,
	}
	if r.Location != nil {
		fields[FieldLocation] = *r.Location
	}
	if len(r.TaggedPeople) > 0 {
		fields[FieldTaggedPeople] = r.TaggedPeople
	}
	return fields
}

// ToPost materializes the record as a Post with the store-assigned id
func (r *PostRecord) ToPost(id string) Post {
	p := Post{
		ID:           id,
		OwnerID:      r.OwnerID,
		MediaItems:   r.MediaItems,
		Description:  r.Description,
		OccurredAt:   r.OccurredAt,
		CreatedAt:    r.CreatedAt,
		Tags:         r.Tags,
		TaggedPeople: r.TaggedPeople,
	}
	if r.Location != nil {
		p.Location = *r.Location
	}
	return p
}

// PostForm is the form state submitted when creating a post
type PostForm struct {
	Description  string
	OccurredAt   time.Time
	Tags         []string
	Location     string
	TaggedPeople []string
}

// PostUpdate is a partial update. Nil fields are left untouched.
type PostUpdate struct {
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location     *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	TaggedPeople *[]string  `json:"tagged_people,omitempty" validate:"omitempty,dive,required"`
	Tags         *[]string  `json:"tags,omitempty" validate:"omitempty,dive,required,max=50"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
}

// IsEmpty reports whether no field was supplied
func (u *PostUpdate) IsEmpty() bool {
	return u.Description == nil && u.Location == nil && u.TaggedPeople == nil && u.Tags == nil && u.OccurredAt == nil
}

// Fields returns the partial document to write. A nil value marks a field
// to remove from the stored document.
func (u *PostUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Description != nil {
		fields[FieldDescription] = *u.Description
	}
	if u.Location != nil {
		if *u.Location == "" {
			fields[FieldLocation] = nil
		} else {
			fields[FieldLocation] = *u.Location
		}
	}
	if u.TaggedPeople != nil {
		if len(*u.TaggedPeople) == 0 {
			fields[FieldTaggedPeople] = nil
		} else {
			fields[FieldTaggedPeople] = *u.TaggedPeople
		}
	}
	if u.Tags != nil {
		tags := *u.Tags
		if tags == nil {
			tags = []string{}
		}
		fields[FieldTags] = tags
	}
	if u.OccurredAt != nil {
		fields[FieldOccurredAt] = *u.OccurredAt
	}
	return fields
}

// Apply returns a copy of p with the update applied
func (u *PostUpdate) Apply(p Post) Post {
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.TaggedPeople != nil {
		p.TaggedPeople = *u.TaggedPeople
	}
	if u.Tags != nil {
		p.Tags = *u.Tags
	}
	if u.OccurredAt != nil {
		p.OccurredAt = *u.OccurredAt
	}
	return p
}

// PostQuery selects posts from the document store
type PostQuery struct {
	OwnerID      string
	TaggedUserID string
	// Ordered asks the store to sort by occurrence time, newest first.
	Ordered bool
}

// PostWithPeople is a post with its tagged people resolved for display
type PostWithPeople struct {
	Post
	People []UserCompact `json:"people"`
}
