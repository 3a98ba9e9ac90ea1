// Package events announces post lifecycle changes to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/nats-io/nats.go"
)

const (
	SubjectPostCreated = "post.created"
	SubjectPostDeleted = "post.deleted"
)

// Publisher announces post lifecycle events
type Publisher interface {
	PublishPostCreated(ctx context.Context, post models.Post) error
	PublishPostDeleted(ctx context.Context, post models.Post) error
}

// PostEvent is the payload of every post event
type PostEvent struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	TaggedPeople []string  `json:"tagged_people,omitempty"`
	MediaCount   int       `json:"media_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post models.Post) error {
	return p.publish(ctx, SubjectPostCreated, post)
}

func (p *NatsPublisher) PublishPostDeleted(ctx context.Context, post models.Post) error {
	return p.publish(ctx, SubjectPostDeleted, post)
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, post models.Post) error {
	// PublishMsg takes no context
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	data, err := json.Marshal(newPostEvent(post))
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}
	return p.nc.PublishMsg(&nats.Msg{Subject: subject, Data: data})
}

func newPostEvent(post models.Post) PostEvent {
	return PostEvent{
		ID:           post.ID,
		OwnerID:      post.OwnerID,
		TaggedPeople: post.TaggedPeople,
		MediaCount:   len(post.MediaItems),
		OccurredAt:   post.OccurredAt,
	}
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) PublishPostCreated(context.Context, models.Post) error { return nil }
func (NopPublisher) PublishPostDeleted(context.Context, models.Post) error { return nil }
