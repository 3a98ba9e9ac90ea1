// Package cache keeps merged timelines close to the API.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/memories/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// TimelineCache stores the merged timeline of a user
type TimelineCache interface {
	Get(ctx context.Context, userID string) ([]models.Post, bool, error)
	Set(ctx context.Context, userID string, posts []models.Post) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

type RedisTimelineCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTimelineCache(client *redis.Client, ttl time.Duration) *RedisTimelineCache {
	return &RedisTimelineCache{client: client, ttl: ttl}
}

func timelineKey(userID string) string {
	return fmt.Sprintf("timeline:%s", userID)
}

func (c *RedisTimelineCache) Get(ctx context.Context, userID string) ([]models.Post, bool, error) {
	data, err := c.client.Get(ctx, timelineKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("decode cached timeline: %w", err)
	}
	return posts, true, nil
}

func (c *RedisTimelineCache) Set(ctx context.Context, userID string, posts []models.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, timelineKey(userID), data, c.ttl).Err()
}

func (c *RedisTimelineCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = timelineKey(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// NopTimelineCache never holds anything
type NopTimelineCache struct{}

func (NopTimelineCache) Get(context.Context, string) ([]models.Post, bool, error) {
	return nil, false, nil
}
func (NopTimelineCache) Set(context.Context, string, []models.Post) error { return nil }
func (NopTimelineCache) Invalidate(context.Context, ...string) error { return nil }
