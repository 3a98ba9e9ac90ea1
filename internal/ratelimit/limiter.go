// Package ratelimit implements sliding-window attempt limits.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter records an attempt for key and reports whether it is allowed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter keeps attempt timestamps in process memory
type MemoryLimiter struct {
	attempts int
	window   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryLimiter(attempts int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		attempts: attempts,
		window:   window,
		now:      time.Now,
		hits:     make(map[string][]time.Time),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(now)
	}
	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.attempts {
		l.hits[key] = recent
		return false, nil
	}
	l.hits[key] = append(recent, now)
	return true, nil
}

// sweep drops keys whose newest attempt has left the window
func (l *MemoryLimiter) sweep(now time.Time) {
	for key, hits := range l.hits {
		if len(hits) == 0 || now.Sub(hits[len(hits)-1]) >= l.window {
			delete(l.hits, key)
		}
	}
	l.lastSweep = now
}

// RedisLimiter shares attempt windows between instances using a sorted set
// per key, scored by attempt time.
type RedisLimiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
	now      func() time.Time
}

func NewRedisLimiter(client *redis.Client, attempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, attempts: attempts, window: window, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixMilli(), 10)

	var count *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
		count = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, err
	}
	if count.Val() >= int64(l.attempts) {
		return false, nil
	}

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}
