package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_SlidingWindow(t *testing.T) {
	l := NewMemoryLimiter(5, 15*time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
		now = now.Add(time.Minute)
	}

	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "sixth attempt inside the window is refused")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "keys are limited independently")

	// the first attempt (12:00) leaves the window at 12:15
	now = time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)
}

func TestMemoryLimiter_ForgetsIdleKeys(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := l.Allow(ctx, key)
		require.NoError(t, err)
	}
	assert.Len(t, l.hits, 3)

	now = now.Add(2 * time.Minute)
	_, err := l.Allow(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.Len(t, l.hits, 1)
	assert.Contains(t, l.hits, "10.0.0.4")
}
