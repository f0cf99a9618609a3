package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linklytics/cache"
)

func TestFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.Dial(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	limiter := NewFixedWindow(client, 10, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, "ratelimit:shorten:1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := limiter.Allow(ctx, "ratelimit:shorten:1")
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit must be rejected")

	// A different caller has its own window.
	allowed, err = limiter.Allow(ctx, "ratelimit:shorten:2")
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window resets after it elapses.
	mr.FastForward(16 * time.Minute)
	allowed, err = limiter.Allow(ctx, "ratelimit:shorten:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestFixedWindow_CounterAlwaysCarriesTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.Dial(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	limiter := NewFixedWindow(client, 10, 15*time.Minute)
	ctx := context.Background()

	// The increment and the expiry are applied in one script, so the
	// very first Allow already leaves a bounded key behind.
	_, err = limiter.Allow(ctx, "ratelimit:shorten:3")
	require.NoError(t, err)
	ttl := mr.TTL("ratelimit:shorten:3")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 15*time.Minute)

	// Subsequent increments keep the original window.
	_, err = limiter.Allow(ctx, "ratelimit:shorten:3")
	require.NoError(t, err)
	assert.Greater(t, mr.TTL("ratelimit:shorten:3"), time.Duration(0))
}
