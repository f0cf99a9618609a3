package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Dial(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisCache(client)
}

func TestGet_MissAndHit(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "url:none")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetEX(ctx, "url:abc", "https://example.com", time.Hour))
	value, err := c.Get(ctx, "url:abc")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", value)
	assert.Greater(t, mr.TTL("url:abc"), 59*time.Minute)
}

func TestGet_ExpiredEntryIsAMiss(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetEX(ctx, "url:abc", "https://example.com", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, "url:abc")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelPattern(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetEX(ctx, TopicKey("acquisition", 1), "{}", time.Hour))
	require.NoError(t, c.SetEX(ctx, TopicKey("retention", 1), "{}", time.Hour))
	require.NoError(t, c.SetEX(ctx, TopicKey("acquisition", 2), "{}", time.Hour))
	require.NoError(t, c.SetEX(ctx, OverallKey(1), "{}", time.Hour))

	require.NoError(t, c.DelPattern(ctx, TopicPattern(1)))

	assert.False(t, mr.Exists(TopicKey("acquisition", 1)))
	assert.False(t, mr.Exists(TopicKey("retention", 1)))
	assert.True(t, mr.Exists(TopicKey("acquisition", 2)))
	assert.True(t, mr.Exists(OverallKey(1)))
}

func TestDelPattern_NoMatches(t *testing.T) {
	_, c := newRedisCache(t)
	assert.NoError(t, c.DelPattern(context.Background(), TopicPattern(99)))
}

func TestFetch_ComputesOnceThenServesCached(t *testing.T) {
	_, c := newRedisCache(t)
	ctx := context.Background()
	log := zap.NewNop()

	computed := 0
	compute := func() (map[string]int, error) {
		computed++
		return map[string]int{"clicks": 5}, nil
	}

	first, err := Fetch(ctx, c, log, "analytics:abc:1", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 5, first["clicks"])

	second, err := Fetch(ctx, c, log, "analytics:abc:1", time.Hour, compute)
	require.NoError(t, err)
	assert.Equal(t, 5, second["clicks"])

	assert.Equal(t, 1, computed)
}

func TestFetch_ComputeErrorIsNotCached(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()
	log := zap.NewNop()

	wantErr := errors.New("boom")
	_, err := Fetch(ctx, c, log, "analytics:bad:1", time.Hour, func() (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, mr.Exists("analytics:bad:1"))
}

func TestFetch_RecomputesAfterExpiry(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()
	log := zap.NewNop()

	computed := 0
	compute := func() (int, error) {
		computed++
		return computed, nil
	}

	value, err := Fetch(ctx, c, log, "overall:1", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	mr.FastForward(2 * time.Minute)

	value, err = Fetch(ctx, c, log, "overall:1", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestKeyNamespaces(t *testing.T) {
	assert.Equal(t, "url:abc", URLKey("abc"))
	assert.Equal(t, "analytics:abc:7", AnalyticsKey("abc", 7))
	assert.Equal(t, "topic:retention:7", TopicKey("retention", 7))
	assert.Equal(t, "topic:*:7", TopicPattern(7))
	assert.Equal(t, "overall:7", OverallKey(7))
}
