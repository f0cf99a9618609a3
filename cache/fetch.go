package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Fetch is the cache-aside read path shared by every analytics query
// shape: return the cached value when present, otherwise compute, store
// with the given TTL, and return. Cache failures on either side degrade
// to plain computation; only compute errors reach the caller.
func Fetch[T any](ctx context.Context, c Cache, log *zap.Logger, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	var zero T

	raw, err := c.Get(ctx, key)
	if err == nil {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		log.Warn("dropping undecodable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	value, err := compute()
	if err != nil {
		return zero, err
	}

	if encoded, err := json.Marshal(value); err == nil {
		if err := c.SetEX(ctx, key, string(encoded), ttl); err != nil {
			log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}
