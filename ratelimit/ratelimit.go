package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"linklytics/auth"
)

// FixedWindow is a Redis-backed fixed-window counter: INCR the key for
// the current window, arm the expiry on first increment, reject once
// the count passes the limit. All instances share the same counters.
type FixedWindow struct {
	client *redis.Client
	limit  int64
	window time.Duration
	script *redis.Script
}

// Increment and expiry must be one atomic step; a counter that loses
// its TTL would lock its caller out forever once the limit is crossed.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`)

func NewFixedWindow(client *redis.Client, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{client: client, limit: limit, window: window, script: fixedWindowScript}
}

func (f *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	result, err := f.script.Run(ctx, f.client, []string{key}, int(f.window.Seconds())).Int64()
	if err != nil {
		return false, err
	}
	return result <= f.limit, nil
}

// CreationLimit guards the shorten endpoint: 10 creations per 15
// minutes per authenticated user. When the limiter itself is down the
// request goes through; admission control is not worth an outage.
func CreationLimit(limiter *FixedWindow, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var key string
		if userID, ok := auth.GetUserID(c); ok {
			key = fmt.Sprintf("ratelimit:shorten:%d", userID)
		} else {
			key = "ratelimit:shorten:ip:" + c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many URL creation requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
