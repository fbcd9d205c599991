package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window counter per client IP kept in Redis.
type RateLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
	Log    *zap.Logger
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, log *zap.Logger) *RateLimiter {
	return &RateLimiter{Redis: client, Prefix: prefix, Limit: limit, Window: time.Minute, Log: log}
}

// Middleware rejects requests over the limit with 429. A nil limiter, nil
// client or a Redis failure lets the request through.
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil || r.Redis == nil || r.Limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", r.Prefix, c.ClientIP())
		ctx := c.Request.Context()

		var incr *redis.IntCmd
		var ttlCmd *redis.DurationCmd
		_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttlCmd = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			r.warn(c, "rate limiter unavailable", err)
			c.Next()
			return
		}
		count, ttl := incr.Val(), ttlCmd.Val()

		// A key without expiry would lock the client out for good, so every
		// request repairs a missing TTL rather than only the first one.
		if ttl < 0 {
			if err := r.Redis.Expire(ctx, key, r.Window).Err(); err != nil {
				r.warn(c, "rate limiter expire failed", err)
			} else {
				ttl = r.Window
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(r.Limit))
		remaining := int64(r.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(r.Limit) {
			if ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			abort(c, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) warn(c *gin.Context, msg string, err error) {
	if r.Log != nil {
		r.Log.Warn(msg, zap.Error(err), zap.String("request_id", GetRequestID(c)))
	}
}
