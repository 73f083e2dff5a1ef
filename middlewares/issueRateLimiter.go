package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRateLimiter caps anonymous submissions per client IP within a
// fixed window. It is a no-op when client is nil or limit is not positive.
type IssueRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewIssueRateLimiter(client *redis.Client, limit int, window time.Duration) *IssueRateLimiter {
	return &IssueRateLimiter{client: client, limit: limit, window: window, prefix: "citycompass:issue-limit"}
}

// Allow counts one submission from ip. It returns the remaining wait
// when the limit is exceeded.
func (l *IssueRateLimiter) Allow(ctx context.Context, ip string) (bool, time.Duration, error) {
	key := l.prefix + ":" + ip

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	// A counter without expiry opens a new window: either this request
	// created it, or an earlier EXPIRE never landed.
	retryAfter := ttl.Val()
	if retryAfter < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, 0, err
		}
		retryAfter = l.window
	}
	if incr.Val() <= int64(l.limit) {
		return true, 0, nil
	}
	return false, retryAfter, nil
}

func (l *IssueRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.client == nil || l.limit <= 0 {
			c.Next()
			return
		}
		ok, retryAfter, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Redis trouble must not block citizens from reporting.
			slog.Warn("issue rate limiter unavailable", "err", err)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			return
		}
		c.Next()
	}
}
