package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/congo_wallet/internal/auth"
)

const rateLimitWindow = time.Minute

// RateLimit limits money-movement requests per principal (or IP when the
// request is anonymous) to maxPerMin using a Redis counter.
func RateLimit(cache *redis.Client, prefix string, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		subject := c.IP()
		if p, ok := auth.PrincipalFrom(c); ok {
			subject = p.ID
		}
		key := "rl:" + prefix + ":" + subject
		ctx := c.UserContext()

		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		if _, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		}); err != nil {
			logger.Warn("rate limit check failed", slog.String("key", key), slog.Any("error", err))
			return c.Next() // fail-open on cache errors
		}

		// A counter without an expiry would never reset; arm it whenever it is missing.
		if ttl.Val() < 0 {
			if err := cache.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
				logger.Warn("rate limit expiry failed", slog.String("key", key), slog.Any("error", err))
			}
		}
		if incr.Val() > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
		}
		return c.Next()
	}
}
