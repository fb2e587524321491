package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig mirrors pkg/config.RateLimitingConfig: a fixed request
// budget per window, keyed by IP or, when ByUser is set, by the requesting
// vehicle owner.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	ByUser      bool
}

// DefaultRateLimitConfig returns the fallback budget used when the
// rate_limiting config block is absent or zero-valued: 100 requests/minute
// per caller.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 100,
		Window:      time.Minute,
	}
}

// RateLimit creates a rate limiting middleware with default config.
func RateLimit() fiber.Handler {
	return RateLimitWithConfig(DefaultRateLimitConfig())
}

// RateLimitWithConfig creates a rate limiting middleware from the
// scheduler's rate_limiting config block, falling back to
// DefaultRateLimitConfig for any zero-valued field.
func RateLimitWithConfig(cfg RateLimitConfig) fiber.Handler {
	defaults := DefaultRateLimitConfig()
	max := cfg.MaxRequests
	if max <= 0 {
		max = defaults.MaxRequests
	}
	window := cfg.Window
	if window <= 0 {
		window = defaults.Window
	}

	keyGenerator := func(c *fiber.Ctx) string {
		return c.IP()
	}
	if cfg.ByUser {
		keyGenerator = func(c *fiber.Ctx) string {
			if owner := c.Get("X-Vehicle-Owner-ID"); owner != "" {
				return owner
			}
			return c.IP()
		}
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   window,
		KeyGenerator: keyGenerator,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		},
	})
}
