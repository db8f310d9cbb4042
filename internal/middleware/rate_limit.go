package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-user rate limiter middleware instance.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return rateLimitKey(c, identifier)
		},
	})
}

// rateLimitKey buckets authenticated callers by user id and everyone else by IP.
func rateLimitKey(c *fiber.Ctx, identifier string) string {
	subject := c.IP()
	if value := c.Locals("user_id"); value != nil {
		if userID := strings.TrimSpace(fmt.Sprintf("%v", value)); userID != "" && userID != "0" {
			subject = userID
		}
	}
	return fmt.Sprintf("%s:%s", identifier, subject)
}
