package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	fiberredis "github.com/gofiber/storage/redis/v3"
	"github.com/redis/go-redis/v9"
)

// RateLimit builds a sliding-window limiter backed by the shared Redis
// connection, so limits hold across replicas.
func RateLimit(rdb *redis.Client, max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Storage:           fiberredis.NewFromConnection(rdb),
		Max:               max,
		Expiration:        window,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}
