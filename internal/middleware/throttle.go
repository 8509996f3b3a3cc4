package middleware

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis/v3"
)

// ThrottleConfig configures the per-IP request limit.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
	// Storage holds the counters. Nil keeps them in process memory.
	Storage fiber.Storage
}

// Throttle limits each client IP to Limit requests per fixed Window.
func Throttle(cfg ThrottleConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Limit,
		Expiration: cfg.Window,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "throttle:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}

// NewRedisStorage opens limiter storage on the Redis server at addr.
// The storage driver panics when the server is unreachable, so the
// address is dialed first.
func NewRedisStorage(addr, password string, db int) (fiber.Storage, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis port %q: %w", portStr, err)
	}

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not reachable at %s: %w", addr, err)
	}
	conn.Close()

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: db,
	}), nil
}
