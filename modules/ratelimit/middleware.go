package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// UserIDLocal is the fiber.Ctx local holding the authenticated user id.
const UserIDLocal = "user_id"

// Middleware applies rate limits to Fiber routes. Limiter errors fail open.
type Middleware struct {
	ipLimiter   Limiter
	userLimiter Limiter
	logger      types.Logger
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(ipLimiter, userLimiter Limiter, logger types.Logger) *Middleware {
	return &Middleware{
		ipLimiter:   ipLimiter,
		userLimiter: userLimiter,
		logger:      logger,
	}
}

// IPRateLimit returns middleware that limits requests by client IP.
func (m *Middleware) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Unable to determine client IP address",
			})
		}
		return m.apply(c, m.ipLimiter, ip)
	}
}

// UserRateLimit returns middleware that limits requests by the user id the
// auth middleware stored under UserIDLocal, falling back to the client IP.
func (m *Middleware) UserRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(UserIDLocal).(string)
		if !ok || userID == "" {
			return m.IPRateLimit()(c)
		}
		return m.apply(c, m.userLimiter, userID)
	}
}

func (m *Middleware) apply(c *fiber.Ctx, limiter Limiter, key string) error {
	result, err := limiter.Allow(c.UserContext(), key)
	if err != nil {
		m.logger.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
		return c.Next()
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if !result.Allowed {
		return sendRateLimitExceeded(c, result)
	}
	return c.Next()
}

// sendRateLimitExceeded sends a 429 Too Many Requests response.
func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set("Retry-After", strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"message":     fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retry_after": retryAfter,
	})
}
