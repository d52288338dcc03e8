// Package ratelimit provides a Redis sliding-window rate limiter and the
// Fiber middleware that applies it per client IP and per signed-in user.
package ratelimit

import (
	"context"
	"time"
)

// Config holds one limit.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter is only set when the request was denied.
	RetryAfter time.Duration
}

// Limiter decides whether the request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	Limit() int
}

// MiddlewareConfig configures both limits and the Redis key namespace.
type MiddlewareConfig struct {
	IPConfig   Config
	UserConfig Config
	KeyPrefix  string
}

// DefaultMiddlewareConfig returns 100 requests per minute per IP and 300 per
// minute per user.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		IPConfig: Config{
			RequestsPerWindow: 100,
			WindowSize:        time.Minute,
		},
		UserConfig: Config{
			RequestsPerWindow: 300,
			WindowSize:        time.Minute,
		},
		KeyPrefix: "ratelimit:",
	}
}
