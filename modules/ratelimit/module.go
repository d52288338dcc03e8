package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RateLimitModule owns the Redis connection used for rate limiting.
type RateLimitModule struct {
	client     *redis.Client
	middleware *Middleware
	config     MiddlewareConfig
	logger     types.Logger
}

var _ mono.Module = (*RateLimitModule)(nil)
var _ mono.HealthCheckableModule = (*RateLimitModule)(nil)

// NewModule creates a new rate limiting module. The middleware is usable
// right away; the connection is verified in Start.
func NewModule(logger types.Logger, opts *redis.Options, config MiddlewareConfig) *RateLimitModule {
	client := redis.NewClient(opts)
	return &RateLimitModule{
		client: client,
		middleware: NewMiddleware(
			NewSlidingWindowLimiter(client, config.IPConfig, config.KeyPrefix+"ip:"),
			NewSlidingWindowLimiter(client, config.UserConfig, config.KeyPrefix+"user:"),
			logger,
		),
		config: config,
		logger: logger,
	}
}

func (m *RateLimitModule) Name() string {
	return "rate-limiter"
}

func (m *RateLimitModule) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	m.logger.Info("Rate limiter started",
		"redis", m.client.Options().Addr,
		"ip_limit", m.config.IPConfig.RequestsPerWindow,
		"user_limit", m.config.UserConfig.RequestsPerWindow)
	return nil
}

func (m *RateLimitModule) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		m.logger.Error("Error closing Redis connection", "error", err)
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info("Rate limiter stopped")
	return nil
}

func (m *RateLimitModule) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Middleware returns the Fiber middleware backed by this module's limiters.
func (m *RateLimitModule) Middleware() *Middleware {
	return m.middleware
}
