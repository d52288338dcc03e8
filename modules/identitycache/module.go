package identitycache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

// CacheModule owns the Redis connection behind the identity cache.
type CacheModule struct {
	client *redis.Client
	cache  *Cache
	logger types.Logger
}

var _ mono.Module = (*CacheModule)(nil)
var _ mono.HealthCheckableModule = (*CacheModule)(nil)

// NewModule creates a new identity cache module. The cache is usable right
// away; the connection is verified in Start.
func NewModule(logger types.Logger, opts *redis.Options, ttl time.Duration) *CacheModule {
	client := redis.NewClient(opts)
	return &CacheModule{
		client: client,
		cache:  New(client, DefaultPrefix, ttl, logger),
		logger: logger,
	}
}

func (m *CacheModule) Name() string {
	return "identity-cache"
}

func (m *CacheModule) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	m.logger.Info("Identity cache started", "redis", m.client.Options().Addr, "ttl", m.cache.ttl)
	return nil
}

func (m *CacheModule) Stop(_ context.Context) error {
	stats := m.cache.GetStats()
	if err := m.client.Close(); err != nil {
		m.logger.Error("Error closing Redis connection", "error", err)
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info("Identity cache stopped", "hits", stats.Hits, "misses", stats.Misses, "errors", stats.Errors)
	return nil
}

func (m *CacheModule) Health(ctx context.Context) mono.HealthStatus {
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	stats := m.cache.GetStats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"hits":   stats.Hits,
			"misses": stats.Misses,
		},
	}
}

// Cache returns the identity cache.
func (m *CacheModule) Cache() *Cache {
	return m.cache
}
