// Package identitycache caches display identities (id, name, email) in Redis
// with the cache-aside pattern.
package identitycache

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/mmmtweb2/TodoApp/domain/user"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultPrefix namespaces identity keys.
const DefaultPrefix = "identity:"

// Stats counts cache activity.
type Stats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// Cache answers identity lookups from Redis and loads misses from the user
// directory. Concurrent misses for the same ids share one load. Redis
// failures degrade to loading everything.
type Cache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	logger  types.Logger
	sfGroup singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
	errors atomic.Uint64
}

// New creates a new identity cache.
func New(client *redis.Client, prefix string, ttl time.Duration, logger types.Logger) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Lookup returns the identities for ids that exist, in the order of ids.
func (c *Cache) Lookup(ctx context.Context, ids []string, load func(ctx context.Context, ids []string) ([]user.Identity, error)) ([]user.Identity, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return []user.Identity{}, nil
	}

	found, missing := c.getMany(ctx, ids)
	if len(missing) > 0 {
		c.misses.Add(uint64(len(missing)))

		// The shared load must not fail every waiter when the caller that
		// started it goes away.
		val, err, _ := c.sfGroup.Do(strings.Join(missing, ","), func() (any, error) {
			return load(context.WithoutCancel(ctx), missing)
		})
		if err != nil {
			return nil, err
		}
		loaded, _ := val.([]user.Identity)
		for _, id := range loaded {
			found[id.ID] = id
		}
		c.setMany(ctx, loaded)
	}

	result := make([]user.Identity, 0, len(ids))
	for _, id := range ids {
		if identity, ok := found[id]; ok {
			result = append(result, identity)
		}
	}
	return result, nil
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Errors: c.errors.Load(),
	}
}

// Ping checks if the Redis connection is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) getMany(ctx context.Context, ids []string) (map[string]user.Identity, []string) {
	found := make(map[string]user.Identity, len(ids))

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.prefix + id
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.errors.Add(1)
		c.logger.Warn("Identity cache read failed", "error", err)
		return found, ids
	}

	var missing []string
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var identity user.Identity
		if err := json.Unmarshal([]byte(raw), &identity); err != nil {
			c.errors.Add(1)
			missing = append(missing, ids[i])
			continue
		}
		found[identity.ID] = identity
		c.hits.Add(1)
	}
	return found, missing
}

func (c *Cache) setMany(ctx context.Context, identities []user.Identity) {
	if len(identities) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, identity := range identities {
		data, err := json.Marshal(identity)
		if err != nil {
			c.errors.Add(1)
			continue
		}
		pipe.Set(ctx, c.prefix+identity.ID, data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.errors.Add(1)
		c.logger.Warn("Identity cache write failed", "error", err, "count", len(identities))
	}
}

// dedupe drops empty and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
