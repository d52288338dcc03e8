package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

const testRedisAddr = "localhost:6379"

func setupRedis(t *testing.T, prefix string) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skip("Redis not available, skipping integration test")
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	prefix := "test:ratelimit:allow:"
	client := setupRedis(t, prefix)
	ctx := context.Background()

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 5, WindowSize: time.Minute}, prefix)

	for i := 0; i < 5; i++ {
		result, err := limiter.Allow(ctx, "key")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !result.Allowed {
			t.Errorf("Request %d should be allowed", i+1)
		}
		if result.Remaining != 5-i-1 {
			t.Errorf("Expected %d remaining, got %d", 5-i-1, result.Remaining)
		}
	}

	result, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Allowed {
		t.Error("6th request should be denied")
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within the window", result.RetryAfter)
	}
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	prefix := "test:ratelimit:slide:"
	client := setupRedis(t, prefix)
	ctx := context.Background()

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 2, WindowSize: time.Minute}, prefix)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if r, err := limiter.Allow(ctx, "key"); err != nil || !r.Allowed {
			t.Fatalf("Request %d: allowed=%v err=%v", i+1, r != nil && r.Allowed, err)
		}
	}
	if r, _ := limiter.Allow(ctx, "key"); r == nil || r.Allowed {
		t.Fatal("third request inside the window should be denied")
	}

	now = now.Add(61 * time.Second)
	r, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !r.Allowed {
		t.Error("request after the window slid should be allowed")
	}
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	prefix := "test:ratelimit:keys:"
	client := setupRedis(t, prefix)
	ctx := context.Background()

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 1, WindowSize: time.Minute}, prefix)

	for _, key := range []string{"a", "b"} {
		r, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !r.Allowed {
			t.Errorf("first request for %s should be allowed", key)
		}
	}
}
