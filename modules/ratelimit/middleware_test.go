package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// countingLimiter is an in-memory fixed budget per key.
type countingLimiter struct {
	mu    sync.Mutex
	limit int
	seen  map[string]int
	err   error
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{limit: limit, seen: map[string]int{}}
}

func (l *countingLimiter) Allow(_ context.Context, key string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.seen[key] >= l.limit {
		return &Result{Allowed: false, ResetAt: time.Now().Add(time.Minute), RetryAfter: 30 * time.Second}, nil
	}
	l.seen[key]++
	return &Result{Allowed: true, Remaining: l.limit - l.seen[key], ResetAt: time.Now().Add(time.Minute)}, nil
}

func (l *countingLimiter) Limit() int { return l.limit }

func TestMiddleware_IPRateLimit(t *testing.T) {
	ip := newCountingLimiter(3)
	m := NewMiddleware(ip, newCountingLimiter(5), &mockLogger{})

	app := fiber.New()
	app.Get("/test", m.IPRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("Request %d: expected status 200, got %d", i+1, resp.StatusCode)
		}
		if limit := resp.Header.Get("X-RateLimit-Limit"); limit != "3" {
			t.Errorf("Expected X-RateLimit-Limit=3, got %s", limit)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode != 429 {
		t.Errorf("Expected status 429, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got != "30" {
		t.Errorf("Expected Retry-After=30, got %q", got)
	}
}

func TestMiddleware_UserRateLimit(t *testing.T) {
	ip := newCountingLimiter(100)
	user := newCountingLimiter(2)
	m := NewMiddleware(ip, user, &mockLogger{})

	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		c.Locals(UserIDLocal, c.Get("X-User"))
		return c.Next()
	}, m.UserRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	send := func(userID string) int {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("X-User", userID)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		return resp.StatusCode
	}

	if send("alice") != 200 || send("alice") != 200 {
		t.Fatal("first two requests for alice should pass")
	}
	if code := send("alice"); code != 429 {
		t.Errorf("third request for alice: expected 429, got %d", code)
	}
	if code := send("bob"); code != 200 {
		t.Errorf("bob has his own budget: expected 200, got %d", code)
	}

	if code := send(""); code != 200 {
		t.Errorf("anonymous request falls back to IP limit: expected 200, got %d", code)
	}
	if len(ip.seen) != 1 {
		t.Errorf("expected the anonymous request to hit the IP limiter, seen=%v", ip.seen)
	}
}

func TestMiddleware_FailsOpen(t *testing.T) {
	ip := newCountingLimiter(1)
	ip.err = errors.New("redis down")
	m := NewMiddleware(ip, ip, &mockLogger{})

	app := fiber.New()
	app.Get("/test", m.IPRateLimit(), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("Request %d: expected 200 while limiter is down, got %d", i+1, resp.StatusCode)
		}
	}
}

func TestDefaultMiddlewareConfig(t *testing.T) {
	cfg := DefaultMiddlewareConfig()
	if cfg.IPConfig.RequestsPerWindow != 100 || cfg.IPConfig.WindowSize != time.Minute {
		t.Errorf("unexpected IP config: %+v", cfg.IPConfig)
	}
	if cfg.UserConfig.RequestsPerWindow != 300 {
		t.Errorf("unexpected user config: %+v", cfg.UserConfig)
	}
	if cfg.KeyPrefix != "ratelimit:" {
		t.Errorf("unexpected prefix %q", cfg.KeyPrefix)
	}
}
