package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Server.Port, cfg.Server.Port)
	assert.Equal(t, want.Database.Path, cfg.Database.Path)
	assert.Equal(t, want.JWT.AccessTTL, cfg.JWT.AccessTTL)
	assert.Equal(t, want.RateLimit.IPWindow, cfg.RateLimit.IPWindow)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, ":5000", cfg.Server.Addr())
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
server:
  port: 8080
  shutdown_timeout: 3s
database:
  path: /tmp/custom.db
jwt:
  secret: file-secret
  access_ttl: 30m
redis:
  addr: localhost:6379
  db: 2
rate_limit:
  ip_limit: 10
cache:
  ttl: 1m
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL, "unset keys keep their default")
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 10, cfg.RateLimit.IPLimit)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server:\n  port: 8080\n")

	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TASKS_DATABASE_PATH", "env.db")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env.db", cfg.Database.Path)
}

func TestUsesDefaultSecret(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.UsesDefaultSecret())

	t.Setenv("JWT_SECRET", "rotated")
	cfg, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, cfg.UsesDefaultSecret())
}

func TestLoad_PrefixedEnvWinsOverBareName(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TASKS_SERVER_PORT", "7070")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "server: [unterminated")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: true},
		{name: "blank database path", mutate: func(c *Config) { c.Database.Path = "  " }, wantErr: true},
		{name: "zero access ttl", mutate: func(c *Config) { c.JWT.AccessTTL = 0 }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{
			name: "rate limits ignored without redis",
			mutate: func(c *Config) {
				c.RateLimit.IPLimit = 0
			},
		},
		{
			name: "rate limits checked with redis",
			mutate: func(c *Config) {
				c.Redis.Addr = "localhost:6379"
				c.RateLimit.IPLimit = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
