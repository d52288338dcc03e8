// Package config loads runtime settings for the task server from an optional
// config.yaml file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TASKS_SERVER_PORT.
const EnvPrefix = "TASKS"

// Config holds every tunable of the server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	LogLevel  string
}

// ServerConfig configures the HTTP listener and shutdown behaviour.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// Addr returns the Fiber listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// DatabaseConfig points at the SQLite file shared by the auth and task modules.
type DatabaseConfig struct {
	Path string
}

// JWTConfig configures bearer token signing.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// RedisConfig configures the optional Redis connection. An empty Addr
// disables rate limiting and the identity cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// RateLimitConfig holds the sliding-window limits.
type RateLimitConfig struct {
	IPLimit    int
	IPWindow   time.Duration
	UserLimit  int
	UserWindow time.Duration
}

// CacheConfig configures the identity cache.
type CacheConfig struct {
	TTL time.Duration
}

// DefaultJWTSecret is the signing key used when none is configured. It is
// public, so tokens signed with it can be forged.
const DefaultJWTSecret = "change-me-in-production"

// UsesDefaultSecret reports whether tokens would be signed with DefaultJWTSecret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "tasks.db",
		},
		JWT: JWTConfig{
			Secret:     DefaultJWTSecret,
			Issuer:     "shared-tasks",
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			IPLimit:    100,
			IPWindow:   time.Minute,
			UserLimit:  300,
			UserWindow: time.Minute,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load reads config.yaml from dir (if present) and applies environment
// overrides on top of the defaults. PORT and JWT_SECRET are honoured without
// the prefix so existing deployments keep working.
func Load(dir string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("jwt.secret", cfg.JWT.Secret)
	v.SetDefault("jwt.issuer", cfg.JWT.Issuer)
	v.SetDefault("jwt.access_ttl", cfg.JWT.AccessTTL)
	v.SetDefault("jwt.refresh_ttl", cfg.JWT.RefreshTTL)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit.ip_limit", cfg.RateLimit.IPLimit)
	v.SetDefault("rate_limit.ip_window", cfg.RateLimit.IPWindow)
	v.SetDefault("rate_limit.user_limit", cfg.RateLimit.UserLimit)
	v.SetDefault("rate_limit.user_window", cfg.RateLimit.UserWindow)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("log.level", cfg.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding port env: %w", err)
	}
	if err := v.BindEnv("jwt.secret", EnvPrefix+"_JWT_SECRET", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("binding jwt secret env: %w", err)
	}

	if dir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config.yaml: %w", err)
			}
		}
	}

	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	cfg.Database.Path = v.GetString("database.path")
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.Issuer = v.GetString("jwt.issuer")
	cfg.JWT.AccessTTL = v.GetDuration("jwt.access_ttl")
	cfg.JWT.RefreshTTL = v.GetDuration("jwt.refresh_ttl")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.RateLimit.IPLimit = v.GetInt("rate_limit.ip_limit")
	cfg.RateLimit.IPWindow = v.GetDuration("rate_limit.ip_window")
	cfg.RateLimit.UserLimit = v.GetInt("rate_limit.user_limit")
	cfg.RateLimit.UserWindow = v.GetDuration("rate_limit.user_window")
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	cfg.LogLevel = v.GetString("log.level")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("jwt token lifetimes must be positive")
	}
	if c.Redis.Enabled() {
		if c.RateLimit.IPLimit <= 0 || c.RateLimit.UserLimit <= 0 {
			return fmt.Errorf("rate limits must be positive")
		}
		if c.RateLimit.IPWindow <= 0 || c.RateLimit.UserWindow <= 0 {
			return fmt.Errorf("rate limit windows must be positive")
		}
	}
	switch c.LogLevel {
	case "info", "error":
	default:
		return fmt.Errorf("log.level %q is not one of info, error", c.LogLevel)
	}
	return nil
}
