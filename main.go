package main

import (
	"context"
	"fmt"
	"log"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/mmmtweb2/TodoApp/config"
	"github.com/mmmtweb2/TodoApp/modules/api"
	"github.com/mmmtweb2/TodoApp/modules/auth"
	"github.com/mmmtweb2/TodoApp/modules/identitycache"
	"github.com/mmmtweb2/TodoApp/modules/notification"
	"github.com/mmmtweb2/TodoApp/modules/ratelimit"
	"github.com/mmmtweb2/TodoApp/modules/task"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// Set by ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Shared task manager server",
	Long: `Shared task manager server.

Users own tasks with sub-tasks, due dates and priorities, and share them
with other users at VIEW, EDIT or ADMIN permission.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		os.Exit(serve(cfg))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tasks %s\ncommit: %s\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// serve runs the application until a shutdown signal arrives and returns the
// process exit code.
func serve(cfg *config.Config) int {
	log.Println("=== Shared Task Manager ===")

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == "error" {
		logLevel = mono.LogLevelError
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return 1
	}
	logger := app.Logger()
	if cfg.UsesDefaultSecret() {
		logger.Warn("Signing tokens with the built-in default secret; set JWT_SECRET before exposing this server")
	}

	authModule := auth.NewModule(logger.WithModule("auth"),
		auth.WithDBPath(cfg.Database.Path),
		auth.WithJWTConfig(auth.JWTConfig{
			SecretKey:            cfg.JWT.Secret,
			AccessTokenDuration:  cfg.JWT.AccessTTL,
			RefreshTokenDuration: cfg.JWT.RefreshTTL,
			Issuer:               cfg.JWT.Issuer,
		}),
	)
	taskOpts := []task.Option{task.WithDBPath(cfg.Database.Path)}
	apiOpts := []api.Option{api.WithAddr(cfg.Server.Addr())}

	// Redis-backed modules are optional; without an address the server runs
	// unlimited and uncached.
	if cfg.Redis.Enabled() {
		redisOpts := &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}

		limiter := ratelimit.NewModule(logger.WithModule("rate-limiter"), redisOpts, ratelimit.MiddlewareConfig{
			IPConfig:   ratelimit.Config{RequestsPerWindow: cfg.RateLimit.IPLimit, WindowSize: cfg.RateLimit.IPWindow},
			UserConfig: ratelimit.Config{RequestsPerWindow: cfg.RateLimit.UserLimit, WindowSize: cfg.RateLimit.UserWindow},
			KeyPrefix:  ratelimit.DefaultMiddlewareConfig().KeyPrefix,
		})
		cache := identitycache.NewModule(logger.WithModule("identity-cache"), redisOpts, cfg.Cache.TTL)

		app.Register(limiter)
		app.Register(cache)

		taskOpts = append(taskOpts, task.WithIdentityCache(cache.Cache()))
		apiOpts = append(apiOpts,
			api.WithRateLimiter(limiter.Middleware()),
			api.WithHealthChecks(limiter, cache),
		)
	}

	taskModule := task.NewModule(logger.WithModule("task"), taskOpts...)
	apiOpts = append(apiOpts, api.WithHealthChecks(authModule, taskModule))

	// Order: independent modules first, then dependent modules
	app.Register(authModule)
	app.Register(taskModule)
	app.Register(notification.NewModule(logger.WithModule("notification"), notification.DefaultInboxSize))
	app.Register(api.NewModule(logger.WithModule("api"), apiOpts...))

	if err := app.Start(context.Background()); err != nil {
		log.Printf("Failed to start application: %v", err)
		return 1
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	return exitCode
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("Database: %s", cfg.Database.Path)
	if cfg.Redis.Enabled() {
		log.Printf("Redis: %s (rate limiting and identity cache enabled)", cfg.Redis.Addr)
	} else {
		log.Println("Redis: disabled")
	}
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", cfg.Server.Addr())
	log.Println("")
	log.Println("  Public Endpoints:")
	log.Println("  GET    /api/health                          - Health check")
	log.Println("  POST   /api/auth/register                   - Register a new user")
	log.Println("  POST   /api/auth/login                      - Login and get tokens")
	log.Println("  POST   /api/auth/refresh                    - Refresh access token")
	log.Println("")
	log.Println("  Protected Endpoints (require Bearer token):")
	log.Println("  GET    /api/auth/me                         - Current user")
	log.Println("  GET    /api/auth/users/search?query=        - Find users to share with")
	log.Println("  GET    /api/auth/check-permission/:taskId   - Permission summary")
	log.Println("  GET    /api/tasks                           - Own tasks (search, category, priority, status, sortBy)")
	log.Println("  POST   /api/tasks                           - Create task")
	log.Println("  GET    /api/tasks/shared-with-me            - Tasks shared with you")
	log.Println("  GET    /api/tasks/stats                     - Dashboard statistics")
	log.Println("  GET    /api/tasks/:id                       - Read task")
	log.Println("  PATCH  /api/tasks/:id                       - Update task")
	log.Println("  POST   /api/tasks/:id/advance               - Advance status")
	log.Println("  DELETE /api/tasks/:id                       - Delete task (owner only)")
	log.Println("  POST   /api/tasks/:id/share                 - Share by email")
	log.Println("  PATCH  /api/tasks/:id/share/:userId         - Change permission")
	log.Println("  DELETE /api/tasks/:id/share/:userId         - Remove share")
	log.Println("  GET    /api/notifications                   - Your notifications")
	log.Println("")
}
