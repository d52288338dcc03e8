package api

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mmmtweb2/TodoApp/modules/auth"
	"github.com/mmmtweb2/TodoApp/modules/notification"
	"github.com/mmmtweb2/TodoApp/modules/task"
)

// RateLimiter supplies the per-IP and per-user limiting handlers.
type RateLimiter interface {
	IPRateLimit() fiber.Handler
	UserRateLimit() fiber.Handler
}

// HealthChecker is a module whose health /api/health reports.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) mono.HealthStatus
}

// APIModule is the HTTP API module.
type APIModule struct {
	app              *fiber.App
	addr             string
	authPort         auth.AuthPort
	taskPort         task.TaskPort
	notificationPort notification.NotificationPort
	limiter          RateLimiter
	healthChecks     []HealthChecker
	logger           types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// Option configures an APIModule.
type Option func(*APIModule)

// WithAddr sets the listen address, e.g. ":5000".
func WithAddr(addr string) Option {
	return func(m *APIModule) { m.addr = addr }
}

// WithRateLimiter enables request limiting.
func WithRateLimiter(limiter RateLimiter) Option {
	return func(m *APIModule) { m.limiter = limiter }
}

// WithHealthChecks adds modules to the /api/health report.
func WithHealthChecks(checks ...HealthChecker) Option {
	return func(m *APIModule) { m.healthChecks = append(m.healthChecks, checks...) }
}

// NewModule creates a new APIModule.
func NewModule(logger types.Logger, opts ...Option) *APIModule {
	m := &APIModule{
		addr:   ":5000",
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "task", "notification"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authPort = auth.NewAuthAdapter(container)
	case "task":
		m.taskPort = task.NewTaskAdapter(container)
	case "notification":
		m.notificationPort = notification.NewNotificationAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authPort == nil || m.taskPort == nil || m.notificationPort == nil {
		return fmt.Errorf("api dependencies not set")
	}

	m.app = m.newApp()

	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	m.logger.Info("HTTP server started", "addr", m.addr, "rate_limited", m.limiter != nil)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// newApp builds the Fiber application with every route mounted.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	m.setupRoutes(app)
	return app
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	handlers := NewHandlers(m.authPort, m.taskPort, m.notificationPort, m.logger)

	api := app.Group("/api")
	api.Get("/health", m.handleHealth)

	if m.limiter != nil {
		api.Use(m.limiter.IPRateLimit())
	}

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)

	protected := api.Group("")
	protected.Use(AuthMiddleware(m.authPort))
	if m.limiter != nil {
		protected.Use(m.limiter.UserRateLimit())
	}

	protected.Get("/auth/me", handlers.Me)
	protected.Get("/auth/users/search", handlers.SearchUsers)
	protected.Get("/auth/check-permission/:taskId", handlers.CheckPermission)
	protected.Get("/notifications", handlers.Notifications)

	tasks := protected.Group("/tasks")
	tasks.Get("/", handlers.ListTasks)
	tasks.Post("/", handlers.CreateTask)
	tasks.Get("/shared-with-me", handlers.ListSharedWithMe)
	tasks.Get("/stats", handlers.Stats)
	tasks.Get("/:id", handlers.GetTask)
	tasks.Patch("/:id", handlers.UpdateTask)
	tasks.Delete("/:id", handlers.DeleteTask)
	tasks.Post("/:id/advance", handlers.AdvanceStatus)
	tasks.Post("/:id/share", handlers.ShareTask)
	tasks.Patch("/:id/share/:userId", handlers.UpdateShare)
	tasks.Delete("/:id/share/:userId", handlers.RemoveShare)
}

// handleHealth reports overall status and the health of every registered
// module. Any unhealthy module turns the response into a 503.
func (m *APIModule) handleHealth(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	}

	checks := slices.Clone(m.healthChecks)
	slices.SortFunc(checks, func(a, b HealthChecker) int { return strings.Compare(a.Name(), b.Name()) })

	if len(checks) > 0 {
		resp.Modules = make(map[string]ModuleHealth, len(checks))
	}
	for _, hc := range checks {
		status := hc.Health(c.UserContext())
		resp.Modules[hc.Name()] = ModuleHealth{Healthy: status.Healthy, Message: status.Message}
		if !status.Healthy {
			resp.Status = "degraded"
		}
	}

	if resp.Status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
