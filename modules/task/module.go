package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/mmmtweb2/TodoApp/database"
	"github.com/mmmtweb2/TodoApp/events"
	"github.com/mmmtweb2/TodoApp/modules/auth"
	"gorm.io/gorm"
)

// TaskModule owns the task store and exposes the task service (core domain).
type TaskModule struct {
	db        *gorm.DB
	service   *TaskService
	directory Directory
	cache     IdentityCache
	eventBus  mono.EventBus
	dbPath    string
	logger    types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// Option configures a TaskModule.
type Option func(*TaskModule)

// WithDBPath sets the SQLite database path.
func WithDBPath(path string) Option {
	return func(m *TaskModule) { m.dbPath = path }
}

// WithIdentityCache puts a cache in front of identity lookups.
func WithIdentityCache(cache IdentityCache) Option {
	return func(m *TaskModule) { m.cache = cache }
}

// NewModule creates a new TaskModule.
func NewModule(logger types.Logger, opts ...Option) *TaskModule {
	m := &TaskModule{
		dbPath: "tasks.db",
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency != "auth" {
		return
	}
	var directory Directory = auth.NewAuthAdapter(container)
	if m.cache != nil {
		directory = cachedDirectory{Directory: directory, cache: m.cache}
	}
	m.directory = directory
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskSharedV1.ToBase(),
		events.SharePermissionChangedV1.ToBase(),
		events.ShareRevokedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Start opens the task store and builds the service.
func (m *TaskModule) Start(_ context.Context) error {
	if m.directory == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, events will not be published")
	}

	db, err := database.Open(m.dbPath, Models...)
	if err != nil {
		return err
	}
	m.db = db

	m.service = NewTaskService(
		NewTaskRepository(db),
		m.directory,
		&busPublisher{bus: m.eventBus, logger: m.logger},
		m.logger,
	)

	m.logger.Info("Task module started", "database", m.dbPath, "identity_cache", m.cache != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		m.logger.Error("Failed to close task database", "error", err)
		return err
	}
	m.logger.Info("Task module stopped")
	return nil
}

func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if err := database.Ping(m.db); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"database": m.dbPath},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListOwned, json.Unmarshal, json.Marshal, m.listOwned,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListOwned, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListShared, json.Unmarshal, json.Marshal, m.listShared,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListShared, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceAdvanceStatus, json.Unmarshal, json.Marshal, m.advanceStatus,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceAdvanceStatus, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceShareTask, json.Unmarshal, json.Marshal, m.shareTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceShareTask, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateShare, json.Unmarshal, json.Marshal, m.updateShare,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateShare, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRemoveShare, json.Unmarshal, json.Marshal, m.removeShare,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRemoveShare, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCheckPermission, json.Unmarshal, json.Marshal, m.checkPermission,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCheckPermission, err)
	}
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceTaskStats, json.Unmarshal, json.Marshal, m.taskStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceTaskStats, err)
	}

	m.logger.Info("Registered task services",
		"services", []string{
			ServiceCreateTask, ServiceGetTask, ServiceListOwned, ServiceListShared,
			ServiceUpdateTask, ServiceAdvanceStatus, ServiceDeleteTask, ServiceShareTask,
			ServiceUpdateShare, ServiceRemoveShare, ServiceCheckPermission, ServiceTaskStats,
		})
	return nil
}

// The handlers below report domain rejections as a Failure in the response
// and let everything else through as a service error.

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.CreateTask(ctx, req.ActorID, req.Fields))
}

func (m *TaskModule) getTask(ctx context.Context, req TaskRef, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.GetTask(ctx, req.ActorID, req.TaskID))
}

func (m *TaskModule) listOwned(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	return m.listResult(m.service.ListOwned(ctx, req.ActorID, req.Filter))
}

func (m *TaskModule) listShared(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	return m.listResult(m.service.ListSharedWithMe(ctx, req.ActorID, req.Filter))
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.UpdateTask(ctx, req.ActorID, req.TaskID, req.Patch, req.ExpectedVersion))
}

func (m *TaskModule) advanceStatus(ctx context.Context, req TaskRef, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.AdvanceStatus(ctx, req.ActorID, req.TaskID))
}

func (m *TaskModule) deleteTask(ctx context.Context, req TaskRef, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.DeleteTask(ctx, req.ActorID, req.TaskID); err != nil {
		if failure := NewFailure(err); failure != nil {
			return DeleteTaskResponse{Failure: failure}, nil
		}
		return DeleteTaskResponse{}, err
	}
	m.logger.Info("Task deleted", "task_id", req.TaskID, "owner_id", req.ActorID)
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *TaskModule) shareTask(ctx context.Context, req ShareTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.ShareTask(ctx, req.ActorID, req.TaskID, req.Emails, req.Permission))
}

func (m *TaskModule) updateShare(ctx context.Context, req UpdateShareRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.UpdateShare(ctx, req.ActorID, req.TaskID, req.UserID, req.Permission))
}

func (m *TaskModule) removeShare(ctx context.Context, req RemoveShareRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.taskResult(m.service.RemoveShare(ctx, req.ActorID, req.TaskID, req.UserID))
}

func (m *TaskModule) checkPermission(ctx context.Context, req TaskRef, _ *mono.Msg) (PermissionsResponse, error) {
	perms, err := m.service.CheckPermission(ctx, req.ActorID, req.TaskID)
	if err != nil {
		if failure := NewFailure(err); failure != nil {
			return PermissionsResponse{Failure: failure}, nil
		}
		return PermissionsResponse{}, err
	}
	return PermissionsResponse{Permissions: perms}, nil
}

func (m *TaskModule) taskStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	stats, err := m.service.Stats(ctx, req.ActorID)
	if err != nil {
		return StatsResponse{}, err
	}
	return StatsResponse{Stats: stats}, nil
}

func (m *TaskModule) taskResult(view *TaskView, err error) (TaskResponse, error) {
	if err != nil {
		if failure := NewFailure(err); failure != nil {
			return TaskResponse{Failure: failure}, nil
		}
		m.logger.Error("Task service call failed", "error", err)
		return TaskResponse{}, err
	}
	return TaskResponse{Task: view}, nil
}

func (m *TaskModule) listResult(views []TaskView, err error) (TaskListResponse, error) {
	if err != nil {
		if failure := NewFailure(err); failure != nil {
			return TaskListResponse{Failure: failure}, nil
		}
		m.logger.Error("Task list call failed", "error", err)
		return TaskListResponse{}, err
	}
	return TaskListResponse{Tasks: views, Total: len(views)}, nil
}
