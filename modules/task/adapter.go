package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	domain "github.com/mmmtweb2/TodoApp/domain/task"
)

// TaskPort is what the API layer uses to reach the task service. Domain
// rejections come back as errors matching the domain/task sentinels.
type TaskPort interface {
	CreateTask(ctx context.Context, actorID string, fields domain.Fields) (*TaskView, error)
	GetTask(ctx context.Context, actorID, taskID string) (*TaskView, error)
	ListOwned(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error)
	ListSharedWithMe(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error)
	UpdateTask(ctx context.Context, actorID, taskID string, patch domain.Patch, expectedVersion int64) (*TaskView, error)
	AdvanceStatus(ctx context.Context, actorID, taskID string) (*TaskView, error)
	DeleteTask(ctx context.Context, actorID, taskID string) error
	ShareTask(ctx context.Context, actorID, taskID string, emails []string, permission domain.Permission) (*TaskView, error)
	UpdateShare(ctx context.Context, actorID, taskID, userID string, permission domain.Permission) (*TaskView, error)
	RemoveShare(ctx context.Context, actorID, taskID, userID string) (*TaskView, error)
	CheckPermission(ctx context.Context, actorID, taskID string) (domain.Permissions, error)
	Stats(ctx context.Context, actorID string) (domain.Stats, error)
}

// taskAdapter implements TaskPort over the service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) CreateTask(ctx context.Context, actorID string, fields domain.Fields) (*TaskView, error) {
	req := CreateTaskRequest{ActorID: actorID, Fields: fields}
	return callTask(ctx, a.container, ServiceCreateTask, &req)
}

func (a *taskAdapter) GetTask(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	req := TaskRef{ActorID: actorID, TaskID: taskID}
	return callTask(ctx, a.container, ServiceGetTask, &req)
}

func (a *taskAdapter) ListOwned(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error) {
	req := ListTasksRequest{ActorID: actorID, Filter: filter}
	return callList(ctx, a.container, ServiceListOwned, &req)
}

func (a *taskAdapter) ListSharedWithMe(ctx context.Context, actorID string, filter domain.Filter) ([]TaskView, error) {
	req := ListTasksRequest{ActorID: actorID, Filter: filter}
	return callList(ctx, a.container, ServiceListShared, &req)
}

func (a *taskAdapter) UpdateTask(ctx context.Context, actorID, taskID string, patch domain.Patch, expectedVersion int64) (*TaskView, error) {
	req := UpdateTaskRequest{ActorID: actorID, TaskID: taskID, Patch: patch, ExpectedVersion: expectedVersion}
	return callTask(ctx, a.container, ServiceUpdateTask, &req)
}

func (a *taskAdapter) AdvanceStatus(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	req := TaskRef{ActorID: actorID, TaskID: taskID}
	return callTask(ctx, a.container, ServiceAdvanceStatus, &req)
}

func (a *taskAdapter) DeleteTask(ctx context.Context, actorID, taskID string) error {
	req := TaskRef{ActorID: actorID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := call(ctx, a.container, ServiceDeleteTask, &req, &resp); err != nil {
		return err
	}
	if resp.Failure != nil {
		return resp.Failure.Err()
	}
	return nil
}

func (a *taskAdapter) ShareTask(ctx context.Context, actorID, taskID string, emails []string, permission domain.Permission) (*TaskView, error) {
	req := ShareTaskRequest{ActorID: actorID, TaskID: taskID, Emails: emails, Permission: permission}
	return callTask(ctx, a.container, ServiceShareTask, &req)
}

func (a *taskAdapter) UpdateShare(ctx context.Context, actorID, taskID, userID string, permission domain.Permission) (*TaskView, error) {
	req := UpdateShareRequest{ActorID: actorID, TaskID: taskID, UserID: userID, Permission: permission}
	return callTask(ctx, a.container, ServiceUpdateShare, &req)
}

func (a *taskAdapter) RemoveShare(ctx context.Context, actorID, taskID, userID string) (*TaskView, error) {
	req := RemoveShareRequest{ActorID: actorID, TaskID: taskID, UserID: userID}
	return callTask(ctx, a.container, ServiceRemoveShare, &req)
}

func (a *taskAdapter) CheckPermission(ctx context.Context, actorID, taskID string) (domain.Permissions, error) {
	req := TaskRef{ActorID: actorID, TaskID: taskID}
	var resp PermissionsResponse
	if err := call(ctx, a.container, ServiceCheckPermission, &req, &resp); err != nil {
		return domain.Permissions{}, err
	}
	if resp.Failure != nil {
		return domain.Permissions{}, resp.Failure.Err()
	}
	return resp.Permissions, nil
}

func (a *taskAdapter) Stats(ctx context.Context, actorID string) (domain.Stats, error) {
	req := StatsRequest{ActorID: actorID}
	var resp StatsResponse
	if err := call(ctx, a.container, ServiceTaskStats, &req, &resp); err != nil {
		return domain.Stats{}, err
	}
	if resp.Failure != nil {
		return domain.Stats{}, resp.Failure.Err()
	}
	return resp.Stats, nil
}

func callTask[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*TaskView, error) {
	var resp TaskResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure.Err()
	}
	return resp.Task, nil
}

func callList[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) ([]TaskView, error) {
	var resp TaskListResponse
	if err := call(ctx, container, service, req, &resp); err != nil {
		return nil, err
	}
	if resp.Failure != nil {
		return nil, resp.Failure.Err()
	}
	if resp.Tasks == nil {
		return []TaskView{}, nil
	}
	return resp.Tasks, nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}
