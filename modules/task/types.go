package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/mmmtweb2/TodoApp/domain/task"
	"github.com/mmmtweb2/TodoApp/domain/user"
)

// Service names registered by the task module.
const (
	ServiceCreateTask      = "create-task"
	ServiceGetTask         = "get-task"
	ServiceListOwned       = "list-owned"
	ServiceListShared      = "list-shared"
	ServiceUpdateTask      = "update-task"
	ServiceAdvanceStatus   = "advance-status"
	ServiceDeleteTask      = "delete-task"
	ServiceShareTask       = "share-task"
	ServiceUpdateShare     = "update-share"
	ServiceRemoveShare     = "remove-share"
	ServiceCheckPermission = "check-permission"
	ServiceTaskStats       = "task-stats"
)

// Failure codes carried across the service boundary.
const (
	CodeValidation        = "validation"
	CodeUnauthorized      = "unauthorized"
	CodeNotFound          = "not_found"
	CodeAlreadyShared     = "already_shared"
	CodeShareNotFound     = "share_not_found"
	CodeNoRecipientsFound = "no_recipients_found"
	CodeConflict          = "conflict"
)

var failureCodes = []struct {
	code string
	err  error
}{
	{CodeValidation, domain.ErrValidation},
	{CodeUnauthorized, domain.ErrUnauthorized},
	{CodeNotFound, domain.ErrNotFound},
	{CodeAlreadyShared, domain.ErrAlreadyShared},
	{CodeShareNotFound, domain.ErrShareNotFound},
	{CodeNoRecipientsFound, domain.ErrNoRecipientsFound},
	{CodeConflict, domain.ErrConflict},
}

// Failure is an expected, caller-facing rejection reported in a response
// payload. Unexpected errors travel as service errors instead.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewFailure classifies err. It returns nil when err is not one of the task
// domain errors.
func NewFailure(err error) *Failure {
	for _, fc := range failureCodes {
		if errors.Is(err, fc.err) {
			return &Failure{Code: fc.code, Message: err.Error()}
		}
	}
	return nil
}

// Err turns the failure back into an error that matches the domain sentinel.
func (f *Failure) Err() error {
	for _, fc := range failureCodes {
		if fc.code == f.Code {
			if f.Message == "" || f.Message == fc.err.Error() {
				return fc.err
			}
			if detail, ok := strings.CutPrefix(f.Message, fc.err.Error()); ok {
				return fmt.Errorf("%w%s", fc.err, detail)
			}
			return fmt.Errorf("%w: %s", fc.err, f.Message)
		}
	}
	return fmt.Errorf("task service failure %s: %s", f.Code, f.Message)
}

// ShareView is a share expanded with the recipient's display identity.
type ShareView struct {
	UserID     string            `json:"userId"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Permission domain.Permission `json:"permission"`
	SharedAt   time.Time         `json:"sharedAt"`
}

// TaskView is the fully resolved task handed to clients.
type TaskView struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Status               domain.Status    `json:"status"`
	Priority             domain.Priority  `json:"priority"`
	Category             domain.Category  `json:"category"`
	DueDate              *time.Time       `json:"dueDate,omitempty"`
	DueTime              string           `json:"dueTime,omitempty"`
	OwnerID              string           `json:"ownerId"`
	Owner                user.Identity    `json:"owner"`
	SharedWith           []ShareView      `json:"sharedWith"`
	SubTasks             []domain.SubTask `json:"subTasks"`
	CompletionPercentage int              `json:"completionPercentage"`
	Version              int64            `json:"version"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// TaskRef addresses one task on behalf of an actor.
type TaskRef struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// CreateTaskRequest represents a create-task request.
type CreateTaskRequest struct {
	ActorID string        `json:"actor_id"`
	Fields  domain.Fields `json:"fields"`
}

// ListTasksRequest represents a list-owned or list-shared request.
type ListTasksRequest struct {
	ActorID string        `json:"actor_id"`
	Filter  domain.Filter `json:"filter"`
}

// UpdateTaskRequest represents an update-task request. A non-zero
// ExpectedVersion rejects the update with a conflict if the task moved on.
type UpdateTaskRequest struct {
	ActorID         string       `json:"actor_id"`
	TaskID          string       `json:"task_id"`
	Patch           domain.Patch `json:"patch"`
	ExpectedVersion int64        `json:"expected_version,omitempty"`
}

// ShareTaskRequest represents a share-task request.
type ShareTaskRequest struct {
	ActorID    string            `json:"actor_id"`
	TaskID     string            `json:"task_id"`
	Emails     []string          `json:"emails"`
	Permission domain.Permission `json:"permission,omitempty"`
}

// UpdateShareRequest represents an update-share request.
type UpdateShareRequest struct {
	ActorID    string            `json:"actor_id"`
	TaskID     string            `json:"task_id"`
	UserID     string            `json:"user_id"`
	Permission domain.Permission `json:"permission"`
}

// RemoveShareRequest represents a remove-share request.
type RemoveShareRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
	UserID  string `json:"user_id"`
}

// StatsRequest represents a task-stats request.
type StatsRequest struct {
	ActorID string `json:"actor_id"`
}

// TaskResponse carries one task or a failure.
type TaskResponse struct {
	Task    *TaskView `json:"task,omitempty"`
	Failure *Failure  `json:"failure,omitempty"`
}

// TaskListResponse carries a task list or a failure.
type TaskListResponse struct {
	Tasks   []TaskView `json:"tasks"`
	Total   int        `json:"total"`
	Failure *Failure   `json:"failure,omitempty"`
}

// DeleteTaskResponse reports the outcome of delete-task.
type DeleteTaskResponse struct {
	Deleted bool     `json:"deleted"`
	Failure *Failure `json:"failure,omitempty"`
}

// PermissionsResponse carries the caller's permission summary.
type PermissionsResponse struct {
	Permissions domain.Permissions `json:"permissions"`
	Failure     *Failure           `json:"failure,omitempty"`
}

// StatsResponse carries dashboard statistics.
type StatsResponse struct {
	Stats   domain.Stats `json:"stats"`
	Failure *Failure     `json:"failure,omitempty"`
}
