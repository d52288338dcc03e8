package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted when a task's content changes.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"owner_id"`
	ActorID   string    `json:"actor_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskSharedEvent is emitted once per share call with every newly added recipient.
type TaskSharedEvent struct {
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	ActorID      string    `json:"actor_id"`
	RecipientIDs []string  `json:"recipient_ids"`
	Permission   string    `json:"permission"`
	SharedAt     time.Time `json:"shared_at"`
}

// TaskSharedV1 is the typed event definition for new shares.
// Subject: events.task.v1.task-shared
var TaskSharedV1 = helper.EventDefinition[TaskSharedEvent](
	"task", "TaskShared", "v1",
)

// SharePermissionChangedEvent is emitted when a recipient's tier changes.
type SharePermissionChangedEvent struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	ActorID     string    `json:"actor_id"`
	RecipientID string    `json:"recipient_id"`
	Permission  string    `json:"permission"`
	ChangedAt   time.Time `json:"changed_at"`
}

// SharePermissionChangedV1 is the typed event definition for permission changes.
// Subject: events.task.v1.share-permission-changed
var SharePermissionChangedV1 = helper.EventDefinition[SharePermissionChangedEvent](
	"task", "SharePermissionChanged", "v1",
)

// ShareRevokedEvent is emitted when a recipient loses access.
type ShareRevokedEvent struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	ActorID     string    `json:"actor_id"`
	RecipientID string    `json:"recipient_id"`
	RevokedAt   time.Time `json:"revoked_at"`
}

// ShareRevokedV1 is the typed event definition for share removal.
// Subject: events.task.v1.share-revoked
var ShareRevokedV1 = helper.EventDefinition[ShareRevokedEvent](
	"task", "ShareRevoked", "v1",
)

// TaskDeletedEvent is emitted when the owner deletes a task.
// RecipientIDs lists the collaborators whose shares were removed with it.
type TaskDeletedEvent struct {
	TaskID       string    `json:"task_id"`
	Title        string    `json:"title"`
	OwnerID      string    `json:"owner_id"`
	RecipientIDs []string  `json:"recipient_ids"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
