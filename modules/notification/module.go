package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
	"github.com/mmmtweb2/TodoApp/events"
)

// NotificationModule turns task events into inbox entries for the users
// they affect.
type NotificationModule struct {
	inbox  *Inbox
	logger types.Logger
	now    func() time.Time
}

var _ mono.Module = (*NotificationModule)(nil)
var _ mono.EventConsumerModule = (*NotificationModule)(nil)
var _ mono.ServiceProviderModule = (*NotificationModule)(nil)

// NewModule creates a new NotificationModule keeping up to inboxSize
// entries per user.
func NewModule(logger types.Logger, inboxSize int) *NotificationModule {
	return &NotificationModule{
		inbox:  NewInbox(inboxSize),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *NotificationModule) Name() string {
	return "notification"
}

func (m *NotificationModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskSharedV1, m.handleTaskShared, m); err != nil {
		return fmt.Errorf("failed to register TaskShared consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.SharePermissionChangedV1, m.handlePermissionChanged, m); err != nil {
		return fmt.Errorf("failed to register SharePermissionChanged consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ShareRevokedV1, m.handleShareRevoked, m); err != nil {
		return fmt.Errorf("failed to register ShareRevoked consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TaskShared", "SharePermissionChanged", "ShareRevoked", "TaskDeleted", "TaskUpdated"})
	return nil
}

func (m *NotificationModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListNotifications, json.Unmarshal, json.Marshal, m.listNotifications,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListNotifications, err)
	}
	return nil
}

func (m *NotificationModule) handleTaskShared(_ context.Context, event events.TaskSharedEvent, _ *mono.Msg) error {
	for _, recipient := range event.RecipientIDs {
		m.notify(recipient, TypeTaskShared, event.TaskID, event.Title, event.ActorID,
			fmt.Sprintf("Task '%s' was shared with you (%s)", event.Title, event.Permission))
	}
	return nil
}

func (m *NotificationModule) handlePermissionChanged(_ context.Context, event events.SharePermissionChangedEvent, _ *mono.Msg) error {
	m.notify(event.RecipientID, TypePermissionChanged, event.TaskID, event.Title, event.ActorID,
		fmt.Sprintf("Your permission on '%s' is now %s", event.Title, event.Permission))
	return nil
}

func (m *NotificationModule) handleShareRevoked(_ context.Context, event events.ShareRevokedEvent, _ *mono.Msg) error {
	// Leaving a task is not news to the one who left.
	if event.RecipientID == event.ActorID {
		return nil
	}
	m.notify(event.RecipientID, TypeShareRevoked, event.TaskID, event.Title, event.ActorID,
		fmt.Sprintf("You no longer have access to '%s'", event.Title))
	return nil
}

func (m *NotificationModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	for _, recipient := range event.RecipientIDs {
		m.notify(recipient, TypeTaskDeleted, event.TaskID, event.Title, event.OwnerID,
			fmt.Sprintf("Task '%s' was deleted by its owner", event.Title))
	}
	return nil
}

func (m *NotificationModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	if event.ActorID == "" || event.ActorID == event.OwnerID {
		return nil
	}
	m.notify(event.OwnerID, TypeTaskUpdated, event.TaskID, event.Title, event.ActorID,
		fmt.Sprintf("A collaborator updated '%s'", event.Title))
	return nil
}

func (m *NotificationModule) listNotifications(_ context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	if req.UserID == "" {
		return ListResponse{}, fmt.Errorf("user_id is required")
	}
	list := m.inbox.List(req.UserID, req.Limit)
	return ListResponse{Notifications: list, Total: m.inbox.Len(req.UserID)}, nil
}

func (m *NotificationModule) notify(userID, kind, taskID, title, actorID, message string) {
	if userID == "" {
		return
	}
	m.inbox.Add(Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		TaskID:    taskID,
		Title:     title,
		ActorID:   actorID,
		Message:   message,
		CreatedAt: m.now(),
	})
	m.logger.Debug("Notification stored", "user_id", userID, "type", kind, "task_id", taskID)
}

func (m *NotificationModule) Start(_ context.Context) error {
	m.logger.Info("Notification module started")
	return nil
}

func (m *NotificationModule) Stop(_ context.Context) error {
	m.logger.Info("Notification module stopped")
	return nil
}
