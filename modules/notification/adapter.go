package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort reads a user's inbox.
type NotificationPort interface {
	ListNotifications(ctx context.Context, userID string, limit int) (*ListResponse, error)
}

type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a new adapter for the notification service.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	if container == nil {
		panic("notification adapter requires non-nil ServiceContainer")
	}
	return &notificationAdapter{container: container}
}

func (a *notificationAdapter) ListNotifications(ctx context.Context, userID string, limit int) (*ListResponse, error) {
	req := ListRequest{UserID: userID, Limit: limit}
	var resp ListResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceListNotifications,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("%s service call failed: %w", ServiceListNotifications, err)
	}
	if resp.Notifications == nil {
		resp.Notifications = []Notification{}
	}
	return &resp, nil
}
