package notification

// ServiceListNotifications is the request-reply service exposing an inbox.
const ServiceListNotifications = "list-notifications"

// ListRequest asks for a user's notifications.
type ListRequest struct {
	UserID string `json:"user_id"`
	Limit  int    `json:"limit,omitempty"`
}

// ListResponse carries a user's notifications, newest first.
type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}
