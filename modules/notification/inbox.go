// Package notification keeps a per-user inbox of task sharing activity fed
// by task events.
package notification

import (
	"slices"
	"sync"
	"time"
)

// Notification types.
const (
	TypeTaskShared        = "task_shared"
	TypePermissionChanged = "permission_changed"
	TypeShareRevoked      = "share_revoked"
	TypeTaskDeleted       = "task_deleted"
	TypeTaskUpdated       = "task_updated"
)

// DefaultInboxSize caps how many notifications are kept per user.
const DefaultInboxSize = 100

// Notification is one entry in a user's inbox.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	TaskID    string    `json:"taskId"`
	Title     string    `json:"title"`
	ActorID   string    `json:"actorId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Inbox stores notifications in memory, newest last, trimming each user's
// list to its capacity.
type Inbox struct {
	mu       sync.RWMutex
	byUser   map[string][]Notification
	capacity int
}

// NewInbox creates an inbox that keeps at most capacity entries per user.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxSize
	}
	return &Inbox{
		byUser:   make(map[string][]Notification),
		capacity: capacity,
	}
}

// Add appends n to its user's inbox.
func (i *Inbox) Add(n Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()

	list := append(i.byUser[n.UserID], n)
	if len(list) > i.capacity {
		list = list[len(list)-i.capacity:]
	}
	i.byUser[n.UserID] = list
}

// List returns up to limit of userID's notifications, newest first. A
// non-positive limit returns all of them.
func (i *Inbox) List(userID string, limit int) []Notification {
	i.mu.RLock()
	defer i.mu.RUnlock()

	stored := i.byUser[userID]
	result := make([]Notification, len(stored))
	copy(result, stored)
	slices.Reverse(result)
	slices.SortStableFunc(result, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// Len returns the number of notifications held for userID.
func (i *Inbox) Len(userID string) int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byUser[userID])
}
