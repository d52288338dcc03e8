package task

import (
	"time"
)

// Status represents the progress state of a task.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status that follows s in the NOT_STARTED -> IN_PROGRESS ->
// COMPLETED -> NOT_STARTED cycle.
func (s Status) Next() Status {
	switch s {
	case StatusNotStarted:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusNotStarted
	}
}

// Priority represents task urgency.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// rank orders priorities from most to least urgent.
func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Category groups tasks by area of life.
type Category string

const (
	CategoryPersonal Category = "PERSONAL"
	CategoryWork     Category = "WORK"
	CategoryShopping Category = "SHOPPING"
	CategoryHealth   Category = "HEALTH"
	CategoryOther    Category = "OTHER"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryShopping, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

// Permission is the access tier granted by a share.
// VIEW allows reading, EDIT adds content changes, ADMIN adds share management.
type Permission string

const (
	PermissionView  Permission = "VIEW"
	PermissionEdit  Permission = "EDIT"
	PermissionAdmin Permission = "ADMIN"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	}
	return false
}

// AllowsEdit reports whether p grants content mutation.
func (p Permission) AllowsEdit() bool {
	return p == PermissionEdit || p == PermissionAdmin
}

// AllowsShare reports whether p grants share management.
func (p Permission) AllowsShare() bool {
	return p == PermissionAdmin
}

// Task is a unit of work owned by one user and optionally shared with others.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text" json:"id"`
	OwnerID     string     `gorm:"index;not null;type:text" json:"ownerId"`
	Title       string     `gorm:"not null;type:text" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      Status     `gorm:"not null;type:text;default:NOT_STARTED" json:"status"`
	Priority    Priority   `gorm:"not null;type:text;default:MEDIUM" json:"priority"`
	Category    Category   `gorm:"not null;type:text;default:OTHER" json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	DueTime     string     `gorm:"type:text" json:"dueTime,omitempty"`
	SharedWith  []Share    `gorm:"foreignKey:TaskID" json:"sharedWith"`
	SubTasks    []SubTask  `gorm:"foreignKey:TaskID" json:"subTasks"`
	Version     int64      `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Share grants a non-owner access to a task.
type Share struct {
	TaskID     string     `gorm:"primaryKey;type:text" json:"-"`
	UserID     string     `gorm:"primaryKey;type:text;index" json:"userId"`
	Permission Permission `gorm:"not null;type:text;default:VIEW" json:"permission"`
	SharedAt   time.Time  `json:"sharedAt"`
}

// TableName returns the table name for the Share entity.
func (Share) TableName() string {
	return "task_shares"
}

// SubTask is a checklist item inside a task. Sub-tasks are one level deep.
type SubTask struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	TaskID    string `gorm:"index;not null;type:text" json:"-"`
	Position  int    `gorm:"not null" json:"-"`
	Title     string `gorm:"not null;type:text" json:"title"`
	Completed bool   `gorm:"not null;default:false" json:"completed"`
}

// TableName returns the table name for the SubTask entity.
func (SubTask) TableName() string {
	return "sub_tasks"
}

// ShareFor returns the share held by userID, if any.
func (t *Task) ShareFor(userID string) (*Share, bool) {
	for i := range t.SharedWith {
		if t.SharedWith[i].UserID == userID {
			return &t.SharedWith[i], true
		}
	}
	return nil, false
}

// IsOwner reports whether userID owns the task.
func (t *Task) IsOwner(userID string) bool {
	return userID != "" && t.OwnerID == userID
}

// CompletionPercentage returns the share of completed sub-tasks, 0..100.
// A task without sub-tasks counts as 100 when completed and 0 otherwise.
func (t *Task) CompletionPercentage() int {
	if len(t.SubTasks) == 0 {
		if t.Status == StatusCompleted {
			return 100
		}
		return 0
	}
	done := 0
	for _, st := range t.SubTasks {
		if st.Completed {
			done++
		}
	}
	return done * 100 / len(t.SubTasks)
}

// Touch stamps a mutation. UpdatedAt always moves strictly forward, even when
// the clock has not advanced since the previous write.
func (t *Task) Touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}
