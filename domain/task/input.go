package task

import (
	"fmt"
	"strings"
	"time"
)

// SubTaskInput is a sub-task as supplied by a client.
type SubTaskInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Fields are the client-supplied attributes of a new task. Empty enum values
// take their defaults.
type Fields struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      Status         `json:"status,omitempty"`
	Priority    Priority       `json:"priority,omitempty"`
	Category    Category       `json:"category,omitempty"`
	DueDate     string         `json:"dueDate,omitempty"`
	DueTime     string         `json:"dueTime,omitempty"`
	SubTasks    []SubTaskInput `json:"subTasks,omitempty"`
}

// Patch is a partial update. Nil fields are left unchanged; an empty DueDate
// or DueTime clears the value.
type Patch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Status      *Status         `json:"status,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	DueDate     *string         `json:"dueDate,omitempty"`
	DueTime     *string         `json:"dueTime,omitempty"`
	SubTasks    *[]SubTaskInput `json:"subTasks,omitempty"`
}

// NewTask validates fields and builds a task owned by ownerID with defaults
// applied and no shares.
func NewTask(id, ownerID string, f Fields, now time.Time) (*Task, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	t := &Task{
		ID:         id,
		OwnerID:    ownerID,
		Status:     StatusNotStarted,
		Priority:   PriorityMedium,
		Category:   CategoryOther,
		SharedWith: []Share{},
		SubTasks:   []SubTask{},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p := Patch{
		Title:       &f.Title,
		Description: &f.Description,
		DueDate:     &f.DueDate,
		DueTime:     &f.DueTime,
		SubTasks:    &f.SubTasks,
	}
	if f.Status != "" {
		p.Status = &f.Status
	}
	if f.Priority != "" {
		p.Priority = &f.Priority
	}
	if f.Category != "" {
		p.Category = &f.Category
	}
	if err := p.ApplyTo(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Category == nil && p.DueDate == nil &&
		p.DueTime == nil && p.SubTasks == nil
}

// ApplyTo validates the patch and, only if every field is valid, writes it
// into t. Status may jump to any value.
func (p Patch) ApplyTo(t *Task) error {
	var title string
	if p.Title != nil {
		title = strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title is required", ErrValidation)
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, *p.Category)
	}
	var dueDate *time.Time
	if p.DueDate != nil {
		d, err := ParseDueDate(*p.DueDate)
		if err != nil {
			return err
		}
		dueDate = d
	}
	if p.DueTime != nil && *p.DueTime != "" {
		if _, err := time.Parse("15:04", *p.DueTime); err != nil {
			return fmt.Errorf("%w: due time must be HH:MM", ErrValidation)
		}
	}
	var subTasks []SubTask
	if p.SubTasks != nil {
		subTasks = make([]SubTask, 0, len(*p.SubTasks))
		for i, in := range *p.SubTasks {
			st := strings.TrimSpace(in.Title)
			if st == "" {
				return fmt.Errorf("%w: sub-task %d has no title", ErrValidation, i+1)
			}
			subTasks = append(subTasks, SubTask{
				TaskID:    t.ID,
				Position:  i,
				Title:     st,
				Completed: in.Completed,
			})
		}
	}

	if p.Title != nil {
		t.Title = title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = dueDate
	}
	if p.DueTime != nil {
		t.DueTime = *p.DueTime
	}
	if p.SubTasks != nil {
		t.SubTasks = subTasks
	}
	return nil
}

// ParseDueDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. An
// empty string means "no due date".
func ParseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if d, err := time.Parse(layout, s); err == nil {
			d = d.UTC()
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: due date %q is not a date", ErrValidation, s)
}
