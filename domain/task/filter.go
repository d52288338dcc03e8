package task

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortField names an ordering for task lists.
type SortField string

const (
	SortByCreatedAt            SortField = "createdAt"
	SortByDueDate              SortField = "dueDate"
	SortByPriority             SortField = "priority"
	SortByStatus               SortField = "status"
	SortByCompletionPercentage SortField = "completionPercentage"
)

// Filter narrows and orders a task list. Zero values mean "no constraint".
type Filter struct {
	Search   string    `json:"search,omitempty"`
	Category Category  `json:"category,omitempty"`
	Priority Priority  `json:"priority,omitempty"`
	Status   Status    `json:"status,omitempty"`
	SortBy   SortField `json:"sortBy,omitempty"`
}

// Validate rejects unknown enum values.
func (f Filter) Validate() error {
	if f.Category != "" && !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, f.Category)
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, f.Priority)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, f.Status)
	}
	switch f.SortBy {
	case "", SortByCreatedAt, SortByDueDate, SortByPriority, SortByStatus, SortByCompletionPercentage:
	default:
		return fmt.Errorf("%w: unknown sort field %q", ErrValidation, f.SortBy)
	}
	return nil
}

// Matches reports whether t passes every constraint of the filter.
func (f Filter) Matches(t *Task) bool {
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// Apply returns the matching tasks in the requested order. The input slice is
// not modified.
func (f Filter) Apply(tasks []*Task) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, f.compare)
	return out
}

func (f Filter) compare(a, b *Task) int {
	switch f.SortBy {
	case SortByDueDate:
		// Tasks without a due date go last.
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return 0
		case a.DueDate == nil:
			return 1
		case b.DueDate == nil:
			return -1
		}
		return a.DueDate.Compare(*b.DueDate)
	case SortByPriority:
		return cmp.Compare(a.Priority.rank(), b.Priority.rank())
	case SortByStatus:
		return cmp.Compare(statusRank(a.Status), statusRank(b.Status))
	case SortByCompletionPercentage:
		return cmp.Compare(b.CompletionPercentage(), a.CompletionPercentage())
	default:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
}

func statusRank(s Status) int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	default:
		return 2
	}
}
