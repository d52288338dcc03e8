package task

import "time"

// Stats holds dashboard counters for a set of tasks.
type Stats struct {
	Total                int              `json:"total"`
	Completed            int              `json:"completed"`
	InProgress           int              `json:"inProgress"`
	NotStarted           int              `json:"notStarted"`
	Overdue              int              `json:"overdue"`
	CompletionPercentage int              `json:"completionPercentage"`
	ByPriority           map[Priority]int `json:"byPriority"`
	ByCategory           map[Category]int `json:"byCategory"`
}

// ComputeStats counts tasks by status, priority and category. A task is
// overdue when it is not completed and its due date falls before the day
// containing now.
func ComputeStats(tasks []*Task, now time.Time) Stats {
	s := Stats{
		Total: len(tasks),
		ByPriority: map[Priority]int{
			PriorityHigh:   0,
			PriorityMedium: 0,
			PriorityLow:    0,
		},
		ByCategory: map[Category]int{},
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	for _, t := range tasks {
		switch t.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		default:
			s.NotStarted++
		}
		s.ByPriority[t.Priority]++
		s.ByCategory[t.Category]++

		if t.DueDate != nil && t.Status != StatusCompleted && t.DueDate.In(now.Location()).Before(today) {
			s.Overdue++
		}
	}
	if s.Total > 0 {
		s.CompletionPercentage = s.Completed * 100 / s.Total
	}
	return s
}
