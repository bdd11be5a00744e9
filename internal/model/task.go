package model

import "time"

// Статусы и приоритеты задач
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var Statuses = map[string]bool{
	StatusTodo:       true,
	StatusInProgress: true,
	StatusReview:     true,
	StatusDone:       true,
}

var Priorities = map[string]bool{
	PriorityLow:      true,
	PriorityMedium:   true,
	PriorityHigh:     true,
	PriorityCritical: true,
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ProjectID   int64      `json:"projectId"`
	AssignedTo  *int64     `json:"assignedTo"`
	CreatedBy   int64      `json:"createdBy"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskFilter - необязательные условия для выборки задач.
// nil означает, что условие не применяется.
type TaskFilter struct {
	Status     *string
	Priority   *string
	ProjectID  *int64
	AssignedTo *int64
	Search     *string
}

// Empty сообщает, задан ли хотя бы один фильтр
func (f TaskFilter) Empty() bool {
	return f.Status == nil && f.Priority == nil && f.ProjectID == nil &&
		f.AssignedTo == nil && f.Search == nil
}
