package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

var ErrValidation = errors.New("validation error")

// ValidationError накапливает нарушения по всем полям сразу,
// а не останавливается на первом
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CreateTaskInput - схема создания: title и projectId обязательны
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	ProjectID   int64  `json:"projectId"`
	AssignedTo  *int64 `json:"assignedTo"`
	DueDate     string `json:"dueDate"`
}

// UpdateTaskInput - схема обновления: все поля необязательны,
// nil означает "не менять"
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	ProjectID   *int64  `json:"projectId"`
	AssignedTo  *int64  `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

func validateCreate(in CreateTaskInput) error {
	var fields []string

	if strings.TrimSpace(in.Title) == "" {
		fields = append(fields, "title is required")
	}
	if in.ProjectID <= 0 {
		fields = append(fields, "projectId must be a positive integer")
	}
	if in.Status != "" && !model.Statuses[in.Status] {
		fields = append(fields, fmt.Sprintf("status must be one of: todo, in_progress, review, done (got %q)", in.Status))
	}
	if in.Priority != "" && !model.Priorities[in.Priority] {
		fields = append(fields, fmt.Sprintf("priority must be one of: low, medium, high, critical (got %q)", in.Priority))
	}
	if in.AssignedTo != nil && *in.AssignedTo <= 0 {
		fields = append(fields, "assignedTo must be a positive integer")
	}
	if in.DueDate != "" {
		if _, err := parseDueDate(in.DueDate); err != nil {
			fields = append(fields, "dueDate must be a valid RFC3339 datetime")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateUpdate(in UpdateTaskInput) error {
	var fields []string

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		fields = append(fields, "title must not be empty")
	}
	if in.Status != nil && !model.Statuses[*in.Status] {
		fields = append(fields, fmt.Sprintf("status must be one of: todo, in_progress, review, done (got %q)", *in.Status))
	}
	if in.Priority != nil && !model.Priorities[*in.Priority] {
		fields = append(fields, fmt.Sprintf("priority must be one of: low, medium, high, critical (got %q)", *in.Priority))
	}
	if in.ProjectID != nil && *in.ProjectID <= 0 {
		fields = append(fields, "projectId must be a positive integer")
	}
	if in.AssignedTo != nil && *in.AssignedTo <= 0 {
		fields = append(fields, "assignedTo must be a positive integer")
	}
	if in.DueDate != nil && *in.DueDate != "" {
		if _, err := parseDueDate(*in.DueDate); err != nil {
			fields = append(fields, "dueDate must be a valid RFC3339 datetime")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func parseDueDate(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339, raw)
}
