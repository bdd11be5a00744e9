package service

import (
	"context"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

type TaskService struct {
	repo repo.TaskRepository
}

func NewTaskService(repo repo.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

// Create создает задачу от имени identity. createdBy всегда берется
// из identity, что бы ни пришло в payload.
func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, createdBy int64, idempKey string) (model.Task, error) {
	if err := validateCreate(in); err != nil {
		return model.Task{}, err
	}

	if idempKey != "" { // Обеспечение идемпотентности - если ключ с ресурсом уже существует, мы не создаем его еще раз
		if existingID, err := s.repo.GetIdempotencyKey(ctx, idempKey); err == nil {
			return s.repo.Get(ctx, existingID)
		}
	}

	t := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   createdBy,
	}
	if t.Status == "" {
		t.Status = model.StatusTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if in.DueDate != "" {
		due, _ := parseDueDate(in.DueDate) // уже проверено в validateCreate
		t.DueDate = &due
	}

	resource, err := s.repo.Create(ctx, t)
	if err != nil {
		return resource, err
	}

	if idempKey != "" {
		s.repo.SaveIdempotencyKey(ctx, idempKey, resource.ID)
	}

	return resource, nil
}

func (s *TaskService) Get(ctx context.Context, id int64) (model.Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	return s.repo.List(ctx, filter)
}

// Update накладывает частичный payload на существующую запись.
// Незаданные поля не меняются; пустое обновление только сдвигает updatedAt.
func (s *TaskService) Update(ctx context.Context, id int64, in UpdateTaskInput) (model.Task, error) {
	if err := validateUpdate(in); err != nil {
		return model.Task{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return existing, err
	}

	if in.Title != nil {
		existing.Title = *in.Title
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Status != nil {
		existing.Status = *in.Status
	}
	if in.Priority != nil {
		existing.Priority = *in.Priority
	}
	if in.ProjectID != nil {
		existing.ProjectID = *in.ProjectID
	}
	if in.AssignedTo != nil {
		existing.AssignedTo = in.AssignedTo
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			existing.DueDate = nil
		} else {
			due, _ := parseDueDate(*in.DueDate)
			existing.DueDate = &due
		}
	}

	return s.repo.Update(ctx, existing)
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *TaskService) GetStats(ctx context.Context) (repo.Stats, error) {
	return s.repo.GetStats(ctx)
}
