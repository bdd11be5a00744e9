package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, id int64) (model.Task, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t model.Task) (model.Task, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) SaveIdempotencyKey(ctx context.Context, key string, resourceID int64) error {
	args := m.Called(ctx, key, resourceID)
	return args.Error(0)
}

func (m *MockTaskRepository) GetIdempotencyKey(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) GetStats(ctx context.Context) (repo.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repo.Stats), args.Error(1)
}

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateTaskInput
		createdBy int64
		idempKey  string
		setupMock func(*MockTaskRepository)
		wantErr   error
		check     func(*testing.T, model.Task)
	}{
		{
			name: "defaults applied and createdBy forced from identity",
			input: CreateTaskInput{
				Title:     "Fix bug",
				ProjectID: 5,
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
					return task.Title == "Fix bug" &&
						task.ProjectID == 5 &&
						task.Status == model.StatusTodo &&
						task.Priority == model.PriorityMedium &&
						task.CreatedBy == 7
				})).Return(model.Task{
					ID:        1,
					Title:     "Fix bug",
					Status:    model.StatusTodo,
					Priority:  model.PriorityMedium,
					ProjectID: 5,
					CreatedBy: 7,
				}, nil)
			},
			check: func(t *testing.T, task model.Task) {
				assert.Equal(t, model.StatusTodo, task.Status)
				assert.Equal(t, model.PriorityMedium, task.Priority)
				assert.Equal(t, int64(7), task.CreatedBy)
				assert.Equal(t, int64(5), task.ProjectID)
			},
		},
		{
			name: "explicit status and priority kept",
			input: CreateTaskInput{
				Title:     "Review PR",
				ProjectID: 5,
				Status:    model.StatusReview,
				Priority:  model.PriorityHigh,
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
					return task.Status == model.StatusReview && task.Priority == model.PriorityHigh
				})).Return(model.Task{ID: 2, Status: model.StatusReview, Priority: model.PriorityHigh}, nil)
			},
		},
		{
			name: "due date parsed from RFC3339",
			input: CreateTaskInput{
				Title:     "Ship release",
				ProjectID: 5,
				DueDate:   "2026-09-01T12:00:00Z",
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {
				due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
				m.On("Create", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
					return task.DueDate != nil && task.DueDate.Equal(due)
				})).Return(model.Task{ID: 3, DueDate: &due}, nil)
			},
		},
		{
			name: "validation error - missing title",
			input: CreateTaskInput{
				ProjectID: 5,
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "validation error - missing projectId",
			input: CreateTaskInput{
				Title: "No project",
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "validation error - unknown status",
			input: CreateTaskInput{
				Title:     "Bad status",
				ProjectID: 5,
				Status:    "pending",
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "validation error - malformed due date",
			input: CreateTaskInput{
				Title:     "Bad date",
				ProjectID: 5,
				DueDate:   "tomorrow",
			},
			createdBy: 7,
			setupMock: func(m *MockTaskRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name: "idempotency - key exists",
			input: CreateTaskInput{
				Title:     "Fix bug",
				ProjectID: 5,
			},
			createdBy: 7,
			idempKey:  "key-123",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "key-123").Return(int64(42), nil)
				m.On("Get", mock.Anything, int64(42)).Return(model.Task{
					ID:        42,
					Title:     "Fix bug",
					ProjectID: 5,
				}, nil)
			},
			check: func(t *testing.T, task model.Task) {
				assert.Equal(t, int64(42), task.ID)
			},
		},
		{
			name: "idempotency - new key",
			input: CreateTaskInput{
				Title:     "Fix bug",
				ProjectID: 5,
			},
			createdBy: 7,
			idempKey:  "key-456",
			setupMock: func(m *MockTaskRepository) {
				m.On("GetIdempotencyKey", mock.Anything, "key-456").Return(int64(0), repo.ErrorNotFound)
				m.On("Create", mock.Anything, mock.Anything).Return(model.Task{ID: 1}, nil)
				m.On("SaveIdempotencyKey", mock.Anything, "key-456", int64(1)).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTaskRepository)
			tt.setupMock(mockRepo)

			service := NewTaskService(mockRepo)
			result, err := service.Create(context.Background(), tt.input, tt.createdBy, tt.idempKey)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				if tt.check != nil {
					tt.check(t, result)
				}
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	existing := model.Task{
		ID:          1,
		Title:       "Original",
		Description: "Keep me",
		Status:      model.StatusTodo,
		Priority:    model.PriorityMedium,
		ProjectID:   5,
		CreatedBy:   7,
	}

	t.Run("partial update leaves other fields unchanged", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Get", mock.Anything, int64(1)).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
			return task.ID == 1 &&
				task.Status == model.StatusDone &&
				task.Title == "Original" &&
				task.Description == "Keep me" &&
				task.CreatedBy == 7
		})).Return(model.Task{ID: 1, Status: model.StatusDone}, nil)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), 1, UpdateTaskInput{
			Status: strPtr(model.StatusDone),
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty update is accepted", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Get", mock.Anything, int64(1)).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, existing).Return(existing, nil)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), 1, UpdateTaskInput{})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("not found passes through", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Get", mock.Anything, int64(999)).Return(model.Task{}, repo.ErrorNotFound)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), 999, UpdateTaskInput{
			Status: strPtr(model.StatusDone),
		})

		assert.ErrorIs(t, err, repo.ErrorNotFound)
		mockRepo.AssertExpectations(t)
	})

	t.Run("validation failure skips repo entirely", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), 1, UpdateTaskInput{
			Status: strPtr("bogus"),
		})

		assert.ErrorIs(t, err, ErrValidation)
		mockRepo.AssertExpectations(t)
	})

	t.Run("due date cleared with empty string", func(t *testing.T) {
		due := time.Now().Add(48 * time.Hour)
		withDue := existing
		withDue.DueDate = &due

		mockRepo := new(MockTaskRepository)
		mockRepo.On("Get", mock.Anything, int64(1)).Return(withDue, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(task model.Task) bool {
			return task.DueDate == nil
		})).Return(existing, nil)

		service := NewTaskService(mockRepo)
		_, err := service.Update(context.Background(), 1, UpdateTaskInput{
			DueDate: strPtr(""),
		})

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestTaskService_Delete(t *testing.T) {
	t.Run("delete existing", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(1)).Return(nil)

		service := NewTaskService(mockRepo)
		require.NoError(t, service.Delete(context.Background(), 1))
		mockRepo.AssertExpectations(t)
	})

	t.Run("delete missing returns not found", func(t *testing.T) {
		mockRepo := new(MockTaskRepository)
		mockRepo.On("Delete", mock.Anything, int64(999)).Return(repo.ErrorNotFound)

		service := NewTaskService(mockRepo)
		assert.ErrorIs(t, service.Delete(context.Background(), 999), repo.ErrorNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name       string
		input      CreateTaskInput
		wantFields int
	}{
		{
			name:       "valid minimal",
			input:      CreateTaskInput{Title: "Task", ProjectID: 1},
			wantFields: 0,
		},
		{
			name:       "whitespace title",
			input:      CreateTaskInput{Title: "   ", ProjectID: 1},
			wantFields: 1,
		},
		{
			name:       "negative projectId",
			input:      CreateTaskInput{Title: "Task", ProjectID: -1},
			wantFields: 1,
		},
		{
			name: "multiple violations reported together",
			input: CreateTaskInput{
				Title:    "",
				Status:   "bogus",
				Priority: "urgent",
				DueDate:  "not-a-date",
			},
			wantFields: 5, // title, projectId, status, priority, dueDate
		},
		{
			name: "non-positive assignedTo",
			input: func() CreateTaskInput {
				zero := int64(0)
				return CreateTaskInput{Title: "Task", ProjectID: 1, AssignedTo: &zero}
			}(),
			wantFields: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreate(tt.input)
			if tt.wantFields == 0 {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Len(t, vErr.Fields, tt.wantFields)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
