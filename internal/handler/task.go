package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/auth"
	"github.com/BuzzLyutic/taskboard-api/internal/model"
	"github.com/BuzzLyutic/taskboard-api/internal/repo"
	"github.com/BuzzLyutic/taskboard-api/internal/service"
	"github.com/BuzzLyutic/taskboard-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
	dev     bool // в development режиме 500-е отдают текст ошибки
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger, dev bool) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
		dev:     dev,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "missing authorization header")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req service.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), req, identity.ID, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "task id must be an integer")
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// parseFilter собирает TaskFilter из query-параметров.
// Нечисловые значения числовых фильтров и неизвестные статусы/приоритеты
// отклоняются сразу, без молчаливого приведения типов.
func parseFilter(r *http.Request) (model.TaskFilter, []string) {
	var filter model.TaskFilter
	var problems []string
	q := r.URL.Query()

	if status := q.Get("status"); status != "" {
		if !model.Statuses[status] {
			problems = append(problems, fmt.Sprintf("unknown status %q", status))
		} else {
			filter.Status = &status
		}
	}
	if priority := q.Get("priority"); priority != "" {
		if !model.Priorities[priority] {
			problems = append(problems, fmt.Sprintf("unknown priority %q", priority))
		} else {
			filter.Priority = &priority
		}
	}
	if raw := q.Get("projectId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, "projectId must be an integer")
		} else {
			filter.ProjectID = &id
		}
	}
	if raw := q.Get("assignedTo"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, "assignedTo must be an integer")
		} else {
			filter.AssignedTo = &id
		}
	}
	if search := q.Get("search"); search != "" {
		filter.Search = &search
	}

	return filter, problems
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, problems := parseFilter(r)
	if len(problems) > 0 {
		respond.ValidationError(w, r, problems)
		return
	}

	tasks, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "task id must be an integer")
		return
	}

	var req service.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "task id must be an integer")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "Task not found")
	case errors.As(err, &vErr):
		respond.ValidationError(w, r, vErr.Fields)
	default:
		h.logger.Error("internal error", zap.Error(err))
		msg := "internal error"
		if h.dev {
			msg = err.Error()
		}
		respond.Error(w, r, http.StatusInternalServerError, msg)
	}
}
