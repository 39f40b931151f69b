// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/llegomark/tasks-api/internal/api/shared"
	"github.com/llegomark/tasks-api/internal/domain"
	"github.com/llegomark/tasks-api/internal/platform/logger"
	"github.com/llegomark/tasks-api/internal/redact"
	"github.com/llegomark/tasks-api/internal/store"
)

// Default pagination settings for task listing.
const (
	defaultPage  = 1
	defaultLimit = 10
)

// CreateTaskRequest represents the request body for creating a new task.
// Status, priority and labels are optional and receive defaults.
type CreateTaskRequest struct {
	Title    string   `json:"title"    validate:"required,max=100"`
	Status   string   `json:"status"   validate:"omitempty,oneof=todo in-progress done"`
	Priority string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Labels   []string `json:"labels"`
}

// UpdateTaskRequest represents the request body for a partial task update.
// Every field is optional; provided fields are validated individually and
// merged over the stored record.
type UpdateTaskRequest struct {
	Title    *string   `json:"title"    validate:"omitnil,min=1,max=100"`
	Status   *string   `json:"status"   validate:"omitnil,oneof=todo in-progress done"`
	Priority *string   `json:"priority" validate:"omitnil,oneof=low medium high"`
	Labels   *[]string `json:"labels"`
}

// listTasksQuery carries the validated filter parameters of a list request.
type listTasksQuery struct {
	Status   string `json:"status"   validate:"omitempty,oneof=todo in-progress done"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// TaskResponse represents the response data for a task, the stored record
// plus freshly computed hyperlinks.
type TaskResponse struct {
	domain.Task
	Links TaskLinks `json:"links"`
}

// TaskListResponse is the envelope for the task collection.
type TaskListResponse struct {
	Tasks    []TaskResponse `json:"tasks"`
	Metadata ListMetadata   `json:"metadata"`
	Links    ListLinks      `json:"links"`
}

// MessageResponse is the confirmation body for delete operations.
type MessageResponse struct {
	Message string `json:"message"`
}

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	tasks  *store.TaskStore
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /api/v1/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	task, err := domain.NewTask(
		req.Title,
		domain.TaskStatus(req.Status),
		domain.TaskPriority(req.Priority),
		req.Labels,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.tasks.Save(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to create task", err)
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, TaskResponse{
		Task:  *task,
		Links: taskLinks(r, task.ID),
	})
}

// ListTasks handles GET /api/v1/tasks requests with pagination and optional
// status/priority filters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	q := r.URL.Query()

	page, pageIssue := parsePositiveInt(q, "page", defaultPage)
	limit, limitIssue := parsePositiveInt(q, "limit", defaultLimit)
	if pageIssue != nil || limitIssue != nil {
		var issues []shared.Issue
		for _, issue := range []*shared.Issue{pageIssue, limitIssue} {
			if issue != nil {
				issues = append(issues, *issue)
			}
		}
		shared.RespondWithJSON(w, r, http.StatusBadRequest, shared.ErrorResponse{
			Error:   "Validation failed",
			Issues:  issues,
			TraceID: shared.GetTraceID(r.Context()),
		})
		return
	}

	h.listTasksPage(w, r, log, page, limit, q)
}

// listTasksPage performs the store fetch and response shaping for ListTasks
// once the pagination parameters have been validated.
func (h *TaskHandler) listTasksPage(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	page, limit int,
	q url.Values,
) {
	query := listTasksQuery{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
	}
	if err := shared.Validate.Struct(query); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	tasks, err := h.tasks.ListPage(r.Context(), page, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to list tasks", err)
		return
	}

	// Filtering happens after the page fetch, not before: a filtered page
	// may carry fewer than limit items even when more matches exist, and
	// metadata.total is the filtered count for this page. Known limitation
	// of listing over a KV store; callers page through until empty.
	filtered := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if query.Status != "" && task.Status != domain.TaskStatus(query.Status) {
			continue
		}
		if query.Priority != "" && task.Priority != domain.TaskPriority(query.Priority) {
			continue
		}
		filtered = append(filtered, task)
	}

	responses := make([]TaskResponse, 0, len(filtered))
	for _, task := range filtered {
		responses = append(responses, TaskResponse{
			Task:  *task,
			Links: taskLinks(r, task.ID),
		})
	}

	filters := url.Values{}
	if query.Status != "" {
		filters.Set("status", query.Status)
	}
	if query.Priority != "" {
		filters.Set("priority", query.Priority)
	}

	log.Debug("tasks listed",
		slog.Int("page", page),
		slog.Int("limit", limit),
		slog.Int("total", len(filtered)))

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Tasks: responses,
		Metadata: ListMetadata{
			Total: len(filtered),
			Page:  page,
			Limit: limit,
		},
		Links: taskListLinks(r, page, limit, filters),
	})
}

// GetTask handles GET /api/v1/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		Task:  *task,
		Links: taskLinks(r, task.ID),
	})
}

// UpdateTask handles PUT /api/v1/tasks/{id} requests: a partial update with
// merge semantics. The full merged record is persisted, not a patch.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := chi.URLParam(r, "id")

	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	patch := domain.TaskPatch{
		Title:  req.Title,
		Labels: req.Labels,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	if err := task.Apply(patch); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.tasks.Save(r.Context(), task); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to update task", err)
		return
	}

	log.Debug("task updated", slog.String("task_id", task.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, TaskResponse{
		Task:  *task,
		Links: taskLinks(r, task.ID),
	})
}

// DeleteTask handles DELETE /api/v1/tasks/{id} requests. The delete is
// idempotent: removing an absent task still succeeds.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := chi.URLParam(r, "id")

	if err := h.tasks.Delete(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to delete task", err)
		return
	}

	log.Debug("task deleted", slog.String("task_id", taskID))
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Task deleted successfully",
	})
}

// parsePositiveInt parses a positive integer query parameter, returning the
// fallback when the parameter is absent and an issue when it is malformed.
func parsePositiveInt(q url.Values, name string, fallback int) (int, *shared.Issue) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, &shared.Issue{
			Path:     []string{name},
			Code:     "invalid",
			Expected: "positive integer",
			Message:  name + " must be a positive integer",
		}
	}

	return value, nil
}
