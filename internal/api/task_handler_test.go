package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llegomark/tasks-api/internal/api"
	"github.com/llegomark/tasks-api/internal/api/shared"
	"github.com/llegomark/tasks-api/internal/domain"
	"github.com/llegomark/tasks-api/internal/store"
	"github.com/llegomark/tasks-api/internal/store/memkv"
)

// testEnv bundles the router and stores for handler tests. The router mounts
// the same routes as production, minus the middleware chain.
type testEnv struct {
	router   chi.Router
	tasks    *store.TaskStore
	comments *store.CommentStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tasks := store.NewTaskStore(memkv.New())
	comments := store.NewCommentStore(memkv.New())

	taskHandler := api.NewTaskHandler(tasks, logger)
	commentHandler := api.NewCommentHandler(tasks, comments, logger)

	r := chi.NewRouter()
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Post("/", taskHandler.CreateTask)
		r.Get("/", taskHandler.ListTasks)
		r.Get("/{id}", taskHandler.GetTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.Delete("/{id}", taskHandler.DeleteTask)

		r.Post("/{id}/comments", commentHandler.CreateComment)
		r.Get("/{id}/comments", commentHandler.ListComments)
		r.Put("/{id}/comments/{commentId}", commentHandler.UpdateComment)
		r.Delete("/{id}/comments/{commentId}", commentHandler.DeleteComment)
	})

	return &testEnv{router: r, tasks: tasks, comments: comments}
}

// do executes a request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Host = "api.test"
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON body into out.
func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// decodeIssues extracts the error envelope from a validation failure.
func decodeIssues(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	decode(t, rec, &resp)
	return resp
}

func TestCreateTask(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title": "Buy milk",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "Buy milk", resp.Title)
	assert.Equal(t, domain.TaskStatusTodo, resp.Status)
	assert.Equal(t, domain.TaskPriorityMedium, resp.Priority)
	assert.Equal(t, []string{}, resp.Labels)
	assert.Equal(t, resp.CreatedAt, resp.UpdatedAt)

	assert.Equal(t, "http://api.test/api/v1/tasks/"+resp.ID, resp.Links.Self)
	assert.Equal(t, resp.Links.Self+"/comments", resp.Links.Comments)

	// Wire field names are camelCase.
	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	for _, field := range []string{"id", "title", "status", "priority", "labels", "createdAt", "updatedAt", "links"} {
		assert.Contains(t, raw, field)
	}
}

func TestCreateTask_ExplicitFields(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{
		"title":    "Ship release",
		"status":   "in-progress",
		"priority": "high",
		"labels":   []string{"release"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)
	assert.Equal(t, domain.TaskStatusInProgress, resp.Status)
	assert.Equal(t, domain.TaskPriorityHigh, resp.Priority)
	assert.Equal(t, []string{"release"}, resp.Labels)
}

func TestCreateTask_Validation(t *testing.T) {
	tests := []struct {
		name     string
		body     map[string]any
		wantPath string
		wantCode string
	}{
		{
			name:     "empty_title",
			body:     map[string]any{"title": ""},
			wantPath: "title",
			wantCode: "required",
		},
		{
			name:     "missing_title",
			body:     map[string]any{"status": "todo"},
			wantPath: "title",
			wantCode: "required",
		},
		{
			name:     "title_too_long",
			body:     map[string]any{"title": strings.Repeat("x", 101)},
			wantPath: "title",
			wantCode: "max",
		},
		{
			name:     "invalid_status",
			body:     map[string]any{"title": "ok", "status": "blocked"},
			wantPath: "status",
			wantCode: "oneof",
		},
		{
			name:     "invalid_priority",
			body:     map[string]any{"title": "ok", "priority": "urgent"},
			wantPath: "priority",
			wantCode: "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/api/v1/tasks", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeIssues(t, rec)
			assert.Equal(t, "Validation failed", resp.Error)
			require.Len(t, resp.Issues, 1)
			assert.Equal(t, []string{tt.wantPath}, resp.Issues[0].Path)
			assert.Equal(t, tt.wantCode, resp.Issues[0].Code)
			assert.NotEmpty(t, resp.Issues[0].Message)
		})
	}
}

func TestCreateTask_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	t.Run("invalid_json", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", `{"title": `)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", decodeIssues(t, rec).Error)
	})

	t.Run("unknown_field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/tasks", `{"title":"ok","owner":"me"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", decodeIssues(t, rec).Error)
	})
}

func TestGetTask(t *testing.T) {
	env := newTestEnv(t)

	created := env.createTask(t, "Read a book")

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)
	assert.Equal(t, created.Task, resp.Task)
}

func TestGetTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeIssues(t, rec).Error)
}

func TestUpdateTask_MergeSemantics(t *testing.T) {
	env := newTestEnv(t)

	created := env.createTask(t, "Original title")

	rec := env.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{
		"status": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)

	// Only the supplied field changes; the rest carries over.
	assert.Equal(t, "Original title", resp.Title)
	assert.Equal(t, domain.TaskStatusDone, resp.Status)
	assert.Equal(t, created.Priority, resp.Priority)
	assert.Equal(t, created.CreatedAt, resp.CreatedAt)
	assert.Greater(t, resp.UpdatedAt, created.UpdatedAt)

	// The merged record is what got persisted.
	got := env.getTask(t, created.ID)
	assert.Equal(t, resp.Task, got.Task)
}

func TestUpdateTask_Validation(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t, "Stable title")

	t.Run("empty_title", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{
			"title": "",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeIssues(t, rec)
		require.Len(t, resp.Issues, 1)
		assert.Equal(t, []string{"title"}, resp.Issues[0].Path)
		assert.Equal(t, "min", resp.Issues[0].Code)
	})

	t.Run("invalid_status", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{
			"status": "blocked",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, decodeIssues(t, rec).Issues, 1)
	})

	// A rejected update must not touch the stored record.
	got := env.getTask(t, created.ID)
	assert.Equal(t, created.Task, got.Task)
}

func TestUpdateTask_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/v1/tasks/no-such-id", map[string]any{
		"title": "whatever",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decodeIssues(t, rec).Error)
}

func TestDeleteTask_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	created := env.createTask(t, "Short lived")

	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.MessageResponse
		decode(t, rec, &resp)
		assert.Equal(t, "Task deleted successfully", resp.Message)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTasks_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 25; i++ {
		env.createTask(t, fmt.Sprintf("task %02d", i))
	}

	t.Run("defaults", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Tasks, 10)
		assert.Equal(t, 10, resp.Metadata.Total)
		assert.Equal(t, 1, resp.Metadata.Page)
		assert.Equal(t, 10, resp.Metadata.Limit)

		// First page: no prev link, next always present.
		assert.Empty(t, resp.Links.Prev)
		assert.Contains(t, resp.Links.Next, "page=2")
	})

	t.Run("explicit_page", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks?page=3&limit=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		decode(t, rec, &resp)
		assert.Len(t, resp.Tasks, 5)
		assert.Contains(t, resp.Links.Prev, "page=2")
		assert.Contains(t, resp.Links.Next, "page=4")
	})

	t.Run("beyond_last_page", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/tasks?page=9&limit=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.TaskListResponse
		decode(t, rec, &resp)
		assert.Empty(t, resp.Tasks)
		assert.Equal(t, 0, resp.Metadata.Total)
	})
}

func TestListTasks_InvalidPagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPaths []string
	}{
		{name: "non_numeric_page", query: "?page=abc", wantPaths: []string{"page"}},
		{name: "zero_page", query: "?page=0", wantPaths: []string{"page"}},
		{name: "negative_limit", query: "?limit=-5", wantPaths: []string{"limit"}},
		{name: "both_invalid", query: "?page=x&limit=y", wantPaths: []string{"page", "limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodGet, "/api/v1/tasks"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			resp := decodeIssues(t, rec)
			assert.Equal(t, "Validation failed", resp.Error)
			require.Len(t, resp.Issues, len(tt.wantPaths))
			for i, path := range tt.wantPaths {
				assert.Equal(t, []string{path}, resp.Issues[i].Path)
			}
		})
	}
}

func TestListTasks_StatusFilter(t *testing.T) {
	env := newTestEnv(t)

	env.createTask(t, "todo one")
	done := env.createTask(t, "done one")
	rec := env.do(t, http.MethodPut, "/api/v1/tasks/"+done.ID, map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/tasks?status=done", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskListResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, done.ID, resp.Tasks[0].ID)

	// metadata.total reflects the filtered page, and the filter survives in
	// the pagination links.
	assert.Equal(t, 1, resp.Metadata.Total)
	assert.Contains(t, resp.Links.Self, "status=done")
	assert.Contains(t, resp.Links.Next, "status=done")
}

func TestListTasks_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/tasks?status=blocked", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeIssues(t, rec)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, []string{"status"}, resp.Issues[0].Path)
	assert.Equal(t, "oneof", resp.Issues[0].Code)
}

// TestTaskLifecycle walks a task through create, read, update, comment and
// delete in one pass.
func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created := env.createTask(t, "Buy milk")
	assert.Equal(t, domain.TaskStatusTodo, created.Status)

	rec := env.do(t, http.MethodPut, "/api/v1/tasks/"+created.ID, map[string]any{
		"status": "done",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated api.TaskResponse
	decode(t, rec, &updated)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, domain.TaskStatusDone, updated.Status)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)

	rec = env.do(t, http.MethodPost, "/api/v1/tasks/"+created.ID+"/comments", map[string]any{
		"content": "Got 2% instead",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// createTask creates a task through the API and fails the test on anything
// but a 201.
func (e *testEnv) createTask(t *testing.T, title string) api.TaskResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/tasks", map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)
	return resp
}

// getTask fetches a task through the API, failing on anything but a 200.
func (e *testEnv) getTask(t *testing.T, id string) api.TaskResponse {
	t.Helper()

	rec := e.do(t, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.TaskResponse
	decode(t, rec, &resp)
	return resp
}
