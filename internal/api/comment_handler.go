package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/llegomark/tasks-api/internal/api/shared"
	"github.com/llegomark/tasks-api/internal/domain"
	"github.com/llegomark/tasks-api/internal/platform/logger"
	"github.com/llegomark/tasks-api/internal/redact"
	"github.com/llegomark/tasks-api/internal/store"
)

// CommentRequest represents the request body for creating or updating a
// comment.
type CommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// CommentResponse represents the response data for a comment, the stored
// record plus freshly computed hyperlinks.
type CommentResponse struct {
	domain.Comment
	Links CommentLinks `json:"links"`
}

// CommentListResponse is the envelope for a task's comment collection.
// Comment listing is unpaginated: every comment on the task comes back in
// one response.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Metadata ListMetadata      `json:"metadata"`
	Links    ListLinks         `json:"links"`
}

// CommentHandler handles comment-related HTTP requests.
type CommentHandler struct {
	tasks    *store.TaskStore
	comments *store.CommentStore
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(
	tasks *store.TaskStore,
	comments *store.CommentStore,
	logger *slog.Logger,
) *CommentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CommentHandler")
	}

	return &CommentHandler{
		tasks:    tasks,
		comments: comments,
		logger:   logger.With(slog.String("component", "comment_handler")),
	}
}

// CreateComment handles POST /api/v1/tasks/{id}/comments requests. The
// parent task must exist at creation time; this is the only point where the
// task/comment relationship is checked.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := chi.URLParam(r, "id")

	if _, err := h.tasks.Get(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	comment, err := domain.NewComment(taskID, req.Content)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.comments.Save(r.Context(), comment); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to create comment", err)
		return
	}

	log.Debug("comment created",
		slog.String("task_id", taskID),
		slog.String("comment_id", comment.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, CommentResponse{
		Comment: *comment,
		Links:   commentLinks(r, taskID, comment.ID),
	})
}

// ListComments handles GET /api/v1/tasks/{id}/comments requests.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	comments, err := h.comments.ListByTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to list comments", err)
		return
	}

	responses := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, CommentResponse{
			Comment: *comment,
			Links:   commentLinks(r, taskID, comment.ID),
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CommentListResponse{
		Comments: responses,
		Metadata: ListMetadata{Total: len(responses)},
		Links:    commentListLinks(r, taskID),
	})
}

// UpdateComment handles PUT /api/v1/tasks/{id}/comments/{commentId}
// requests. The comment is addressed by its composite key; the parent task
// itself is not re-checked.
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")

	comment, err := h.comments.Get(r.Context(), taskID, commentID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req CommentRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	if err := comment.UpdateContent(req.Content); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if err := h.comments.Save(r.Context(), comment); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to update comment", err)
		return
	}

	log.Debug("comment updated",
		slog.String("task_id", taskID),
		slog.String("comment_id", commentID))
	shared.RespondWithJSON(w, r, http.StatusOK, CommentResponse{
		Comment: *comment,
		Links:   commentLinks(r, taskID, commentID),
	})
}

// DeleteComment handles DELETE /api/v1/tasks/{id}/comments/{commentId}
// requests. Idempotent like task deletion.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	taskID := chi.URLParam(r, "id")
	commentID := chi.URLParam(r, "commentId")

	if err := h.comments.Delete(r.Context(), taskID, commentID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusInternalServerError, "Failed to delete comment", err)
		return
	}

	log.Debug("comment deleted",
		slog.String("task_id", taskID),
		slog.String("comment_id", commentID))
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Comment deleted successfully",
	})
}
