package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/llegomark/tasks-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
// Every error the API returns is a JSON object with at least an "error"
// field; validation failures additionally carry an "issues" array.
type ErrorResponse struct {
	Error   string  `json:"error"`
	Issues  []Issue `json:"issues,omitempty"`
	TraceID string  `json:"trace_id,omitempty"`
}

// Issue describes a single field-level validation failure.
type Issue struct {
	Path     []string `json:"path"`
	Code     string   `json:"code"`
	Expected string   `json:"expected,omitempty"`
	Message  string   `json:"message"`
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status code and message.
// It also sets the TraceID from the request context if available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string) {
	traceID := GetTraceID(r.Context())

	slog.Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, ErrorResponse{
		Error:   message,
		TraceID: traceID,
	})
}

// RespondWithValidationError writes a 400 response carrying per-field issues
// extracted from a validator error. Non-validator errors fall back to a
// plain 400 with a generic message.
func RespondWithValidationError(w http.ResponseWriter, r *http.Request, err error) {
	issues := IssuesFromError(err)
	if len(issues) == 0 {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	RespondWithJSON(w, r, http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Issues:  issues,
		TraceID: GetTraceID(r.Context()),
	})
}

// IssuesFromError converts a validator.ValidationErrors into the issue list
// shape. Returns nil for any other error type.
func IssuesFromError(err error) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:     []string{fe.Field()},
			Code:     fe.Tag(),
			Expected: fe.Param(),
			Message:  issueMessage(fe),
		})
	}
	return issues
}

// issueMessage maps validation tags to human-readable messages.
func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation on %q", fe.Field(), fe.Tag())
	}
}

// RespondWithErrorAndLog writes a JSON error response and also logs the
// detailed error. The raw error is redacted and only ever appears in logs,
// never in the response body.
//
// Log level strategy:
//   - 5xx errors: ERROR level
//   - 429 Too Many Requests: WARN level (operational concern)
//   - other 4xx errors: DEBUG level
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
) {
	traceID := GetTraceID(r.Context())

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	}

	slog.LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, ErrorResponse{
		Error:   userMessage,
		TraceID: traceID,
	})
}
