package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// MaxTitleLength is the maximum number of characters allowed in a task title.
const MaxTitleLength = 100

// Task represents a work item with status, priority and labels.
// Timestamps are epoch milliseconds, matching the stored JSON records
// and the public API wire format.
type Task struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Status    TaskStatus   `json:"status"`
	Priority  TaskPriority `json:"priority"`
	Labels    []string     `json:"labels"`
	CreatedAt int64        `json:"createdAt"`
	UpdatedAt int64        `json:"updatedAt"`
}

// NowMillis returns the current time as epoch milliseconds.
var NowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// NewTask creates a new Task with a generated ID and the given fields.
// Zero-valued status, priority and labels receive their defaults
// (todo, medium, empty). CreatedAt and UpdatedAt are set to the same instant.
// Returns an error if validation fails.
func NewTask(title string, status TaskStatus, priority TaskPriority, labels []string) (*Task, error) {
	if status == "" {
		status = TaskStatusTodo
	}
	if priority == "" {
		priority = TaskPriorityMedium
	}
	if labels == nil {
		labels = []string{}
	}

	now := NowMillis()
	task := &Task{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    status,
		Priority:  priority,
		Labels:    labels,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrInvalidID
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}

	if len([]rune(t.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidStatus
	}

	if !isValidTaskPriority(t.Priority) {
		return ErrInvalidPriority
	}

	return nil
}

// TaskPatch carries a partial update for a task. Nil fields are left
// untouched by Apply; provided fields overwrite the existing values.
type TaskPatch struct {
	Title    *string
	Status   *TaskStatus
	Priority *TaskPriority
	Labels   *[]string
}

// Apply merges the patch into the task and refreshes UpdatedAt.
// ID and CreatedAt are never modified. UpdatedAt is guaranteed to strictly
// increase even when two updates land within the same millisecond.
// Returns an error if the merged task fails validation.
func (t *Task) Apply(patch TaskPatch) error {
	merged := *t
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	if patch.Priority != nil {
		merged.Priority = *patch.Priority
	}
	if patch.Labels != nil {
		merged.Labels = *patch.Labels
	}

	if err := merged.Validate(); err != nil {
		return err
	}

	now := NowMillis()
	if now <= merged.UpdatedAt {
		now = merged.UpdatedAt + 1
	}
	merged.UpdatedAt = now

	*t = merged
	return nil
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// isValidTaskPriority checks if the given priority is a valid TaskPriority.
func isValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}
