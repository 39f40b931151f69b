package domain

import "github.com/google/uuid"

// MaxContentLength is the maximum number of characters allowed in comment content.
const MaxContentLength = 500

// Comment represents a note attached to exactly one task.
// Referential integrity is only checked at creation time; a comment may
// outlive its task (no cascade delete).
type Comment struct {
	ID        string `json:"id"`
	TaskID    string `json:"taskId"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// NewComment creates a new Comment for the given task with a generated ID.
// CreatedAt and UpdatedAt are set to the same instant.
// Returns an error if validation fails.
func NewComment(taskID, content string) (*Comment, error) {
	now := NowMillis()
	comment := &Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the Comment has valid data.
// Returns an error if any field fails validation.
func (c *Comment) Validate() error {
	if c.ID == "" {
		return ErrInvalidID
	}

	if c.TaskID == "" {
		return ErrEmptyTaskID
	}

	if c.Content == "" {
		return ErrEmptyContent
	}

	if len([]rune(c.Content)) > MaxContentLength {
		return ErrContentTooLong
	}

	return nil
}

// UpdateContent replaces the comment content and refreshes UpdatedAt.
// Returns an error if the new content is invalid.
func (c *Comment) UpdateContent(content string) error {
	if content == "" {
		return ErrEmptyContent
	}
	if len([]rune(content)) > MaxContentLength {
		return ErrContentTooLong
	}

	c.Content = content

	now := NowMillis()
	if now <= c.UpdatedAt {
		now = c.UpdatedAt + 1
	}
	c.UpdatedAt = now

	return nil
}
