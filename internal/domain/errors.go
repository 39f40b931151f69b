// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyTitle is returned when a task title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrTitleTooLong is returned when a task title exceeds the maximum length.
	ErrTitleTooLong = errors.New("title exceeds maximum length")

	// ErrInvalidStatus is returned when a task status is not a known value.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when a task priority is not a known value.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrEmptyContent is returned when a comment has no content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrContentTooLong is returned when comment content exceeds the maximum length.
	ErrContentTooLong = errors.New("content exceeds maximum length")

	// ErrEmptyTaskID is returned when a comment is not attached to a task.
	ErrEmptyTaskID = errors.New("task ID cannot be empty")
)
