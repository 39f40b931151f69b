package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/llegomark/tasks-api/internal/domain"
)

// CommentStore persists comments as JSON records in a KV store under the
// composite key "{taskId}:{commentId}", which makes listing a task's
// comments a prefix scan.
type CommentStore struct {
	kv KV
}

// NewCommentStore creates a CommentStore backed by the given KV.
func NewCommentStore(kv KV) *CommentStore {
	return &CommentStore{kv: kv}
}

// commentKey builds the composite store key for a comment.
func commentKey(taskID, commentID string) string {
	return taskID + ":" + commentID
}

// Save writes the full comment record under its composite key.
func (s *CommentStore) Save(ctx context.Context, comment *domain.Comment) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return NewStoreError("comment", "save", "failed to encode record", err)
	}

	key := commentKey(comment.TaskID, comment.ID)
	if err := s.kv.Put(ctx, key, data, PutOptions{}); err != nil {
		return NewStoreError("comment", "save", "failed to write record", err)
	}

	return nil
}

// Get fetches a comment by its task and comment IDs.
// Returns ErrCommentNotFound when the record is absent.
func (s *CommentStore) Get(ctx context.Context, taskID, commentID string) (*domain.Comment, error) {
	data, err := s.kv.Get(ctx, commentKey(taskID, commentID))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, ErrCommentNotFound
		}
		return nil, NewStoreError("comment", "get", "failed to read record", err)
	}

	var comment domain.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return &comment, nil
}

// ListByTask returns every comment attached to the task, in key order.
// Listing is unpaginated: all matches come back in one response. That is a
// documented scale limitation of the comment resource, not something to fix
// here.
func (s *CommentStore) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	const scanBatch = 100

	var (
		comments []*domain.Comment
		cursor   string
	)
	prefix := taskID + ":"

	for {
		keys, next, err := s.kv.List(ctx, prefix, cursor, scanBatch)
		if err != nil {
			return nil, NewStoreError("comment", "list", "failed to scan keys", err)
		}

		for _, key := range keys {
			data, err := s.kv.Get(ctx, key)
			if err != nil {
				if IsNotFoundError(err) {
					continue
				}
				return nil, NewStoreError("comment", "list", "failed to read record", err)
			}

			var comment domain.Comment
			if err := json.Unmarshal(data, &comment); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
			}
			comments = append(comments, &comment)
		}

		if next == "" {
			return comments, nil
		}
		cursor = next
	}
}

// Delete removes the comment record. Deleting an absent key succeeds (idempotent).
func (s *CommentStore) Delete(ctx context.Context, taskID, commentID string) error {
	if err := s.kv.Delete(ctx, commentKey(taskID, commentID)); err != nil {
		return NewStoreError("comment", "delete", "failed to delete record", err)
	}
	return nil
}
