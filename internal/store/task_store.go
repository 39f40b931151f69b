package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/llegomark/tasks-api/internal/domain"
)

// taskKeyPrefix namespaces task records inside the KV so that non-task keys
// sharing the store (rate limit counters, future bookkeeping) never surface
// in list scans.
const taskKeyPrefix = "task:"

func taskKey(id string) string {
	return taskKeyPrefix + id
}

// TaskStore persists tasks as JSON records in a KV store, keyed by task ID
// under the task: prefix.
type TaskStore struct {
	kv KV
}

// NewTaskStore creates a TaskStore backed by the given KV.
func NewTaskStore(kv KV) *TaskStore {
	return &TaskStore{kv: kv}
}

// Save writes the full task record under its ID, overwriting any existing
// record. Last write wins; there is no optimistic concurrency control.
func (s *TaskStore) Save(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return NewStoreError("task", "save", "failed to encode record", err)
	}

	if err := s.kv.Put(ctx, taskKey(task.ID), data, PutOptions{}); err != nil {
		return NewStoreError("task", "save", "failed to write record", err)
	}

	return nil
}

// Get fetches a task by ID. Returns ErrTaskNotFound when the record is absent.
func (s *TaskStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	data, err := s.kv.Get(ctx, taskKey(id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		return nil, NewStoreError("task", "get", "failed to read record", err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return &task, nil
}

// ListPage fetches one page of tasks. The KV exposes cursor-based listing
// only, so the offset implied by page/limit is translated by walking cursors
// and discarding keys until the offset is reached. Records deleted between
// the key listing and the per-key fetch are skipped, not surfaced as errors
// (the store is eventually consistent).
func (s *TaskStore) ListPage(ctx context.Context, page, limit int) ([]*domain.Task, error) {
	keys, err := s.listKeys(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, NewStoreError("task", "list", "failed to list keys", err)
	}

	tasks := make([]*domain.Task, 0, len(keys))
	for _, key := range keys {
		task, err := s.Get(ctx, strings.TrimPrefix(key, taskKeyPrefix))
		if err != nil {
			if IsNotFoundError(err) {
				continue
			}
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}

// Delete removes the task record. Deleting an absent ID succeeds (idempotent).
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, taskKey(id)); err != nil {
		return NewStoreError("task", "delete", "failed to delete record", err)
	}
	return nil
}

// listKeys walks the KV cursor until offset keys have been skipped, then
// collects up to limit keys.
func (s *TaskStore) listKeys(ctx context.Context, offset, limit int) ([]string, error) {
	var (
		collected []string
		cursor    string
	)

	for {
		keys, next, err := s.kv.List(ctx, taskKeyPrefix, cursor, offset+limit-len(collected))
		if err != nil {
			return nil, err
		}

		for _, key := range keys {
			if offset > 0 {
				offset--
				continue
			}
			collected = append(collected, key)
			if len(collected) == limit {
				return collected, nil
			}
		}

		if next == "" {
			return collected, nil
		}
		cursor = next
	}
}
