// Package memkv provides an in-memory implementation of the store.KV
// contract, used by tests and local development. It honors TTLs and
// implements the optional atomic Increment capability.
package memkv

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/llegomark/tasks-api/internal/store"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
}

// Store is an in-memory KV store safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is injectable for TTL tests.
	now func() time.Time
}

var (
	_ store.KV          = (*Store)(nil)
	_ store.Incrementer = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetNowFunc overrides the store's clock. Testing hook.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns the value stored under key, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || s.expired(e) {
		return nil, store.ErrNotFound
	}

	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

// Put stores value under key, applying the TTL from opts when set.
func (s *Store) Put(ctx context.Context, key string, value []byte, opts store.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if opts.TTL > 0 {
		e.expiresAt = s.now().Add(opts.TTL)
	}
	s.entries[key] = e

	return nil
}

// Delete removes the key. Absent keys are a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// List returns up to limit keys with the given prefix in lexicographic
// order, starting after the cursor key. The returned cursor is the last key
// of the page, or empty when the scan is complete.
func (s *Store) List(ctx context.Context, prefix, cursor string, limit int) ([]string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []string
	for key, e := range s.entries {
		if s.expired(e) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			all = append(all, key)
		}
	}
	sort.Strings(all)

	start := 0
	if cursor != "" {
		start = sort.SearchStrings(all, cursor)
		if start < len(all) && all[start] == cursor {
			start++
		}
	}

	end := start + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	keys := all[start:end]
	next := ""
	if end < len(all) && len(keys) > 0 {
		next = keys[len(keys)-1]
	}

	return keys, next, nil
}

// Increment atomically increments the integer counter stored under key and
// refreshes its TTL. A missing or expired key starts from zero.
func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	if e, ok := s.entries[key]; ok && !s.expired(e) {
		count, _ = strconv.ParseInt(string(e.value), 10, 64)
	}
	count++

	e := entry{value: []byte(strconv.FormatInt(count, 10))}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e

	return count, nil
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
