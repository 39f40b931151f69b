// Package rediskv implements the store.KV contract on top of Redis.
// Each Store instance works inside a key namespace so that the task and
// comment stores can share one Redis database without colliding.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/llegomark/tasks-api/internal/store"
)

// Store is a Redis-backed KV adapter.
type Store struct {
	client    redis.UniversalClient
	namespace string
}

var (
	_ store.KV          = (*Store)(nil)
	_ store.Incrementer = (*Store)(nil)
)

// New creates a Store using the given client and key namespace.
// Keys are stored as "{namespace}:{key}".
func New(client redis.UniversalClient, namespace string) *Store {
	return &Store{
		client:    client,
		namespace: namespace,
	}
}

// Dial connects to the Redis instance at addr and verifies the connection.
func Dial(ctx context.Context, addr string) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (s *Store) namespaced(key string) string {
	return s.namespace + ":" + key
}

func (s *Store) stripNamespace(key string) string {
	return strings.TrimPrefix(key, s.namespace+":")
}

// Get returns the value stored under key, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.namespaced(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Put stores value under key, applying the TTL from opts when set.
func (s *Store) Put(ctx context.Context, key string, value []byte, opts store.PutOptions) error {
	if err := s.client.Set(ctx, s.namespaced(key), value, opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes the key. Redis DEL of an absent key is already a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.namespaced(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// List scans keys matching the prefix using SCAN cursors. The cursor is the
// Redis scan cursor rendered as a decimal string; an empty next cursor means
// the scan is complete. SCAN may return pages smaller than limit even when
// more keys remain, which the store.KV contract allows. SCAN also guarantees
// no ordering across pages: keys written or deleted while a scan is in
// flight can be returned twice or skipped, so offset translation layered on
// these cursors inherits that imprecision. Part of the store's documented
// eventual-consistency tradeoff.
func (s *Store) List(ctx context.Context, prefix, cursor string, limit int) ([]string, string, error) {
	var scanCursor uint64
	if cursor != "" {
		if _, err := fmt.Sscanf(cursor, "%d", &scanCursor); err != nil {
			return nil, "", fmt.Errorf("invalid scan cursor %q: %w", cursor, err)
		}
	}

	match := s.namespaced(prefix) + "*"
	keys, nextCursor, err := s.client.Scan(ctx, scanCursor, match, int64(limit)).Result()
	if err != nil {
		return nil, "", fmt.Errorf("redis scan: %w", err)
	}

	stripped := make([]string, 0, len(keys))
	for _, key := range keys {
		stripped = append(stripped, s.stripNamespace(key))
	}

	next := ""
	if nextCursor != 0 {
		next = fmt.Sprintf("%d", nextCursor)
	}

	return stripped, next, nil
}

// Increment atomically increments the counter under key and refreshes its
// TTL, using Redis INCR + PEXPIRE in a pipeline.
func (s *Store) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, s.namespaced(key))
	if ttl > 0 {
		pipe.PExpire(ctx, s.namespaced(key), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val(), nil
}
