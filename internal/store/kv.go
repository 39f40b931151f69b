// Package store defines the persistence seam of the application: a small
// key-value contract implemented by external stores, and typed task/comment
// stores layered on top of it. The backing store is assumed to be eventually
// consistent; a Put may not be immediately visible to a subsequent List from
// another node, and no operation here is transactional.
package store

import (
	"context"
	"time"
)

// PutOptions carries optional write settings for KV.Put.
type PutOptions struct {
	// TTL, when positive, expires the key after the given duration.
	// Zero means no expiration.
	TTL time.Duration
}

// KV is the contract the application requires from an external key-value
// store. Implementations must treat Delete of an absent key as a no-op and
// return ErrNotFound from Get when the key does not exist.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, overwriting any existing value.
	Put(ctx context.Context, key string, value []byte, opts PutOptions) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns up to limit keys that start with prefix, resuming from
	// cursor (empty for the first page). It returns the keys, the cursor
	// for the next page, and an empty next cursor once the scan is done.
	List(ctx context.Context, prefix, cursor string, limit int) (keys []string, next string, err error)
}

// Incrementer is an optional KV capability: an atomic counter increment that
// applies ttl on every call. Adapters backed by stores with a native
// increment primitive (e.g. Redis INCR) should implement it; callers that
// need a counter probe for it and fall back to read-then-write.
type Incrementer interface {
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
