// Package kv provides the keyed cache store backing cart aggregate caching.
package kv

import (
	"context"
	"time"
)

// Store is a minimal key-value cache contract. Implementations should degrade
// gracefully (returning an error without crashing callers) so that application
// logic can fall back to the primary datastore.
type Store interface {
	// Get returns the raw bytes for key. ok=false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value for key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys; absence is not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
