// Package provider defines the storage abstraction the cache writes through.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte previously passed to Set for a key. Internal transforms such as
// compression must be fully reversed before returning.
//
// The keyspace "entry:<ns>:" is owned by the cache. Foreign writes under it
// fail the cache's strict wire validation and are deleted on read.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. Must be safe for concurrent
// use. It is the sole persistence mechanism of the cache; no other I/O
// occurs.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote errors come back as (nil, false, err) and are propagated to
	// cache callers unchanged.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL, overwriting unconditionally.
	// Cost may be ignored by stores that are not cost-based. Returns
	// ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting an absent key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
