// Package index tracks which composed cache keys live under each prefix
// token so prefix-scoped removal can enumerate and delete them.
//
// A token is the string value stored under a prefix key; it becomes "live"
// on RegisterToken and stays live until Drop retires it (or retention prunes
// it). Observe must be called for every cache write: a key is recorded under
// every live token that is a string prefix of it, all matches, no tie-break.
//
// The index is advisory state. Entries for keys that expired in the store
// without notice are stale until Drop (deleting an absent key is a no-op for
// the store) or retention cleanup.
package index

import (
	"context"
	"time"
)

// Index abstracts where prefix membership lives.
// Use LocalIndex (default) for in-process state, or RedisIndex when several
// replicas must observe each other's writes.
type Index interface {
	// RegisterToken marks token live for prefixKey, replacing and discarding
	// any previous token registered for the same prefixKey.
	RegisterToken(ctx context.Context, prefixKey, token string) error

	// Observe records key under every live token prefixing it.
	Observe(ctx context.Context, key string) error

	// Drop retires the token and returns its member keys, sorted. Unknown
	// tokens yield an empty slice.
	Drop(ctx context.Context, prefixKey, token string) ([]string, error)

	// Cleanup prunes tokens untouched for longer than retention, if
	// applicable (no-op for Redis; TTLs handle it there).
	Cleanup(retention time.Duration)

	// Close releases resources (no-op ok).
	Close(context.Context) error
}
