package prefixcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/prefixcache/codec"
	ix "github.com/unkn0wn-root/prefixcache/index"
	pr "github.com/unkn0wn-root/prefixcache/provider"
)

// Retriever produces a value on a cache miss (blocking form).
type Retriever[V any] func() (V, error)

// RetrieverContext produces a value on a cache miss (context form).
type RetrieverContext[V any] func(ctx context.Context) (V, error)

// TokenFunc decides whether a stored value doubles as a prefix token.
// Returning ("", false) means the key is a plain entry. The default accepts
// non-empty string values.
type TokenFunc[V any] func(key string, value V) (token string, ok bool)

// SetCostFunc computes the cost passed to the provider on Set. Only
// cost-based providers (Ristretto) consume it; others ignore it.
type SetCostFunc func(key string, raw []byte) int64

// Cache is the high-level, provider-agnostic cache API with prefix-scoped
// invalidation. V is the caller's value type; serialization is handled by a
// pluggable Codec[V].
//
// Each operation comes in a blocking and a Context form with identical
// inputs, outputs, and side effects. A retriever of nil is the explicit
// "no retriever" signal: Fetch then behaves exactly like Get.
type Cache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Set writes value under key with the given TTL (0 => DefaultTTL),
	// unconditionally overwriting. Registers the key with the prefix index.
	Set(key string, value V, ttl time.Duration) error
	SetContext(ctx context.Context, key string, value V, ttl time.Duration) error

	// Get peeks. A miss is Envelope{HasValue: false}, never an error.
	Get(key string) (Envelope[V], error)
	GetContext(ctx context.Context, key string) (Envelope[V], error)

	// Fetch is Get with cache-aside population: on a miss the retriever is
	// invoked, its result written with ttl, then returned as a hit. On a hit
	// the retriever is not invoked. Retriever errors propagate unwrapped and
	// nothing is written.
	Fetch(key string, retriever Retriever[V], ttl time.Duration) (Envelope[V], error)
	FetchContext(ctx context.Context, key string, retriever RetrieverContext[V], ttl time.Duration) (Envelope[V], error)

	// Remove deletes key. Absent keys are not an error.
	Remove(key string) error
	RemoveContext(ctx context.Context, key string) error

	// Refresh overwrites an entry and resets its expiration. Behaviorally
	// identical to Set; the distinct name signals update intent.
	Refresh(key string, value V, ttl time.Duration) error
	RefreshContext(ctx context.Context, key string, value V, ttl time.Duration) error

	// RemoveByPrefix resolves prefixKey's stored value as a namespace token,
	// deletes every key the index recorded under that token, then deletes
	// the prefixKey entry itself.
	RemoveByPrefix(prefixKey string) error
	RemoveByPrefixContext(ctx context.Context, prefixKey string) error
}

// Options tune the generic cache. Only Namespace, Provider and Codec are
// required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions, e.g. "user"
	Provider  pr.Provider
	Codec     c.Codec[V]

	Logger          Logger        // nil => NopLogger
	Hooks           Hooks         // nil => NopHooks
	DefaultTTL      time.Duration // 0 => 10m
	CleanupInterval time.Duration // local index sweep; 0 => 1h
	IndexRetention  time.Duration // prune tokens untouched this long; 0 => 30d
	Disabled        bool          // default false (enabled)
	ComputeSetCost  SetCostFunc   // default 1
	Index           ix.Index      // nil => LocalIndex (in-process)
	PrefixToken     TokenFunc[V]  // nil => string values become tokens

	// DedupeRetrievals collapses concurrent Fetch calls for the same missing
	// key into one retriever invocation. Off by default: the baseline
	// contract allows the thundering herd.
	DedupeRetrievals bool

	// Retriever protections. Nil disables the respective guard.
	RetrieverRateLimit      *RateLimitConfig
	RetrieverCircuitBreaker *CircuitBreakerConfig
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
