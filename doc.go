// Package prefixcache implements a provider-agnostic, cache-aside caching
// layer with prefix-scoped invalidation. Values are stored through a pluggable byte
// store (Redis, Ristretto, BigCache, FreeCache) and read back as an Envelope:
// a (value, HasValue) pair that is the uniform result of every read path.
//
// Components:
//   - Provider: byte store with TTL (see the provider subpackages).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Index: tracks which composed keys live under each prefix token so
//     RemoveByPrefix can enumerate and delete them. Local (in-process) by
//     default, optional Redis implementation for multi-replica setups.
//   - Retriever: caller-supplied producer invoked on a miss (cache-aside).
//
// Keys:
//
//	entry:<ns>:<key>  - cache entries (owned keyspace; foreign writes under it
//	                    are treated as corruption and self-healed)
//
// Prefixed keys are a caller convention, not a stored entity: store a
// namespace token under a prefix key, then compose real keys from it.
//
//	_ = cache.Set("projects", token, ttl)         // register the token
//	pre, _ := cache.Get("projects")               // resolve it
//	_ = cache.Set(pre.Value+":42", project, ttl)  // composed key, indexed
//	_ = cache.RemoveByPrefix("projects")          // drops every composed key
//
// RemoveByPrefix does not mint a replacement token; the next writer of the
// prefix key does. Composed entries that a caller reaches outside the
// resolve-then-compose pattern after removal are left to TTL expiry.
//
// Every operation has a blocking form (Get, Set, ...) and a context form
// (GetContext, SetContext, ...) with identical semantics and side effects;
// the blocking forms run on context.Background().
package prefixcache
