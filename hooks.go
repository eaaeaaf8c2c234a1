package prefixcache

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the cache calls them on hot paths. Wrap
// with hooks/async to decouple slow sinks.
type Hooks interface {
	// An entry was deleted by the cache on read.
	// reason is "corrupt" or "value_decode".
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// The prefix index failed an operation.
	// op is "register", "observe" or "drop".
	IndexError(op string, err error)

	// RemoveByPrefix retired a token and deleted its members.
	PrefixRemoved(prefixKey, token string, removed int)

	// A miss-path retriever invocation was refused by a guard.
	// reason is "rate_limited" or "breaker_open".
	RetrieverRejected(key, reason string)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)           {}
func (NopHooks) ProviderSetRejected(string)        {}
func (NopHooks) IndexError(string, error)          {}
func (NopHooks) PrefixRemoved(string, string, int) {}
func (NopHooks) RetrieverRejected(string, string)  {}
