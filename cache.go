package prefixcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/prefixcache/codec"
	"github.com/unkn0wn-root/prefixcache/index"
	"github.com/unkn0wn-root/prefixcache/internal/wire"
	pr "github.com/unkn0wn-root/prefixcache/provider"
)

const (
	defaultTTL            = 10 * time.Minute
	defaultSweep          = time.Hour
	defaultIndexRetention = 30 * 24 * time.Hour
)

type cache[V any] struct {
	ns       string
	provider pr.Provider
	codec    codec.Codec[V]
	log      Logger
	hooks    Hooks

	enabled bool

	ttl            time.Duration
	sweepInterval  time.Duration
	indexRetention time.Duration
	computeSetCost SetCostFunc
	token          TokenFunc[V]

	idx   index.Index
	guard *retrieverGuard
	sf    *singleflight.Group

	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("prefixcache: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("prefixcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("prefixcache: namespace is required")
	}

	c := &cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		enabled:  !opts.Disabled,
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.ttl = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)
	c.sweepInterval = coalesce[time.Duration](opts.CleanupInterval, defaultSweep)
	c.indexRetention = coalesce[time.Duration](opts.IndexRetention, defaultIndexRetention)

	if opts.ComputeSetCost != nil {
		c.computeSetCost = opts.ComputeSetCost
	} else {
		c.computeSetCost = func(_ string, _ []byte) int64 { return 1 }
	}

	if opts.PrefixToken != nil {
		c.token = opts.PrefixToken
	} else {
		c.token = stringToken[V]
	}

	if opts.Index != nil {
		c.idx = opts.Index
	} else {
		// default to in-process index with periodic pruning
		c.idx = index.NewLocalIndex(c.sweepInterval, c.indexRetention)
	}

	c.guard = newRetrieverGuard(opts.RetrieverRateLimit, opts.RetrieverCircuitBreaker)
	if opts.DedupeRetrievals {
		c.sf = new(singleflight.Group)
	}
	return c, nil
}

// stringToken is the default TokenFunc: any non-empty string value becomes a
// live prefix token.
func stringToken[V any](_ string, value V) (string, bool) {
	s, ok := any(value).(string)
	return s, ok && s != ""
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		if c.idx != nil {
			_ = c.idx.Close(ctx) // best effort
		}
		if c.provider != nil {
			c.closeErr = c.provider.Close(ctx)
		}
	})
	return c.closeErr
}

func (c *cache[V]) Set(key string, value V, ttl time.Duration) error {
	return c.SetContext(context.Background(), key, value, ttl)
}

func (c *cache[V]) SetContext(ctx context.Context, key string, value V, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if !c.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	framed := wire.Encode(payload)
	k := c.entryKey(key)
	ok, err := c.provider.Set(ctx, k, framed, c.computeSetCost(k, framed), ttl)
	if err != nil {
		return err
	}
	if !ok {
		c.hooks.ProviderSetRejected(k)
		c.log.Debug("set rejected by provider (pressure)", Fields{"key": key})
	}
	c.observeSet(ctx, key, value)
	return nil
}

// observeSet keeps the prefix index in step with a completed write: the key
// is recorded under every live token prefixing it, and a tokenizable value
// makes the key a live prefix key. Index failures never fail the Set; they
// surface through hooks and the log (the index only serves bulk removal).
func (c *cache[V]) observeSet(ctx context.Context, key string, value V) {
	if tok, ok := c.token(key, value); ok {
		if err := c.idx.RegisterToken(ctx, key, tok); err != nil {
			c.hooks.IndexError("register", err)
			c.log.Warn("prefix token registration failed", Fields{"key": key, "err": err})
		}
	}
	if err := c.idx.Observe(ctx, key); err != nil {
		c.hooks.IndexError("observe", err)
		c.log.Warn("prefix index observe failed", Fields{"key": key, "err": err})
	}
}

func (c *cache[V]) Get(key string) (Envelope[V], error) {
	return c.GetContext(context.Background(), key)
}

func (c *cache[V]) GetContext(ctx context.Context, key string) (Envelope[V], error) {
	if key == "" {
		return Envelope[V]{}, ErrInvalidKey
	}
	if !c.enabled {
		return Envelope[V]{}, nil
	}
	k := c.entryKey(key)
	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		return Envelope[V]{}, err
	}
	if !ok {
		return Envelope[V]{}, nil
	}
	payload, err := wire.Decode(raw)
	if err != nil {
		c.selfHeal(ctx, k, "corrupt")
		return Envelope[V]{}, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.selfHeal(ctx, k, "value_decode")
		return Envelope[V]{}, nil
	}
	return Hit(v), nil
}

func (c *cache[V]) Fetch(key string, retriever Retriever[V], ttl time.Duration) (Envelope[V], error) {
	var rc RetrieverContext[V]
	if retriever != nil {
		rc = func(context.Context) (V, error) { return retriever() }
	}
	return c.FetchContext(context.Background(), key, rc, ttl)
}

func (c *cache[V]) FetchContext(ctx context.Context, key string, retriever RetrieverContext[V], ttl time.Duration) (Envelope[V], error) {
	env, err := c.GetContext(ctx, key)
	if err != nil || env.HasValue || retriever == nil {
		return env, err
	}

	if c.sf != nil {
		res, err, _ := c.sf.Do(c.entryKey(key), func() (any, error) {
			return c.retrieve(ctx, key, retriever, ttl)
		})
		if err != nil {
			return Envelope[V]{}, err
		}
		return Hit(res.(V)), nil
	}

	v, err := c.retrieve(ctx, key, retriever, ttl)
	if err != nil {
		return Envelope[V]{}, err
	}
	return Hit(v), nil
}

// retrieve invokes the retriever behind the configured guards and persists
// the result. Retriever errors propagate unwrapped with nothing written.
func (c *cache[V]) retrieve(ctx context.Context, key string, retriever RetrieverContext[V], ttl time.Duration) (V, error) {
	var zero V
	if err := c.guard.allow(ctx); err != nil {
		switch {
		case errors.Is(err, ErrRetrieverRateLimited):
			c.hooks.RetrieverRejected(key, "rate_limited")
		case errors.Is(err, ErrRetrieverCircuitOpen):
			c.hooks.RetrieverRejected(key, "breaker_open")
		}
		return zero, err
	}
	v, err := retriever(ctx)
	c.guard.record(err)
	if err != nil {
		return zero, err
	}
	if !c.enabled {
		return v, nil
	}
	if err := c.SetContext(ctx, key, v, ttl); err != nil {
		return zero, err
	}
	return v, nil
}

func (c *cache[V]) Remove(key string) error {
	return c.RemoveContext(context.Background(), key)
}

func (c *cache[V]) RemoveContext(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if !c.enabled {
		return nil
	}
	// index entries for the key stay; deleting an absent member later is a
	// no-op for the provider
	return c.provider.Del(ctx, c.entryKey(key))
}

func (c *cache[V]) Refresh(key string, value V, ttl time.Duration) error {
	return c.RefreshContext(context.Background(), key, value, ttl)
}

func (c *cache[V]) RefreshContext(ctx context.Context, key string, value V, ttl time.Duration) error {
	// same write path as Set; the entry's expiration restarts with ttl
	return c.SetContext(ctx, key, value, ttl)
}

func (c *cache[V]) RemoveByPrefix(prefixKey string) error {
	return c.RemoveByPrefixContext(context.Background(), prefixKey)
}

func (c *cache[V]) RemoveByPrefixContext(ctx context.Context, prefixKey string) error {
	if prefixKey == "" {
		return ErrInvalidKey
	}
	if !c.enabled {
		return nil
	}

	env, err := c.GetContext(ctx, prefixKey)
	if err != nil {
		return err
	}
	if !env.HasValue {
		// no token to resolve; clear the prefix entry anyway
		return c.provider.Del(ctx, c.entryKey(prefixKey))
	}
	tok, ok := c.token(prefixKey, env.Value)
	if !ok {
		return c.provider.Del(ctx, c.entryKey(prefixKey))
	}

	members, err := c.idx.Drop(ctx, prefixKey, tok)
	if err != nil {
		c.hooks.IndexError("drop", err)
		return err
	}

	rerr := &PrefixRemovalError{PrefixKey: prefixKey}
	for _, m := range members {
		if err := c.provider.Del(ctx, c.entryKey(m)); err != nil {
			rerr.record(m, err)
		}
	}
	if err := c.provider.Del(ctx, c.entryKey(prefixKey)); err != nil {
		rerr.PrefixErr = err
	}

	c.hooks.PrefixRemoved(prefixKey, tok, len(members))
	c.log.Debug("removed prefix scope", Fields{"prefixKey": prefixKey, "members": len(members)})
	if rerr.failed() {
		return rerr
	}
	return nil
}

func (c *cache[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_ = c.provider.Del(ctx, storageKey)
	c.hooks.SelfHeal(storageKey, reason)
	c.log.Debug("self-healed bad entry", Fields{"key": storageKey, "reason": reason})
}

func (c *cache[V]) entryKey(userKey string) string {
	// isolate by namespace
	return "entry:" + c.ns + ":" + userKey
}

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
