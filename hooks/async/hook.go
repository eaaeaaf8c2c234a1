// Package asynchook decouples hook sinks from the cache's hot paths: events
// are queued and delivered by worker goroutines, and dropped (never blocked
// on) when the queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SelfHealEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/prefixcache"
)

type Hooks struct {
	inner  prefixcache.Hooks
	q      chan func()
	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool
}

var _ prefixcache.Hooks = (*Hooks)(nil)

func New(inner prefixcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events arriving after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string)         { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string) { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) IndexError(op string, err error) {
	h.try(func() { h.inner.IndexError(op, err) })
}
func (h *Hooks) PrefixRemoved(pk, tok string, n int) {
	h.try(func() { h.inner.PrefixRemoved(pk, tok, n) })
}
func (h *Hooks) RetrieverRejected(k, r string) {
	h.try(func() { h.inner.RetrieverRejected(k, r) })
}
