// Package sloghooks implements the cache Hooks on log/slog with optional
// sampling, so noisy events (self-heals on a hot key) do not flood the log.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/prefixcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SelfHealEvery          uint64
	RetrieverRejectedEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix so raw keys never
	// reach the log.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
	rejectedCtr atomic.Uint64
}

var _ prefixcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("prefixcache.self_heal",
		"key", h.redact(storageKey),
		"reason", reason)
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("prefixcache.provider_set_rejected",
		"key", h.redact(storageKey))
}

func (h *Hooks) IndexError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("prefixcache.index_error",
		"op", op,
		"err", err)
}

func (h *Hooks) PrefixRemoved(prefixKey, token string, removed int) {
	if h.l == nil {
		return
	}
	h.l.Info("prefixcache.prefix_removed",
		"prefix_key", h.redact(prefixKey),
		"token", h.redact(token),
		"removed", removed)
}

func (h *Hooks) RetrieverRejected(key, reason string) {
	if h.l == nil || !sample(h.opts.RetrieverRejectedEvery, &h.rejectedCtr) {
		return
	}
	h.l.Warn("prefixcache.retriever_rejected",
		"key", h.redact(key),
		"reason", reason)
}
