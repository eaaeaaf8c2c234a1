// Package promhooks exports the cache's hook events as Prometheus counters.
// Counting is cheap enough for hot paths, so no async wrapper is needed.
package promhooks

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/prefixcache"
)

type Hooks struct {
	selfHeal          *prometheus.CounterVec
	setRejected       prometheus.Counter
	indexErrors       *prometheus.CounterVec
	prefixRemoved     prometheus.Counter
	prefixMembersGone prometheus.Counter
	retrieverRejected *prometheus.CounterVec
}

var _ prefixcache.Hooks = (*Hooks)(nil)

// New registers the cache counters with reg. Pass a namespaced registry
// (or prometheus.WrapRegistererWith) when running several caches in one
// process.
func New(reg prometheus.Registerer) *Hooks {
	h := &Hooks{
		selfHeal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "self_heal_total",
			Help:      "Entries deleted on read because they were corrupt or undecodable.",
		}, []string{"reason"}),
		setRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "provider_set_rejected_total",
			Help:      "Writes the provider refused under pressure.",
		}),
		indexErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "index_errors_total",
			Help:      "Prefix index operation failures.",
		}, []string{"op"}),
		prefixRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "prefix_removed_total",
			Help:      "RemoveByPrefix operations completed.",
		}),
		prefixMembersGone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "prefix_members_removed_total",
			Help:      "Composed keys deleted by RemoveByPrefix.",
		}),
		retrieverRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prefixcache",
			Name:      "retriever_rejected_total",
			Help:      "Miss-path retriever invocations refused by a guard.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		h.selfHeal,
		h.setRejected,
		h.indexErrors,
		h.prefixRemoved,
		h.prefixMembersGone,
		h.retrieverRejected,
	)
	return h
}

func (h *Hooks) SelfHeal(_, reason string) { h.selfHeal.WithLabelValues(reason).Inc() }

func (h *Hooks) ProviderSetRejected(string) { h.setRejected.Inc() }

func (h *Hooks) IndexError(op string, _ error) { h.indexErrors.WithLabelValues(op).Inc() }

func (h *Hooks) PrefixRemoved(_, _ string, removed int) {
	h.prefixRemoved.Inc()
	h.prefixMembersGone.Add(float64(removed))
}

func (h *Hooks) RetrieverRejected(_, reason string) {
	h.retrieverRejected.WithLabelValues(reason).Inc()
}
