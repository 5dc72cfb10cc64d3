package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flamewars/internal/store"
)

// Metrics holds the service collectors. Build one per registry.
type Metrics struct {
	Mutations     *prometheus.CounterVec
	StoreDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flamewars",
			Name:      "comment_mutations_total",
			Help:      "Comment mutations by operation and outcome.",
		}, []string{"op", "outcome"}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flamewars",
			Name:      "store_duration_seconds",
			Help:      "Latency of key-value store calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Mutations, m.StoreDuration)
	}
	return m
}

// ObserveStore implements store.Observer.
func (m *Metrics) ObserveStore(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, store.ErrConditionFailed):
		result = "condition_failed"
	case errors.Is(err, store.ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	m.StoreDuration.WithLabelValues(op, result).Observe(d.Seconds())
}

// Mutation counts one add/edit/delete outcome.
func (m *Metrics) Mutation(op, outcome string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}
