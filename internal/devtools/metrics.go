package devtools

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/strata/internal/action"
	"github.com/roach88/strata/internal/boundary"
	"github.com/roach88/strata/internal/store"
)

// Metrics exports dispatch activity to Prometheus.
type Metrics struct {
	dispatches *prometheus.CounterVec
	stateSize  prometheus.Gauge
	codec      boundary.Codec
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// prometheus.NewRegistry per store.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "strata",
			Subsystem: "store",
			Name:      "dispatches_total",
			Help:      "Total dispatched actions by action type",
		}, []string{"action_type"}),
		stateSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "strata",
			Subsystem: "store",
			Name:      "state_size_bytes",
			Help:      "Serialized size of the current state tree",
		}),
		codec: boundary.JSONCodec{},
	}
}

// Attach starts exporting st's dispatches. The returned func detaches;
// other observers on the same store are unaffected.
func (m *Metrics) Attach(st *store.Store) func() {
	return st.ObserveDispatch(func(a action.Action, _, next any) {
		m.dispatches.WithLabelValues(a.Type).Inc()
		if raw, err := m.codec.Serialize(next); err == nil {
			m.stateSize.Set(float64(len(raw)))
		}
	})
}
