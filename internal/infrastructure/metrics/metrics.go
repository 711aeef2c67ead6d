package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the counters the operations team actually looks at:
// per-source fetch outcomes and workflow transition volume.
type Metrics struct {
	SourceFetches  *prometheus.CounterVec
	RecordsDropped *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	SyncImports    prometheus.Counter
	SyncSkipped    prometheus.Counter
}

// New registers the collectors with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SourceFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meeting_source_fetches_total",
			Help: "Source fetch attempts by source and outcome (success, degraded, failed).",
		}, []string{"source", "outcome"}),
		RecordsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "meeting_records_dropped_total",
			Help: "Records dropped during normalization, by source.",
		}, []string{"source"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pending_action_transitions_total",
			Help: "Workflow transitions by kind and result (ok, rejected).",
		}, []string{"transition", "result"}),
		SyncImports: factory.NewCounter(prometheus.CounterOpts{
			Name: "external_sync_imported_total",
			Help: "Pending actions imported from the automation system.",
		}),
		SyncSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "external_sync_skipped_total",
			Help: "External operations skipped because their execution id was already imported.",
		}),
	}
}
