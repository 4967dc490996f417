package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bridge's prometheus collectors.
type Metrics struct {
	SyncRuns     prometheus.Counter
	SyncOutcomes *prometheus.CounterVec
	APIRequests  *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SyncRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "mcfbridge_sync_runs_total",
			Help: "Number of inventory reconciliation runs.",
		}),
		SyncOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcfbridge_sync_outcomes_total",
			Help: "Per-product reconciliation outcomes.",
		}, []string{"outcome"}),
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcfbridge_spapi_requests_total",
			Help: "SP-API requests by result.",
		}, []string{"result"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mcfbridge_fulfillment_submissions_total",
			Help: "MCF order submissions by result.",
		}, []string{"result"}),
	}
}

// NewDefault registers against the default prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
