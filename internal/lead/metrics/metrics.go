package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lead flow.
type Metrics struct {
	Created   *prometheus.CounterVec
	Converted prometheus.Counter
	Matches   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerdesk_leads_created_total",
			Help: "Leads captured, by source.",
		}, []string{"source"}),
		Converted: factory.NewCounter(prometheus.CounterOpts{
			Name: "brokerdesk_leads_converted_total",
			Help: "Leads converted into listed properties.",
		}),
		Matches: factory.NewCounter(prometheus.CounterOpts{
			Name: "brokerdesk_lead_matches_total",
			Help: "Lead-to-client matches at or above the score threshold.",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
