package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts pipeline activity.
type Metrics struct {
	Created *prometheus.CounterVec
	Moved   *prometheus.CounterVec
	Closed  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Created: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerdesk_processes_created_total",
			Help: "Processes created, by type.",
		}, []string{"type"}),
		Moved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerdesk_processes_moved_total",
			Help: "Kanban moves, by destination column.",
		}, []string{"column"}),
		Closed: factory.NewCounter(prometheus.CounterOpts{
			Name: "brokerdesk_processes_closed_total",
			Help: "Processes closed.",
		}),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
