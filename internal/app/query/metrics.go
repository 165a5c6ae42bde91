package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts queries by mode and outcome
type Metrics struct {
	Queries *prometheus.CounterVec
}

// NewMetrics registers with reg; nil leaves the metrics unregistered
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Queries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "trag",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Retrieval queries by mode and outcome.",
		}, []string{"mode", "outcome"}),
	}
}

func (m *Metrics) observe(mode string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Queries.WithLabelValues(mode, outcome).Inc()
}
