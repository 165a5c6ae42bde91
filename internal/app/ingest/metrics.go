package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the ingestion counters exported on /metrics
type Metrics struct {
	References    *prometheus.CounterVec
	Chunks        prometheus.Counter
	Summaries     *prometheus.CounterVec
	EmbedDuration prometheus.Histogram
}

// NewMetrics creates the ingestion metrics and registers them with reg.
// A nil reg yields unregistered metrics, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		References: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trag",
			Subsystem: "ingest",
			Name:      "references_total",
			Help:      "Transcript references seen by the coordinator, by outcome.",
		}, []string{"status"}),
		Chunks: f.NewCounter(prometheus.CounterOpts{
			Namespace: "trag",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Chunks embedded and upserted.",
		}),
		Summaries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trag",
			Subsystem: "ingest",
			Name:      "summaries_total",
			Help:      "Episode summary decisions, by outcome.",
		}, []string{"outcome"}),
		EmbedDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trag",
			Subsystem: "ingest",
			Name:      "embedding_duration_seconds",
			Help:      "Latency of the batched embedding call.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}
