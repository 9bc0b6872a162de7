// Package metrics exposes the Prometheus instruments for the syncer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector bundles the application metrics. Construct it with the
// registry the process serves; tests pass their own registry so repeated
// construction never collides.
type Collector struct {
	RunsTotal          *prometheus.CounterVec
	RowsFetchedTotal   prometheus.Counter
	RowsUpsertedTotal  prometheus.Counter
	DateFallbacksTotal prometheus.Counter
	PublishErrorsTotal prometheus.Counter
	SyncDuration       prometheus.Histogram

	APIRequestsTotal *prometheus.CounterVec
}

// NewCollector registers all instruments under the given namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total number of sync runs by terminal status",
			},
			[]string{"status"},
		),

		RowsFetchedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_rows_fetched_total",
				Help:      "Total feed rows that resolved to an active city",
			},
		),

		RowsUpsertedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_rows_upserted_total",
				Help:      "Total forecast records written to storage",
			},
		),

		DateFallbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_date_fallbacks_total",
				Help:      "Feed rows stored under today's date because no recognized date field was present",
			},
		),

		PublishErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_publish_errors_total",
				Help:      "Forecast events that failed to publish",
			},
		),

		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of one full sync pass in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		),

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by path, method and status",
			},
			[]string{"path", "method", "status"},
		),
	}
}
