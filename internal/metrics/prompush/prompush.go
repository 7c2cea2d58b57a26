// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A one-shot batch job has no long-lived scrape endpoint, so collected
// metrics are pushed to a Pushgateway when the run finishes. All
// Prometheus-specific dependencies stay in this package.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"moviecatalog/internal/metrics"
)

var _ metrics.Backend = (*Backend)(nil)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // catalog_stage_total
	stageDuration *prometheus.SummaryVec // catalog_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // catalog_rows_total
	batchCounter  *prometheus.CounterVec // catalog_batches_total
	keysetGauge   *prometheus.GaugeVec   // catalog_keyset_size
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway grouping job; gatewayURL is the base URL.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "catalog"
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		reg:        prometheus.NewRegistry(),
		stageCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.StageTotal,
				Help: "Pipeline stage executions, partitioned by stage and status.",
			},
			[]string{"stage", "status"},
		),
		stageDuration: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name:       metrics.StageDuration,
				Help:       "Duration of pipeline stages in seconds.",
				Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			},
			[]string{"stage", "status"},
		),
		rowCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.RowsTotal,
				Help: "Row counts per kind (titles_scanned, ratings_kept, catalog_written, ...).",
			},
			[]string{"kind"},
		),
		batchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metrics.BatchesTotal,
				Help: "Scanned row batches per source.",
			},
			[]string{"source"},
		),
		keysetGauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metrics.KeysetSize,
				Help: "Size of the key set each stage hands downstream.",
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{
		b.stageCounter, b.stageDuration, b.rowCounter, b.batchCounter, b.keysetGauge,
	} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

// IncCounter routes counter updates by metric name; unknown names are ignored.
// The "job" label is carried by the Pushgateway grouping key instead.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)
	case metrics.RowsTotal:
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.BatchesTotal:
		b.batchCounter.WithLabelValues(labels["source"]).Add(delta)
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

func (b *Backend) SetGauge(name string, value float64, labels metrics.Labels) {
	if name != metrics.KeysetSize {
		return
	}
	b.keysetGauge.WithLabelValues(labels["stage"]).Set(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
