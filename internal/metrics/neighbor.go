// Package metrics provides neighbor-selection pipeline metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NeighborMetrics contains Prometheus metrics for the ellipsoid/octant
// neighbor selector.
type NeighborMetrics struct {
	registry *prometheus.Registry

	selectionDurationSeconds prometheus.Histogram
	neighborsSelected        *prometheus.HistogramVec
	quotaStopsTotal          prometheus.Counter
	pairsEmittedTotal        *prometheus.CounterVec
}

// NewNeighborMetrics creates and registers new neighbor-selection metrics.
func NewNeighborMetrics(registry *prometheus.Registry) (*NeighborMetrics, error) {
	m := &NeighborMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *NeighborMetrics) initMetrics() {
	m.selectionDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "neighbor_selection_duration_seconds",
		Help:    "Time taken to select neighbors for one event",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
	})

	m.neighborsSelected = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "neighbor_count_per_event",
			Help:    "Distribution of the number of neighbors selected per event",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
		[]string{"mode"}, // catalog, single-event
	)

	m.quotaStopsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "neighbor_quota_stops_total",
		Help: "Total number of events whose selection stopped early on the max-neighbor quota",
	})

	m.pairsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "neighbor_pairs_emitted_total",
			Help: "Total number of event pairs emitted by the selector",
		},
		[]string{"mode"},
	)
}

// Describe implements the Collector interface.
func (m *NeighborMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.selectionDurationSeconds.Describe(ch)
	m.neighborsSelected.Describe(ch)
	m.quotaStopsTotal.Describe(ch)
	m.pairsEmittedTotal.Describe(ch)
}

// Collect implements the Collector interface.
func (m *NeighborMetrics) Collect(ch chan<- prometheus.Metric) {
	m.selectionDurationSeconds.Collect(ch)
	m.neighborsSelected.Collect(ch)
	m.quotaStopsTotal.Collect(ch)
	m.pairsEmittedTotal.Collect(ch)
}

// RecordSelection records one completed event neighbor selection.
func (m *NeighborMetrics) RecordSelection(mode string, neighborCount int, seconds float64) {
	m.selectionDurationSeconds.Observe(seconds)
	m.neighborsSelected.WithLabelValues(mode).Observe(float64(neighborCount))
}

// RecordQuotaStop records an event whose selection hit the max-neighbor quota.
func (m *NeighborMetrics) RecordQuotaStop() {
	m.quotaStopsTotal.Inc()
}

// RecordPairsEmitted records the number of pairs emitted for a mode.
func (m *NeighborMetrics) RecordPairsEmitted(mode string, count int) {
	m.pairsEmittedTotal.WithLabelValues(mode).Add(float64(count))
}
