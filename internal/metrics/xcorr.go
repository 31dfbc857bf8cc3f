// Package metrics provides cross-correlation pipeline metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// XCorrMetrics contains Prometheus metrics for the cross-correlation
// engine.
type XCorrMetrics struct {
	registry *prometheus.Registry

	computationsTotal  *prometheus.CounterVec
	durationSeconds    prometheus.Histogram
	coefficientHist    *prometheus.HistogramVec
	cycleSkipsTotal    *prometheus.CounterVec
	belowMinCoefTotal  *prometheus.CounterVec
}

// NewXCorrMetrics creates and registers new cross-correlation metrics.
func NewXCorrMetrics(registry *prometheus.Registry) (*XCorrMetrics, error) {
	m := &XCorrMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *XCorrMetrics) initMetrics() {
	m.computationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xcorr_computations_total",
			Help: "Total number of cross-correlation computations performed",
		},
		[]string{"phase"},
	)

	m.durationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "xcorr_computation_duration_seconds",
		Help:    "Time taken to compute one cross-correlation",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
	})

	m.coefficientHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "xcorr_coefficient",
			Help:    "Distribution of cross-correlation coefficients",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"phase"},
	)

	m.cycleSkipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xcorr_cycle_skips_total",
			Help: "Total number of pairs rejected as cycle skips",
		},
		[]string{"phase"},
	)

	m.belowMinCoefTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xcorr_below_min_coefficient_total",
			Help: "Total number of pairs rejected for coefficient below the configured minimum",
		},
		[]string{"phase"},
	)
}

// Describe implements the Collector interface.
func (m *XCorrMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.computationsTotal.Describe(ch)
	m.durationSeconds.Describe(ch)
	m.coefficientHist.Describe(ch)
	m.cycleSkipsTotal.Describe(ch)
	m.belowMinCoefTotal.Describe(ch)
}

// Collect implements the Collector interface.
func (m *XCorrMetrics) Collect(ch chan<- prometheus.Metric) {
	m.computationsTotal.Collect(ch)
	m.durationSeconds.Collect(ch)
	m.coefficientHist.Collect(ch)
	m.cycleSkipsTotal.Collect(ch)
	m.belowMinCoefTotal.Collect(ch)
}

// RecordComputation records one completed cross-correlation computation.
func (m *XCorrMetrics) RecordComputation(phase string, coefficient, seconds float64) {
	m.computationsTotal.WithLabelValues(phase).Inc()
	m.durationSeconds.Observe(seconds)
	m.coefficientHist.WithLabelValues(phase).Observe(coefficient)
}

// RecordCycleSkip records a pair rejected as a cycle skip.
func (m *XCorrMetrics) RecordCycleSkip(phase string) {
	m.cycleSkipsTotal.WithLabelValues(phase).Inc()
}

// RecordBelowMinCoefficient records a pair rejected for low coefficient.
func (m *XCorrMetrics) RecordBelowMinCoefficient(phase string) {
	m.belowMinCoefTotal.WithLabelValues(phase).Inc()
}
