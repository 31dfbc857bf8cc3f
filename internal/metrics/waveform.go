// Package metrics provides waveform pipeline metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WaveformMetrics contains Prometheus metrics for the waveform fetch,
// cache, and filter pipeline.
type WaveformMetrics struct {
	registry *prometheus.Registry

	fetchDurationSeconds *prometheus.HistogramVec
	fetchTotal           *prometheus.CounterVec
	cacheHitsTotal       *prometheus.CounterVec
	cacheMissesTotal     *prometheus.CounterVec
	cacheExclusionsTotal prometheus.Counter
	filterDurationSeconds prometheus.Histogram
	snrRejectionsTotal   prometheus.Counter
}

// NewWaveformMetrics creates and registers new waveform metrics.
func NewWaveformMetrics(registry *prometheus.Registry) (*WaveformMetrics, error) {
	m := &WaveformMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *WaveformMetrics) initMetrics() {
	m.fetchDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "waveform_fetch_duration_seconds",
			Help:    "Time taken to fetch and prepare a waveform trace",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
		},
		[]string{"tier"}, // memory, disk, source
	)

	m.fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waveform_fetch_total",
			Help: "Total number of waveform fetch attempts",
		},
		[]string{"status"},
	)

	m.cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waveform_cache_hits_total",
			Help: "Total number of waveform cache hits",
		},
		[]string{"tier"},
	)

	m.cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waveform_cache_misses_total",
			Help: "Total number of waveform cache misses",
		},
		[]string{"tier"},
	)

	m.cacheExclusionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waveform_cache_exclusions_total",
		Help: "Total number of traces marked permanently unfetchable",
	})

	m.filterDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "waveform_filter_duration_seconds",
		Help:    "Time taken to band-pass filter and resample a trace",
		Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12),
	})

	m.snrRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "waveform_snr_rejections_total",
		Help: "Total number of traces rejected by the signal-to-noise-ratio gate",
	})
}

// Describe implements the Collector interface.
func (m *WaveformMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.fetchDurationSeconds.Describe(ch)
	m.fetchTotal.Describe(ch)
	m.cacheHitsTotal.Describe(ch)
	m.cacheMissesTotal.Describe(ch)
	m.cacheExclusionsTotal.Describe(ch)
	m.filterDurationSeconds.Describe(ch)
	m.snrRejectionsTotal.Describe(ch)
}

// Collect implements the Collector interface.
func (m *WaveformMetrics) Collect(ch chan<- prometheus.Metric) {
	m.fetchDurationSeconds.Collect(ch)
	m.fetchTotal.Collect(ch)
	m.cacheHitsTotal.Collect(ch)
	m.cacheMissesTotal.Collect(ch)
	m.cacheExclusionsTotal.Collect(ch)
	m.filterDurationSeconds.Collect(ch)
	m.snrRejectionsTotal.Collect(ch)
}

// RecordFetch records the outcome and duration of a waveform fetch.
func (m *WaveformMetrics) RecordFetch(tier, status string, seconds float64) {
	m.fetchDurationSeconds.WithLabelValues(tier).Observe(seconds)
	m.fetchTotal.WithLabelValues(status).Inc()
}

// RecordCacheHit records a cache hit at the given tier.
func (m *WaveformMetrics) RecordCacheHit(tier string) {
	m.cacheHitsTotal.WithLabelValues(tier).Inc()
}

// RecordCacheMiss records a cache miss at the given tier.
func (m *WaveformMetrics) RecordCacheMiss(tier string) {
	m.cacheMissesTotal.WithLabelValues(tier).Inc()
}

// RecordCacheExclusion records a trace being added to the sticky
// exclusion set after a fetch failure.
func (m *WaveformMetrics) RecordCacheExclusion() {
	m.cacheExclusionsTotal.Inc()
}

// RecordFilterDuration records the time spent filtering and resampling a trace.
func (m *WaveformMetrics) RecordFilterDuration(seconds float64) {
	m.filterDurationSeconds.Observe(seconds)
}

// RecordSNRRejection records a trace rejected by the SNR gate.
func (m *WaveformMetrics) RecordSNRRejection() {
	m.snrRejectionsTotal.Inc()
}
