// Package metrics provides Prometheus metrics and monitoring capabilities
// for the relocation engine.
package metrics

import (
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry    *prometheus.Registry
	Waveform    *WaveformMetrics
	XCorr       *XCorrMetrics
	Neighbor    *NeighborMetrics
	DiskManager *DiskManagerMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any metric collector fails to
// initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	waveformMetrics, err := NewWaveformMetrics(registry)
	if err != nil {
		return nil, err
	}

	xcorrMetrics, err := NewXCorrMetrics(registry)
	if err != nil {
		return nil, err
	}

	neighborMetrics, err := NewNeighborMetrics(registry)
	if err != nil {
		return nil, err
	}

	diskManagerMetrics, err := NewDiskManagerMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registry:    registry,
		Waveform:    waveformMetrics,
		XCorr:       xcorrMetrics,
		Neighbor:    neighborMetrics,
		DiskManager: diskManagerMetrics,
	}, nil
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", m.metricsHandler)
}

// metricsHandler is the HTTP handler for the /metrics endpoint.
func (m *Metrics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	h.ServeHTTP(w, r)
}
