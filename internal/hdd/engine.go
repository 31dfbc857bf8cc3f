// Package hdd is the top-level facade that wires the catalog, waveform,
// cross-correlation, neighbor-selection, synthesis, DD-file, orchestrator,
// and result-loading components into the engine's two relocation modes:
// multi-event and single-event.
package hdd

import (
	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/metrics"
	"github.com/quakego/hdd/internal/store"
	"github.com/quakego/hdd/internal/waveform"
)

// Engine holds the collaborators one relocation run needs: settings,
// the waveform loader, metrics, and (optionally) the run-record store.
type Engine struct {
	Settings *conf.Settings
	Waveform *waveform.Loader
	Metrics  *metrics.Metrics
	Store    *store.Store // nil disables run-record persistence
}

// New builds an Engine from its collaborators. store may be nil.
func New(settings *conf.Settings, loader *waveform.Loader, m *metrics.Metrics, st *store.Store) *Engine {
	return &Engine{Settings: settings, Waveform: loader, Metrics: m, Store: st}
}

// counters accumulates the process-wide run counters
// (attempts/performed/accepted/low-SNR/unavailable), mutated in place as
// the pipeline runs and flushed to the store at the end.
type counters struct {
	store.Counters
}

func (c *counters) recordAttempt()      { c.XCorrAttempts++ }
func (c *counters) recordPerformed()    { c.XCorrPerformed++ }
func (c *counters) recordAccepted()     { c.XCorrAccepted++ }
func (c *counters) recordLowSNR()       { c.LowSNRRejections++ }
func (c *counters) recordUnavailable()  { c.UnavailableWaveforms++ }
