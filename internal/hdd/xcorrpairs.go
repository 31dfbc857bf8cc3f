package hdd

import (
	"math"
	"sort"

	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/neighbor"
	"github.com/quakego/hdd/internal/waveform"
	"github.com/quakego/hdd/internal/xcorr"
)

// crossCorrelatePairs attempts cross-correlation for every shared
// (station, phase) observation between each reference event and its
// selected neighbors, trimmed to e.Settings.Neighbor.MaxDTperEvt via the
// same furthest-station drop neighbor selection applies, returning the
// accepted differential times that feed dt.cc. neighbors must already be
// catalog-mode deduplicated (internal/neighbor.SelectAll).
func (e *Engine) crossCorrelatePairs(catalog *geo.Catalog, neighbors map[int][]*geo.Event, c *counters) []xcorr.DifferentialTime {
	var out []xcorr.DifferentialTime

	refIDs := make([]int, 0, len(neighbors))
	for id := range neighbors {
		refIDs = append(refIDs, id)
	}
	sort.Ints(refIDs)

	for _, refID := range refIDs {
		ref, _ := catalog.Event(refID)
		for _, peer := range neighbors[refID] {
			stations := neighbor.SharedStations(catalog, ref, peer, e.Settings.Neighbor)
			for _, refPhase := range catalog.Phases(ref.ID) {
				if !stations[refPhase.StationID] {
					continue
				}
				peerPhase := catalog.PhaseByStationType(peer.ID, refPhase.StationID, refPhase.Type)
				if peerPhase == nil {
					continue
				}
				dt, ok := e.correlateOnePair(ref, refPhase, peer, peerPhase, c)
				if ok {
					out = append(out, dt)
				}
			}
		}
	}
	return out
}

// correlateOnePair runs the pairing policy for one shared observation and
// returns the best accepted differential time, if any.
func (e *Engine) correlateOnePair(ref *geo.Event, refPhase *geo.Phase, peer *geo.Event, peerPhase *geo.Phase, c *counters) (xcorr.DifferentialTime, bool) {
	phaseCfg, ok := e.Settings.XCorr[string(refPhase.Type)]
	if !ok {
		return xcorr.DifferentialTime{}, false
	}
	windowCfg := xcorr.PhaseWindowConfig{
		StartOffset: phaseCfg.StartOffset, EndOffset: phaseCfg.EndOffset,
		MaxDelay: phaseCfg.MaxDelay, MinCoef: phaseCfg.MinCoef,
	}

	var best xcorr.Result
	bestValid := false

	for _, pairing := range xcorr.PairingPolicy(refPhase, peerPhase) {
		c.recordAttempt()

		shortPhase, longPhase := refPhase, peerPhase
		if !pairing.ShortIsPhase1 {
			shortPhase, longPhase = peerPhase, refPhase
		}

		shortStart, shortEnd := windowCfg.ShortWindow(shortPhase.Time)
		longStart, longEnd := windowCfg.LongWindow(longPhase.Time)

		shortTrace, err := e.Waveform.GetWaveform(waveform.Request{
			Network: shortPhase.Stream.Network, Station: shortPhase.Stream.Station, Location: shortPhase.Stream.Location,
			Target:   waveform.TargetComponent(shortPhase.Stream.Channel),
			Window:   waveform.TimeWindow{Start: shortStart, End: shortEnd},
			PickTime: shortPhase.Time, CheckSNR: true,
		}, &e.Settings.Waveform)
		if err != nil {
			continue
		}
		if shortTrace == nil {
			c.recordUnavailable()
			continue
		}

		longTrace, err := e.Waveform.GetWaveform(waveform.Request{
			Network: longPhase.Stream.Network, Station: longPhase.Stream.Station, Location: longPhase.Stream.Location,
			Target:   waveform.TargetComponent(longPhase.Stream.Channel),
			Window:   waveform.TimeWindow{Start: longStart, End: longEnd},
			PickTime: longPhase.Time, CheckSNR: false,
		}, &e.Settings.Waveform)
		if err != nil {
			continue
		}
		if longTrace == nil {
			c.recordUnavailable()
			continue
		}

		c.recordPerformed()
		result := xcorr.Correlate(shortTrace.Samples, longTrace.Samples, shortTrace.Frequency, phaseCfg.MaxDelay, !pairing.ShortIsPhase1)
		if math.IsNaN(result.Coefficient) {
			continue
		}
		if !bestValid || result.Coefficient > best.Coefficient {
			best, bestValid = result, true
		}
	}

	if !bestValid || best.Coefficient < phaseCfg.MinCoef {
		return xcorr.DifferentialTime{}, false
	}

	dt, ok := xcorr.BuildDifferentialTime(refPhase.StationID, refPhase.Type, ref, refPhase.Time, peer, peerPhase.Time, best)
	if !ok {
		return xcorr.DifferentialTime{}, false
	}
	c.recordAccepted()
	return dt, true
}
