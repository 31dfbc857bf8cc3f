package hdd

import (
	"sort"

	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/logging"
	"github.com/quakego/hdd/internal/synth"
)

// synthesizeMissingPhases fills in artificial picks for every event/station
// pair that is missing a phase type but has at least two nearby events with
// a manual pick of that type. It runs before neighbor
// selection in the engine's data-flow order, so "nearby" here is a plain
// inter-event-distance threshold against conf.NeighborSettings.MaxIEdist
// rather than the ellipsoid/octant machinery internal/neighbor applies once
// per reference event later in the pipeline -- that selector's shared-
// observation eligibility bullet is circular at this stage, since the
// phases it would require are exactly what synthesis is trying to add.
// Returns the number of phases synthesized.
func (e *Engine) synthesizeMissingPhases(catalog *geo.Catalog) int {
	if !e.Settings.Synth.Enabled {
		return 0
	}

	synthesized := 0
	for _, ref := range catalog.EventsInInsertionOrder() {
		for _, st := range catalog.Stations() {
			for _, phaseType := range []geo.PhaseType{geo.PhaseP, geo.PhaseS} {
				if catalog.PhaseByStationType(ref.ID, st.ID, phaseType) != nil {
					continue
				}

				peers := e.nearbyManualPicks(catalog, ref, st.ID, phaseType)
				if len(peers) < 2 {
					continue
				}

				phaseCfg, ok := e.Settings.XCorr[string(phaseType)]
				if !ok {
					continue
				}

				result, err := synth.Synthesize(e.Waveform, &e.Settings.Waveform, phaseCfg, e.Settings.Synth, st.ID, ref, peers)
				if err != nil {
					logging.Debug("skipping artificial phase", "event_id", ref.ID, "station", st.ID.String(),
						"phase", string(phaseType), "error", err.Error())
					continue
				}

				channel := peers[0].Channel
				if err := catalog.AddPhase(ref.ID, &geo.Phase{
					StationID: st.ID, Type: phaseType, Time: result.Time, Weight: result.Weight,
					IsManual: false,
					Stream:   geo.StreamCoordinates{Network: st.ID.Network, Station: st.ID.Station, Location: st.ID.Location, Channel: channel},
				}); err != nil {
					continue
				}
				synthesized++
			}
		}
	}
	return synthesized
}

// nearbyManualPicks returns every other event's manual pick of phaseType at
// station, ordered by ascending distance to ref, restricted to events
// within e.Settings.Neighbor.MaxIEdist.
func (e *Engine) nearbyManualPicks(catalog *geo.Catalog, ref *geo.Event, station geo.StationID, phaseType geo.PhaseType) []synth.PeerPick {
	type scored struct {
		pick synth.PeerPick
		dist float64
	}
	var candidates []scored

	for _, other := range catalog.EventsInInsertionOrder() {
		if other.ID == ref.ID {
			continue
		}
		phase := catalog.PhaseByStationType(other.ID, station, phaseType)
		if phase == nil || !phase.IsManual {
			continue
		}
		dist := geo.ComputeDistance(ref.Latitude, ref.Longitude, ref.Depth, other.Latitude, other.Longitude, other.Depth)
		if dist > e.Settings.Neighbor.MaxIEdist {
			continue
		}
		candidates = append(candidates, scored{
			pick: synth.PeerPick{Event: other, Pick: phase.Time, Channel: phase.Stream.Channel},
			dist: dist,
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	peers := make([]synth.PeerPick, len(candidates))
	for i, c := range candidates {
		peers[i] = c.pick
	}
	return peers
}
