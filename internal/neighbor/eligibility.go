// Package neighbor implements the ellipsoid/octant spatial-homogeneity
// neighbor selector.
package neighbor

import (
	"sort"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
)

// sharedObservation is one qualifying shared station/phase pair between a
// reference and a candidate event.
type sharedObservation struct {
	station geo.StationID
	esDist  float64 // station-to-candidate-event distance, km
}

// sharedObservations returns the qualifying shared station/phase
// observations between ref and candidate, trimmed to at most
// cfg.MaxDTperEvt by dropping the furthest stations when the raw count
// exceeds it.
func sharedObservations(catalog *geo.Catalog, ref, candidate *geo.Event, ieDist float64, cfg conf.NeighborSettings) []sharedObservation {
	var qualifying []sharedObservation

	for _, refPhase := range catalog.Phases(ref.ID) {
		if refPhase.Weight < cfg.MinPhaseWeight {
			continue
		}
		candPhase := catalog.PhaseByStationType(candidate.ID, refPhase.StationID, refPhase.Type)
		if candPhase == nil || candPhase.Weight < cfg.MinPhaseWeight {
			continue
		}

		station, ok := catalog.Station(refPhase.StationID)
		if !ok {
			continue
		}

		esRef := geo.ComputeDistance(ref.Latitude, ref.Longitude, ref.Depth,
			station.Latitude, station.Longitude, station.DepthKM())
		esCand := geo.ComputeDistance(candidate.Latitude, candidate.Longitude, candidate.Depth,
			station.Latitude, station.Longitude, station.DepthKM())

		if esRef < cfg.MinESdist || esRef > cfg.MaxESdist {
			continue
		}
		if esCand < cfg.MinESdist || esCand > cfg.MaxESdist {
			continue
		}

		if ieDist > 0 {
			ratio := min2(esRef, esCand) / ieDist
			if ratio < cfg.MinEStoIEratio {
				continue
			}
		}

		qualifying = append(qualifying, sharedObservation{station: refPhase.StationID, esDist: esCand})
	}

	sort.Slice(qualifying, func(i, j int) bool { return qualifying[i].esDist < qualifying[j].esDist })
	if cfg.MaxDTperEvt > 0 && len(qualifying) > cfg.MaxDTperEvt {
		qualifying = qualifying[:cfg.MaxDTperEvt]
	}
	return qualifying
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// isEligible reports whether candidate qualifies as a neighbor of ref by
// inter-event distance and shared-observation count.
func isEligible(catalog *geo.Catalog, ref, candidate *geo.Event, cfg conf.NeighborSettings) bool {
	if candidate.ID == ref.ID {
		return false
	}
	ieDist := geo.ComputeDistance(ref.Latitude, ref.Longitude, ref.Depth,
		candidate.Latitude, candidate.Longitude, candidate.Depth)
	if ieDist > cfg.MaxIEdist {
		return false
	}
	shared := sharedObservations(catalog, ref, candidate, ieDist, cfg)
	return len(shared) >= cfg.MinDTperEvt
}

// SharedStations returns the set of stations eligible to contribute a
// differential-time observation for the ref/candidate pair, trimmed to at
// most cfg.MaxDTperEvt by dropping the furthest stations — the same trim
// isEligible applies to decide neighborhood membership. DD file and
// cross-correlation emission must consult this set rather than
// re-deriving an untrimmed one, or max_dt_per_evt never bounds what ends
// up in dt.ct/dt.cc.
func SharedStations(catalog *geo.Catalog, ref, candidate *geo.Event, cfg conf.NeighborSettings) map[geo.StationID]bool {
	ieDist := geo.ComputeDistance(ref.Latitude, ref.Longitude, ref.Depth,
		candidate.Latitude, candidate.Longitude, candidate.Depth)
	qualifying := sharedObservations(catalog, ref, candidate, ieDist, cfg)
	stations := make(map[geo.StationID]bool, len(qualifying))
	for _, obs := range qualifying {
		stations[obs.station] = true
	}
	return stations
}
