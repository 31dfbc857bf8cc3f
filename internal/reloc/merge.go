package reloc

import (
	"math"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
)

// resKey identifies one (event, station, phase) observation target that
// hypoDD.res contributions accumulate onto.
type resKey struct {
	eventID int
	station geo.StationID
	phase   geo.PhaseType
}

func categoryPhase(c Category) (geo.PhaseType, bool) {
	switch c {
	case CategoryCCP, CategoryCTP:
		return geo.PhaseP, true
	case CategoryCCS, CategoryCTS:
		return geo.PhaseS, true
	default:
		return "", false
	}
}

// accumulator averages every contribution that lands on the same
// (event, station, phase) key.
type accumulator struct {
	sumResidual float64
	sumWeight   float64
	n           int
}

func (a *accumulator) add(residual, weight float64) {
	a.sumResidual += residual
	a.sumWeight += weight
	a.n++
}

func (a *accumulator) meanResidual() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sumResidual / float64(a.n)
}

func (a *accumulator) meanWeight() float64 {
	if a.n == 0 {
		return 0
	}
	return a.sumWeight / float64(a.n)
}

// Merge writes relocs' new hypocenters and statistics onto the matching
// events in catalog, and folds res's residual/weight contributions into
// each affected event's phases. Events with no matching
// Record are left untouched; res contributions referencing an event not
// present in relocs are skipped (there is nothing to attach the final
// weight to).
func Merge(catalog *geo.Catalog, relocs []Record, res []ResRecord) error {
	byEvent := make(map[int]Record, len(relocs))
	for _, rec := range relocs {
		byEvent[rec.EventID] = rec
	}

	accumulators := make(map[resKey]*accumulator)
	for _, r := range res {
		phase, ok := categoryPhase(r.Category)
		if !ok {
			return errors.Newf("hypoDD.res: unknown observation category %d", r.Category).
				Category(errors.CategoryRelocResult).Build()
		}
		for _, eventID := range []int{r.Event1, r.Event2} {
			if _, relocated := byEvent[eventID]; !relocated {
				continue
			}
			k := resKey{eventID, r.Station, phase}
			acc, ok := accumulators[k]
			if !ok {
				acc = &accumulator{}
				accumulators[k] = acc
			}
			acc.add(r.Residual, r.Weight)
		}
	}

	for eventID, rec := range byEvent {
		ev, ok := catalog.Event(eventID)
		if !ok {
			continue
		}

		ev.Latitude = rec.Latitude
		ev.Longitude = rec.Longitude
		ev.Depth = rec.Depth
		ev.OriginTime = rec.OriginTime
		ev.Magnitude = rec.Magnitude

		ev.Reloc = &geo.RelocInfo{
			IsRelocated: true,
			EH:          math.Hypot(rec.EX, rec.EY),
			EV:          math.Abs(rec.EZ),
			NumCCP:      rec.NumCCP,
			NumCCS:      rec.NumCCS,
			NumCTP:      rec.NumCTP,
			NumCTS:      rec.NumCTS,
			RCC:         rec.RCC,
			RCT:         rec.RCT,
			RMS:         combinedRMS(rec.RCC, rec.RCT),
		}

		for _, phase := range catalog.Phases(eventID) {
			k := resKey{eventID, phase.StationID, phase.Type}
			if acc, ok := accumulators[k]; ok {
				residual := acc.meanResidual()
				weight := acc.meanWeight()
				phase.Residual = &residual
				phase.FinalWeight = &weight
			}
		}
	}
	return nil
}

// combinedRMS is the mean of rCC and rCT when both are positive, or
// whichever one is positive otherwise.
func combinedRMS(rcc, rct float64) float64 {
	switch {
	case rcc > 0 && rct > 0:
		return (rcc + rct) / 2
	case rcc > 0:
		return rcc
	default:
		return rct
	}
}
