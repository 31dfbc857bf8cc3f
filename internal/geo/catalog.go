package geo

import (
	"math"
	"sort"
	"time"

	"github.com/quakego/hdd/internal/errors"
)

// Catalog is a consistent triple of stations, events, and phases grouped by
// event id. It is immutable after construction except through the
// explicit copy-and-mutate operations below.
type Catalog struct {
	stations map[StationID]*Station

	eventOrder []int // insertion order, used for deterministic emission
	events     map[int]*Event

	phases map[int][]*Phase // event id -> phases, insertion order preserved
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		stations: make(map[StationID]*Station),
		events:   make(map[int]*Event),
		phases:   make(map[int][]*Phase),
	}
}

// AddStation registers a station. Re-adding the same id is a no-op error,
// since stations are immutable after load.
func (c *Catalog) AddStation(st *Station) error {
	if _, exists := c.stations[st.ID]; exists {
		return errors.Newf("station %s already present in catalog", st.ID).
			Category(errors.CategoryCatalog).Build()
	}
	c.stations[st.ID] = st
	return nil
}

// Station looks up a station by id.
func (c *Catalog) Station(id StationID) (*Station, bool) {
	st, ok := c.stations[id]
	return st, ok
}

// Stations returns all stations in the catalog (unordered; callers
// requiring determinism should sort by StationID).
func (c *Catalog) Stations() []*Station {
	out := make([]*Station, 0, len(c.stations))
	for _, st := range c.stations {
		out = append(out, st)
	}
	return out
}

// AddEvent registers ev under its own ID. The caller is responsible for
// assigning unique, catalog-scoped ids.
func (c *Catalog) AddEvent(ev *Event) error {
	if _, exists := c.events[ev.ID]; exists {
		return errors.Newf("event id %d already present in catalog", ev.ID).
			Category(errors.CategoryCatalog).Build()
	}
	c.events[ev.ID] = ev
	c.eventOrder = append(c.eventOrder, ev.ID)
	if _, ok := c.phases[ev.ID]; !ok {
		c.phases[ev.ID] = nil
	}
	return nil
}

// Event looks up an event by id.
func (c *Catalog) Event(id int) (*Event, bool) {
	ev, ok := c.events[id]
	return ev, ok
}

// EventIDs returns event ids in ascending order. Determinism requires
// this explicit sort rather than relying on map iteration order
//.
func (c *Catalog) EventIDs() []int {
	ids := make([]int, 0, len(c.events))
	for id := range c.events {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EventsInInsertionOrder returns events in the order they were added,
// which is the order DD file emission uses.
func (c *Catalog) EventsInInsertionOrder() []*Event {
	out := make([]*Event, 0, len(c.eventOrder))
	for _, id := range c.eventOrder {
		out = append(out, c.events[id])
	}
	return out
}

// AddPhase appends p to event eventID's phase list, validating that the
// phase's station resolves in the catalog.
// Multiplicity is allowed before FilterOutPhases has run.
func (c *Catalog) AddPhase(eventID int, p *Phase) error {
	if _, ok := c.events[eventID]; !ok {
		return errors.Newf("phase references unknown event id %d", eventID).
			Category(errors.CategoryCatalog).Build()
	}
	if _, ok := c.stations[p.StationID]; !ok {
		return errors.Newf("phase references unknown station %s", p.StationID).
			Category(errors.CategoryCatalog).
			Context("event_id", eventID).Build()
	}
	c.phases[eventID] = append(c.phases[eventID], p)
	return nil
}

// Phases returns event eventID's phases in insertion order.
func (c *Catalog) Phases(eventID int) []*Phase {
	return c.phases[eventID]
}

// PhaseByStationType returns eventID's phase for (station, phaseType), or
// nil if none. After FilterOutPhases there is at most one.
func (c *Catalog) PhaseByStationType(eventID int, station StationID, t PhaseType) *Phase {
	for _, p := range c.phases[eventID] {
		if p.StationID == station && p.Type == t {
			return p
		}
	}
	return nil
}

// FilterOutPhases returns a new catalog containing only phases whose
// normalized type is in keep, with at most one surviving phase per
// (event, station, type): when duplicates exist, the highest-weight one
// wins, ties keeping the first-seen.
func (c *Catalog) FilterOutPhases(keep map[PhaseType]bool) (*Catalog, error) {
	out := NewCatalog()
	for _, st := range c.stations {
		stCopy := *st
		if err := out.AddStation(&stCopy); err != nil {
			return nil, err
		}
	}
	for _, id := range c.eventOrder {
		if err := out.AddEvent(c.events[id].Clone()); err != nil {
			return nil, err
		}

		type key struct {
			station StationID
			typ     PhaseType
		}
		best := make(map[key]*Phase)
		order := make([]key, 0)

		for _, p := range c.phases[id] {
			t := normalizePhaseType(p.Type)
			if !keep[t] {
				continue
			}
			k := key{p.StationID, t}
			cur, seen := best[k]
			if !seen {
				order = append(order, k)
			}
			if !seen || p.Weight > cur.Weight {
				cp := p.Clone()
				cp.Type = t
				best[k] = cp
			}
		}
		for _, k := range order {
			if err := out.AddPhase(id, best[k]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// normalizePhaseType maps raw phase codes (e.g. "Pg", "Pn", "Sg") onto the
// catalog's two-valued P/S scheme.
func normalizePhaseType(t PhaseType) PhaseType {
	s := string(t)
	if len(s) == 0 {
		return t
	}
	switch s[0] {
	case 'P', 'p':
		return PhaseP
	case 'S', 's':
		return PhaseS
	default:
		return t
	}
}

// Merge combines this catalog with others into a new catalog whose event
// ids are freshly assigned in the order catalogs are merged, then by
// original insertion order within each source catalog. Callers must
// re-resolve their events in the merged catalog by value (origin time +
// coordinates) rather than by the old id.
func (c *Catalog) Merge(others ...*Catalog) (*Catalog, error) {
	out := NewCatalog()

	sources := append([]*Catalog{c}, others...)
	seenStations := make(map[StationID]bool)
	nextID := 0

	for _, src := range sources {
		for _, st := range src.stations {
			if seenStations[st.ID] {
				continue
			}
			seenStations[st.ID] = true
			stCopy := *st
			if err := out.AddStation(&stCopy); err != nil {
				return nil, err
			}
		}
	}

	for _, src := range sources {
		for _, oldID := range src.eventOrder {
			ev := src.events[oldID].Clone()
			ev.ID = nextID
			nextID++
			if err := out.AddEvent(ev); err != nil {
				return nil, err
			}
			for _, p := range src.phases[oldID] {
				if err := out.AddPhase(ev.ID, p.Clone()); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

// FindEventByValue resolves an event by origin time and coordinates rather
// than by id, the re-resolution step merging requires.
// A match requires the origin time to be within tolerance and the
// coordinates within 1e-6 degrees.
func (c *Catalog) FindEventByValue(originTime time.Time, lat, lon float64, tolerance time.Duration) (*Event, bool) {
	const coordTol = 1e-6
	for _, id := range c.eventOrder {
		ev := c.events[id]
		dt := ev.OriginTime.Sub(originTime)
		if dt < 0 {
			dt = -dt
		}
		if dt > tolerance {
			continue
		}
		if math.Abs(ev.Latitude-lat) <= coordTol && math.Abs(ev.Longitude-lon) <= coordTol {
			return ev, true
		}
	}
	return nil, false
}
