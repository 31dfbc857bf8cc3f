package neighbor

import (
	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
)

// SelectAll runs SelectNeighbors for every event in the catalog, in
// ascending event-id order for deterministic output, and suppresses pair
// (A,B) from B's neighbor list once it has already appeared in A's list,
// so every unordered pair contributes to the
// DD files exactly once.
// Events with fewer eligible neighbors than cfg.MinNumNeigh are skipped
// rather than failing the whole run; skipped is the skipped event count.
func SelectAll(catalog *geo.Catalog, cfg conf.NeighborSettings) (neighbors map[int][]*geo.Event, skipped int) {
	ids := catalog.EventIDs()
	all := make([]*geo.Event, 0, len(ids))
	for _, id := range ids {
		ev, _ := catalog.Event(id)
		all = append(all, ev)
	}

	seenPairs := make(map[pairKey]bool)
	neighbors = make(map[int][]*geo.Event, len(ids))

	for _, id := range ids {
		ref, _ := catalog.Event(id)
		candidates := make([]*geo.Event, 0, len(all)-1)
		for _, c := range all {
			if c.ID != ref.ID {
				candidates = append(candidates, c)
			}
		}

		sel, err := SelectNeighbors(catalog, ref, candidates, cfg)
		if err != nil {
			skipped++
			continue
		}

		var kept []*geo.Event
		for _, n := range sel {
			key := makePairKey(ref.ID, n.ID)
			if seenPairs[key] {
				continue
			}
			seenPairs[key] = true
			kept = append(kept, n)
		}
		neighbors[ref.ID] = kept
	}
	return neighbors, skipped
}

type pairKey struct {
	lo, hi int
}

func makePairKey(a, b int) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}
