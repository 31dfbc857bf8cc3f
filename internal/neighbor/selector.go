package neighbor

import (
	"math"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
)

// shellBoundaries returns numEllipsoids+1 ellipsoid sizes: an unbounded
// outermost catch-all, then L, L/2, … halving at each step, down to a
// synthetic degenerate 0. boundaries[i] bounds shell i's outer edge,
// boundaries[i+1] its inner edge. The outermost shell (i=0) has no outer
// bound, so a candidate farther than maxSize from the origin is still
// reachable through shell 0.
func shellBoundaries(lat, lon, depth float64, maxSize float64, numEllipsoids int) []geo.Ellipsoid {
	boundaries := make([]geo.Ellipsoid, numEllipsoids+1)
	boundaries[0] = geo.NewEllipsoid(lat, lon, depth, math.Inf(1))
	size := maxSize
	for i := 1; i < numEllipsoids; i++ {
		boundaries[i] = geo.NewEllipsoid(lat, lon, depth, size)
		size /= 2
	}
	boundaries[numEllipsoids] = geo.NewEllipsoid(lat, lon, depth, 0) // degenerate innermost
	return boundaries
}

// SelectNeighbors returns up to cfg.MaxNumNeigh neighbors of ref from
// candidates. It repeatedly sweeps outer-to-inner shell and, within each
// shell, one closest-remaining candidate per octant, picking at most one
// per (shell, octant) per sweep; a (shell, octant) cell holding several
// eligible candidates yields its next-closest one on each subsequent
// sweep. Sweeping continues until the quota is reached or no remaining
// candidate falls in any cell, stopping immediately (mid-sweep) the
// moment the quota is hit. Fewer than cfg.MinNumNeigh eligible survivors
// is an error.
func SelectNeighbors(catalog *geo.Catalog, ref *geo.Event, candidates []*geo.Event, cfg conf.NeighborSettings) ([]*geo.Event, error) {
	eligible := make([]*geo.Event, 0, len(candidates))
	for _, c := range candidates {
		if isEligible(catalog, ref, c, cfg) {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) < cfg.MinNumNeigh {
		return nil, errors.Newf("event %d has %d eligible neighbors, fewer than min_num_neigh %d",
			ref.ID, len(eligible), cfg.MinNumNeigh).
			Component("neighbor").Category(errors.CategoryNeighbor).
			Context("event_id", ref.ID).Build()
	}

	boundaries := shellBoundaries(ref.Latitude, ref.Longitude, ref.Depth, cfg.MaxEllipsoidSize, cfg.NumEllipsoids)
	remaining := make(map[int]*geo.Event, len(eligible))
	for _, c := range eligible {
		remaining[c.ID] = c
	}

	var selected []*geo.Event

	for {
		pickedThisSweep := false
		for shell := 0; shell < cfg.NumEllipsoids; shell++ {
			outer, inner := boundaries[shell], boundaries[shell+1]
			for octant := 1; octant <= 8; octant++ {
				best := closestInShellOctant(remaining, outer, inner, octant, ref)
				if best == nil {
					continue
				}
				pickedThisSweep = true
				selected = append(selected, best)
				delete(remaining, best.ID)
				if len(selected) >= cfg.MaxNumNeigh {
					return selected, nil
				}
			}
		}
		if !pickedThisSweep || len(remaining) == 0 {
			break
		}
	}

	if len(selected) < cfg.MinNumNeigh {
		return nil, errors.Newf("event %d selected %d neighbors, fewer than min_num_neigh %d",
			ref.ID, len(selected), cfg.MinNumNeigh).
			Component("neighbor").Category(errors.CategoryNeighbor).
			Context("event_id", ref.ID).Build()
	}
	return selected, nil
}

// closestInShellOctant returns the closest-to-ref candidate in remaining
// that falls inside outer, outside inner, and in the given octant, or nil.
func closestInShellOctant(remaining map[int]*geo.Event, outer, inner geo.Ellipsoid, octant int, ref *geo.Event) *geo.Event {
	var best *geo.Event
	bestDist := math.Inf(1)

	for _, c := range remaining {
		if !outer.IsInside(c.Latitude, c.Longitude, c.Depth) {
			continue
		}
		if inner.IsInside(c.Latitude, c.Longitude, c.Depth) {
			continue
		}
		if outer.Octant(c.Latitude, c.Longitude, c.Depth) != octant {
			continue
		}
		d := geo.ComputeDistance(ref.Latitude, ref.Longitude, ref.Depth, c.Latitude, c.Longitude, c.Depth)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}
