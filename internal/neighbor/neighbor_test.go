package neighbor

import (
	"testing"
	"time"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildCatalogWithOctants(t *testing.T) (*geo.Catalog, *geo.Event, []*geo.Event) {
	t.Helper()
	c := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, c.AddStation(st))

	ref := &geo.Event{ID: 0, OriginTime: time.Now(), Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, c.AddEvent(ref))
	require.NoError(t, c.AddPhase(0, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 1.0}))

	var neighbors []*geo.Event
	nextID := 1
	for _, dlat := range []float64{0.05, -0.05} {
		for _, dlon := range []float64{0.05, -0.05} {
			for _, ddepth := range []float64{2.0, -2.0} {
				ev := &geo.Event{
					ID: nextID, OriginTime: time.Now(),
					Latitude: 46.3 + dlat, Longitude: 7.5 + dlon, Depth: 5.0 + ddepth,
				}
				require.NoError(t, c.AddEvent(ev))
				require.NoError(t, c.AddPhase(ev.ID, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 1.0}))
				neighbors = append(neighbors, ev)
				nextID++
			}
		}
	}
	return c, ref, neighbors
}

func baseConfig() conf.NeighborSettings {
	return conf.NeighborSettings{
		NumEllipsoids:    1,
		MaxEllipsoidSize: 20.0,
		MinNumNeigh:      1,
		MaxNumNeigh:      8,
		MinDTperEvt:      1,
		MaxDTperEvt:      100,
		MaxIEdist:        40.0,
		MinPhaseWeight:   0.1,
		MinESdist:        0,
		MaxESdist:        400,
		MinEStoIEratio:   0,
	}
}

func TestSelectNeighborsOctantCoverage(t *testing.T) {
	t.Parallel()
	catalog, ref, candidates := buildCatalogWithOctants(t)
	cfg := baseConfig()

	selected, err := SelectNeighbors(catalog, ref, candidates, cfg)
	require.NoError(t, err)
	assert.Len(t, selected, 8)

	ids := make(map[int]bool)
	for _, s := range selected {
		ids[s.ID] = true
	}
	assert.Len(t, ids, 8, "expected eight distinct events, one per octant")
}

func TestSelectNeighborsHardStopRespectsMaxNumNeigh(t *testing.T) {
	t.Parallel()
	catalog, ref, candidates := buildCatalogWithOctants(t)
	cfg := baseConfig()
	cfg.MaxNumNeigh = 3

	selected, err := SelectNeighbors(catalog, ref, candidates, cfg)
	require.NoError(t, err)
	assert.Len(t, selected, 3)
}

func TestSelectNeighborsErrorsWhenBelowMinimum(t *testing.T) {
	t.Parallel()
	catalog, ref, candidates := buildCatalogWithOctants(t)
	cfg := baseConfig()
	cfg.MinNumNeigh = 20

	_, err := SelectNeighbors(catalog, ref, candidates, cfg)
	assert.Error(t, err)
}

func TestSelectNeighborsRefillsContestedOctantOnSecondSweep(t *testing.T) {
	t.Parallel()
	catalog, ref, candidates := buildCatalogWithOctants(t)

	// Add a second, slightly farther candidate into the same octant as
	// the existing +lat/+lon/+depth neighbor, so that octant holds two
	// eligible candidates. A single sweep over the octant grid can only
	// pick one of them; reaching both requires a second sweep.
	extra := &geo.Event{ID: 100, OriginTime: time.Now(), Latitude: 46.36, Longitude: 7.56, Depth: 7.2}
	st := geo.StationID{Network: "CH", Station: "SIMPL"}
	require.NoError(t, catalog.AddEvent(extra))
	require.NoError(t, catalog.AddPhase(extra.ID, &geo.Phase{StationID: st, Type: geo.PhaseP, Weight: 1.0}))
	candidates = append(candidates, extra)

	cfg := baseConfig()
	cfg.MaxNumNeigh = 9

	selected, err := SelectNeighbors(catalog, ref, candidates, cfg)
	require.NoError(t, err)
	assert.Len(t, selected, 9, "second sweep must pick up the contested octant's second candidate")

	ids := make(map[int]bool)
	for _, s := range selected {
		ids[s.ID] = true
	}
	assert.True(t, ids[extra.ID], "farther candidate in the contested octant must be selected on the second sweep")
}

func TestSelectAllDedupesPairsAcrossCatalog(t *testing.T) {
	t.Parallel()
	catalog, ref, candidates := buildCatalogWithOctants(t)
	_ = ref
	_ = candidates
	cfg := baseConfig()
	cfg.MaxNumNeigh = 8

	neighbors, skipped := SelectAll(catalog, cfg)
	assert.Equal(t, 0, skipped)

	seen := make(map[pairKey]int)
	for evID, ns := range neighbors {
		for _, n := range ns {
			seen[makePairKey(evID, n.ID)]++
		}
	}
	for pair, count := range seen {
		assert.Equal(t, 1, count, "pair %v must appear exactly once across all neighbor lists", pair)
	}
}
