package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDistanceZeroForIdenticalPoints(t *testing.T) {
	t.Parallel()
	d := ComputeDistance(46.3, 7.5, 5.0, 46.3, 7.5, 5.0)
	assert.InDelta(t, 0.0, d, 1e-9)
}

func TestComputeDistanceDepthOnly(t *testing.T) {
	t.Parallel()
	d := ComputeDistance(46.3, 7.5, 5.0, 46.3, 7.5, 7.0)
	assert.InDelta(t, 2.0, d, 1e-6)
}

func TestEllipsoidIsInsideAtOrigin(t *testing.T) {
	t.Parallel()
	e := NewEllipsoid(46.3, 7.5, 5.0, 20.0)
	assert.True(t, e.IsInside(46.3, 7.5, 5.0))
}

func TestEllipsoidDegenerateAxisAlwaysOutside(t *testing.T) {
	t.Parallel()
	e := NewEllipsoid(46.3, 7.5, 5.0, 0)
	assert.False(t, e.IsInside(46.3, 7.5, 5.0))
}

// Eight synthetic neighbors at (+-0.05 deg, +-0.05 deg, depth +-2km) around
// a reference event must land one per octant. At ~6.76km horizontal offset
// they all fall outside a 20km ellipsoid (x²/a + y²/b + z²/c ≈ 2.38).
func TestOctantCoverageEightSyntheticNeighbors(t *testing.T) {
	t.Parallel()
	e := NewEllipsoid(46.3, 7.5, 5.0, 20.0)

	seen := make(map[int]bool)
	for _, dlat := range []float64{0.05, -0.05} {
		for _, dlon := range []float64{0.05, -0.05} {
			for _, ddepth := range []float64{2.0, -2.0} {
				lat := 46.3 + dlat
				lon := 7.5 + dlon
				depth := 5.0 + ddepth
				require.False(t, e.IsInside(lat, lon, depth), "expected neighbor to fall outside ellipsoid")
				oct := e.Octant(lat, lon, depth)
				require.GreaterOrEqual(t, oct, 1)
				require.LessOrEqual(t, oct, 8)
				seen[oct] = true
			}
		}
	}
	assert.Len(t, seen, 8, "expected all eight octants populated")
}

func TestCatalogAddPhaseRejectsUnknownStation(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	ev := &Event{ID: 1, OriginTime: time.Now(), Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, c.AddEvent(ev))

	p := &Phase{StationID: StationID{Network: "CH", Station: "SIMPL"}, Type: PhaseP, Weight: 1.0}
	err := c.AddPhase(1, p)
	assert.Error(t, err)
}

func TestFilterOutPhasesDedupesKeepingHighestWeight(t *testing.T) {
	t.Parallel()
	c := NewCatalog()
	st := &Station{ID: StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, c.AddStation(st))
	ev := &Event{ID: 1, OriginTime: time.Now(), Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, c.AddEvent(ev))

	require.NoError(t, c.AddPhase(1, &Phase{StationID: st.ID, Type: "Pg", Weight: 0.4}))
	require.NoError(t, c.AddPhase(1, &Phase{StationID: st.ID, Type: "Pn", Weight: 0.9}))

	filtered, err := c.FilterOutPhases(map[PhaseType]bool{PhaseP: true, PhaseS: true})
	require.NoError(t, err)

	phases := filtered.Phases(1)
	require.Len(t, phases, 1)
	assert.Equal(t, PhaseP, phases[0].Type)
	assert.InDelta(t, 0.9, phases[0].Weight, 1e-9)
}

func TestMergeRenumbersAndValueLookupResolves(t *testing.T) {
	t.Parallel()
	c1 := NewCatalog()
	st := &Station{ID: StationID{Network: "CH", Station: "A"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, c1.AddStation(st))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c1.AddEvent(&Event{ID: 42, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}))

	c2 := NewCatalog()
	require.NoError(t, c2.AddStation(st))
	require.NoError(t, c2.AddEvent(&Event{ID: 42, OriginTime: origin.Add(time.Hour), Latitude: 47.0, Longitude: 8.0, Depth: 3.0}))

	merged, err := c1.Merge(c2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, merged.EventIDs())

	found, ok := merged.FindEventByValue(origin, 46.3, 7.5, time.Second)
	require.True(t, ok)
	assert.Equal(t, 0, found.ID)
}
