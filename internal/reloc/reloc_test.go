package reloc

import (
	"strings"
	"testing"
	"time"

	"github.com/quakego/hdd/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relocLine() string {
	// id lat lon depth x y z ex ey ez yr mo dy hr mi sc mag nCCp nCCs nCTp nCTs rCC rCT cid
	return "42  46.301  7.502  5.120  0.10  0.05  0.02  0.30  0.20  0.10  2024  3  15  12  30  45.25  2.3  8  6  10  9  0.045  0.052  1"
}

func TestParseRelocReadsAllTwentyFourFields(t *testing.T) {
	t.Parallel()
	recs, err := ParseReloc(strings.NewReader(relocLine()))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, 42, r.EventID)
	assert.InDelta(t, 46.301, r.Latitude, 1e-9)
	assert.InDelta(t, 7.502, r.Longitude, 1e-9)
	assert.InDelta(t, 5.120, r.Depth, 1e-9)
	assert.Equal(t, 8, r.NumCCP)
	assert.Equal(t, 6, r.NumCCS)
	assert.Equal(t, 10, r.NumCTP)
	assert.Equal(t, 9, r.NumCTS)
	assert.InDelta(t, 0.045, r.RCC, 1e-9)
	assert.InDelta(t, 0.052, r.RCT, 1e-9)
	assert.Equal(t, 1, r.ClusterID)
	assert.Equal(t, time.Date(2024, 3, 15, 12, 30, 45, 250_000_000, time.UTC), r.OriginTime)
}

func TestParseRelocRejectsWrongFieldCount(t *testing.T) {
	t.Parallel()
	_, err := ParseReloc(strings.NewReader("1 2 3"))
	assert.Error(t, err)
}

func TestParseResExtractsCategoryAndWeight(t *testing.T) {
	t.Parallel()
	line := "CH.SIMPL  42  43  0  3  0.012  0.87  1.1  1.0"
	recs, err := ParseRes(strings.NewReader(line))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, CategoryCTP, recs[0].Category)
	assert.InDelta(t, 0.012, recs[0].Residual, 1e-9)
	assert.InDelta(t, 0.87, recs[0].Weight, 1e-9)
	assert.Equal(t, geo.StationID{Network: "CH", Station: "SIMPL"}, recs[0].Station)
}

// TestMergeAppliesRelocatedHypocenterAndCombinedRMS
// scenario: one hypoDD.reloc line for event 42 with new coordinates, with
// rCC and rCT both positive, must set isRelocated, update the coordinates,
// and compute the combined RMS as the mean of the two.
func TestMergeAppliesRelocatedHypocenterAndCombinedRMS(t *testing.T) {
	t.Parallel()
	catalog := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, catalog.AddStation(st))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := &geo.Event{ID: 42, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, catalog.AddEvent(ev))
	require.NoError(t, catalog.AddPhase(42, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Time: origin.Add(2 * time.Second)}))

	recs, err := ParseReloc(strings.NewReader(relocLine()))
	require.NoError(t, err)

	require.NoError(t, Merge(catalog, recs, nil))

	updated, _ := catalog.Event(42)
	require.NotNil(t, updated.Reloc)
	assert.True(t, updated.Reloc.IsRelocated)
	assert.InDelta(t, 46.301, updated.Latitude, 1e-9)
	assert.InDelta(t, 7.502, updated.Longitude, 1e-9)
	assert.InDelta(t, 5.120, updated.Depth, 1e-9)
	assert.InDelta(t, (0.045+0.052)/2, updated.Reloc.RMS, 1e-9)
}

func TestMergeFoldsResContributionsOntoBothEvents(t *testing.T) {
	t.Parallel()
	catalog := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, catalog.AddStation(st))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ev1 := &geo.Event{ID: 1, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	ev2 := &geo.Event{ID: 2, OriginTime: origin, Latitude: 46.31, Longitude: 7.51, Depth: 5.1}
	require.NoError(t, catalog.AddEvent(ev1))
	require.NoError(t, catalog.AddEvent(ev2))
	require.NoError(t, catalog.AddPhase(1, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Time: origin.Add(2 * time.Second)}))
	require.NoError(t, catalog.AddPhase(2, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Time: origin.Add(2 * time.Second)}))

	relocs := []Record{
		{EventID: 1, Latitude: ev1.Latitude, Longitude: ev1.Longitude, Depth: ev1.Depth, OriginTime: origin, RCC: 0.02, RCT: 0.03},
		{EventID: 2, Latitude: ev2.Latitude, Longitude: ev2.Longitude, Depth: ev2.Depth, OriginTime: origin, RCC: 0.02, RCT: 0.03},
	}
	res := []ResRecord{
		{Station: st.ID, Event1: 1, Event2: 2, Category: CategoryCTP, Residual: 0.01, Weight: 0.9},
		{Station: st.ID, Event1: 1, Event2: 2, Category: CategoryCTP, Residual: 0.03, Weight: 0.7},
	}

	require.NoError(t, Merge(catalog, relocs, res))

	for _, id := range []int{1, 2} {
		phase := catalog.PhaseByStationType(id, st.ID, geo.PhaseP)
		require.NotNil(t, phase.Residual)
		require.NotNil(t, phase.FinalWeight)
		assert.InDelta(t, 0.02, *phase.Residual, 1e-9)
		assert.InDelta(t, 0.8, *phase.FinalWeight, 1e-9)
	}
}

func TestMergeSkipsResContributionsForEventsWithoutReloc(t *testing.T) {
	t.Parallel()
	catalog := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, catalog.AddStation(st))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := &geo.Event{ID: 1, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, catalog.AddEvent(ev))
	require.NoError(t, catalog.AddPhase(1, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Time: origin.Add(2 * time.Second)}))

	res := []ResRecord{{Station: st.ID, Event1: 1, Event2: 99, Category: CategoryCTP, Residual: 0.01, Weight: 0.9}}
	require.NoError(t, Merge(catalog, nil, res))

	phase := catalog.PhaseByStationType(1, st.ID, geo.PhaseP)
	assert.Nil(t, phase.Residual)
	assert.Nil(t, ev.Reloc)
}
