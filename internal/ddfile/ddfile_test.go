package ddfile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/neighbor"
	"github.com/quakego/hdd/internal/xcorr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog(t *testing.T) *geo.Catalog {
	t.Helper()
	c := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4, Elevation: 450}
	require.NoError(t, c.AddStation(st))

	origin := time.Date(2024, 3, 15, 12, 30, 45, 250_000_000, time.UTC)
	ev := &geo.Event{ID: 1, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0, Magnitude: 2.1,
		HorizontalUncertainty: 0.3, VerticalUncertainty: 0.5, RMS: 0.1}
	require.NoError(t, c.AddEvent(ev))
	require.NoError(t, c.AddPhase(1, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 0.9, Time: origin.Add(2 * time.Second)}))
	return c
}

func TestWriteStationsIsDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	c := sampleCatalog(t)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, WriteStations(&buf1, c))
	require.NoError(t, WriteStations(&buf2, c))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestWriteEventsIsDeterministicAcrossRuns(t *testing.T) {
	t.Parallel()
	c := sampleCatalog(t)

	var buf1, buf2 bytes.Buffer
	require.NoError(t, WriteEvents(&buf1, c))
	require.NoError(t, WriteEvents(&buf2, c))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestEventRoundTripReproducesOriginalWithinTolerance(t *testing.T) {
	t.Parallel()
	c := sampleCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, WriteEvents(&buf, c))

	parsed, err := ParseEvents(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	original, _ := c.Event(1)
	got := parsed[0]
	assert.Equal(t, original.ID, got.ID)
	assert.InDelta(t, original.Latitude, got.Latitude, 1e-6)
	assert.InDelta(t, original.Longitude, got.Longitude, 1e-6)
	assert.InDelta(t, original.Depth, got.Depth, 1e-6)
	assert.WithinDuration(t, original.OriginTime, got.OriginTime, 10*time.Microsecond)
}

func TestWritePhasesSkipsNegativeTravelTime(t *testing.T) {
	t.Parallel()
	c := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, c.AddStation(st))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := &geo.Event{ID: 1, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	require.NoError(t, c.AddEvent(ev))
	require.NoError(t, c.AddPhase(1, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 0.9, Time: origin.Add(-time.Second)}))

	var buf bytes.Buffer
	skipped, err := WritePhases(&buf, c)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
}

func TestWriteDtCcGroupsByPairAndOrdersAscending(t *testing.T) {
	t.Parallel()
	station := geo.StationID{Network: "CH", Station: "SIMPL"}
	dts := []xcorr.DifferentialTime{
		{Station: station, Phase: geo.PhaseP, Event1: 2, Event2: 1, DT: 0.01, Weight: 0.81, Coefficient: 0.9},
		{Station: station, Phase: geo.PhaseS, Event1: 1, Event2: 3, DT: -0.02, Weight: 0.64, Coefficient: 0.8},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDtCc(&buf, dts))

	out := buf.String()
	assert.Contains(t, out, "#  1  3  0.0")
	assert.Contains(t, out, "#  2  1  0.0")
	assert.Less(t, strings.Index(out, "#  1  3  0.0"), strings.Index(out, "#  2  1  0.0"))
}

func TestWriteDtCtUsesMeanWeightAndSkipsUnsharedStations(t *testing.T) {
	t.Parallel()
	c := geo.NewCatalog()
	st := &geo.Station{ID: geo.StationID{Network: "CH", Station: "SIMPL"}, Latitude: 46.2, Longitude: 7.4}
	require.NoError(t, c.AddStation(st))
	other := &geo.Station{ID: geo.StationID{Network: "CH", Station: "OTHER"}, Latitude: 46.1, Longitude: 7.3}
	require.NoError(t, c.AddStation(other))
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ev1 := &geo.Event{ID: 1, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	ev2 := &geo.Event{ID: 2, OriginTime: origin, Latitude: 46.31, Longitude: 7.51, Depth: 5.1}
	require.NoError(t, c.AddEvent(ev1))
	require.NoError(t, c.AddEvent(ev2))
	require.NoError(t, c.AddPhase(1, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 0.8, Time: origin.Add(2 * time.Second)}))
	require.NoError(t, c.AddPhase(2, &geo.Phase{StationID: st.ID, Type: geo.PhaseP, Weight: 1.0, Time: origin.Add(2100 * time.Millisecond)}))
	// CH.OTHER is picked on event 1 only, so it is not shared with event 2.
	require.NoError(t, c.AddPhase(1, &geo.Phase{StationID: other.ID, Type: geo.PhaseP, Weight: 0.8, Time: origin.Add(3 * time.Second)}))

	neighbors := map[int][]*geo.Event{1: {ev2}}

	var buf bytes.Buffer
	skipped, err := WriteDtCt(&buf, c, neighbors, conf.Defaults().Neighbor)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Contains(t, buf.String(), "0.90  P")
	assert.NotContains(t, buf.String(), "OTHER")

	_ = neighbor.SelectAll // referenced to document the expected upstream producer of neighbors
}
