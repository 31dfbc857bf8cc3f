package catalogio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quakego/hdd/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogReadsStationsEventsAndPhases(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stationPath := writeCSV(t, dir, "stations.csv", []string{
		"networkCode,stationCode,locationCode,latitude,longitude,elevation",
		"CH,SIMPL,,46.2,7.4,450",
	})
	eventPath := writeCSV(t, dir, "events.csv", []string{
		"id,isotime,latitude,longitude,depth,magnitude,eh,ev,rms",
		"1,2024-03-15T12:30:45.25Z,46.3,7.5,5.0,2.1,0.3,0.5,0.1",
	})
	phasePath := writeCSV(t, dir, "phases.csv", []string{
		"eventId,networkCode,stationCode,locationCode,channelCode,type,isotime,weight,evalMode",
		"1,CH,SIMPL,,HHZ,P,2024-03-15T12:30:47.25Z,0.9,manual",
	})

	catalog, err := LoadCatalog(stationPath, eventPath, phasePath)
	require.NoError(t, err)

	st, ok := catalog.Station(geo.StationID{Network: "CH", Station: "SIMPL"})
	require.True(t, ok)
	assert.InDelta(t, 46.2, st.Latitude, 1e-9)
	assert.InDelta(t, 450.0, st.Elevation, 1e-9)

	ev, ok := catalog.Event(1)
	require.True(t, ok)
	assert.InDelta(t, 2.1, ev.Magnitude, 1e-9)

	phases := catalog.Phases(1)
	require.Len(t, phases, 1)
	assert.Equal(t, geo.PhaseP, phases[0].Type)
	assert.True(t, phases[0].IsManual)
	assert.Equal(t, "HHZ", phases[0].Stream.Channel)
}

func TestLoadCatalogErrorsOnMissingFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_, err := LoadCatalog(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "missing.csv"), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLoadCatalogErrorsOnDuplicateStationRows(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	stationPath := writeCSV(t, dir, "stations.csv", []string{
		"networkCode,stationCode,locationCode,latitude,longitude,elevation",
		"CH,SIMPL,,46.2,7.4,450",
		"CH,SIMPL,,46.2,7.4,450",
	})
	eventPath := writeCSV(t, dir, "events.csv", []string{"id,isotime,latitude,longitude,depth,magnitude,eh,ev,rms"})
	phasePath := writeCSV(t, dir, "phases.csv", []string{"eventId,networkCode,stationCode,locationCode,channelCode,type,isotime,weight,evalMode"})

	_, err := LoadCatalog(stationPath, eventPath, phasePath)
	assert.Error(t, err)
}
