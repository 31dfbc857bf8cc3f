// Package ddfile writes the line-oriented text files hypoDD and ph2dt
// read: station.dat, event.dat, phase.dat, dt.ct, and dt.cc.
package ddfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/quakego/hdd/internal/geo"
)

// stationID returns the composite id station.dat uses, matching
// geo.StationID.String() (network.station.location).
func stationID(id geo.StationID) string {
	return id.String()
}

// WriteStations writes one "id lat lon elevation(m)" line per station,
// in ascending id-string order for deterministic output.
func WriteStations(w io.Writer, catalog *geo.Catalog) error {
	stations := catalog.Stations()
	sort.Slice(stations, func(i, j int) bool { return stations[i].ID.String() < stations[j].ID.String() })

	for _, st := range stations {
		if _, err := fmt.Fprintf(w, "%s  %.6f  %.6f  %.1f\n",
			stationID(st.ID), st.Latitude, st.Longitude, st.Elevation); err != nil {
			return err
		}
	}
	return nil
}
