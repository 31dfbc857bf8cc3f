// Package geo implements the catalog data model and the geometry
// primitives (distance, ellipsoid membership, octant classification) that
// the rest of the relocation engine builds on.
package geo

import "fmt"

// StationID is the composite identifier (network, station, location) that
// keys a Station within a Catalog. It is immutable after catalog load.
type StationID struct {
	Network  string
	Station  string
	Location string
}

func (id StationID) String() string {
	return fmt.Sprintf("%s.%s.%s", id.Network, id.Station, id.Location)
}

// Station is an immutable seismic station/location.
type Station struct {
	ID StationID

	Latitude  float64
	Longitude float64
	Elevation float64 // metres above sea level, as reported by the inventory
}

// DepthKM returns the station's depth in km, positive down, for use in the
// same coordinate convention as Event.Depth.
func (s *Station) DepthKM() float64 {
	return -s.Elevation / 1000.0
}
