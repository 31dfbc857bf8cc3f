package geo

import "math"

// Ellipsoid is a prolate, vertical-axis-aligned (to geographic north/east)
// ellipsoid centered at an origin hypocenter, used by the neighbor
// selector to partition space into concentric shells.
type Ellipsoid struct {
	OriginLat   float64
	OriginLon   float64
	OriginDepth float64 // km, positive down

	AxisA float64 // km, horizontal semi-axis (a = b)
	AxisC float64 // km, vertical semi-axis; by construction AxisC = 2*AxisA
}

// NewEllipsoid returns the ellipsoid of horizontal size a centered at
// origin, with the prolate-vertical c = 2a relationship.
func NewEllipsoid(originLat, originLon, originDepth, a float64) Ellipsoid {
	return Ellipsoid{
		OriginLat:   originLat,
		OriginLon:   originLon,
		OriginDepth: originDepth,
		AxisA:       a,
		AxisC:       2 * a,
	}
}

// localFrame projects (lat, lon, depth) onto the ellipsoid's local x/y/z
// axes: x is the north-ish component (h*cos(azimuth)), y the east-ish
// component (h*sin(azimuth)), z the depth offset from the origin
//.
func (e Ellipsoid) localFrame(lat, lon, depth float64) (x, y, z float64) {
	h := HorizontalDistance(e.OriginLat, e.OriginLon, lat, lon)
	az := degToRad(Azimuth(e.OriginLat, e.OriginLon, lat, lon))
	x = h * math.Cos(az)
	y = h * math.Sin(az)
	z = depth - e.OriginDepth
	return
}

// IsInside reports whether (lat, lon, depth) falls within the ellipsoid,
// by the membership test x²/a + y²/b + z²/c ≤ 1, with b = a. AxisA == 0
// degenerates to "always outside" (the innermost, zero-sized ellipsoid of
// the neighbor selector's shell construction).
func (e Ellipsoid) IsInside(lat, lon, depth float64) bool {
	if e.AxisA <= 0 {
		return false
	}
	x, y, z := e.localFrame(lat, lon, depth)
	v := (x*x)/e.AxisA + (y*y)/e.AxisA + (z*z)/e.AxisC
	return v <= 1.0
}

// Octant identifies one of 8 regions of space around the ellipsoid's
// origin: 1-4 are above the origin depth (shallower), 5-8 below; within
// each stratum octants are labeled clockwise from the NE corner
//.
func (e Ellipsoid) Octant(lat, lon, depth float64) int {
	x, y, z := e.localFrame(lat, lon, depth)

	var quadrant int
	switch {
	case x >= 0 && y >= 0:
		quadrant = 1 // NE
	case x < 0 && y >= 0:
		quadrant = 2 // SE
	case x < 0 && y < 0:
		quadrant = 3 // SW
	default:
		quadrant = 4 // NW
	}

	if z < 0 {
		return quadrant // above origin depth
	}
	return quadrant + 4 // below origin depth
}
