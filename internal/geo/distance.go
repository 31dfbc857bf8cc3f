package geo

import "math"

const earthRadiusKM = 6371.0

// degToRad converts degrees to radians.
func degToRad(d float64) float64 { return d * math.Pi / 180.0 }

// HorizontalDistance returns the great-circle surface distance between two
// points in km, using the haversine formula, valid only at short range.
func HorizontalDistance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := degToRad(lat1), degToRad(lat2)
	dPhi := degToRad(lat2 - lat1)
	dLambda := degToRad(lon2 - lon1)

	sinDPhi2 := math.Sin(dPhi / 2)
	sinDLambda2 := math.Sin(dLambda / 2)

	a := sinDPhi2*sinDPhi2 + math.Cos(phi1)*math.Cos(phi2)*sinDLambda2*sinDLambda2
	a = math.Min(1.0, math.Max(0.0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// Azimuth returns the initial bearing in degrees [0,360) from (lat1,lon1)
// to (lat2,lon2).
func Azimuth(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := degToRad(lat1), degToRad(lat2)
	dLambda := degToRad(lon2 - lon1)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)
	deg := theta*180/math.Pi + 360
	return math.Mod(deg, 360)
}

// ComputeDistance returns the 3-D distance in km between two hypocenters,
// combining the horizontal great-circle distance with the depth
// difference via Pythagoras. depths are in km, positive
// down. The approximation is only valid for short inter-event distances.
func ComputeDistance(lat1, lon1, d1, lat2, lon2, d2 float64) float64 {
	h := HorizontalDistance(lat1, lon1, lat2, lon2)
	dz := d2 - d1
	return math.Sqrt(h*h + dz*dz)
}
