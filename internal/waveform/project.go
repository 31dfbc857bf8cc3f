package waveform

import (
	"math"
	"time"

	"github.com/quakego/hdd/internal/errors"
)

// TargetComponent names the three-component projection target.
type TargetComponent string

const (
	TargetZ TargetComponent = "Z"
	TargetN TargetComponent = "N"
	TargetE TargetComponent = "E"
	TargetR TargetComponent = "R"
	TargetT TargetComponent = "T"
)

// alignComponents verifies three traces share a common sample-wise start and
// length, within half a sample, before a projection matrix multiply is valid
//.
func alignComponents(traces [3]*Trace) error {
	freq := traces[0].Frequency
	halfSample := time.Duration(float64(time.Second) / freq / 2.0)

	for i := 1; i < 3; i++ {
		if delta := traces[i].StartTime.Sub(traces[0].StartTime); delta > halfSample || delta < -halfSample {
			return errors.Newf("component %s start time misaligned by %s", traces[i].Channel, delta).
				Component("waveform").Category(errors.CategoryWaveform).Build()
		}
	}

	n := len(traces[0].Samples)
	for i := 1; i < 3; i++ {
		if len(traces[i].Samples) != n {
			n = min(n, len(traces[i].Samples))
		}
	}
	for _, t := range traces {
		t.Samples = t.Samples[:n]
	}
	return nil
}

// orientationMatrix builds the 3x3 matrix mapping (c1, c2, c3) physical
// component samples onto (Z, N, E), inverting each component's
// azimuth/dip. Components must be linearly independent.
func orientationMatrix(orientations [3]Orientation) [3][3]float64 {
	var m [3][3]float64
	for i, o := range orientations {
		az := o.Azimuth * math.Pi / 180.0
		dip := o.Dip * math.Pi / 180.0
		// unit vector of the sensor's sensitivity axis in (Z, N, E)
		m[0][i] = -math.Sin(dip)
		m[1][i] = math.Cos(dip) * math.Cos(az)
		m[2][i] = math.Cos(dip) * math.Sin(az)
	}
	return invert3x3(m)
}

func invert3x3(m [3][3]float64) [3][3]float64 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])

	if det == 0 {
		return [3][3]float64{}
	}
	invDet := 1.0 / det

	var inv [3][3]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return inv
}

// ProjectZNE applies the orientation-inversion matrix to three aligned
// components, returning the Z, N, E traces.
func ProjectZNE(components [3]*Trace, orientations [3]Orientation) (z, n, e *Trace, err error) {
	if err := alignComponents(components); err != nil {
		return nil, nil, nil, err
	}
	m := orientationMatrix(orientations)

	samples := len(components[0].Samples)
	zs := make([]float64, samples)
	ns := make([]float64, samples)
	es := make([]float64, samples)

	for i := 0; i < samples; i++ {
		c0, c1, c2 := components[0].Samples[i], components[1].Samples[i], components[2].Samples[i]
		zs[i] = m[0][0]*c0 + m[0][1]*c1 + m[0][2]*c2
		ns[i] = m[1][0]*c0 + m[1][1]*c1 + m[1][2]*c2
		es[i] = m[2][0]*c0 + m[2][1]*c1 + m[2][2]*c2
	}

	base := components[0]
	mk := func(ch string, s []float64) *Trace {
		return &Trace{Network: base.Network, Station: base.Station, Location: base.Location,
			Channel: ch, StartTime: base.StartTime, Frequency: base.Frequency, Samples: s}
	}
	return mk("Z", zs), mk("N", ns), mk("E", es), nil
}

// RotateZNEtoZRT rotates the N, E horizontal components into radial (R) and
// transverse (T) components about vertical by (backAzimuth + 180deg).
func RotateZNEtoZRT(n, e *Trace, backAzimuthDeg float64) (r, t *Trace) {
	theta := (backAzimuthDeg + 180.0) * math.Pi / 180.0
	cosT, sinT := math.Cos(theta), math.Sin(theta)

	samples := min(len(n.Samples), len(e.Samples))
	rs := make([]float64, samples)
	ts := make([]float64, samples)
	for i := 0; i < samples; i++ {
		rs[i] = n.Samples[i]*cosT + e.Samples[i]*sinT
		ts[i] = -n.Samples[i]*sinT + e.Samples[i]*cosT
	}

	mk := func(ch string, s []float64) *Trace {
		return &Trace{Network: n.Network, Station: n.Station, Location: n.Location,
			Channel: ch, StartTime: n.StartTime, Frequency: n.Frequency, Samples: s}
	}
	return mk("R", rs), mk("T", ts)
}
