package waveform

import (
	"math"
	"time"
)

// peakAbs returns the maximum absolute sample value in the window
// [pick+startOffset, pick+endOffset] of t, or 0 if no samples fall inside it.
func peakAbs(t *Trace, pick time.Time, startOffset, endOffset float64) float64 {
	winStart := pick.Add(time.Duration(startOffset * float64(time.Second)))
	winEnd := pick.Add(time.Duration(endOffset * float64(time.Second)))

	peak := 0.0
	for i, s := range t.Samples {
		ts := t.StartTime.Add(time.Duration(float64(i) / t.Frequency * float64(time.Second)))
		if ts.Before(winStart) || ts.After(winEnd) {
			continue
		}
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}
	return peak
}

// PassesSNR reports whether t's signal-window peak-absolute amplitude
// divided by its noise-window peak-absolute amplitude meets minSNR
//.
func PassesSNR(t *Trace, pick time.Time, noiseStart, noiseEnd, signalStart, signalEnd, minSNR float64) bool {
	noise := peakAbs(t, pick, noiseStart, noiseEnd)
	signal := peakAbs(t, pick, signalStart, signalEnd)
	if noise == 0 {
		return signal > 0
	}
	return signal/noise >= minSNR
}
