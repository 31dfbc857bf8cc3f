package xcorr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineWave(n int, freq, sampleFreq, phaseShiftSamples float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := (float64(i) - phaseShiftSamples) / sampleFreq
		out[i] = math.Sin(2 * math.Pi * freq * t)
	}
	return out
}

func TestCorrelateShiftedSineRecoversLag(t *testing.T) {
	t.Parallel()
	freq := 100.0
	n := 200

	// a low enough signal frequency that one full period exceeds the
	// +-maxDelay search range, so the true lag has no periodic alias
	// inside the search window.
	a := sineWave(n, 2.0, freq, 0)
	b := sineWave(n, 2.0, freq, -7) // b(i) == a(i+7): b leads a by 7 samples

	result := Correlate(a, b, freq, 0.2, false)
	require.False(t, math.IsNaN(result.Coefficient))
	assert.GreaterOrEqual(t, result.Coefficient, 0.999)
	assert.InDelta(t, -0.07, result.LagSeconds, 1e-9)
}

func bump(n, center int, width float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		d := float64(i - center)
		out[i] = math.Exp(-(d * d) / (2 * width * width))
	}
	return out
}

func TestCorrelateStrongSecondaryPeakRejected(t *testing.T) {
	t.Parallel()
	freq := 100.0

	short := bump(40, 20, 3)
	long := make([]float64, 200)
	peak1 := bump(200, 100, 3) // aligns with short at lag 0
	peak2 := bump(200, 140, 3) // an equal-amplitude replica 40 samples later
	for i := range long {
		long[i] = peak1[i] + peak2[i]
	}

	result := Correlate(short, long, freq, 0.5, false)
	assert.True(t, math.IsNaN(result.Coefficient))
}

func TestCorrelateSignConventionNegatesOnSwap(t *testing.T) {
	t.Parallel()
	freq := 100.0
	n := 200
	a := sineWave(n, 2.0, freq, 0)
	b := sineWave(n, 2.0, freq, 7)

	forward := Correlate(a, b, freq, 0.2, false)
	backward := Correlate(b, a, freq, 0.2, true)

	require.False(t, math.IsNaN(forward.Coefficient))
	require.False(t, math.IsNaN(backward.Coefficient))
	// Swapping the operands flips the raw lag; swapped=true negates it back,
	// so both calls report the lag in the original (a, b) order.
	assert.InDelta(t, forward.LagSeconds, backward.LagSeconds, 1e-9)
	assert.InDelta(t, forward.Coefficient, backward.Coefficient, 1e-6)
}

func TestCorrelateCoefficientAlwaysInRange(t *testing.T) {
	t.Parallel()
	freq := 100.0
	n := 150
	a := sineWave(n, 3.0, freq, 0)
	b := sineWave(n, 7.0, freq, 0) // unrelated frequency, weak correlation

	result := Correlate(a, b, freq, 0.3, false)
	if !math.IsNaN(result.Coefficient) {
		assert.LessOrEqual(t, result.Coefficient, 1.0+1e-9)
		assert.GreaterOrEqual(t, result.Coefficient, -1.0-1e-9)
	}
}

func TestCycleSkippedRejectsTwoNearEqualMaxima(t *testing.T) {
	t.Parallel()
	coeffs := []float64{0.1, 0.9, 0.1, 0.85, 0.1}
	valid := []bool{true, true, true, true, true}
	assert.True(t, cycleSkipped(coeffs, valid, 0.9))
}

func TestCycleSkippedAcceptsSingleDominantMaximum(t *testing.T) {
	t.Parallel()
	coeffs := []float64{0.1, 0.9, 0.1, 0.2, 0.1}
	valid := []bool{true, true, true, true, true}
	assert.False(t, cycleSkipped(coeffs, valid, 0.9))
}
