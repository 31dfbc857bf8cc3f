// Package xcorr implements the time-domain normalized cross-correlation
// used to measure differential travel times between two phase picks at a
// shared station.
package xcorr

import "math"

// Result is the outcome of correlating a short and a long trace.
type Result struct {
	// Coefficient is the peak normalized correlation, in [-1, 1], or NaN
	// if the measurement was rejected for cycle-skipping.
	Coefficient float64
	// LagSeconds is the time shift of the long trace relative to the
	// short trace's window center, in seconds. Negated if the trace
	// roles were swapped from the caller's original (phase1, phase2) order.
	LagSeconds float64
}

// Correlate computes the normalized cross-correlation between two
// equal-frequency traces over integer lags in [-maxLag, maxLag], returning
// the lag of peak coefficient and applying cycle-skip rejection
//.
//
// swapped should be true when long and short were exchanged from the
// caller's canonical (phase1, phase2) order, so the returned lag's sign
// reflects the original order.
func Correlate(short, long []float64, freq float64, maxLagSeconds float64, swapped bool) Result {
	k := int(maxLagSeconds * freq)
	nS, nL := len(short), len(long)
	offset := (nL - nS) / 2

	coeffs := make([]float64, 2*k+1)
	valid := make([]bool, 2*k+1)

	for idx := -k; idx <= k; idx++ {
		num, denS, denL := 0.0, 0.0, 0.0
		count := 0
		for i := 0; i < nS; i++ {
			j := i + offset + idx
			if j < 0 || j >= nL {
				continue
			}
			num += short[i] * long[j]
			denS += short[i] * short[i]
			denL += long[j] * long[j]
			count++
		}
		if count == 0 {
			continue
		}
		den := math.Sqrt(denS * denL)
		if den == 0 {
			continue
		}
		coeffs[idx+k] = num / den
		valid[idx+k] = true
	}

	peakIdx, cmax := -1, math.Inf(-1)
	for i, v := range valid {
		if v && coeffs[i] > cmax {
			cmax = coeffs[i]
			peakIdx = i
		}
	}
	if peakIdx == -1 {
		return Result{Coefficient: math.NaN(), LagSeconds: 0}
	}

	if cycleSkipped(coeffs, valid, cmax) {
		lagSamples := peakIdx - k
		lag := float64(lagSamples) / freq
		if swapped {
			lag = -lag
		}
		return Result{Coefficient: math.NaN(), LagSeconds: lag}
	}

	lagSamples := peakIdx - k
	lag := float64(lagSamples) / freq
	if swapped {
		lag = -lag
	}
	return Result{Coefficient: cmax, LagSeconds: lag}
}

// cycleSkipped reports whether two or more local maxima of the
// correlation series meet the ambiguity threshold T = Cmax - (1-Cmax)/2
//.
func cycleSkipped(coeffs []float64, valid []bool, cmax float64) bool {
	threshold := cmax - (1-cmax)/2

	aboveThreshold := 0
	for i := range coeffs {
		if !valid[i] || !isLocalMax(coeffs, valid, i) {
			continue
		}
		// the 1e-9 slack absorbs rounding in the threshold arithmetic, so a
		// maximum exactly equal to T counts
		if coeffs[i] >= threshold-1e-9 {
			aboveThreshold++
		}
	}
	return aboveThreshold >= 2
}

func isLocalMax(coeffs []float64, valid []bool, i int) bool {
	if i > 0 && valid[i-1] && coeffs[i-1] > coeffs[i] {
		return false
	}
	if i < len(coeffs)-1 && valid[i+1] && coeffs[i+1] > coeffs[i] {
		return false
	}
	return true
}
