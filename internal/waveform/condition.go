package waveform

import (
	"github.com/quakego/hdd/internal/waveform/equalizer"
)

// Demean subtracts the arithmetic mean from every sample in place
//.
func Demean(samples []float64) {
	if len(samples) == 0 {
		return
	}
	sum := 0.0
	for _, s := range samples {
		sum += s
	}
	mean := sum / float64(len(samples))
	for i := range samples {
		samples[i] -= mean
	}
}

// Resample changes t's sampling frequency to targetFreq using an
// integer-ratio stride: downsampling box-averages a window of width
// approximately half the stride, upsampling duplicates the nearest
// lower-indexed sample. Cheap and deterministic, not SNR-preserving.
func Resample(t *Trace, targetFreq float64) *Trace {
	if targetFreq <= 0 || t.Frequency == targetFreq || len(t.Samples) == 0 {
		return t
	}

	out := &Trace{
		Network: t.Network, Station: t.Station, Location: t.Location,
		Channel: t.Channel, StartTime: t.StartTime, Frequency: targetFreq,
	}

	if targetFreq < t.Frequency {
		ratio := int(t.Frequency / targetFreq)
		if ratio < 1 {
			ratio = 1
		}
		boxWidth := ratio / 2
		if boxWidth < 1 {
			boxWidth = 1
		}
		n := len(t.Samples) / ratio
		out.Samples = make([]float64, n)
		for i := 0; i < n; i++ {
			center := i * ratio
			lo := center - boxWidth/2
			hi := lo + boxWidth
			if lo < 0 {
				lo = 0
			}
			if hi > len(t.Samples) {
				hi = len(t.Samples)
			}
			sum := 0.0
			for j := lo; j < hi; j++ {
				sum += t.Samples[j]
			}
			out.Samples[i] = sum / float64(hi-lo)
		}
		return out
	}

	ratio := int(targetFreq / t.Frequency)
	if ratio < 1 {
		ratio = 1
	}
	out.Samples = make([]float64, len(t.Samples)*ratio)
	for i, s := range t.Samples {
		for k := 0; k < ratio; k++ {
			out.Samples[i*ratio+k] = s
		}
	}
	return out
}

// BandPass applies a causal Butterworth-style band-pass filter in place
// using the two-pole-per-pass biquad cascade.
func BandPass(t *Trace, freqMin, freqMax float64, passes int) error {
	fc := equalizer.NewFilterChain()

	width := freqMax - freqMin
	centerFreq := (freqMin + freqMax) / 2.0
	if centerFreq <= 0 || width <= 0 {
		return nil
	}

	f, err := equalizer.NewBandPass(t.Frequency, centerFreq, width/centerFreq, passes)
	if err != nil {
		return err
	}
	if err := fc.AddFilter(f); err != nil {
		return err
	}
	fc.ApplyBatch(t.Samples)
	return nil
}
