// Package synth implements the artificial-phase synthesizer: when a
// reference event lacks a pick at a station that nearby events have
// picked manually, it builds a plausible pick time and weight from
// cross-correlation against those peers.
package synth

import (
	"math"
	"sort"
	"time"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/waveform"
	"github.com/quakego/hdd/internal/xcorr"
)

// PeerPick is one nearby event's manual pick at the station/phase the
// reference event is missing.
type PeerPick struct {
	Event   *geo.Event
	Pick    time.Time
	Channel string
}

// Loader is the subset of waveform.Loader's contract synth needs; defined
// locally so this package depends only on the waveform types it shares,
// not the loader's full construction surface.
type Loader interface {
	GetWaveform(req waveform.Request, settings *conf.WaveformSettings) (*waveform.Trace, error)
}

// Result is a synthesized phase, with isManual always forced false.
type Result struct {
	Time   time.Time
	Weight float64
}

// Synthesize builds an artificial pick for ref at station/location using
// peers' manual picks of the same phase type, via a bracketing-window /
// cross-correlate / average-lag procedure.
func Synthesize(loader Loader, waveCfg *conf.WaveformSettings, phaseCfg conf.PhaseXCorrConfig,
	synthCfg conf.SynthSettings, station geo.StationID, ref *geo.Event, peers []PeerPick) (Result, error) {
	if len(peers) < 2 {
		return Result{}, errors.Newf("synth: need at least two peer picks to bracket a window, got %d", len(peers)).
			Component("synth").Category(errors.CategorySynthesis).Build()
	}

	travelTimes := make([]float64, len(peers))
	for i, p := range peers {
		travelTimes[i] = p.Pick.Sub(p.Event.OriginTime).Seconds()
	}

	minTT, maxTT := travelTimes[0], travelTimes[0]
	for _, tt := range travelTimes {
		if tt < minTT {
			minTT = tt
		}
		if tt > maxTT {
			maxTT = tt
		}
	}

	centerOffset := (minTT + maxTT) / 2
	halfWidth := (maxTT - minTT) / 2

	center := ref.OriginTime.Add(secs(centerOffset))
	if halfWidth > synthCfg.MaxHalfWidth {
		halfWidth = synthCfg.MaxHalfWidth
		center = ref.OriginTime
	}

	window := waveform.TimeWindow{Start: center.Add(-secs(halfWidth)), End: center.Add(secs(halfWidth))}

	refTrace, err := loader.GetWaveform(waveform.Request{
		Network: station.Network, Station: station.Station, Location: station.Location,
		Target: waveform.TargetComponent(peers[0].Channel), Window: window, PickTime: center,
	}, waveCfg)
	if err != nil {
		return Result{}, err
	}
	if refTrace == nil {
		return Result{}, errors.Newf("synth: reference waveform unavailable over synthesis window").
			Component("synth").Category(errors.CategorySynthesis).Build()
	}

	type candidate struct {
		coef float64
		lag  float64
	}
	candidates := make([]candidate, 0, len(peers))

	for _, p := range peers {
		shortWindow := waveform.TimeWindow{
			Start: p.Pick.Add(secs(phaseCfg.StartOffset)),
			End:   p.Pick.Add(secs(phaseCfg.EndOffset)),
		}
		peerTrace, err := loader.GetWaveform(waveform.Request{
			Network: station.Network, Station: station.Station, Location: station.Location,
			Target: waveform.TargetComponent(p.Channel), Window: shortWindow, PickTime: p.Pick,
		}, waveCfg)
		if err != nil || peerTrace == nil {
			continue
		}

		result := xcorr.Correlate(peerTrace.Samples, refTrace.Samples, refTrace.Frequency, phaseCfg.MaxDelay, false)
		if math.IsNaN(result.Coefficient) {
			continue
		}
		candidates = append(candidates, candidate{coef: result.Coefficient, lag: result.LagSeconds})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].coef > candidates[j].coef })
	if len(candidates) > synthCfg.NumCC {
		candidates = candidates[:synthCfg.NumCC]
	}
	if len(candidates) == 0 {
		return Result{}, errors.Newf("synth: no peer cross-correlation survived quality rejection").
			Component("synth").Category(errors.CategorySynthesis).Build()
	}

	sumCoef, sumLag := 0.0, 0.0
	lags := make([]float64, len(candidates))
	for i, c := range candidates {
		sumCoef += c.coef
		sumLag += c.lag
		lags[i] = c.lag
	}
	avgCoef := sumCoef / float64(len(candidates))
	avgLag := sumLag / float64(len(candidates))

	if avgCoef < synthCfg.MinCoef {
		return Result{}, errors.Newf("synth: average coefficient %.3f below min_coef %.3f", avgCoef, synthCfg.MinCoef).
			Component("synth").Category(errors.CategorySynthesis).Build()
	}

	mad := meanAbsoluteDeviation(lags, avgLag)
	weight := 1.0
	if synthCfg.MaxAcceptableMAD > 0 {
		weight = 1.0 - mad/synthCfg.MaxAcceptableMAD
	}
	weight = clamp01(weight)

	return Result{
		Time:   center.Add(secs(avgLag)),
		Weight: weight,
	}, nil
}

func meanAbsoluteDeviation(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += math.Abs(v - mean)
	}
	return sum / float64(len(values))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
