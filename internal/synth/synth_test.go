package synth

import (
	"math"
	"testing"
	"time"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/waveform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFreq = 100.0

// fakeLoader evaluates a single low-frequency sine as a function of
// absolute time over whatever window is requested, so any two requests
// over overlapping absolute time ranges correlate at lag 0 regardless of
// which window each call asked for.
type fakeLoader struct{}

func (fakeLoader) GetWaveform(req waveform.Request, _ *conf.WaveformSettings) (*waveform.Trace, error) {
	n := int(req.Window.Duration().Seconds() * testFreq)
	if n <= 0 {
		n = 1
	}
	samples := make([]float64, n)
	for i := range samples {
		t := req.Window.Start.Add(time.Duration(float64(i) / testFreq * float64(time.Second)))
		samples[i] = math.Sin(2 * math.Pi * 0.5 * t.Sub(time.Unix(0, 0)).Seconds())
	}
	return &waveform.Trace{
		Network: req.Network, Station: req.Station, Location: req.Location,
		Channel: string(req.Target), StartTime: req.Window.Start, Frequency: testFreq, Samples: samples,
	}, nil
}

func TestSynthesizeAverageOffsetOneSecond(t *testing.T) {
	t.Parallel()
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := &geo.Event{ID: 0, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	station := geo.StationID{Network: "CH", Station: "SIMPL"}

	peers := []PeerPick{
		{Event: &geo.Event{ID: 1, OriginTime: origin}, Pick: origin.Add(800 * time.Millisecond), Channel: "HHZ"},
		{Event: &geo.Event{ID: 2, OriginTime: origin}, Pick: origin.Add(1000 * time.Millisecond), Channel: "HHZ"},
		{Event: &geo.Event{ID: 3, OriginTime: origin}, Pick: origin.Add(1200 * time.Millisecond), Channel: "HHZ"},
	}

	waveCfg := &conf.WaveformSettings{}
	phaseCfg := conf.PhaseXCorrConfig{StartOffset: -0.1, EndOffset: 0.1, MaxDelay: 0.15, MinCoef: 0.5}
	synthCfg := conf.SynthSettings{NumCC: 3, MinCoef: 0.5, MaxHalfWidth: 5.0, MaxAcceptableMAD: 0.3}

	result, err := Synthesize(fakeLoader{}, waveCfg, phaseCfg, synthCfg, station, ref, peers)
	require.NoError(t, err)

	expected := origin.Add(time.Second)
	assert.InDelta(t, 0, result.Time.Sub(expected).Seconds(), 0.05)
	assert.Greater(t, result.Weight, 0.0)
}

func TestSynthesizeRecentersOnOriginTimeWhenHalfWidthIsClamped(t *testing.T) {
	t.Parallel()
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := &geo.Event{ID: 0, OriginTime: origin, Latitude: 46.3, Longitude: 7.5, Depth: 5.0}
	station := geo.StationID{Network: "CH", Station: "SIMPL"}

	// Bracketing midpoint is 102s from origin with a 2s half-width;
	// clamping to a 0.2s max half-width must recenter on origin rather
	// than leave the synthesis window drifted out near +102s. The picks
	// are whole periods of fakeLoader's 0.5Hz sine apart from origin, so
	// every peer window matches the recentered reference window at lag 0.
	peers := []PeerPick{
		{Event: &geo.Event{ID: 1, OriginTime: origin}, Pick: origin.Add(100 * time.Second), Channel: "HHZ"},
		{Event: &geo.Event{ID: 2, OriginTime: origin}, Pick: origin.Add(102 * time.Second), Channel: "HHZ"},
		{Event: &geo.Event{ID: 3, OriginTime: origin}, Pick: origin.Add(104 * time.Second), Channel: "HHZ"},
	}

	waveCfg := &conf.WaveformSettings{}
	phaseCfg := conf.PhaseXCorrConfig{StartOffset: -0.1, EndOffset: 0.1, MaxDelay: 0.15, MinCoef: 0.5}
	synthCfg := conf.SynthSettings{NumCC: 3, MinCoef: 0.5, MaxHalfWidth: 0.2, MaxAcceptableMAD: 0.3}

	result, err := Synthesize(fakeLoader{}, waveCfg, phaseCfg, synthCfg, station, ref, peers)
	require.NoError(t, err)
	assert.InDelta(t, 0, result.Time.Sub(origin).Seconds(), 0.05)
}

func TestSynthesizeRejectsFewerThanTwoPeers(t *testing.T) {
	t.Parallel()
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ref := &geo.Event{ID: 0, OriginTime: origin}
	station := geo.StationID{Network: "CH", Station: "SIMPL"}

	waveCfg := &conf.WaveformSettings{}
	phaseCfg := conf.PhaseXCorrConfig{StartOffset: -0.1, EndOffset: 0.1, MaxDelay: 0.15, MinCoef: 0.5}
	synthCfg := conf.SynthSettings{NumCC: 3, MinCoef: 0.5, MaxHalfWidth: 5.0, MaxAcceptableMAD: 0.3}

	_, err := Synthesize(fakeLoader{}, waveCfg, phaseCfg, synthCfg, station, ref, []PeerPick{
		{Event: &geo.Event{ID: 1, OriginTime: origin}, Pick: origin.Add(800 * time.Millisecond), Channel: "HHZ"},
	})
	assert.Error(t, err)
}
