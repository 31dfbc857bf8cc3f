package waveform

import (
	"time"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/logging"
	"github.com/quakego/hdd/internal/metrics"
)

// Request describes one waveform trace needed for cross-correlation or
// synthesis: a stream identity, the window actually wanted by the caller,
// and the pick/back-azimuth context needed if projection is required
//.
type Request struct {
	Network  string
	Station  string
	Location string

	// Target is the requested component: a direct channel code resolvable
	// in the inventory (no projection) or one of TargetZ/N/E/R/T (requires
	// three-component projection).
	Target TargetComponent

	Window         TimeWindow
	PickTime       time.Time
	BackAzimuthDeg float64

	CheckSNR bool
}

// Loader implements the waveform fetch/cache/condition pipeline, run in
// the same order every time: resolve, fetch, condition, cache.
type Loader struct {
	inventory Inventory
	stream    RecordStream
	metrics   *metrics.WaveformMetrics

	mem          *memoryCache
	diskCacheDir string
	useDiskCache bool
}

// NewLoader builds a Loader backed by the given inventory and record-stream
// collaborators. diskCacheDir and useDiskCache mirror
// conf.WaveformSettings.DiskCacheDir/UseDiskCache.
func NewLoader(inventory Inventory, stream RecordStream, m *metrics.WaveformMetrics, diskCacheDir string, useDiskCache bool) *Loader {
	return &Loader{
		inventory:    inventory,
		stream:       stream,
		metrics:      m,
		mem:          newMemoryCache(0),
		diskCacheDir: diskCacheDir,
		useDiskCache: useDiskCache,
	}
}

// GetWaveform runs the full pipeline for one request. A nil trace with a
// nil error is the "null" outcome: the fingerprint has been marked
// excluded and will short-circuit on every later call with the same
// coordinates and window. A non-nil error indicates a collaborator
// failure worth surfacing rather than silently excluding.
func (l *Loader) GetWaveform(req Request, settings *conf.WaveformSettings) (*Trace, error) {
	start := time.Now()
	fp := Fingerprint(req.Network, req.Station, req.Location, string(req.Target), req.Window.Start, req.Window.End)

	// 1. in-memory hit
	if t, ok := l.mem.get(fp); ok {
		l.metrics.RecordCacheHit("memory")
		return t.Clone(), nil
	}
	l.metrics.RecordCacheMiss("memory")

	// 2. sticky exclusion
	if l.mem.isExcluded(fp) {
		l.metrics.RecordCacheHit("exclusion")
		return nil, nil
	}

	trace, err := l.load(req, settings, fp)
	l.metrics.RecordFetch("source", fetchStatus(trace, err), time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	if trace == nil {
		l.exclude(fp)
		return nil, nil
	}

	// 10. store in memory cache and, when enabled, on disk.
	l.mem.set(fp, trace)
	if l.useDiskCache {
		if werr := writeDiskCache(l.diskCacheDir, fp, trace); werr != nil {
			// disk-cache write failure is logged and ignored
			logging.Warn("waveform disk-cache write failed", "fingerprint", fp, "error", werr)
		}
	}

	return trace.Clone(), nil
}

func fetchStatus(t *Trace, err error) string {
	switch {
	case err != nil:
		return "error"
	case t == nil:
		return "excluded"
	default:
		return "ok"
	}
}

func (l *Loader) exclude(fp string) {
	l.mem.exclude(fp)
	l.metrics.RecordCacheExclusion()
}

func (l *Loader) load(req Request, settings *conf.WaveformSettings, fp string) (*Trace, error) {
	// disk cache check ahead of the full pipeline; a read failure falls back
	// to the record-stream fetch below rather than propagating.
	if l.useDiskCache {
		if t, err := readDiskCache(l.diskCacheDir, fp); err == nil {
			l.metrics.RecordCacheHit("disk")
			return t, nil
		}
		l.metrics.RecordCacheMiss("disk")
	}

	// 3. resolve orientation / decide whether projection is needed.
	loc, err := l.inventory.Resolve(req.Network, req.Station, req.Location, req.PickTime)
	if err != nil {
		return nil, nil // inventory miss -> null (sticky exclusion handled by caller)
	}

	direct, projectionNeeded := directChannel(loc, req.Target)

	// 4. effective window to load.
	window := req.Window
	if req.CheckSNR && settings.SNR.Enabled {
		noise := TimeWindow{
			Start: req.PickTime.Add(secondsToDuration(settings.SNR.NoiseStart)),
			End:   req.PickTime.Add(secondsToDuration(settings.SNR.NoiseEnd)),
		}
		signal := TimeWindow{
			Start: req.PickTime.Add(secondsToDuration(settings.SNR.SignalStart)),
			End:   req.PickTime.Add(secondsToDuration(settings.SNR.SignalEnd)),
		}
		window = window.Union(noise).Union(signal)
	}

	var conditioned *Trace
	if !projectionNeeded {
		records, err := l.stream.Fetch(req.Network, req.Station, req.Location, direct, window)
		if err != nil || len(records) == 0 {
			return nil, nil
		}
		merged, err := mergeRecords(records)
		if err != nil {
			return nil, nil
		}
		conditioned = merged
	} else {
		// 5. load the three oriented components for the effective window.
		if len(loc.Components) < 3 {
			return nil, nil
		}
		var components [3]*Trace
		var orientations [3]Orientation
		for i := 0; i < 3; i++ {
			orientations[i] = loc.Components[i]
			records, err := l.stream.Fetch(req.Network, req.Station, req.Location, loc.Components[i].Channel, window)
			if err != nil || len(records) == 0 {
				return nil, nil
			}
			merged, err := mergeRecords(records)
			if err != nil {
				return nil, nil
			}
			components[i] = merged
		}

		// 6. projection.
		z, n, e, err := ProjectZNE(components, orientations)
		if err != nil {
			return nil, nil
		}
		switch req.Target {
		case TargetZ:
			conditioned = z
		case TargetN:
			conditioned = n
		case TargetE:
			conditioned = e
		case TargetR, TargetT:
			r, t := RotateZNEtoZRT(n, e, req.BackAzimuthDeg)
			if req.Target == TargetR {
				conditioned = r
			} else {
				conditioned = t
			}
		default:
			return nil, nil
		}
	}

	filterStart := time.Now()
	// 7. demean, resample, filter.
	Demean(conditioned.Samples)
	if settings.TargetFrequency > 0 {
		conditioned = Resample(conditioned, settings.TargetFrequency)
	}
	if settings.FilterFreqMin > 0 && settings.FilterFreqMax > settings.FilterFreqMin {
		if err := BandPass(conditioned, settings.FilterFreqMin, settings.FilterFreqMax, settings.FilterPasses); err != nil {
			return nil, nil
		}
	}
	l.metrics.RecordFilterDuration(time.Since(filterStart).Seconds())

	// 8. SNR gate.
	if req.CheckSNR && settings.SNR.Enabled {
		if !PassesSNR(conditioned, req.PickTime, settings.SNR.NoiseStart, settings.SNR.NoiseEnd,
			settings.SNR.SignalStart, settings.SNR.SignalEnd, settings.SNR.MinSNR) {
			l.metrics.RecordSNRRejection()
			return nil, nil
		}
	}

	// 9. trim to the originally requested window.
	trimmed := trim(conditioned, req.Window)
	if trimmed == nil {
		return nil, nil
	}
	return trimmed, nil
}

// directChannel reports the concrete channel code to fetch without
// projection, if req.Target names one resolvable in loc directly.
func directChannel(loc SensorLocation, target TargetComponent) (channel string, projectionNeeded bool) {
	for _, c := range loc.Components {
		if c.Channel == string(target) {
			return c.Channel, false
		}
	}
	return "", true
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// trim returns the subset of t covering exactly [window.Start, window.End],
// or nil if t does not fully cover the window.
func trim(t *Trace, window TimeWindow) *Trace {
	if t.StartTime.After(window.Start) || t.EndTime().Before(window.End) {
		return nil
	}
	startIdx := int(window.Start.Sub(t.StartTime).Seconds() * t.Frequency)
	endIdx := int(window.End.Sub(t.StartTime).Seconds()*t.Frequency) + 1
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > len(t.Samples) {
		endIdx = len(t.Samples)
	}
	if startIdx >= endIdx {
		return nil
	}
	out := t.Clone()
	out.StartTime = t.StartTime.Add(time.Duration(float64(startIdx) / t.Frequency * float64(time.Second)))
	out.Samples = out.Samples[startIdx:endIdx]
	return out
}
