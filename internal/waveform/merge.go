package waveform

import (
	"sort"
	"time"

	"github.com/quakego/hdd/internal/errors"
)

// mergeRecords concatenates a set of same-channel records into one
// continuous trace, sorted by start time. A gap greater than half a sample
// or an overlap stricter than half a sample invalidates the merge
//.
func mergeRecords(records []*Trace) (*Trace, error) {
	if len(records) == 0 {
		return nil, errors.Newf("no records to merge").
			Component("waveform").Category(errors.CategoryWaveform).Build()
	}

	sorted := make([]*Trace, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	freq := sorted[0].Frequency
	out := &Trace{
		Network:   sorted[0].Network,
		Station:   sorted[0].Station,
		Location:  sorted[0].Location,
		Channel:   sorted[0].Channel,
		StartTime: sorted[0].StartTime,
		Frequency: freq,
		Samples:   append([]float64{}, sorted[0].Samples...),
	}

	halfSample := time.Duration(float64(time.Second) / freq / 2.0)

	for _, rec := range sorted[1:] {
		expectedStart := out.EndTime().Add(out.SampleInterval())
		delta := rec.StartTime.Sub(expectedStart)
		if delta > halfSample {
			return nil, errors.Newf("gap of %s exceeds half a sample merging %s", delta, out.Channel).
				Component("waveform").Category(errors.CategoryWaveform).Build()
		}
		if delta < -halfSample {
			return nil, errors.Newf("overlap of %s exceeds half a sample merging %s", -delta, out.Channel).
				Component("waveform").Category(errors.CategoryWaveform).Build()
		}
		out.Samples = append(out.Samples, rec.Samples...)
	}

	return out, nil
}
