// Package localarchive is a minimal, disk-backed stand-in for the
// inventory and record-stream services, treated elsewhere as out-of-scope
// external collaborators referenced only by interface. The original
// scrtdd implementation plugged a SeisComP RecordStream URL
// (e.g. "sdsarchive:///archive") behind the same seam; this package is the
// simplest concrete adapter that lets the CLI run end to end against a
// local directory of single-component traces instead of a live service.
package localarchive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/waveform"
)

// VerticalInventory resolves every station to a single vertical ("Z")
// component, the common case for a velocity catalog with no rotated
// horizontals recorded. It never errors.
type VerticalInventory struct {
	Channel string // e.g. "HHZ"; defaults to "HHZ" if empty
}

func (v VerticalInventory) channel() string {
	if v.Channel == "" {
		return "HHZ"
	}
	return v.Channel
}

func (v VerticalInventory) Resolve(network, station, location string, at time.Time) (waveform.SensorLocation, error) {
	return waveform.SensorLocation{
		Components: []waveform.Orientation{{Channel: v.channel(), Azimuth: 0, Dip: -90}},
	}, nil
}

// DirRecordStream fetches traces from a flat directory of per-channel CSV
// files named "<network>.<station>.<location>.<channel>.csv": a header
// line "start_iso,frequency_hz" followed by one sample per line. A missing
// file or a window entirely outside the file's coverage is not an error --
// it is reported the same way the waveform loader treats any unavailable
// waveform, by returning a nil trace.
type DirRecordStream struct {
	Dir string
}

func (d DirRecordStream) Fetch(network, station, location, channel string, window waveform.TimeWindow) ([]*waveform.Trace, error) {
	name := fmt.Sprintf("%s.%s.%s.%s.csv", network, station, location, channel)
	path := filepath.Join(d.Dir, name)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(err).Component("localarchive").Context("file", path).Build()
	}
	defer f.Close() //nolint:errcheck

	trace, err := readTrace(f, network, station, location, channel)
	if err != nil {
		return nil, errors.New(err).Component("localarchive").Context("file", path).Build()
	}
	if trace == nil || trace.EndTime().Before(window.Start) || trace.StartTime.After(window.End) {
		return nil, nil
	}
	return []*waveform.Trace{trace}, nil
}

func readTrace(f *os.File, network, station, location, channel string) (*waveform.Trace, error) {
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	header := strings.Split(scanner.Text(), ",")
	if len(header) != 2 {
		return nil, fmt.Errorf("localarchive: malformed header %q", scanner.Text())
	}
	start, err := time.Parse(time.RFC3339Nano, header[0])
	if err != nil {
		return nil, err
	}
	freq, err := strconv.ParseFloat(header[1], 64)
	if err != nil {
		return nil, err
	}

	var samples []float64
	for scanner.Scan() {
		v, err := strconv.ParseFloat(strings.TrimSpace(scanner.Text()), 64)
		if err != nil {
			return nil, err
		}
		samples = append(samples, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &waveform.Trace{
		Network: network, Station: station, Location: location, Channel: channel,
		StartTime: start, Frequency: freq, Samples: samples,
	}, nil
}

// NullRecordStream always reports a channel as unavailable. Wiring it in
// disables cross-correlation and artificial-phase synthesis outright,
// degrading gracefully to a catalog-only relocation (absolute-time
// differences alone), since every waveform fetch resolves to the same
// "null" outcome a genuinely missing record would produce.
type NullRecordStream struct{}

func (NullRecordStream) Fetch(network, station, location, channel string, window waveform.TimeWindow) ([]*waveform.Trace, error) {
	return nil, nil
}
