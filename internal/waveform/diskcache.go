package waveform

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/quakego/hdd/internal/errors"
)

// recordHeaderSize is the header allowance added to a trace's sample payload
// when sizing a disk-cache record; the fixed fields written ahead of the
// payload take 56 bytes of it.
const recordHeaderSize = 64

const (
	minRecordLength = 128
	maxRecordLength = 1 << 20
)

// recordLength returns the next power of two >= payloadBytes+recordHeaderSize,
// clamped to [minRecordLength, maxRecordLength].
func recordLength(payloadBytes int) int {
	n := payloadBytes + recordHeaderSize
	size := minRecordLength
	for size < n && size < maxRecordLength {
		size *= 2
	}
	if size < minRecordLength {
		size = minRecordLength
	}
	if size > maxRecordLength {
		size = maxRecordLength
	}
	return size
}

// writeDiskCache persists t to <dir>/<fingerprint>.mseed as a fixed-length
// record: a header (network, station, location, channel, start time,
// frequency, sample count) followed by the float64 samples, padded to the
// computed record length. There is no mini-SEED codec anywhere in this
// codebase's dependency pool, so this uses a self-contained binary framing
// instead of emulating SEED blockettes.
func writeDiskCache(dir, fingerprint string, t *Trace) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(fmt.Errorf("waveform: creating disk cache dir: %w", err)).
			Component("waveform").Category(errors.CategoryFileIO).Build()
	}

	path := filepath.Join(dir, fingerprint+".mseed")
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.New(fmt.Errorf("waveform: creating disk cache file: %w", err)).
			Component("waveform").Category(errors.CategoryFileIO).Build()
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	payloadBytes := len(t.Samples) * 8
	total := recordLength(payloadBytes)

	writeFixedString(w, t.Network, 8)
	writeFixedString(w, t.Station, 8)
	writeFixedString(w, t.Location, 8)
	writeFixedString(w, t.Channel, 8)
	binary.Write(w, binary.BigEndian, t.StartTime.UTC().UnixNano())
	binary.Write(w, binary.BigEndian, t.Frequency)
	binary.Write(w, binary.BigEndian, int64(len(t.Samples)))

	for _, s := range t.Samples {
		binary.Write(w, binary.BigEndian, math.Float64bits(s))
	}

	written := 4*8 + 3*8 + payloadBytes // four 8-byte strings, start time, frequency, sample count
	if pad := total - written; pad > 0 {
		w.Write(make([]byte, pad))
	}

	if err := w.Flush(); err != nil {
		return errors.New(fmt.Errorf("waveform: flushing disk cache file: %w", err)).
			Component("waveform").Category(errors.CategoryFileIO).Build()
	}
	if err := f.Close(); err != nil {
		return errors.New(fmt.Errorf("waveform: closing disk cache file: %w", err)).
			Component("waveform").Category(errors.CategoryFileIO).Build()
	}
	return os.Rename(tmpPath, path)
}

// readDiskCache reads a record written by writeDiskCache. Any parse error
// is returned so the caller can fall back to a record-stream fetch
//.
func readDiskCache(dir, fingerprint string) (*Trace, error) {
	path := filepath.Join(dir, fingerprint+".mseed")
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	network, err := readFixedString(r, 8)
	if err != nil {
		return nil, err
	}
	station, err := readFixedString(r, 8)
	if err != nil {
		return nil, err
	}
	location, err := readFixedString(r, 8)
	if err != nil {
		return nil, err
	}
	channel, err := readFixedString(r, 8)
	if err != nil {
		return nil, err
	}

	var startNano int64
	var freq float64
	var n int64
	if err := binary.Read(r, binary.BigEndian, &startNano); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &freq); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	if n < 0 || n > 1<<30 {
		return nil, fmt.Errorf("waveform: disk cache record has implausible sample count %d", n)
	}

	samples := make([]float64, n)
	for i := range samples {
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		samples[i] = math.Float64frombits(bits)
	}

	return &Trace{
		Network:   network,
		Station:   station,
		Location:  location,
		Channel:   channel,
		StartTime: time.Unix(0, startNano).UTC(),
		Frequency: freq,
		Samples:   samples,
	}, nil
}

func writeFixedString(w io.Writer, s string, n int) {
	b := make([]byte, n)
	copy(b, s)
	w.Write(b)
}

func readFixedString(r io.Reader, n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end]), nil
}
