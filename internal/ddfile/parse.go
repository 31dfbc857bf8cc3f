package ddfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/quakego/hdd/internal/geo"
)

// ParseEvents reads event.dat's line format back into Events, the
// inverse of WriteEvents, used for the round-trip invariant.
func ParseEvents(r io.Reader) ([]*geo.Event, error) {
	var events []*geo.Event
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 10 {
			return nil, fmt.Errorf("ddfile: event.dat line has %d fields, want 10: %q", len(fields), line)
		}

		origin, err := parseOriginDateTime(fields[0], fields[1])
		if err != nil {
			return nil, err
		}

		lat, _ := strconv.ParseFloat(fields[2], 64)
		lon, _ := strconv.ParseFloat(fields[3], 64)
		depth, _ := strconv.ParseFloat(fields[4], 64)
		mag, _ := strconv.ParseFloat(fields[5], 64)
		eh, _ := strconv.ParseFloat(fields[6], 64)
		ev, _ := strconv.ParseFloat(fields[7], 64)
		rms, _ := strconv.ParseFloat(fields[8], 64)
		id, err := strconv.Atoi(fields[9])
		if err != nil {
			return nil, err
		}

		events = append(events, &geo.Event{
			ID: id, OriginTime: origin, Latitude: lat, Longitude: lon, Depth: depth,
			Magnitude: mag, HorizontalUncertainty: eh, VerticalUncertainty: ev, RMS: rms,
		})
	}
	return events, scanner.Err()
}

func parseOriginDateTime(date, clock string) (time.Time, error) {
	if len(date) != 8 || len(clock) != 8 {
		return time.Time{}, fmt.Errorf("ddfile: malformed date/time fields %q %q", date, clock)
	}
	year, _ := strconv.Atoi(date[0:4])
	month, _ := strconv.Atoi(date[4:6])
	day, _ := strconv.Atoi(date[6:8])
	hour, _ := strconv.Atoi(clock[0:2])
	minute, _ := strconv.Atoi(clock[2:4])
	second, _ := strconv.Atoi(clock[4:6])
	centi, _ := strconv.Atoi(clock[6:8])
	return time.Date(year, time.Month(month), day, hour, minute, second, centi*10_000_000, time.UTC), nil
}
