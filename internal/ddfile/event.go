package ddfile

import (
	"fmt"
	"io"

	"github.com/quakego/hdd/internal/geo"
)

// originDateTime renders an origin time as hypoDD's two date/time fields:
// YYYYMMDD and HHMMSSCC, the latter concatenating hour, minute, second, and
// centiseconds.
func originDateTime(ev *geo.Event) (date, time string) {
	t := ev.OriginTime.UTC()
	date = fmt.Sprintf("%04d%02d%02d", t.Year(), t.Month(), t.Day())
	centiseconds := t.Nanosecond() / 10_000_000
	time = fmt.Sprintf("%02d%02d%02d%02d", t.Hour(), t.Minute(), t.Second(), centiseconds)
	return
}

// WriteEvents writes one "date time lat lon depth mag eh ev rms id" line
// per event, in insertion order, for deterministic output.
func WriteEvents(w io.Writer, catalog *geo.Catalog) error {
	for _, ev := range catalog.EventsInInsertionOrder() {
		date, clock := originDateTime(ev)
		if _, err := fmt.Fprintf(w, "%s  %s  %.6f  %.6f  %.3f  %.2f  %.3f  %.3f  %.3f  %d\n",
			date, clock, ev.Latitude, ev.Longitude, ev.Depth, ev.Magnitude,
			ev.HorizontalUncertainty, ev.VerticalUncertainty, ev.RMS, ev.ID); err != nil {
			return err
		}
	}
	return nil
}
