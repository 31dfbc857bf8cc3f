package ddfile

import (
	"fmt"
	"io"

	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/logging"
)

// WritePhases writes phase.dat (ph2dt-only): a "# ..." event header
// followed by "sta tt weight phase" observation lines per event, skipping
// any phase whose travel time (pick - origin) is negative, with a warning
//.
func WritePhases(w io.Writer, catalog *geo.Catalog) (skipped int, err error) {
	for _, ev := range catalog.EventsInInsertionOrder() {
		t := ev.OriginTime.UTC()
		centiseconds := float64(t.Second()) + float64(t.Nanosecond())/1e9
		if _, err = fmt.Fprintf(w, "# %04d %02d %02d %02d %02d %05.2f  %.6f  %.6f  %.3f  %.2f  %.3f  %.3f  %.3f  %d\n",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), centiseconds,
			ev.Latitude, ev.Longitude, ev.Depth, ev.Magnitude,
			ev.HorizontalUncertainty, ev.VerticalUncertainty, ev.RMS, ev.ID); err != nil {
			return skipped, err
		}

		for _, p := range catalog.Phases(ev.ID) {
			tt := p.Time.Sub(ev.OriginTime).Seconds()
			if tt < 0 {
				skipped++
				logging.Warn("skipping phase with negative travel time",
					"event_id", ev.ID, "station", p.StationID.String(), "phase", string(p.Type), "travel_time", tt)
				continue
			}
			if _, err = fmt.Fprintf(w, "%s  %.3f  %.2f  %s\n", stationID(p.StationID), tt, p.Weight, string(p.Type)); err != nil {
				return skipped, err
			}
		}
	}
	return skipped, nil
}
