package waveform

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02T15:04:05.000000Z"

// Fingerprint uniquely identifies a waveform request by its stream
// coordinates and requested time window.
func Fingerprint(net, sta, loc, chan_ string, start, end time.Time) string {
	return fmt.Sprintf("%s.%s.%s.%s_%s_%s",
		net, sta, loc, chan_,
		start.UTC().Format(isoLayout),
		end.UTC().Format(isoLayout))
}
