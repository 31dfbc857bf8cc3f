package ddfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/quakego/hdd/internal/xcorr"
)

// WriteDtCc writes dt.cc: for every pair with at least one accepted
// cross-correlation measurement, a "# id1 id2 0.0" header followed by
// "sta dt weight phase" lines, weight = coefficient^2.
func WriteDtCc(w io.Writer, dts []xcorr.DifferentialTime) error {
	type pairKey struct{ ev1, ev2 int }
	grouped := make(map[pairKey][]xcorr.DifferentialTime)
	var order []pairKey

	for _, dt := range dts {
		k := pairKey{dt.Event1, dt.Event2}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], dt)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].ev1 != order[j].ev1 {
			return order[i].ev1 < order[j].ev1
		}
		return order[i].ev2 < order[j].ev2
	})

	for _, k := range order {
		if _, err := fmt.Fprintf(w, "#  %d  %d  0.0\n", k.ev1, k.ev2); err != nil {
			return err
		}
		for _, dt := range grouped[k] {
			if _, err := fmt.Fprintf(w, "%s  %.6f  %.4f  %s\n",
				stationID(dt.Station), dt.DT, dt.Weight, string(dt.Phase)); err != nil {
				return err
			}
		}
	}
	return nil
}
