package xcorr

import (
	"math"
	"time"

	"github.com/quakego/hdd/internal/geo"
)

// DifferentialTime is an accepted cross-correlation measurement between
// two events' picks of the same phase type at a shared station
//.
type DifferentialTime struct {
	Station    geo.StationID
	Phase      geo.PhaseType
	Event1     int
	Event2     int
	DT         float64 // seconds
	Weight     float64 // c^2
	Coefficient float64
}

// BuildDifferentialTime converts an accepted Result into the
// differential-time record: (t_pick1-t_origin1) - (t_pick2-t_origin2) - lag,
// weighted by c^2.
func BuildDifferentialTime(station geo.StationID, phase geo.PhaseType,
	ev1 *geo.Event, pick1 time.Time, ev2 *geo.Event, pick2 time.Time,
	result Result) (DifferentialTime, bool) {
	if math.IsNaN(result.Coefficient) {
		return DifferentialTime{}, false
	}

	tt1 := pick1.Sub(ev1.OriginTime).Seconds()
	tt2 := pick2.Sub(ev2.OriginTime).Seconds()
	dt := tt1 - tt2 - result.LagSeconds

	return DifferentialTime{
		Station:     station,
		Phase:       phase,
		Event1:      ev1.ID,
		Event2:      ev2.ID,
		DT:          dt,
		Weight:      result.Coefficient * result.Coefficient,
		Coefficient: result.Coefficient,
	}, true
}
