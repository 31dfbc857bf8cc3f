package xcorr

import (
	"time"

	"github.com/quakego/hdd/internal/geo"
)

// PhaseWindowConfig is the asymmetric window policy for one phase type
//. It mirrors conf.PhaseXCorrConfig
// without importing internal/conf, keeping this package's dependency
// surface limited to geo.
type PhaseWindowConfig struct {
	StartOffset float64
	EndOffset   float64
	MaxDelay    float64
	MinCoef     float64
}

// ShortWindow returns [pick+startOffset, pick+endOffset].
func (c PhaseWindowConfig) ShortWindow(pick time.Time) (start, end time.Time) {
	return pick.Add(secs(c.StartOffset)), pick.Add(secs(c.EndOffset))
}

// LongWindow returns the short window extended by +-maxDelay.
func (c PhaseWindowConfig) LongWindow(pick time.Time) (start, end time.Time) {
	s, e := c.ShortWindow(pick)
	return s.Add(-secs(c.MaxDelay)), e.Add(secs(c.MaxDelay))
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Pairing names which of the two phases supplies the short (trusted)
// trace for one attempted correlation.
type Pairing struct {
	ShortIsPhase1 bool
}

// PairingPolicy returns the pairings to attempt for a phase pair, under a
// manual-pick-aware rule: when exactly one pick is manual, only that
// phase's trace is used as the short window; when both are manual or both
// automatic, both pairings are attempted and the caller
// keeps whichever yields the higher coefficient.
func PairingPolicy(p1, p2 *geo.Phase) []Pairing {
	if p1.IsManual == p2.IsManual {
		return []Pairing{{ShortIsPhase1: true}, {ShortIsPhase1: false}}
	}
	return []Pairing{{ShortIsPhase1: p1.IsManual}}
}
