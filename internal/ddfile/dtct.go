package ddfile

import (
	"fmt"
	"io"
	"sort"

	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/logging"
	"github.com/quakego/hdd/internal/neighbor"
)

// WriteDtCt writes dt.ct: for every (reference, neighbor) pair, a
// "# id1 id2" header followed by "sta tt_ref tt_peer weight phase" lines
// for every station/phase the two events share, weight being the mean of
// both phases' catalog weights, trimmed to cfg.MaxDTperEvt via the same
// furthest-station drop neighbor selection applies. neighbors must already
// be catalog-mode-deduplicated (internal/neighbor.SelectAll). Observations
// with a negative travel time at either event are skipped with a warning.
func WriteDtCt(w io.Writer, catalog *geo.Catalog, neighbors map[int][]*geo.Event, cfg conf.NeighborSettings) (skipped int, err error) {
	refIDs := make([]int, 0, len(neighbors))
	for id := range neighbors {
		refIDs = append(refIDs, id)
	}
	sort.Ints(refIDs)

	for _, refID := range refIDs {
		ref, _ := catalog.Event(refID)
		for _, peer := range neighbors[refID] {
			if _, err = fmt.Fprintf(w, "#  %d  %d\n", ref.ID, peer.ID); err != nil {
				return skipped, err
			}

			stations := neighbor.SharedStations(catalog, ref, peer, cfg)
			for _, refPhase := range catalog.Phases(ref.ID) {
				if !stations[refPhase.StationID] {
					continue
				}
				peerPhase := catalog.PhaseByStationType(peer.ID, refPhase.StationID, refPhase.Type)
				if peerPhase == nil {
					continue
				}

				ttRef := refPhase.Time.Sub(ref.OriginTime).Seconds()
				ttPeer := peerPhase.Time.Sub(peer.OriginTime).Seconds()
				if ttRef < 0 || ttPeer < 0 {
					skipped++
					logging.Warn("skipping dt.ct observation with negative travel time",
						"event1", ref.ID, "event2", peer.ID, "station", refPhase.StationID.String())
					continue
				}

				weight := (refPhase.Weight + peerPhase.Weight) / 2
				if _, err = fmt.Fprintf(w, "%s  %.3f  %.3f  %.2f  %s\n",
					stationID(refPhase.StationID), ttRef, ttPeer, weight, string(refPhase.Type)); err != nil {
					return skipped, err
				}
			}
		}
	}
	return skipped, nil
}
