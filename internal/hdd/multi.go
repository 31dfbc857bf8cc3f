package hdd

import (
	"bytes"
	"context"
	"os"

	"github.com/quakego/hdd/internal/ddfile"
	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/logging"
	"github.com/quakego/hdd/internal/neighbor"
	"github.com/quakego/hdd/internal/orchestrator"
	"github.com/quakego/hdd/internal/reloc"
	"github.com/quakego/hdd/internal/store"
	"github.com/quakego/hdd/internal/xcorr"
)

// RelocateMulti runs the full multi-event data flow:
// phase-type filter, optional artificial-phase synthesis, neighbor
// selection, DD file generation, the ph2dt/hypoDD orchestration, and
// result loading. It returns a new catalog with relocated events merged
// in; events ph2dt/hypoDD did not relocate are returned unchanged.
func (e *Engine) RelocateMulti(ctx context.Context, seed *geo.Catalog) (*geo.Catalog, error) {
	c := &counters{}
	c.NumEvents = len(seed.EventIDs())

	filtered, err := seed.FilterOutPhases(map[geo.PhaseType]bool{geo.PhaseP: true, geo.PhaseS: true})
	if err != nil {
		return nil, errors.New(err).Component("hdd").Build()
	}

	if n := e.synthesizeMissingPhases(filtered); n > 0 {
		logging.Info("synthesized artificial phases", "count", n)
	}

	neighbors, skipped := neighbor.SelectAll(filtered, e.Settings.Neighbor)
	if skipped > 0 {
		logging.Warn("events skipped during neighbor selection", "count", skipped)
	}

	dts := e.crossCorrelatePairs(filtered, neighbors, c)

	run, err := orchestrator.NewRun(e.Settings, e.Metrics.DiskManager)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := run.Cleanup(); cerr != nil {
			logging.Warn("failed to clean up run working directory", "run_id", run.ID, "error", cerr.Error())
		}
	}()

	if err := e.stageCatalogFiles(run, filtered, neighbors, dts); err != nil {
		return nil, err
	}

	if err := orchestrator.PreparePh2dt(run); err != nil {
		return nil, err
	}
	if _, err := orchestrator.RunPh2dt(ctx, run); err != nil {
		return nil, err
	}

	if err := orchestrator.PrepareHypoDD(run, len(neighbors) > 0, len(dts) > 0); err != nil {
		return nil, err
	}

	_, runErr := orchestrator.RunHypoDD(ctx, run)

	relocated, loadErr := loadRelocationResult(filtered, run)
	finalErr := runErr
	if finalErr == nil {
		finalErr = loadErr
	}

	c.NumRelocated = countRelocated(filtered)
	if e.Store != nil {
		if serr := e.Store.StartRun(run.ID, store.ModeMulti, run.Dir); serr == nil {
			_ = e.Store.FinishRun(run.ID, finalErr == nil, finalErr, e.Settings.Retain, c.Counters)
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return relocated, loadErr
}

// stageCatalogFiles writes station.dat, event.dat, phase.dat (ph2dt's
// input), dt.ct, and (when any cross-correlation measurements were
// accepted) dt.cc into run's working directory.
func (e *Engine) stageCatalogFiles(run *orchestrator.Run, catalog *geo.Catalog, neighbors map[int][]*geo.Event, dts []xcorr.DifferentialTime) error {
	var stations, events, phases, dtct bytes.Buffer
	if err := ddfile.WriteStations(&stations, catalog); err != nil {
		return errors.New(err).Component("hdd").Build()
	}
	if err := ddfile.WriteEvents(&events, catalog); err != nil {
		return errors.New(err).Component("hdd").Build()
	}
	if _, err := ddfile.WritePhases(&phases, catalog); err != nil {
		return errors.New(err).Component("hdd").Build()
	}
	if _, err := ddfile.WriteDtCt(&dtct, catalog, neighbors, e.Settings.Neighbor); err != nil {
		return errors.New(err).Component("hdd").Build()
	}

	if err := run.StageFile("station.dat", stations.Bytes()); err != nil {
		return err
	}
	if err := run.StageFile("event.dat", events.Bytes()); err != nil {
		return err
	}
	if err := run.StageFile("phase.dat", phases.Bytes()); err != nil {
		return err
	}
	if err := run.StageFile("dt.ct", dtct.Bytes()); err != nil {
		return err
	}

	if len(dts) > 0 {
		var dtcc bytes.Buffer
		if err := ddfile.WriteDtCc(&dtcc, dts); err != nil {
			return errors.New(err).Component("hdd").Build()
		}
		if err := run.StageFile("dt.cc", dtcc.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// loadRelocationResult reads hypoDD.reloc/hypoDD.res from run's working
// directory and merges them onto catalog. A missing hypoDD.reloc is not an
// error: it means hypoDD produced no relocation for this run, and catalog
// is returned unchanged.
func loadRelocationResult(catalog *geo.Catalog, run *orchestrator.Run) (*geo.Catalog, error) {
	relocFile, err := os.Open(run.Path("hypoDD.reloc"))
	if err != nil {
		if os.IsNotExist(err) {
			return catalog, nil
		}
		return nil, errors.New(err).Component("hdd").Build()
	}
	defer relocFile.Close() //nolint:errcheck

	relocs, err := reloc.ParseReloc(relocFile)
	if err != nil {
		return nil, err
	}

	var res []reloc.ResRecord
	if resFile, err := os.Open(run.Path("hypoDD.res")); err == nil {
		defer resFile.Close() //nolint:errcheck
		res, err = reloc.ParseRes(resFile)
		if err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.New(err).Component("hdd").Build()
	}

	if err := reloc.Merge(catalog, relocs, res); err != nil {
		return nil, err
	}
	return catalog, nil
}

func countRelocated(catalog *geo.Catalog) int {
	n := 0
	for _, id := range catalog.EventIDs() {
		ev, _ := catalog.Event(id)
		if ev.Reloc != nil && ev.Reloc.IsRelocated {
			n++
		}
	}
	return n
}
