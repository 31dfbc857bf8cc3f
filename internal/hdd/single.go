package hdd

import (
	"context"
	"fmt"
	"time"

	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/logging"
	"github.com/quakego/hdd/internal/neighbor"
	"github.com/quakego/hdd/internal/orchestrator"
	"github.com/quakego/hdd/internal/store"
	"github.com/quakego/hdd/internal/xcorr"
)

// RelocateSingle relocates one new origin against a pre-loaded background
// catalog. It runs the shared
// pipeline twice: step 1 without cross-correlation to get an initial
// refined hypocenter, step 2 with cross-correlation using that refined
// position. If step 2 fails, step 1's result is returned instead; if step 1
// also fails, the error is raised.
func (e *Engine) RelocateSingle(ctx context.Context, background *geo.Catalog, newEvent *geo.Event, newPhases []*geo.Phase) (*geo.Event, error) {
	combined, newID, err := buildSingleEventCatalog(background, newEvent, newPhases)
	if err != nil {
		return nil, err
	}

	stamp := eventStamp(newEvent)

	step1, err := e.runSingleStep(ctx, combined, newID, stamp, "step1", false)
	if err != nil {
		return nil, err
	}

	step2, err := e.runSingleStep(ctx, combined, newID, stamp, "step2", true)
	if err != nil {
		logging.Warn("single-event step 2 failed, falling back to step 1 result",
			"event_stamp", stamp, "error", err.Error())
		return step1, nil
	}
	return step2, nil
}

// buildSingleEventCatalog merges newEvent/newPhases into background under a
// fresh id, returning the combined catalog and the new event's id in it.
// Per geo.Catalog.Merge's contract, ids are reassigned; the new event is
// re-resolved by value rather than trusting newEvent.ID to survive the merge.
func buildSingleEventCatalog(background *geo.Catalog, newEvent *geo.Event, newPhases []*geo.Phase) (*geo.Catalog, int, error) {
	staging := geo.NewCatalog()
	for _, st := range background.Stations() {
		stCopy := *st
		if err := staging.AddStation(&stCopy); err != nil {
			return nil, 0, errors.New(err).Component("hdd").Build()
		}
	}
	evCopy := newEvent.Clone()
	if err := staging.AddEvent(evCopy); err != nil {
		return nil, 0, errors.New(err).Component("hdd").Build()
	}
	for _, p := range newPhases {
		if err := staging.AddPhase(evCopy.ID, p.Clone()); err != nil {
			return nil, 0, errors.New(err).Component("hdd").Build()
		}
	}

	combined, err := background.Merge(staging)
	if err != nil {
		return nil, 0, errors.New(err).Component("hdd").Build()
	}

	found, ok := combined.FindEventByValue(newEvent.OriginTime, newEvent.Latitude, newEvent.Longitude, time.Second)
	if !ok {
		return nil, 0, errors.Newf("hdd: could not re-resolve the new event after merging into the background catalog").
			Component("hdd").Build()
	}
	return combined, found.ID, nil
}

// eventStamp names a single-event run's working directory, OriginTime
// (compact UTC) plus latitude/longitude in millidegrees plus the wall-clock
// time the run started, disambiguating repeated runs for the same origin
//.
func eventStamp(ev *geo.Event) string {
	return fmt.Sprintf("%s_%d_%d_%d",
		ev.OriginTime.UTC().Format("20060102150405"),
		int(ev.Latitude*1000), int(ev.Longitude*1000), time.Now().UTC().Unix())
}

// runSingleStep selects neighbors for eventID, optionally cross-correlates
// against them, stages the DD files, and runs hypoDD in
// <workdir>/<eventStamp>/<step>. A missing hypoDD.reloc is not an error —
// it returns eventID's catalog entry unrelocated, matching multi-event
// mode's "no relocation" outcome.
func (e *Engine) runSingleStep(ctx context.Context, catalog *geo.Catalog, eventID int, stamp, step string, useXC bool) (*geo.Event, error) {
	ref, ok := catalog.Event(eventID)
	if !ok {
		return nil, errors.Newf("hdd: event %d not found in combined catalog", eventID).Component("hdd").Build()
	}

	candidates := make([]*geo.Event, 0, len(catalog.EventIDs())-1)
	for _, id := range catalog.EventIDs() {
		if id == eventID {
			continue
		}
		ev, _ := catalog.Event(id)
		candidates = append(candidates, ev)
	}

	selected, err := neighbor.SelectNeighbors(catalog, ref, candidates, e.Settings.Neighbor)
	if err != nil {
		return nil, err
	}
	neighbors := map[int][]*geo.Event{eventID: selected}

	var dts []xcorr.DifferentialTime
	if useXC {
		c := &counters{}
		dts = e.crossCorrelatePairs(catalog, neighbors, c)
	}

	run, err := orchestrator.NewSingleEventRun(e.Settings, e.Metrics.DiskManager, stamp, step)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := run.Cleanup(); cerr != nil {
			logging.Warn("failed to clean up single-event run working directory", "run_id", run.ID, "error", cerr.Error())
		}
	}()

	if err := e.stageCatalogFiles(run, catalog, neighbors, dts); err != nil {
		return nil, err
	}

	if err := orchestrator.PreparePh2dt(run); err != nil {
		return nil, err
	}
	if _, err := orchestrator.RunPh2dt(ctx, run); err != nil {
		return nil, err
	}

	if err := orchestrator.PrepareHypoDD(run, true, useXC && len(dts) > 0); err != nil {
		return nil, err
	}

	_, runErr := orchestrator.RunHypoDD(ctx, run)

	_, loadErr := loadRelocationResult(catalog, run)
	finalErr := runErr
	if finalErr == nil {
		finalErr = loadErr
	}

	if e.Store != nil {
		if serr := e.Store.StartRun(run.ID, store.ModeSingle, run.Dir); serr == nil {
			_ = e.Store.FinishRun(run.ID, finalErr == nil, finalErr, e.Settings.Retain, store.Counters{NumEvents: 1})
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	if loadErr != nil {
		return nil, loadErr
	}

	updated, _ := catalog.Event(eventID)
	return updated, nil
}
