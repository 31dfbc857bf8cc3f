package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quakego/hdd/internal/catalogio"
	"github.com/quakego/hdd/internal/geo"
)

var singleFlags struct {
	stationFile string
	eventFile   string
	phaseFile   string
	waveformDir string
	outputFile  string

	newPhaseFile string
	originTime   string
	latitude     float64
	longitude    float64
	depth        float64
}

// singleCommand relocates one new origin against a pre-loaded background
// catalog.
func singleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "single",
		Short: "relocate one new origin against a background catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&singleFlags.stationFile, "stations", "", "path to the background stations.csv (required)")
	cmd.Flags().StringVar(&singleFlags.eventFile, "events", "", "path to the background events.csv (required)")
	cmd.Flags().StringVar(&singleFlags.phaseFile, "phases", "", "path to the background phases.csv (required)")
	cmd.Flags().StringVar(&singleFlags.waveformDir, "waveform-dir", "", "local archive directory of per-channel traces; omit to skip cross-correlation")
	cmd.Flags().StringVar(&singleFlags.outputFile, "output", "", "path to write the relocated new event (default stdout)")

	cmd.Flags().StringVar(&singleFlags.newPhaseFile, "new-phases", "", "path to the new origin's picks, phases.csv-shaped without an eventId column (required)")
	cmd.Flags().StringVar(&singleFlags.originTime, "origin-time", "", "new origin time, RFC3339 (required)")
	cmd.Flags().Float64Var(&singleFlags.latitude, "latitude", 0, "new origin latitude (required)")
	cmd.Flags().Float64Var(&singleFlags.longitude, "longitude", 0, "new origin longitude (required)")
	cmd.Flags().Float64Var(&singleFlags.depth, "depth", 0, "new origin depth, km (required)")

	for _, name := range []string{"stations", "events", "phases", "new-phases", "origin-time", "latitude", "longitude", "depth"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

func runSingle(ctx context.Context) error {
	background, err := catalogio.LoadCatalog(singleFlags.stationFile, singleFlags.eventFile, singleFlags.phaseFile)
	if err != nil {
		return fmt.Errorf("loading background catalog: %w", err)
	}

	newPhases, err := catalogio.LoadPhases(singleFlags.newPhaseFile)
	if err != nil {
		return fmt.Errorf("loading new origin's phases: %w", err)
	}

	origin, err := time.Parse(time.RFC3339, singleFlags.originTime)
	if err != nil {
		return fmt.Errorf("parsing --origin-time: %w", err)
	}
	newEvent := &geo.Event{
		OriginTime: origin, Latitude: singleFlags.latitude,
		Longitude: singleFlags.longitude, Depth: singleFlags.depth,
	}

	engine, closeStore, err := buildEngine(singleFlags.waveformDir)
	if err != nil {
		return err
	}
	defer closeStore()

	relocated, err := engine.RelocateSingle(ctx, background, newEvent, newPhases)
	if err != nil {
		return fmt.Errorf("relocating new origin: %w", err)
	}

	single := geo.NewCatalog()
	if err := single.AddEvent(relocated); err != nil {
		return err
	}
	return writeCatalog(single, singleFlags.outputFile)
}
