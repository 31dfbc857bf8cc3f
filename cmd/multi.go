package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quakego/hdd/internal/catalogio"
	"github.com/quakego/hdd/internal/ddfile"
	"github.com/quakego/hdd/internal/geo"
	"github.com/quakego/hdd/internal/hdd"
	"github.com/quakego/hdd/internal/localarchive"
	"github.com/quakego/hdd/internal/metrics"
	"github.com/quakego/hdd/internal/store"
	"github.com/quakego/hdd/internal/waveform"
)

var multiFlags struct {
	stationFile string
	eventFile   string
	phaseFile   string
	waveformDir string
	outputFile  string
}

// multiCommand relocates an entire seed catalog at once ("multi-event mode").
func multiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "multi",
		Short: "relocate every event in a seed catalog together",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMulti(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&multiFlags.stationFile, "stations", "", "path to stations.csv (required)")
	cmd.Flags().StringVar(&multiFlags.eventFile, "events", "", "path to events.csv (required)")
	cmd.Flags().StringVar(&multiFlags.phaseFile, "phases", "", "path to phases.csv (required)")
	cmd.Flags().StringVar(&multiFlags.waveformDir, "waveform-dir", "", "local archive directory of per-channel traces; omit to skip cross-correlation and synthesis")
	cmd.Flags().StringVar(&multiFlags.outputFile, "output", "", "path to write the relocated event.dat-style catalog (default stdout)")

	for _, name := range []string{"stations", "events", "phases"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	return cmd
}

func runMulti(ctx context.Context) error {
	seed, err := catalogio.LoadCatalog(multiFlags.stationFile, multiFlags.eventFile, multiFlags.phaseFile)
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}

	engine, closeStore, err := buildEngine(multiFlags.waveformDir)
	if err != nil {
		return err
	}
	defer closeStore()

	relocated, err := engine.RelocateMulti(ctx, seed)
	if err != nil {
		return fmt.Errorf("relocating catalog: %w", err)
	}

	return writeCatalog(relocated, multiFlags.outputFile)
}

// buildEngine wires an hdd.Engine from the process-wide settings: metrics,
// the waveform loader (backed by a local archive when one is configured,
// falling back to localarchive.NullRecordStream -- degraded to a
// catalog-only relocation -- when not), and the run-record store.
func buildEngine(waveformDir string) (*hdd.Engine, func(), error) {
	m, err := metrics.NewMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("initializing metrics: %w", err)
	}

	var stream waveform.RecordStream = localarchive.NullRecordStream{}
	if waveformDir != "" {
		stream = localarchive.DirRecordStream{Dir: waveformDir}
	}
	loader := waveform.NewLoader(localarchive.VerticalInventory{}, stream, m.Waveform,
		settings.Waveform.DiskCacheDir, settings.Waveform.UseDiskCache)

	var st *store.Store
	closeStore := func() {}
	if settings.StorePath != "" {
		st, err = store.Open(settings.StorePath, settings.Debug)
		if err != nil {
			return nil, nil, fmt.Errorf("opening run store: %w", err)
		}
		closeStore = func() { _ = st.Close() }
	}

	return hdd.New(settings, loader, m, st), closeStore, nil
}

// writeCatalog writes the relocated catalog's events in event.dat format
// (the same format internal/ddfile stages for hypoDD), to outputFile or
// stdout when outputFile is empty.
func writeCatalog(catalog *geo.Catalog, outputFile string) error {
	w := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	return ddfile.WriteEvents(w, catalog)
}
