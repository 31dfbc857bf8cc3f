// Package orchestrator spawns the external ph2dt and hypoDD binaries,
// staging their inputs into a per-run working directory and templating
// their control files to point at those inputs.
package orchestrator

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/quakego/hdd/internal/conf"
	"github.com/quakego/hdd/internal/diskmanager"
	"github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/metrics"
)

// Run holds everything the orchestrator needs about one ph2dt/hypoDD
// invocation: its working directory and the settings driving it.
type Run struct {
	ID       string
	Dir      string
	settings *conf.Settings
	metrics  *metrics.DiskManagerMetrics
}

// estimatedRequiredBytes is a conservative per-run disk budget checked
// before staging inputs; DD files and logs for a few hundred events rarely
// exceed a few tens of megabytes, but waveform disk-cache growth during
// the same run can be large, so the preflight check errs generous.
const estimatedRequiredBytes = 256 * 1024 * 1024

// NewRun creates the multi-event run's working directory, <workdir>/catalog
//, after confirming there is enough
// free disk space to proceed (internal/diskmanager preflight).
func NewRun(settings *conf.Settings, m *metrics.DiskManagerMetrics) (*Run, error) {
	return newRunAt(settings, m, "catalog")
}

// NewSingleEventRun creates one step of a single-event run's working
// directory, <workdir>/<eventStamp>/step1 or step2, after confirming there
// is enough free disk space to proceed.
func NewSingleEventRun(settings *conf.Settings, m *metrics.DiskManagerMetrics, eventStamp, step string) (*Run, error) {
	return newRunAt(settings, m, filepath.Join(eventStamp, step))
}

// newRunAt creates the working directory settings.WorkDir/relDir, assigning
// the run a fresh id (used as the store.RunRecord primary key) distinct
// from its human-readable directory path.
func newRunAt(settings *conf.Settings, m *metrics.DiskManagerMetrics, relDir string) (*Run, error) {
	id := uuid.NewString()
	dir := filepath.Join(settings.WorkDir, relDir)

	if err := diskmanager.CheckPreflight(settings.WorkDir, estimatedRequiredBytes, m); err != nil {
		return nil, errors.New(err).Category(errors.CategoryExternalTool).
			Context("workdir", settings.WorkDir).Build()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.New(err).Category(errors.CategoryExternalTool).
			Context("workdir", dir).Build()
	}

	return &Run{ID: id, Dir: dir, settings: settings, metrics: m}, nil
}

// Path joins name onto the run's working directory.
func (r *Run) Path(name string) string {
	return filepath.Join(r.Dir, name)
}

// Cleanup removes the run's working directory unless settings.Retain is
// set.
func (r *Run) Cleanup() error {
	if r.settings.Retain {
		return nil
	}
	return os.RemoveAll(r.Dir)
}

// StageFile writes contents into the run's working directory under name,
// the way hypoDD/ph2dt expect their inputs alongside the control file.
func (r *Run) StageFile(name string, contents []byte) error {
	if err := os.WriteFile(r.Path(name), contents, 0o644); err != nil {
		return errors.New(err).Category(errors.CategoryExternalTool).
			Context("file", name).Build()
	}
	return nil
}
