package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/quakego/hdd/internal/conf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("testing.(*T).Run"),
		goleak.IgnoreTopFunction("runtime.gopark"),
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
		goleak.IgnoreTopFunction("time.Sleep"),
	)
	os.Exit(m.Run())
}

func writeTempTemplate(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRenderControlFileOverwritesNamedLinesWithoutMarker(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tpl := writeTempTemplate(t, dir, "tpl.inp", []string{
		"* comment", "OLD_STATION", "* comment", "OLD_PHASE",
	})
	dst := filepath.Join(dir, "out.inp")

	err := renderControlFile(tpl, dst, []controlFileLine{
		{1, "station.dat"},
		{3, "phase.dat"},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "* comment\nstation.dat\n* comment\nphase.dat\n", string(got))
}

func TestRenderControlFileShiftsIndicesWhenHypoDD2MarkerPresent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tpl := writeTempTemplate(t, dir, "tpl.inp", []string{
		"hypoDD_2", "* comment", "OLD_EVENT", "* comment", "OLD_STATION",
	})
	dst := filepath.Join(dir, "out.inp")

	err := renderControlFile(tpl, dst, []controlFileLine{
		{1, "event.dat"}, // v1 index 1, shifted to 2 because of the marker
		{3, "station.dat"},
	})
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	lines := string(got)
	assert.Contains(t, lines, "event.dat")
	assert.Contains(t, lines, "station.dat")
	// unshifted line 1 (index 1) must be untouched, since the marker shifted
	// our override to index 2.
	assert.Contains(t, lines, "* comment")
}

func TestRenderControlFileErrorsWhenIndexOutOfRange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tpl := writeTempTemplate(t, dir, "tpl.inp", []string{"one line"})
	dst := filepath.Join(dir, "out.inp")

	err := renderControlFile(tpl, dst, []controlFileLine{{5, "x"}})
	assert.Error(t, err)
}

func TestPreparePh2dtRendersStationAndPhaseLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tpl := writeTempTemplate(t, dir, "ph2dt.inp.tpl", []string{
		"* station:", "OLD", "* phase:", "OLD",
	})

	settings := &conf.Settings{WorkDir: dir, Tools: conf.ToolSettings{Ph2dtTemplate: tpl}}
	run := &Run{ID: "r1", Dir: dir, settings: settings}

	require.NoError(t, PreparePh2dt(run))

	got, err := os.ReadFile(run.Path("ph2dt.inp"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "station.dat")
	assert.Contains(t, string(got), "phase.dat")
}

func TestPrepareHypoDDLeavesMissingDtFilesBlank(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	lines := make([]string, 18)
	for i := range lines {
		lines[i] = "X"
	}
	tpl := writeTempTemplate(t, dir, "hypoDD.inp.tpl", lines)

	settings := &conf.Settings{WorkDir: dir, Tools: conf.ToolSettings{HypoDDTemplate: tpl}}
	run := &Run{ID: "r1", Dir: dir, settings: settings}

	require.NoError(t, PrepareHypoDD(run, true, false))

	got, err := os.ReadFile(run.Path("hypoDD.inp"))
	require.NoError(t, err)
	rendered := string(got)
	assert.Contains(t, rendered, "dt.ct")
	assert.NotContains(t, rendered, "dt.cc")
}

// writeFakeBinary writes an executable shell script standing in for
// ph2dt/hypoDD: it prints to stdout and stderr, then exits with code.
func writeFakeBinary(t *testing.T, dir, name string, exitCode int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	script := fmt.Sprintf("#!/bin/sh\necho fake tool stdout\necho fake tool stderr >&2\nexit %d\n", exitCode)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunPh2dtDrainsOutputAndReportsExitCode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bin := writeFakeBinary(t, dir, "fake-ph2dt.sh", 0)

	settings := &conf.Settings{WorkDir: dir, Tools: conf.ToolSettings{Ph2dtBinary: bin}}
	run := &Run{ID: "r1", Dir: dir, settings: settings}

	result, err := RunPh2dt(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)

	logged, err := os.ReadFile(run.Path("ph2dt.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "fake tool stdout")
	assert.Contains(t, string(logged), "fake tool stderr")
}

func TestRunHypoDDReportsNonZeroExitWithoutError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bin := writeFakeBinary(t, dir, "fake-hypoDD.sh", 1)

	settings := &conf.Settings{WorkDir: dir, Tools: conf.ToolSettings{HypoDDBinary: bin}}
	run := &Run{ID: "r1", Dir: dir, settings: settings}

	result, err := RunHypoDD(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
}
