package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"syscall"

	"golang.org/x/sync/errgroup"

	hdderrors "github.com/quakego/hdd/internal/errors"
	"github.com/quakego/hdd/internal/logging"
)

// ToolResult reports how a child process run finished. A non-zero exit is
// recorded here rather than returned as an error: the orchestrator does
// not raise on tool failure, leaving the downstream loader to report
// "no relocation" if the expected outputs are missing.
type ToolResult struct {
	ExitCode int
	LogPath  string
}

// RunPh2dt invokes ph2dt.Binary against ph2dt.inp inside run.Dir, logging
// combined stdout/stderr to ph2dt.log.
func RunPh2dt(ctx context.Context, run *Run) (ToolResult, error) {
	return runTool(ctx, run, run.settings.Tools.Ph2dtBinary, "ph2dt.inp", "ph2dt.log")
}

// RunHypoDD invokes hypoDD.Binary against hypoDD.inp inside run.Dir, logging
// combined stdout/stderr to hypoDD.log.
func RunHypoDD(ctx context.Context, run *Run) (ToolResult, error) {
	return runTool(ctx, run, run.settings.Tools.HypoDDBinary, "hypoDD.inp", "hypoDD.log")
}

// runTool spawns binary via the shell (so redirection in the control file,
// if any, behaves the way a manual invocation would) with its control file
// as the single argument, cwd set to run.Dir, and its combined output
// streamed into a lumberjack-backed log file under run.Dir.
func runTool(ctx context.Context, run *Run, binary, controlFile, logName string) (ToolResult, error) {
	fileLogger, closeLog, err := logging.NewFileLogger(run.Path(logName), binary, slog.LevelInfo)
	if err != nil {
		return ToolResult{}, hdderrors.New(err).Category(hdderrors.CategoryExternalTool).
			Context("binary", binary).Build()
	}
	defer closeLog() //nolint:errcheck

	shellCmd := fmt.Sprintf("%s %s", binary, controlFile)
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", shellCmd)
	cmd.Dir = run.Dir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ToolResult{}, hdderrors.New(err).Category(hdderrors.CategoryExternalTool).Build()
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ToolResult{}, hdderrors.New(err).Category(hdderrors.CategoryExternalTool).Build()
	}

	if err := cmd.Start(); err != nil {
		return ToolResult{}, hdderrors.New(err).Category(hdderrors.CategoryExternalTool).
			Context("binary", binary).Build()
	}

	var g errgroup.Group
	g.Go(func() error { return drainLines(stdout, fileLogger, "stdout") })
	g.Go(func() error { return drainLines(stderr, fileLogger, "stderr") })
	_ = g.Wait() // drain errors are logged inline, not fatal to the run

	waitErr := waitRetryingEINTR(cmd)

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return ToolResult{LogPath: run.Path(logName)}, hdderrors.New(waitErr).
				Category(hdderrors.CategoryExternalTool).Context("binary", binary).Build()
		}
	}

	if exitCode != 0 {
		logging.Warn("external tool exited non-zero", "binary", binary, "exit_code", exitCode, "log", run.Path(logName))
	}

	return ToolResult{ExitCode: exitCode, LogPath: run.Path(logName)}, nil
}

// waitRetryingEINTR waits for cmd, retrying Wait if it is interrupted by a
// signal rather than propagating EINTR as a hard failure.
func waitRetryingEINTR(cmd *exec.Cmd) error {
	for {
		err := cmd.Wait()
		if err == nil {
			return nil
		}
		if errors.Is(err, syscall.EINTR) {
			continue
		}
		return err
	}
}

// drainLines copies r into the file logger in chunks so a long-running
// tool's output doesn't block on an unread pipe. Read errors besides EOF
// are returned to the errgroup but don't fail the run: the pipe closing
// when the process exits is the expected termination path.
func drainLines(r io.Reader, logger interface {
	Info(msg string, args ...any)
}, stream string) error {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			logger.Info("tool output", "stream", stream, "data", string(chunk[:n]))
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

