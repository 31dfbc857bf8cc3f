package logging

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakego/hdd/internal/conf"
)

func TestInitSetsDefaultLogger(t *testing.T) {
	Init()
	assert.NotNil(t, Structured())
	assert.NotNil(t, HumanReadable())
}

func TestSetOutputRedirectsWrites(t *testing.T) {
	Init()
	var structuredBuf, humanBuf bytes.Buffer
	SetOutput(&structuredBuf, &humanBuf)
	SetLevel(slog.LevelDebug)

	Structured().Info("structured message")
	HumanReadable().Warn("human message")

	assert.Contains(t, structuredBuf.String(), "structured message")
	assert.Contains(t, humanBuf.String(), "human message")
}

func TestForServiceAddsServiceAttribute(t *testing.T) {
	Init()
	var buf bytes.Buffer
	SetOutput(&buf, &bytes.Buffer{})

	logger := ForService("waveform")
	require.NotNil(t, logger)
	logger.Info("fetched trace")

	assert.Contains(t, buf.String(), `"service":"waveform"`)
}

func TestNewFileLoggerWritesJSONToRotatedFile(t *testing.T) {
	conf.SetSetting(conf.Defaults())
	dir := t.TempDir()
	path := filepath.Join(dir, "hdd.log")

	logger, closeFunc, err := NewFileLogger(path, "orchestrator", slog.LevelInfo)
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("spawned ph2dt")
	require.NoError(t, closeFunc())

	assert.FileExists(t, path)
}
