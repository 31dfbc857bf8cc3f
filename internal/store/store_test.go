package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStartRunInsertsRowInProgress(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	require.NoError(t, s.StartRun("run-1", ModeMulti, "/tmp/run-1"))

	var rec RunRecord
	require.NoError(t, s.db.First(&rec, "id = ?", "run-1").Error)
	assert.Equal(t, ModeMulti, rec.Mode)
	assert.False(t, rec.Succeeded)
	assert.Nil(t, rec.FinishedAt)
}

func TestFinishRunRecordsCountersAndSuccess(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-2", ModeSingle, "/tmp/run-2"))

	counters := Counters{XCorrAttempts: 10, XCorrPerformed: 8, XCorrAccepted: 6, LowSNRRejections: 1, UnavailableWaveforms: 1, NumEvents: 50, NumRelocated: 47}
	require.NoError(t, s.FinishRun("run-2", true, nil, false, counters))

	var rec RunRecord
	require.NoError(t, s.db.First(&rec, "id = ?", "run-2").Error)
	assert.True(t, rec.Succeeded)
	require.NotNil(t, rec.FinishedAt)
	assert.Equal(t, 6, rec.XCorrAccepted)
	assert.Equal(t, 47, rec.NumRelocated)
	assert.Empty(t, rec.Error)
}

func TestFinishRunRecordsFailureMessage(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	require.NoError(t, s.StartRun("run-3", ModeMulti, "/tmp/run-3"))

	require.NoError(t, s.FinishRun("run-3", false, errors.New("hypoDD exited non-zero"), false, Counters{}))

	var rec RunRecord
	require.NoError(t, s.db.First(&rec, "id = ?", "run-3").Error)
	assert.False(t, rec.Succeeded)
	assert.Equal(t, "hypoDD exited non-zero", rec.Error)
}
