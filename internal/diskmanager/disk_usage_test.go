package diskmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDetailedDiskUsageOnTempDir(t *testing.T) {
	t.Parallel()
	info, err := GetDetailedDiskUsage(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, info.TotalBytes, uint64(0))
	assert.GreaterOrEqual(t, info.TotalBytes, info.UsedBytes)
}

func TestCheckPreflightRejectsImpossibleRequirement(t *testing.T) {
	t.Parallel()
	err := CheckPreflight(t.TempDir(), ^uint64(0), nil)
	assert.Error(t, err)
}

func TestCheckPreflightAcceptsTrivialRequirement(t *testing.T) {
	t.Parallel()
	err := CheckPreflight(t.TempDir(), 1, nil)
	assert.NoError(t, err)
}
