package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, Validate(Defaults()))
}

func TestValidateRejectsEmptyWorkDir(t *testing.T) {
	t.Parallel()
	s := Defaults()
	s.WorkDir = ""
	assert.Error(t, Validate(s))
}

func TestValidateRejectsInvertedNeighborQuota(t *testing.T) {
	t.Parallel()
	s := Defaults()
	s.Neighbor.MinNumNeigh = s.Neighbor.MaxNumNeigh + 1
	assert.Error(t, Validate(s))
}

func TestValidateRejectsBadXCorrWindow(t *testing.T) {
	t.Parallel()
	s := Defaults()
	s.XCorr["P"] = PhaseXCorrConfig{StartOffset: 1.0, EndOffset: 0.5, MaxDelay: 0.3, MinCoef: 0.6}
	assert.Error(t, Validate(s))
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Neighbor.MaxNumNeigh, s.Neighbor.MaxNumNeigh)
}
