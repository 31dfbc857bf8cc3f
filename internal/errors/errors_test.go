package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAutoDetectsComponentAndCategory(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("waveform fetch failed")
	ee := New(err).Category(CategoryWaveform).Build()

	assert.Equal(t, "waveform fetch failed", ee.Err.Error())
	assert.Equal(t, CategoryWaveform, ee.Category)
	assert.NotEmpty(t, ee.GetComponent())
}

func TestBuildDefaultsToGenericCategory(t *testing.T) {
	t.Parallel()

	ee := New(fmt.Errorf("boom")).Build()
	assert.Equal(t, CategoryGeneric, ee.Category)
}

func TestContextRoundTrips(t *testing.T) {
	t.Parallel()

	ee := Newf("bad pair %d-%d", 1, 2).
		Category(CategoryNeighbor).
		Context("event1", 1).
		Context("event2", 2).
		Build()

	ctx := ee.GetContext()
	assert.Equal(t, 1, ctx["event1"])
	assert.Equal(t, 2, ctx["event2"])
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := New(NewStd("missing station")).Category(CategoryCatalog).Build()
	assert.True(t, IsCategory(err, CategoryCatalog))
	assert.False(t, IsCategory(err, CategoryXCorr))
}
