package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComposite(t *testing.T, defaults ...float64) *CompositeState {
	t.Helper()
	master, err := NewValueModel(0, 100, 0, false)
	require.NoError(t, err)
	children := make([]*ValueModel, len(defaults))
	for i, d := range defaults {
		c, err := NewValueModel(0, 100, d, false)
		require.NoError(t, err)
		children[i] = c
	}
	return NewCompositeState(master, children)
}

func childValues(s *CompositeState) []float64 {
	out := make([]float64, len(s.Children()))
	for i, c := range s.Children() {
		out[i] = c.Current()
	}
	return out
}

func TestMasterStartsAtMean(t *testing.T) {
	s := newComposite(t, 90, 95, 100)
	assert.Equal(t, 95.0, s.Master().Current())
	assert.Equal(t, []float64{-5, 0, 5}, s.Offsets())
}

func TestMasterDeltaMovesEveryChannel(t *testing.T) {
	s := newComposite(t, 10, 20, 30)

	s.ApplyMasterDelta(15)

	assert.Equal(t, []float64{25, 35, 45}, childValues(s))
	assert.Equal(t, 35.0, s.Master().Current())
	assert.Equal(t, []float64{-10, 0, 10}, s.Offsets())
}

func TestMasterDeltaSaturatesEveryChannel(t *testing.T) {
	s := newComposite(t, 90, 95, 100)

	s.ApplyMasterDelta(15)

	// Every channel takes the full delta and clamps at its own limit.
	assert.Equal(t, []float64{100, 100, 100}, childValues(s))
	assert.Equal(t, 100.0, s.Master().Current())
}

func TestSaturatedChannelOffsetTruncates(t *testing.T) {
	s := newComposite(t, 50, 95)
	// master = 72.5, offsets = [-22.5, 22.5]

	s.ApplyMasterDelta(10)

	// The high channel hit its ceiling; its offset shrank. The low channel
	// kept pace.
	assert.Equal(t, 82.5, s.Master().Current())
	assert.Equal(t, []float64{60, 100}, childValues(s))
	assert.Equal(t, []float64{-22.5, 17.5}, s.Offsets())

	// Reversing does not restore the pre-saturation offset.
	s.ApplyMasterDelta(-10)
	assert.Equal(t, []float64{50, 90}, childValues(s))
	assert.Equal(t, []float64{-22.5, 17.5}, s.Offsets())
}

func TestSetMasterDrivesByDelta(t *testing.T) {
	s := newComposite(t, 40, 60)
	// master = 50

	s.SetMaster(70)

	assert.Equal(t, 70.0, s.Master().Current())
	assert.Equal(t, []float64{60, 80}, childValues(s))
}

func TestSetChildLeavesMasterAndSiblings(t *testing.T) {
	s := newComposite(t, 40, 60)

	s.SetChild(0, 10)

	assert.Equal(t, 50.0, s.Master().Current())
	assert.Equal(t, []float64{10, 60}, childValues(s))
	assert.Equal(t, []float64{-40, 10}, s.Offsets())

	// The new offset holds on the next master move.
	s.ApplyMasterDelta(5)
	assert.Equal(t, []float64{15, 65}, childValues(s))
}

func TestSyncChildrenPreservesOffsets(t *testing.T) {
	s := newComposite(t, 90, 95, 100)
	// offsets = [-5, 0, 5]

	// A remote master change arrives: the model is set directly, then the
	// coupling is reapplied with fixed offsets.
	s.Master().Set(80)
	s.SyncChildren()

	assert.Equal(t, []float64{75, 80, 85}, childValues(s))
	assert.Equal(t, []float64{-5, 0, 5}, s.Offsets())
}

func TestReanchorChild(t *testing.T) {
	s := newComposite(t, 40, 60)

	// A remote message addressed to channel 1 lands on its model.
	s.Children()[1].Set(90)
	s.ReanchorChild(1)

	assert.Equal(t, []float64{-10, 40}, s.Offsets())
	s.ApplyMasterDelta(5)
	assert.Equal(t, []float64{45, 95}, childValues(s))
}

func TestEmptyComposite(t *testing.T) {
	master, err := NewValueModel(0, 100, 0, false)
	require.NoError(t, err)
	s := NewCompositeState(master, nil)

	assert.Equal(t, 0.0, s.Master().Current())
	assert.Equal(t, 10.0, s.ApplyMasterDelta(10))
}
