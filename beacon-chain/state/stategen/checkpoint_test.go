package stategen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCheckpointState_MaterializesAndCaches(t *testing.T) {
	r, blocks, states, transitioner := newTestRegenerator()
	blockRoot, stateRoot := Root{1}, Root{2}
	blocks.Add(&Block{Root: blockRoot, Slot: 0, StateRoot: stateRoot})
	states.Put(&FakeState{Root: stateRoot, Slot_: 0})

	got, err := r.GetCheckpointState(context.Background(), 1, blockRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 32, got.Slot())
	assert.Equal(t, 1, transitioner.ProcessSlotsCalls)

	// A second call for the same (epoch, blockRoot) must be a cache hit:
	// no further replay.
	got2, err := r.GetCheckpointState(context.Background(), 1, blockRoot)
	require.NoError(t, err)
	assert.EqualValues(t, 32, got2.Slot())
	assert.Equal(t, 1, transitioner.ProcessSlotsCalls, "second call must hit the checkpoint cache")
}

func TestGetCheckpointState_DifferentEpochsDoNotCollide(t *testing.T) {
	r, blocks, states, _ := newTestRegenerator()
	blockRoot, stateRoot := Root{1}, Root{2}
	blocks.Add(&Block{Root: blockRoot, Slot: 0, StateRoot: stateRoot})
	states.Put(&FakeState{Root: stateRoot, Slot_: 0})

	_, err := r.GetCheckpointState(context.Background(), 1, blockRoot)
	require.NoError(t, err)

	assert.Nil(t, r.checkpoint.Get(2, blockRoot))
}
