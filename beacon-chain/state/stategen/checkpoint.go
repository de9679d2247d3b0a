package stategen

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/core/helpers"
)

// GetCheckpointState returns the checkpoint state for (epoch, blockRoot):
// the state of blockRoot advanced to the first slot of epoch. It is
// backed by GetBlockSlotState for the cache-miss case and coalesced per
// (epoch, blockRoot) pair.
func (r *Regenerator) GetCheckpointState(ctx context.Context, epoch Epoch, blockRoot Root) (CachedState, error) {
	ctx, span := trace.StartSpan(ctx, "stateGen.GetCheckpointState")
	defer span.End()

	if s := r.checkpoint.Get(epoch, blockRoot); s != nil {
		return s.(CachedState), nil
	}

	v, err := r.checkpointGroup.Do(ctx, checkpointKey(epoch, blockRoot), func(workCtx context.Context) (interface{}, error) {
		if s := r.checkpoint.Get(epoch, blockRoot); s != nil {
			return s, nil
		}
		state, err := r.GetBlockSlotState(workCtx, blockRoot, helpers.StartSlot(epoch))
		if err != nil {
			return nil, err
		}
		r.cacheCheckpointState(epoch, blockRoot, state)
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(CachedState), nil
}
