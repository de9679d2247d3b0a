package stategen

import (
	"context"

	"go.opencensus.io/trace"

	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/core/helpers"
)

// GetBlockSlotState returns the state of blockRoot advanced to slot via
// empty-slot processing. slot must be >= the block's own slot; slot ==
// the block's own slot is answered directly by GetState on the block's
// StateRoot with no replay at all.
//
// Concurrent callers requesting the same (blockRoot, slot) pair share a
// single replay through blockSlotGroup. A successful result that lands on
// an epoch boundary is published into the checkpoint cache so that a
// later GetCheckpointState call for this (epoch, blockRoot) is a cache hit.
func (r *Regenerator) GetBlockSlotState(ctx context.Context, blockRoot Root, slot Slot) (CachedState, error) {
	ctx, span := trace.StartSpan(ctx, "stateGen.GetBlockSlotState")
	defer span.End()

	blk, ok, err := r.blocks.Block(ctx, blockRoot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownBlock
	}
	if slot < blk.Slot {
		return nil, ErrInvalidSlot
	}
	if slot == blk.Slot {
		return r.GetState(ctx, blk.StateRoot)
	}

	v, err := r.blockSlotGroup.Do(ctx, blockSlotKey(blockRoot, slot), func(workCtx context.Context) (interface{}, error) {
		anchor, err := r.GetState(workCtx, blk.StateRoot)
		if err != nil {
			return nil, err
		}
		advanced, err := r.processSlots(workCtx, anchor, slot)
		if err != nil {
			return nil, err
		}
		if helpers.IsEpochStart(advanced.Slot()) {
			r.cacheCheckpointState(helpers.SlotToEpoch(advanced.Slot()), blockRoot, advanced)
		}
		return advanced, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(CachedState), nil
}
