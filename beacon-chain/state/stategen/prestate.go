package stategen

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/core/helpers"
)

// GetPreState returns a state the given block can be applied to: the
// post-state of block's parent, with slot == parent.Slot and stateRoot ==
// the parent block's state root.
//
// Rather than always cold-loading the parent's state, it anchors the
// replay at the latest viable epoch: the greatest epoch boundary at or
// below the parent's slot whose covering ancestor block is still in the
// non-pruned fork-choice subtree. The checkpoint state for that anchor is
// (or can cheaply be made) available through the checkpoint cache, so the
// common case -- a block extending the current head -- replays only the
// blocks of the current epoch.
//
// GetPreState is not coalesced under its own key; it is composed entirely
// of coalesced primitives (GetCheckpointState, GetState), so concurrent
// siblings of the same parent share the expensive anchor materialization
// and repeat only the per-block replay tail.
func (r *Regenerator) GetPreState(ctx context.Context, block *Block) (CachedState, error) {
	ctx, span := trace.StartSpan(ctx, "stateGen.GetPreState")
	defer span.End()

	if block == nil {
		return nil, ErrUnknownBlock
	}
	parent, ok, err := r.blocks.Block(ctx, block.ParentRoot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnknownBlock
	}
	if block.Slot <= parent.Slot {
		return nil, ErrInvalidSlot
	}

	// The parent's post-state may already be hot, either donated by the
	// block processor or left behind by an earlier replay.
	if s := r.hot.Get(parent.StateRoot); s != nil {
		return s.(CachedState), nil
	}

	epoch := helpers.SlotToEpoch(parent.Slot)
	boundary := helpers.StartSlot(epoch)

	chain, err := r.blocks.Ancestors(ctx, parent.Root, boundary)
	if err != nil {
		return nil, errors.Wrap(err, "could not walk ancestors for pre state")
	}
	if len(chain) == 0 {
		return nil, ErrUnknownBlock
	}
	anchorBlock := chain[len(chain)-1]

	var anchor CachedState
	if anchorBlock.Slot <= boundary {
		anchor, err = r.GetCheckpointState(ctx, epoch, anchorBlock.Root)
	} else {
		// The chain bottomed out above the epoch boundary (the anchor
		// block's parent is outside the non-pruned subtree), so there is
		// no checkpoint to anchor on; start from the deepest reachable
		// block's own post-state instead.
		anchor, err = r.GetState(ctx, anchorBlock.StateRoot)
	}
	if err != nil {
		return nil, err
	}

	return r.replayChain(ctx, anchor, chain)
}

// replayChain applies every block above the chain's deepest entry to
// anchor, in chain order. chain is ordered from the newest block down to
// the anchor block, the way BlockSource.Ancestors returns it; the anchor
// block itself is never re-applied, since anchor already reflects it.
//
// Cancellation is observed between per-block steps: a replay abandoned
// mid-chain leaves no partial result in any cache.
func (r *Regenerator) replayChain(ctx context.Context, anchor CachedState, chain []*Block) (CachedState, error) {
	state := anchor
	for i := len(chain) - 2; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blk := chain[i]
		var err error
		state, err = r.processSlots(ctx, state, blk.Slot)
		if err != nil {
			return nil, err
		}
		state, err = r.processBlock(ctx, state, blk)
		if err != nil {
			return nil, err
		}
		// Intermediate post-block states are transient; only those on an
		// epoch boundary, or flagged by the block processor, earn a hot
		// cache slot.
		if helpers.IsEpochStart(state.Slot()) || r.takeInteresting(state.StateRoot()) {
			r.cacheHotState(state)
		}
	}
	return state, nil
}
