package stategen

import "context"

// processSlots advances state to targetSlot, routing the call through the
// CPU offload pool when the gap exceeds cfg.CPUOffloadThresholdSlots: replay
// is CPU-bound work and large replays should not monopolize the calling
// goroutine. A no-op (targetSlot == state.Slot()) returns state
// unchanged without touching the pool.
func (r *Regenerator) processSlots(ctx context.Context, state CachedState, targetSlot Slot) (CachedState, error) {
	if targetSlot == state.Slot() {
		return state, nil
	}
	if targetSlot < state.Slot() {
		return nil, ErrInvalidSlot
	}

	gap := targetSlot - state.Slot()
	run := func() (interface{}, error) {
		return r.transitioner.ProcessSlots(ctx, state, targetSlot)
	}

	var v interface{}
	var err error
	if gap > r.cfg.CPUOffloadThresholdSlots {
		v, err = r.offload.Run(ctx, run)
	} else {
		v, err = run()
	}
	if err != nil {
		return nil, err
	}
	replaySlotCount.Add(float64(gap))
	return v.(CachedState), nil
}

// processBlock applies block to state via the Transitioner. Unlike
// processSlots, a single block's operations are cheap relative to a
// multi-epoch slot replay, so this never goes through the offload pool.
func (r *Regenerator) processBlock(ctx context.Context, state CachedState, block *Block) (CachedState, error) {
	next, err := r.transitioner.ProcessBlock(ctx, state, block)
	if err != nil {
		return nil, err
	}
	replayBlockCount.Inc()
	return next, nil
}
