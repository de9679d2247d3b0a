package stategen

import (
	"context"
	"encoding/hex"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/prysmaticlabs/beacon-stategen/shared/bytesutil"
)

// GetState returns the cached state for stateRoot. It checks the hot
// StateCache first; on a miss it coalesces concurrent callers for the same
// stateRoot onto a single call to StateSource.LoadState and seeds the hot
// cache with the result before returning, unless the loaded state's slot is
// behind the finalized slot.
func (r *Regenerator) GetState(ctx context.Context, stateRoot Root) (CachedState, error) {
	ctx, span := trace.StartSpan(ctx, "stateGen.GetState")
	defer span.End()

	if s := r.hot.Get(stateRoot); s != nil {
		return s.(CachedState), nil
	}

	v, err := r.stateGroup.Do(ctx, stateKey(stateRoot), func(workCtx context.Context) (interface{}, error) {
		if s := r.hot.Get(stateRoot); s != nil {
			return s, nil
		}
		coldLoadCount.Inc()
		state, err := r.states.LoadState(workCtx, stateRoot)
		if err != nil {
			if errors.Is(err, ErrStateNotPersisted) {
				return nil, ErrStateNotAvailable
			}
			return nil, errors.Wrap(err, "could not cold load state")
		}
		if state == nil {
			return nil, ErrStateNotAvailable
		}
		log.WithField("stateRoot", hex.EncodeToString(bytesutil.Trunc(stateRoot[:]))).Debug("Cold loaded state")
		r.cacheHotState(state)
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(CachedState), nil
}
