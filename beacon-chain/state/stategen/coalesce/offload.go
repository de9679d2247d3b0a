package coalesce

import (
	"context"
	"runtime"

	// automaxprocs sets GOMAXPROCS to match the container/cgroup CPU quota
	// on import, so the pool below is sized against what's actually
	// schedulable rather than the host's full core count.
	_ "go.uber.org/automaxprocs"
)

// Pool is a bounded pool used to run CPU-heavy Transitioner work (multi-slot
// or multi-epoch replays) off the caller's goroutine: these are CPU-bound
// and may be offloaded to a CPU pool when they exceed a configured work
// threshold, and otherwise run inline.
type Pool struct {
	sem chan struct{}
}

// NewPool returns a Pool that runs at most size submissions concurrently.
// size <= 0 defaults to runtime.GOMAXPROCS(0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Run executes fn on the pool, blocking until a slot is free or ctx is
// cancelled. This is itself a suspension point: a cancelled ctx returns
// before fn ever runs.
func (p *Pool) Run(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()
	return fn()
}
