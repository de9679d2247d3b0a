// Package coalesce implements the regenerator's work queue / coalescer: a
// mapping from query key to a pending-result handle, so that concurrent
// callers for the same key share a single in-flight computation instead of
// each triggering an independent replay.
//
// It is built on golang.org/x/sync/singleflight, which already gives the
// "first arrival performs the work, later arrivals await it, completion
// broadcasts to all waiters exactly once" behavior this package needs.
// What singleflight doesn't give us is per-waiter cancellation: a caller
// whose context is cancelled must be able to walk away without disturbing
// peers still waiting on the same key. Group adds that on top by tracking
// a waiter refcount per key and deriving a shared work context that is
// only cancelled once the last waiter has gone.
package coalesce

import (
	"context"
	"sync"
	"time"

	"github.com/paulbellamy/ratecounter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

var (
	waitersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stategen_coalesce_waiters",
		Help: "Number of callers currently waiting on an in-flight coalesced computation.",
	})
	joinedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_coalesce_joined_total",
		Help: "Number of calls that joined an already in-flight computation instead of starting one.",
	})
	admittedRateGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stategen_coalesce_admitted_per_second",
		Help: "Rolling rate of newly-admitted (non-coalesced) work starts, per second.",
	})
)

// Work is the function a caller wants deduplicated by key. It receives a
// context that is cancelled once every waiter for this key has walked away
// (cooperative cancellation at the next suspension point); it is not
// cancelled merely because a single waiter left while others remain.
type Work func(workCtx context.Context) (interface{}, error)

type callState struct {
	ctx      context.Context
	cancel   context.CancelFunc
	refcount int
}

// Group is a one-in-flight-per-key registry for a single key namespace.
// The regenerator keeps one Group per namespace (S:, B:, C:) so that keys
// are disjoint across namespaces by construction rather than by string
// prefixing.
type Group struct {
	sf   singleflight.Group
	rate *ratecounter.RateCounter

	mu    sync.Mutex
	calls map[string]*callState
}

// ratecounterWindow is the rolling window used to compute the admitted
// work-start rate exposed via admittedRateGauge.
const ratecounterWindow = time.Second

// NewGroup returns an empty Group.
func NewGroup() *Group {
	return &Group{
		rate:  ratecounter.NewRateCounter(ratecounterWindow),
		calls: make(map[string]*callState),
	}
}

// Do runs work for key, or, if another caller is already running work for
// the same key, awaits that call's outcome instead. If ctx is cancelled
// before the outcome is available, Do returns ctx.Err() without affecting
// other waiters; the underlying work keeps running for their benefit.
func (g *Group) Do(ctx context.Context, key string, work Work) (interface{}, error) {
	g.mu.Lock()
	cs, joining := g.calls[key]
	if !joining {
		workCtx, cancel := context.WithCancel(context.Background())
		cs = &callState{ctx: workCtx, cancel: cancel}
		g.calls[key] = cs
		g.rate.Incr(1)
		admittedRateGauge.Set(float64(g.rate.Rate()))
	} else {
		joinedCounter.Inc()
	}
	cs.refcount++
	waitersGauge.Inc()
	// Registering with singleflight while g.mu is held means a caller that
	// found work in flight for key joins that run instead of starting another.
	resCh := g.sf.DoChan(key, func() (interface{}, error) {
		return work(cs.ctx)
	})
	g.mu.Unlock()

	defer func() {
		waitersGauge.Dec()
		g.mu.Lock()
		cs.refcount--
		if cs.refcount <= 0 {
			cs.cancel()
			delete(g.calls, key)
		}
		g.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resCh:
		return r.Val, r.Err
	}
}

