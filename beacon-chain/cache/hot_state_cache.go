// Package cache implements the regenerator's two in-memory caches: the hot
// StateCache keyed by state root, and the CheckpointStateCache keyed by
// (epoch, blockRoot). Both are safe for concurrent
// use by multiple readers and writers, following the same
// get/put-under-lock shape used throughout this package.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	mutexasserts "github.com/trailofbits/go-mutexasserts"
)

const defaultMaxHotStates = 32

var (
	hotStateCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_hot_state_cache_hit",
		Help: "The number of hot state cache hits.",
	})
	hotStateCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_hot_state_cache_miss",
		Help: "The number of hot state cache misses.",
	})
	hotStateCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stategen_hot_state_cache_size",
		Help: "The number of entries currently held in the hot state cache.",
	})
)

// HotState is the minimal shape StateCache needs from a cached state: a
// stable identity (its own state root) and a slot for pruning decisions.
// beacon-chain/state/stategen.CachedState satisfies this.
type HotState interface {
	StateRoot() [32]byte
	Slot() uint64
}

// StateCache is an in-memory mapping from state root to a ready-to-use
// cached state, bounded by count and evicted least-recently-used. get/put
// are O(1) expected, and prune is authoritative (no LRU tie-break).
type StateCache struct {
	lru  *lru.Cache
	lock sync.RWMutex
}

// NewStateCache returns a StateCache bounded to maxSize entries. maxSize
// <= 0 falls back to the default of 32 (N_hot's documented default).
func NewStateCache(maxSize int) *StateCache {
	if maxSize <= 0 {
		maxSize = defaultMaxHotStates
	}
	c, err := lru.New(maxSize)
	if err != nil {
		// lru.New only errors on a non-positive size, which is excluded above.
		panic(err)
	}
	return &StateCache{lru: c}
}

// Put inserts state under its own state root, evicting the
// least-recently-used entry if the cache is already at capacity.
func (c *StateCache) Put(state HotState) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.mustHoldWriteLock()
	c.lru.Add(state.StateRoot(), state)
	hotStateCacheSize.Set(float64(c.lru.Len()))
}

// mustHoldWriteLock is a development-time precondition check: every mutating
// method below assumes the caller already holds c.lock for writing.
func (c *StateCache) mustHoldWriteLock() {
	if !mutexasserts.RWMutexLocked(&c.lock) {
		panic("stategen/cache: StateCache mutated without holding the write lock")
	}
}

// Get returns the cached state for stateRoot, or nil if absent. A
// successful Get counts as a use for LRU purposes.
func (c *StateCache) Get(stateRoot [32]byte) HotState {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.lru.Get(stateRoot)
	if !ok {
		hotStateCacheMiss.Inc()
		return nil
	}
	hotStateCacheHit.Inc()
	return v.(HotState)
}

// Delete removes stateRoot from the cache, if present.
func (c *StateCache) Delete(stateRoot [32]byte) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.mustHoldWriteLock()
	c.lru.Remove(stateRoot)
	hotStateCacheSize.Set(float64(c.lru.Len()))
}

// Prune removes every entry whose slot is strictly less than finalizedSlot.
// Unlike eviction, pruning is authoritative: it ignores recency entirely.
func (c *StateCache) Prune(finalizedSlot uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.mustHoldWriteLock()
	for _, k := range c.lru.Keys() {
		v, ok := c.lru.Peek(k)
		if !ok {
			continue
		}
		if v.(HotState).Slot() < finalizedSlot {
			c.lru.Remove(k)
		}
	}
	hotStateCacheSize.Set(float64(c.lru.Len()))
}

// Len returns the number of entries currently cached.
func (c *StateCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.lru.Len()
}
