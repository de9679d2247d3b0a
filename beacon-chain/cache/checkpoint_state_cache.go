package cache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultMaxCheckpointStates = 32

var (
	checkpointStateCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_checkpoint_state_cache_hit",
		Help: "The number of checkpoint state cache hits.",
	})
	checkpointStateCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_checkpoint_state_cache_miss",
		Help: "The number of checkpoint state cache misses.",
	})
	checkpointStateCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stategen_checkpoint_state_cache_size",
		Help: "The number of entries currently held in the checkpoint state cache.",
	})
)

// CheckpointKey identifies a checkpoint state: the state obtained by taking
// the state of blockRoot and advancing empty slots to epoch*SLOTS_PER_EPOCH.
type CheckpointKey struct {
	Epoch     uint64
	BlockRoot [32]byte
}

type checkpointEntry struct {
	state    HotState
	lastUsed uint64
}

// CheckpointStateCache is an in-memory mapping from (epoch, blockRoot) to
// the checkpoint state for that pair. When full, it evicts the entry with
// the smallest epoch first, ties broken by least-recently-used -- unlike
// StateCache, recency alone never decides eviction while a strictly-older
// entry exists.
type CheckpointStateCache struct {
	entries map[CheckpointKey]*checkpointEntry
	clock   uint64 // monotonically increasing logical clock for LRU tie-breaks
	maxSize int
	lock    sync.RWMutex
}

// NewCheckpointStateCache returns a CheckpointStateCache bounded to maxSize
// entries. maxSize <= 0 falls back to the documented default of 32.
func NewCheckpointStateCache(maxSize int) *CheckpointStateCache {
	if maxSize <= 0 {
		maxSize = defaultMaxCheckpointStates
	}
	return &CheckpointStateCache{
		entries: make(map[CheckpointKey]*checkpointEntry),
		maxSize: maxSize,
	}
}

// Put inserts state under (epoch, blockRoot). The caller must have already
// advanced state to the epoch boundary; CheckpointStateCache does not
// verify this (see stategen.Regenerator.GetCheckpointState, which owns that
// invariant).
func (c *CheckpointStateCache) Put(epoch uint64, blockRoot [32]byte, state HotState) {
	c.lock.Lock()
	defer c.lock.Unlock()

	key := CheckpointKey{Epoch: epoch, BlockRoot: blockRoot}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOneLocked()
	}
	c.clock++
	c.entries[key] = &checkpointEntry{state: state, lastUsed: c.clock}
	checkpointStateCacheSize.Set(float64(len(c.entries)))
}

// Get returns the cached checkpoint state for (epoch, blockRoot), or nil if
// absent.
func (c *CheckpointStateCache) Get(epoch uint64, blockRoot [32]byte) HotState {
	c.lock.Lock()
	defer c.lock.Unlock()

	key := CheckpointKey{Epoch: epoch, BlockRoot: blockRoot}
	e, ok := c.entries[key]
	if !ok {
		checkpointStateCacheMiss.Inc()
		return nil
	}
	c.clock++
	e.lastUsed = c.clock
	checkpointStateCacheHit.Inc()
	return e.state
}

// PruneFinalized removes every entry whose epoch is strictly less than
// finalizedEpoch-retention. retention is the configured
// checkpointRetentionEpochs; when retention >= finalizedEpoch nothing is
// pruned.
func (c *CheckpointStateCache) PruneFinalized(finalizedEpoch uint64, retention uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	threshold := int64(finalizedEpoch) - int64(retention)
	if threshold <= 0 {
		return
	}
	for key := range c.entries {
		if int64(key.Epoch) < threshold {
			delete(c.entries, key)
		}
	}
	checkpointStateCacheSize.Set(float64(len(c.entries)))
}

// Len returns the number of entries currently cached.
func (c *CheckpointStateCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

// evictOneLocked evicts the entry with the smallest epoch, breaking ties by
// least-recently-used. Callers must hold c.lock for writing.
func (c *CheckpointStateCache) evictOneLocked() {
	var victim CheckpointKey
	var victimEntry *checkpointEntry
	first := true
	for key, entry := range c.entries {
		if first {
			victim, victimEntry = key, entry
			first = false
			continue
		}
		if key.Epoch < victim.Epoch || (key.Epoch == victim.Epoch && entry.lastUsed < victimEntry.lastUsed) {
			victim, victimEntry = key, entry
		}
	}
	if !first {
		delete(c.entries, victim)
	}
}
