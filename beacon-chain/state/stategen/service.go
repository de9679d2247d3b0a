// Package stategen implements the beacon state regenerator: given a block
// root and slot, it returns the beacon state valid at that point by
// checking a two-tier in-memory cache, falling back to the persistent
// snapshot store, and replaying the state-transition function over the
// intervening blocks and slots when neither cache nor store has an exact
// answer.
//
// A single Regenerator composes the caches, the external collaborators
// (BlockSource, StateSource, Transitioner), and one coalesce.Group per
// query namespace, and exposes GetState / GetBlockSlotState /
// GetCheckpointState / GetPreState as its query surface.
package stategen

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/cache"
	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/beacon-stategen/beacon-chain/state/stategen/coalesce"
	"github.com/prysmaticlabs/beacon-stategen/shared/bytesutil"
)

// Config holds the regenerator's tunables. Every field has a documented
// default so a zero-value Config is usable.
type Config struct {
	// MaxHotStates bounds the hot state cache. Default 32.
	MaxHotStates int
	// MaxCheckpointStates bounds the checkpoint state cache. Default 32.
	MaxCheckpointStates int
	// CheckpointRetentionEpochs is how many epochs behind the finalized
	// epoch a checkpoint state is still retained after a finalization
	// event. Default 2.
	CheckpointRetentionEpochs uint64
	// CPUOffloadThresholdSlots is the number of empty slots a ProcessSlots
	// call must cross before it is routed through the CPU offload pool
	// instead of running inline. Default 32 (one epoch).
	CPUOffloadThresholdSlots uint64
	// CPUOffloadPoolSize bounds the CPU offload pool. <= 0 defaults to
	// runtime.GOMAXPROCS(0).
	CPUOffloadPoolSize int
}

const (
	defaultCheckpointRetentionEpochs = 2
	defaultCPUOffloadThresholdSlots  = 32
)

func (c Config) withDefaults() Config {
	if c.CheckpointRetentionEpochs == 0 {
		c.CheckpointRetentionEpochs = defaultCheckpointRetentionEpochs
	}
	if c.CPUOffloadThresholdSlots == 0 {
		c.CPUOffloadThresholdSlots = defaultCPUOffloadThresholdSlots
	}
	return c
}

// finalizedCheckpoint is the regenerator's last-known finalized checkpoint,
// used to gate cache insertion and pruning. It is updated only by
// OnFinalized.
type finalizedCheckpoint struct {
	mu    sync.RWMutex
	epoch Epoch
	root  Root
	slot  Slot
}

func (f *finalizedCheckpoint) get() (Epoch, Root, Slot) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.epoch, f.root, f.slot
}

func (f *finalizedCheckpoint) set(epoch Epoch, root Root, slot Slot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch, f.root, f.slot = epoch, root, slot
}

// Regenerator is the beacon state regenerator. It is safe for concurrent
// use; all exported query methods may be called from multiple goroutines.
type Regenerator struct {
	cfg Config

	blocks       BlockSource
	states       StateSource
	transitioner Transitioner

	hot        *cache.StateCache
	checkpoint *cache.CheckpointStateCache

	// One coalesce.Group per query namespace, so a slow S: query for a
	// given key can never be confused with a B: or C: query that happens
	// to hash to the same string.
	stateGroup      *coalesce.Group
	blockSlotGroup  *coalesce.Group
	checkpointGroup *coalesce.Group

	offload *coalesce.Pool

	finalized finalizedCheckpoint

	// interesting holds state roots the block processor has flagged via
	// MarkInteresting: intermediate post-block states reached during a
	// pre-state replay are published into the hot cache when their root is
	// in this set, even off epoch boundaries.
	interestingMu sync.Mutex
	interesting   map[Root]struct{}
}

// New constructs a Regenerator. blocks, states, and transitioner must be
// non-nil; they are the regenerator's only connection to the rest of the
// consensus client.
func New(blocks BlockSource, states StateSource, transitioner Transitioner, cfg Config) *Regenerator {
	cfg = cfg.withDefaults()
	return &Regenerator{
		cfg:             cfg,
		blocks:          blocks,
		states:          states,
		transitioner:    transitioner,
		hot:             cache.NewStateCache(cfg.MaxHotStates),
		checkpoint:      cache.NewCheckpointStateCache(cfg.MaxCheckpointStates),
		stateGroup:      coalesce.NewGroup(),
		blockSlotGroup:  coalesce.NewGroup(),
		checkpointGroup: coalesce.NewGroup(),
		offload:         coalesce.NewPool(cfg.CPUOffloadPoolSize),
		interesting:     make(map[Root]struct{}),
	}
}

// OnFinalized must be called whenever fork-choice advances the finalized
// checkpoint. It prunes both caches: StateCache of every entry behind the
// newly finalized slot, and CheckpointStateCache of every entry older than
// CheckpointRetentionEpochs behind the newly finalized epoch. In-flight
// queries rooted below the new anchor are allowed to complete, but
// cacheHotState/cacheCheckpointState drop their results.
func (r *Regenerator) OnFinalized(_ context.Context, epoch Epoch, blockRoot Root, slot Slot) {
	r.finalized.set(epoch, blockRoot, slot)
	r.hot.Prune(slot)
	r.checkpoint.PruneFinalized(epoch, r.cfg.CheckpointRetentionEpochs)
	finalizationPruneCount.Inc()
	log.WithFields(logrus.Fields{
		"epoch":      epoch,
		"blockRoot":  hex.EncodeToString(bytesutil.Trunc(blockRoot[:])),
		"hotEntries": humanize.Comma(int64(r.hot.Len())),
		"cpEntries":  humanize.Comma(int64(r.checkpoint.Len())),
	}).Debug("Pruned caches after finalization")
}

// SubmitProcessedState is the donation hook by which a caller that has
// already computed a post-state for a block (typically the block
// processing pipeline, which produces one as a side effect of applying the
// block) can seed the hot cache without the regenerator redoing the work.
//
// blockRoot identifies the block the caller claims state is the post-state
// of; it is used to validate the donation against BlockSource before
// accepting it. A mismatch is rejected with a logged warning and is not an
// error the caller needs to handle.
func (r *Regenerator) SubmitProcessedState(ctx context.Context, blockRoot Root, state CachedState) {
	blk, ok, err := r.blocks.Block(ctx, blockRoot)
	if err != nil || !ok {
		log.WithField("blockRoot", hex.EncodeToString(bytesutil.Trunc(blockRoot[:]))).
			WithError(err).Warn("Dropping donated state, block not found")
		donationRejectedCount.Inc()
		return
	}
	if blk.StateRoot != state.StateRoot() {
		got, want := state.StateRoot(), blk.StateRoot
		log.WithError(errStateRootMismatch).WithFields(logrus.Fields{
			"blockRoot": hex.EncodeToString(bytesutil.Trunc(blockRoot[:])),
			"got":       hex.EncodeToString(bytesutil.Trunc(got[:])),
			"want":      hex.EncodeToString(bytesutil.Trunc(want[:])),
		}).Warn("Rejected donated state, state root mismatch")
		donationRejectedCount.Inc()
		return
	}
	r.cacheHotState(state)
	if helpers.IsEpochStart(state.Slot()) {
		r.cacheCheckpointState(helpers.SlotToEpoch(state.Slot()), blockRoot, state)
	}
}

// MarkInteresting flags stateRoot so that a pre-state replay passing
// through it publishes the intermediate post-block state into the hot
// cache even when it does not land on an epoch boundary. The flag is
// one-shot: it is consumed by the first replay that reaches it.
func (r *Regenerator) MarkInteresting(stateRoot Root) {
	r.interestingMu.Lock()
	defer r.interestingMu.Unlock()
	r.interesting[stateRoot] = struct{}{}
}

func (r *Regenerator) takeInteresting(stateRoot Root) bool {
	r.interestingMu.Lock()
	defer r.interestingMu.Unlock()
	if _, ok := r.interesting[stateRoot]; !ok {
		return false
	}
	delete(r.interesting, stateRoot)
	return true
}

// cacheHotState publishes state into the hot cache, unless the state is
// already behind the finalized anchor: in-flight work started before a
// finalization event completes for its waiters, but its result must not
// resurrect a pruned cache range.
func (r *Regenerator) cacheHotState(state CachedState) {
	_, _, finalizedSlot := r.finalized.get()
	if state.Slot() < finalizedSlot {
		return
	}
	r.hot.Put(state.Copy())
}

// cacheCheckpointState is the finalization-gated counterpart of
// cacheHotState for the checkpoint cache.
func (r *Regenerator) cacheCheckpointState(epoch Epoch, blockRoot Root, state CachedState) {
	finalizedEpoch, _, _ := r.finalized.get()
	if epoch < finalizedEpoch {
		return
	}
	r.checkpoint.Put(epoch, blockRoot, state.Copy())
}
