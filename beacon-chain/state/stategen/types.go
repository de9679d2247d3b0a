package stategen

import "context"

// Slot is a discrete time unit of the consensus protocol. It is an alias
// (not a distinct type) so that CachedState satisfies cache.HotState
// without a conversion at every cache call site.
type Slot = uint64

// Epoch is a fixed-size group of slots, aliased for the same reason as Slot.
type Epoch = uint64

// Root is a 32 byte Merkle root, used both for block roots and state roots.
type Root = [32]byte

// Block is the subset of beacon-block fields the regenerator needs. It is
// opaque to the regenerator beyond these fields; everything else about a
// block (operations, signatures, payloads) belongs to the state-transition
// function.
type Block struct {
	Root       Root // Root is the block's own hash tree root (the "blockRoot").
	ParentRoot Root
	StateRoot  Root
	Slot       Slot
}

// CachedState is a fully materialized beacon state plus whatever auxiliary
// indices the surrounding system precomputes for it (validator shuffling,
// committee caches, balance aggregates). It is conceptually immutable once
// published into a cache: every mutating operation below returns a new
// value rather than mutating the receiver.
type CachedState interface {
	StateRoot() Root
	Slot() Slot
	// Copy returns a value that shares no mutable state with the receiver.
	// Callers that intend to hand a state to a cache or to another
	// goroutine must go through Copy so that cache entries are never
	// aliased by an in-flight mutation.
	Copy() CachedState
}

// BlockSource is a read-only view over fork-choice and the block database.
// It is an external collaborator: the regenerator never mutates the block
// tree, only walks it.
type BlockSource interface {
	// Block returns the block for blockRoot if it is in the non-pruned
	// fork-choice subtree. The second return value is false if the root is
	// unknown or has been pruned.
	Block(ctx context.Context, blockRoot Root) (*Block, bool, error)

	// Ancestors returns the chain of blocks from blockRoot down to (and
	// including) the first ancestor with Slot <= stopSlot, ordered from
	// blockRoot to that ancestor. The result is deterministic for a given
	// (blockRoot, stopSlot) pair at a given finalized anchor, and the call
	// may be repeated freely (restartable).
	Ancestors(ctx context.Context, blockRoot Root, stopSlot Slot) ([]*Block, error)

	// Finalized returns the current finalized checkpoint.
	Finalized(ctx context.Context) (epoch Epoch, blockRoot Root, slot Slot, err error)
}

// StateSource is a read-only view over the persistent, content-addressed
// state store (the cold-load path).
type StateSource interface {
	// LoadState returns the state for the given state root. It returns
	// ErrStateNotPersisted if the root is unknown to persistent storage.
	LoadState(ctx context.Context, stateRoot Root) (CachedState, error)
}

// Transitioner is the pure, deterministic state-transition engine.
// Implementations must not retain a reference to their inputs; every method
// returns a new CachedState.
type Transitioner interface {
	// ProcessSlots advances state to targetSlot by applying empty-slot
	// (and, when a slot crosses an epoch boundary, per-epoch) processing.
	// targetSlot must be >= state.Slot().
	ProcessSlots(ctx context.Context, state CachedState, targetSlot Slot) (CachedState, error)

	// ProcessBlock applies block to state. state.Slot() must already equal
	// block.Slot (the caller is responsible for calling ProcessSlots first).
	ProcessBlock(ctx context.Context, state CachedState, block *Block) (CachedState, error)
}
