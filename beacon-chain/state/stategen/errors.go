package stategen

import "errors"

// Sentinel errors returned by the regenerator's public operations, as
// package-level vars rather than ad hoc fmt.Errorf strings, so callers can
// errors.Is against them. A waiter that abandons a query via its context
// receives that context's error (context.Canceled or DeadlineExceeded);
// the underlying computation continues for any remaining waiters.
var (
	// ErrUnknownBlock is returned when fork-choice has no record of the
	// requested block (pruned or never seen).
	ErrUnknownBlock = errors.New("stategen: unknown block")

	// ErrInvalidSlot is returned when the requested slot is below the
	// block's own slot.
	ErrInvalidSlot = errors.New("stategen: requested slot below block slot")

	// ErrStateNotAvailable is returned when a state root is unknown to
	// persistent storage and not reachable by replay from any cached
	// ancestor.
	ErrStateNotAvailable = errors.New("stategen: state not available")

	// ErrStateNotPersisted is the error StateSource implementations must
	// return (possibly wrapped) when a state root is unknown to persistent
	// storage. The regenerator translates it to ErrStateNotAvailable at
	// its public surface.
	ErrStateNotPersisted = errors.New("stategen: state not persisted")

	// errStateRootMismatch is used internally by the donation hook to
	// reject a submitted state whose root doesn't match what the caller
	// claimed.
	errStateRootMismatch = errors.New("stategen: submitted state root mismatch")
)
