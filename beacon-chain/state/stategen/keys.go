package stategen

import (
	"encoding/hex"
	"strconv"
)

// Coalesce keys are namespaced by a one-letter prefix (S:, B:, C:) purely
// for readability in logs and metrics; the three coalesce.Group instances
// already keep the namespaces from colliding, since each Group has its own
// key space.

func stateKey(stateRoot Root) string {
	return "S:" + hex.EncodeToString(stateRoot[:])
}

func blockSlotKey(blockRoot Root, slot Slot) string {
	return "B:" + hex.EncodeToString(blockRoot[:]) + ":" + strconv.FormatUint(uint64(slot), 10)
}

func checkpointKey(epoch Epoch, blockRoot Root) string {
	return "C:" + strconv.FormatUint(uint64(epoch), 10) + ":" + hex.EncodeToString(blockRoot[:])
}
