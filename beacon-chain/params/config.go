// Package params defines the protocol-level constants consumed by the state
// regenerator. The constants are intentionally minimal: the regenerator only
// ever needs to reason about slot/epoch arithmetic, never about validator
// economics, shard counts, or any of the other protocol parameters that
// belong to the state-transition function (an external collaborator, see
// the Transitioner interface).
package params

// BeaconChainConfig holds the protocol constants relevant to state
// regeneration.
type BeaconChainConfig struct {
	SlotsPerEpoch uint64 // SlotsPerEpoch is the number of slots in an epoch.
}

var mainnetConfig = &BeaconChainConfig{
	SlotsPerEpoch: 32,
}

var beaconConfig = mainnetConfig

// BeaconConfig returns the current beacon chain configuration.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig overrides the active config. Exposed for tests that
// exercise non-default SLOTS_PER_EPOCH values (e.g. minimal spec configs).
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}
