package stategen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	replaySlotCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_replay_slots_total",
		Help: "Number of empty slots advanced via the Transitioner across all replays.",
	})
	replayBlockCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_replay_blocks_total",
		Help: "Number of blocks applied via the Transitioner across all replays.",
	})
	coldLoadCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_cold_loads_total",
		Help: "Number of times the regenerator fell through to StateSource.LoadState.",
	})
	finalizationPruneCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_finalization_prunes_total",
		Help: "Number of onFinalized events processed.",
	})
	donationRejectedCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stategen_donations_rejected_total",
		Help: "Number of submitProcessedState calls rejected due to an unknown block or a state root mismatch.",
	})
)
