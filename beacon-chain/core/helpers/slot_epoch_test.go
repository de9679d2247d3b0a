package helpers

import "testing"

func TestSlotToEpoch(t *testing.T) {
	tests := []struct {
		slot  uint64
		epoch uint64
	}{
		{0, 0},
		{31, 0},
		{32, 1},
		{95, 2},
		{96, 3},
	}
	for _, tt := range tests {
		if got := SlotToEpoch(tt.slot); got != tt.epoch {
			t.Errorf("SlotToEpoch(%d) = %d, want %d", tt.slot, got, tt.epoch)
		}
	}
}

func TestStartSlot(t *testing.T) {
	tests := []struct {
		epoch uint64
		slot  uint64
	}{
		{0, 0},
		{1, 32},
		{3, 96},
	}
	for _, tt := range tests {
		if got := StartSlot(tt.epoch); got != tt.slot {
			t.Errorf("StartSlot(%d) = %d, want %d", tt.epoch, got, tt.slot)
		}
	}
}

func TestIsEpochStart(t *testing.T) {
	tests := []struct {
		slot uint64
		want bool
	}{
		{0, true},
		{1, false},
		{31, false},
		{32, true},
		{96, true},
		{95, false},
	}
	for _, tt := range tests {
		if got := IsEpochStart(tt.slot); got != tt.want {
			t.Errorf("IsEpochStart(%d) = %v, want %v", tt.slot, got, tt.want)
		}
	}
}
