// Package process defines the process descriptor used for scheduling and
// the accounting record kept once a process terminates.
package process

import "math"

// Descriptor represents a loaded program scheduled by the fair-share scheduler.
// Priority is never stored; it is recomputed from the accounting counters on
// every scheduling decision.
type Descriptor struct {
	ID           int     `json:"id"`
	GroupID      int     `json:"groupId"`
	BaseAddress  int     `json:"baseAddress"`
	AddressSize  int     `json:"addressSize"`
	BasePriority int     `json:"basePriority"`
	Weight       float64 `json:"weight"`
	Utilization  int     `json:"utilization"`
	BlockTime    int     `json:"blockTime"`
	// InstructionPointer is the saved offset (relative to BaseAddress) of the
	// next instruction; the CPU restores it on dispatch.
	InstructionPointer int `json:"instructionPointer"`
}

// New creates a runnable descriptor with zero utilization.
func New(id, groupID, baseAddress, addressSize int, weight float64, basePriority int) *Descriptor {
	return &Descriptor{
		ID:           id,
		GroupID:      groupID,
		BaseAddress:  baseAddress,
		AddressSize:  addressSize,
		BasePriority: basePriority,
		Weight:       weight,
	}
}

// CalculatePriority returns the scheduling priority for the supplied group
// utilization; lower values are scheduled sooner.
//
//	procTerm  = floor((utilization - 1) / 2)
//	groupTerm = floor((groupUtilization - 1) / 2)
//	priority  = basePriority + floor(procTerm/2) + floor(groupTerm/2) + floor(weight)
func (d *Descriptor) CalculatePriority(groupUtilization int) int {
	procTerm := floorDiv(d.Utilization-1, 2)
	groupTerm := floorDiv(groupUtilization-1, 2)
	return d.BasePriority + floorDiv(procTerm, 2) + floorDiv(groupTerm, 2) + int(math.Floor(d.Weight))
}

// IncrementUtilization records one executed cycle.
func (d *Descriptor) IncrementUtilization() {
	d.Utilization++
}

// SetBlockTime blocks the process for n cycles.
func (d *Descriptor) SetBlockTime(n int) {
	d.BlockTime = n
}

// DecrementBlockTime advances the block countdown by one cycle, stopping at zero.
func (d *Descriptor) DecrementBlockTime() {
	if d.BlockTime > 0 {
		d.BlockTime--
	}
}

// IsBlocked reports whether the process is still waiting on I/O.
func (d *Descriptor) IsBlocked() bool {
	return d.BlockTime > 0
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
