// Package progress keeps aggregated counters for a simulation run (executed
// instructions, blocks, exits, idle ticks, timer interrupts, program loads)
// and notifies an optional observer after every change.
package progress
