// Package engine drives the cycle-based simulation. Every tick it executes one
// instruction of the dispatched process, accounts the cycle to the
// scheduler, blocks or retires the process as the instruction demands,
// counts down the timer that forces a fair-share reselection and advances
// every block countdown.
package engine
