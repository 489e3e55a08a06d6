// Package scheduler implements the fair-share scheduler. It owns every
// registered process descriptor together with the per-group utilization
// ledger and selects the runnable process with the lowest computed priority.
package scheduler
