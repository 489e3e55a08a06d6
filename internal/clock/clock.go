// Package clock abstracts wall time so run timestamps can be stubbed in tests.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now returns the wall clock time used for run and accounting timestamps.
func Now() time.Time { return NowFunc() }

// Since returns the wall time elapsed from start, rounded to milliseconds.
func Since(start time.Time) time.Duration {
	return Now().Sub(start).Round(time.Millisecond)
}
