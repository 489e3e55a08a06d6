// Package loader reads program images, places them into simulated memory in
// load order and registers a process descriptor for each with the scheduler.
// A program that fails to load is reported and skipped.
package loader
