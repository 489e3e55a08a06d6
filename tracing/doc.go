// Package tracing wraps OpenTelemetry so the simulator can emit spans for
// program loading and simulation runs without importing the SDK everywhere.
package tracing
