package idgen

import "github.com/google/uuid"

// NewFunc generates a new run identifier.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique run identifier.
func New() string { return NewFunc() }

// Short returns the leading segment of a run identifier for display.
func Short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
