// Package memory models the flat simulated memory shared by all processes.
// Programs are placed by appending at the next free offset, so process
// windows never overlap.
package memory

import (
	"errors"
	"fmt"
)

// Size is the number of cells in simulated memory (64K).
const Size = 65536

// ErrOutOfMemory is returned when a program does not fit in the remaining memory.
var ErrOutOfMemory = errors.New("memory: out of memory")

// Memory represents simulated memory and its load cursor.
type Memory struct {
	cells []int
	next  int
}

// New creates an empty memory of Size cells.
func New() *Memory {
	return NewWithSize(Size)
}

// NewWithSize creates an empty memory with custom capacity.
func NewWithSize(size int) *Memory {
	return &Memory{cells: make([]int, size)}
}

// Allocate copies words at the next free offset and returns the base address.
// Nothing is written when the words do not fit.
func (m *Memory) Allocate(words []int) (int, error) {
	if len(words) > len(m.cells)-m.next {
		return 0, fmt.Errorf("%w: need %d cells, %d free", ErrOutOfMemory, len(words), len(m.cells)-m.next)
	}
	base := m.next
	copy(m.cells[base:], words)
	m.next += len(words)
	return base, nil
}

// Read returns the cell at the absolute address addr.
func (m *Memory) Read(addr int) int {
	return m.cells[addr]
}

// Next returns the next free offset.
func (m *Memory) Next() int {
	return m.next
}

// Cap returns the memory capacity.
func (m *Memory) Cap() int {
	return len(m.cells)
}
