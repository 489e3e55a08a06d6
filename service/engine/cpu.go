package engine

import (
	"fmt"

	"github.com/viant/fairsim/model/memory"
	"github.com/viant/fairsim/model/process"
)

// cpu holds the registers of the dispatched process. Base and bound are copied
// from the descriptor at dispatch time.
type cpu struct {
	instructionPointer int
	baseAddr           int
	boundSize          int
}

func (c *cpu) load(d *process.Descriptor) {
	c.baseAddr = d.BaseAddress
	c.boundSize = d.AddressSize
	c.instructionPointer = d.InstructionPointer
}

func (c *cpu) save(d *process.Descriptor) {
	d.InstructionPointer = c.instructionPointer
}

// read returns the word at offset addr of the process window.
func (c *cpu) read(mem *memory.Memory, addr int) (int, error) {
	if addr < 0 || addr >= c.boundSize {
		return 0, fmt.Errorf("%w %d", ErrAddress, addr)
	}
	return mem.Read(c.baseAddr + addr), nil
}
