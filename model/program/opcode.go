package program

import "fmt"

// Instruction opcodes.
const (
	OpCompute = 1   // computation, always continues
	OpBlock   = 2   // blocking input/output
	OpExit    = 3   // exit program
	OpBranch  = 128 // branch 128..228, value-128 is the jump percentage

	MaxBranchPercentage = 100
)

// IsBranch reports whether opcode encodes a conditional branch.
func IsBranch(opcode int) bool {
	return opcode >= OpBranch && opcode <= OpBranch+MaxBranchPercentage
}

// BranchPercentage returns the jump probability encoded in a branch opcode.
func BranchPercentage(opcode int) int {
	return opcode - OpBranch
}

// Branch encodes a branch to destination taken with the given percentage as
// three words: opcode, high byte, low byte.
func Branch(percentage, destination int) []int {
	return []int{OpBranch + percentage, destination >> 8, destination & 0xff}
}

// Describe renders an opcode for diagnostics.
func Describe(opcode int) string {
	switch {
	case IsBranch(opcode):
		return fmt.Sprintf("branch %d%%", BranchPercentage(opcode))
	case opcode == OpCompute:
		return "compute"
	case opcode == OpBlock:
		return "block"
	case opcode == OpExit:
		return "exit"
	}
	return fmt.Sprintf("illegal(%d)", opcode)
}
