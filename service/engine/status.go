package engine

import "errors"

// Status is the outcome of one executed instruction.
type Status int

const (
	StatusContinue Status = iota + 1
	StatusBlock
	StatusExit
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "continue"
	case StatusBlock:
		return "block"
	case StatusExit:
		return "exit"
	case StatusError:
		return "error"
	}
	return "unknown"
}

var (
	// ErrAddress is returned when a process reads outside its memory window.
	ErrAddress = errors.New("engine: illegal address")
	// ErrIllegalOpcode is returned for a word that is not an instruction.
	ErrIllegalOpcode = errors.New("engine: illegal opcode")
	// ErrNoProcess is returned when no process is dispatched on the CPU.
	ErrNoProcess = errors.New("engine: no process dispatched")
)
