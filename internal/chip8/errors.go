package chip8

import "errors"

var (
	// ErrAddressOutOfRange is returned when an instruction fetch or a
	// memory-relative operation would access an address outside the 4KB
	// address space. The run can not continue after this error.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrLoadOverflow is returned when Load is given data that would be
	// written past the memory bounds. Nothing is written in this case.
	ErrLoadOverflow = errors.New("data exceeds memory bounds")

	// ErrStackOverflow is returned when a call instruction would push
	// beyond the fixed call stack depth.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned when a return instruction executes
	// with an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrNotWaitingForKey is returned by ResolveKey when the machine is
	// not suspended on a wait-for-key instruction.
	ErrNotWaitingForKey = errors.New("machine is not waiting for a key")
)
