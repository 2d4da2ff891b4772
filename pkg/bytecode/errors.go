package bytecode

import (
	"errors"
	"fmt"
)

// Assembly failures.
var (
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrTooManyOperands    = errors.New("more than one instruction argument")
	ErrInvalidOperand     = errors.New("invalid operand")
)

// Runtime failures.
var (
	ErrStackUnderflow            = errors.New("stack underflow")
	ErrDivideByZero              = errors.New("divide by zero")
	ErrProgramCounterOutOfBounds = errors.New("program counter out of bounds")
	ErrUnknownOpcode             = errors.New("unknown opcode")
)

// ErrDisassembly is wrapped by DisassemblyError.
var ErrDisassembly = errors.New("could not disassemble")

// AssemblyError reports a source line the assembler rejected.
type AssemblyError struct {
	Kind     error  // ErrUnknownInstruction, ErrTooManyOperands or ErrInvalidOperand
	Line     int    // 1-based source line
	Text     string // the offending line
	Mnemonic string // set for ErrUnknownInstruction
	Err      error  // underlying parse failure for ErrInvalidOperand
}

func (e *AssemblyError) Error() string {
	switch {
	case errors.Is(e.Kind, ErrUnknownInstruction):
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Kind, e.Mnemonic)
	case e.Err != nil:
		return fmt.Sprintf("line %d: %v: %v", e.Line, e.Kind, e.Err)
	default:
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Kind, e.Text)
	}
}

func (e *AssemblyError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// RuntimeError reports an instruction failure during a run. The VM state is
// left as the failing instruction found it.
type RuntimeError struct {
	Kind     error    // sentinel or error returned by a custom behavior
	PC       int      // address of the failing instruction
	Op       OpcodeID // zero when the program counter was out of bounds
	Mnemonic string   // empty when the program counter was out of bounds
}

func (e *RuntimeError) Error() string {
	if e.Mnemonic == "" {
		return fmt.Sprintf("pc=%d: %v", e.PC, e.Kind)
	}
	return fmt.Sprintf("pc=%d %s: %v", e.PC, e.Mnemonic, e.Kind)
}

func (e *RuntimeError) Unwrap() error {
	return e.Kind
}

// DisassemblyError reports a code entry whose opcode id is not registered.
type DisassemblyError struct {
	Index int
	Op    OpcodeID
}

func (e *DisassemblyError) Error() string {
	return fmt.Sprintf("%v: op_id %d unknown at %d", ErrDisassembly, e.Op, e.Index)
}

func (e *DisassemblyError) Unwrap() error {
	return ErrDisassembly
}

// ErrorClass groups errors for hosts that report them.
type ErrorClass string

const (
	ClassNone        ErrorClass = ""
	ClassAssembly    ErrorClass = "assembly"
	ClassRuntime     ErrorClass = "runtime"
	ClassDisassembly ErrorClass = "disassembly"
	ClassUnknown     ErrorClass = "unknown"
)

// Classify returns the class of err.
func Classify(err error) ErrorClass {
	var (
		asmErr *AssemblyError
		rtErr  *RuntimeError
		disErr *DisassemblyError
	)
	switch {
	case err == nil:
		return ClassNone
	case errors.As(err, &asmErr):
		return ClassAssembly
	case errors.As(err, &rtErr):
		return ClassRuntime
	case errors.As(err, &disErr):
		return ClassDisassembly
	default:
		return ClassUnknown
	}
}
