package bytecode

import (
	"io"
	"os"
	"strings"
)

// State is the mutable machine state of one VM: operand stack, program
// counter, debug flag and output buffer.
type State struct {
	// PC is the index of the next instruction to execute.
	PC int

	// Debug enables disassembly and per-step tracing on the diagnostic
	// writer. The engine may turn it off during a run.
	Debug bool

	stack []int64
	out   strings.Builder
	diag  io.Writer
}

// NewState creates an empty state writing diagnostics to diag.
// A nil diag means os.Stdout.
func NewState(diag io.Writer) *State {
	s := &State{
		stack: make([]int64, 0, 16),
	}
	s.SetDiagnostics(diag)
	return s
}

// Push pushes v onto the operand stack.
func (s *State) Push(v int64) {
	s.stack = append(s.stack, v)
}

// Pop removes and returns the top of the stack.
func (s *State) Pop() (int64, error) {
	n := len(s.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := s.stack[n-1]
	s.stack = s.stack[:n-1]
	return v, nil
}

// Peek returns the top of the stack without removing it.
func (s *State) Peek() (int64, error) {
	n := len(s.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	return s.stack[n-1], nil
}

// Depth returns the number of values on the stack.
func (s *State) Depth() int {
	return len(s.stack)
}

// Stack returns a copy of the operand stack, bottom first.
func (s *State) Stack() []int64 {
	out := make([]int64, len(s.stack))
	copy(out, s.stack)
	return out
}

// WriteOutput appends text to the program output buffer.
func (s *State) WriteOutput(text string) {
	s.out.WriteString(text)
}

// Output returns everything written to the output buffer so far.
func (s *State) Output() string {
	return s.out.String()
}

// Diagnostics returns the writer used by PRINT and debug tracing.
func (s *State) Diagnostics() io.Writer {
	return s.diag
}

// SetDiagnostics replaces the diagnostic writer. A nil w means os.Stdout.
func (s *State) SetDiagnostics(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	s.diag = w
}

// Reset clears the program counter, the stack and the output buffer.
// The debug flag and diagnostic writer are kept.
func (s *State) Reset() {
	s.PC = 0
	s.stack = s.stack[:0]
	s.out.Reset()
}
