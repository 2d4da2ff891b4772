package server

import "github.com/chazu/stackvm/pkg/bytecode"

// AssembleRequest carries assembly source text.
type AssembleRequest struct {
	Source string `cbor:"source"`
}

// AssembleResponse reports the assembled code or an in-band assembly
// failure. Line is 1-based and zero when no line is implicated.
type AssembleResponse struct {
	Code       bytecode.Code `cbor:"code"`
	Listing    string        `cbor:"listing"`
	Error      string        `cbor:"error"`
	ErrorClass string        `cbor:"error_class"`
	Line       int           `cbor:"line"`
}

// RunRequest runs either Source or an already assembled Code. When
// SessionID is set the run reuses that session's VM state; Reset clears the
// state first.
type RunRequest struct {
	Source    string        `cbor:"source"`
	Code      bytecode.Code `cbor:"code"`
	Debug     bool          `cbor:"debug"`
	MaxSteps  int           `cbor:"max_steps"`
	SessionID string        `cbor:"session_id"`
	Reset     bool          `cbor:"reset"`
}

// RunResponse reports the outcome of a run. Failures are in-band: Error and
// ErrorClass are set and the other fields reflect the state reached.
type RunResponse struct {
	Exit        int64   `cbor:"exit"`
	Output      string  `cbor:"output"`
	Diagnostics string  `cbor:"diagnostics"`
	Error       string  `cbor:"error"`
	ErrorClass  string  `cbor:"error_class"`
	Line        int     `cbor:"line"`
	Steps       int     `cbor:"steps"`
	Stack       []int64 `cbor:"stack"`
	PC          int     `cbor:"pc"`
}

// DisassembleRequest carries code to list.
type DisassembleRequest struct {
	Code bytecode.Code `cbor:"code"`
}

// DisassembleResponse carries the listing, possibly partial when Error is
// set.
type DisassembleResponse struct {
	Listing    string `cbor:"listing"`
	Error      string `cbor:"error"`
	ErrorClass string `cbor:"error_class"`
}

// InstructionsRequest lists registered instructions. SessionID selects a
// session VM; empty means a VM with only the built-ins.
type InstructionsRequest struct {
	SessionID string `cbor:"session_id"`
}

// InstructionInfo describes one registered instruction.
type InstructionInfo struct {
	Mnemonic  string `cbor:"mnemonic"`
	Opcode    uint32 `cbor:"opcode"`
	StackPop  int    `cbor:"stack_pop"`
	StackPush int    `cbor:"stack_push"`
	UsesArg   bool   `cbor:"uses_arg"`
	Summary   string `cbor:"summary"`
}

// InstructionsResponse lists instructions sorted by mnemonic.
type InstructionsResponse struct {
	Instructions []InstructionInfo `cbor:"instructions"`
}

// CreateSessionRequest names an optional session label.
type CreateSessionRequest struct {
	Name string `cbor:"name"`
}

// CreateSessionResponse returns the new session id.
type CreateSessionResponse struct {
	SessionID string `cbor:"session_id"`
}

// DestroySessionRequest names the session to drop.
type DestroySessionRequest struct {
	SessionID string `cbor:"session_id"`
}

// DestroySessionResponse reports whether the session existed.
type DestroySessionResponse struct {
	Existed bool `cbor:"existed"`
}
