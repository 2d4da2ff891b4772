package bytecode

import (
	"fmt"
	"io"
)

// VM is one virtual machine instance: an instruction registry and the state
// programs run against. A VM is not safe for concurrent use; runs against
// the same VM must not interleave.
type VM struct {
	registry *Registry
	state    *State
}

// Option configures a VM.
type Option func(*vmConfig)

type vmConfig struct {
	debug    bool
	diag     io.Writer
	builtins bool
}

// WithDebug enables disassembly and step tracing.
func WithDebug(debug bool) Option {
	return func(c *vmConfig) { c.debug = debug }
}

// WithDiagnostics sets the writer for PRINT output and debug tracing.
// The default is os.Stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(c *vmConfig) { c.diag = w }
}

// WithoutBuiltins creates the VM with an empty instruction set.
func WithoutBuiltins() Option {
	return func(c *vmConfig) { c.builtins = false }
}

// New creates a VM with the built-in instruction set registered.
func New(opts ...Option) *VM {
	cfg := &vmConfig{builtins: true}
	for _, opt := range opts {
		opt(cfg)
	}

	vm := &VM{
		registry: NewRegistry(),
		state:    NewState(cfg.diag),
	}
	vm.state.Debug = cfg.debug

	if cfg.builtins {
		RegisterBuiltins(vm.registry)
	}
	return vm
}

// Registry returns the VM's instruction registry.
func (vm *VM) Registry() *Registry {
	return vm.registry
}

// State returns the VM's machine state.
func (vm *VM) State() *State {
	return vm.state
}

// Register adds an instruction to the VM's instruction set.
func (vm *VM) Register(mnemonic string, behavior Behavior) OpcodeID {
	return vm.registry.Register(mnemonic, behavior)
}

// Assemble assembles source against the VM's registry.
func (vm *VM) Assemble(source string) (Code, error) {
	return Assemble(vm.registry, source)
}

// Reset clears the program counter, stack and output so code can be run
// again from the start.
func (vm *VM) Reset() {
	vm.state.Reset()
}

// Run executes code from the current program counter until an instruction
// halts or fails. It returns the top of the stack (0 if empty) and the
// output written so far. On failure the output so far is still returned and
// the state is left as the failing instruction found it.
func (vm *VM) Run(code Code) (int64, string, error) {
	vm.DebugDisassemble(code)

	for {
		more, err := vm.Step(code)
		if err != nil {
			return 0, vm.state.Output(), err
		}
		if !more {
			break
		}
	}

	return vm.ExitValue(), vm.state.Output(), nil
}

// DebugDisassemble writes the disassembly of code to the diagnostic writer
// when debug mode is on. If an opcode id cannot be resolved, debug mode is
// turned off and execution may continue.
func (vm *VM) DebugDisassemble(code Code) {
	s := vm.state
	if !s.Debug {
		return
	}

	w := s.Diagnostics()
	fmt.Fprintln(w, "=== running vm ======================")
	fmt.Fprintln(w, "disassembly of run code:")
	if err := writeListing(w, vm.registry, code, formatDebugLine); err != nil {
		fmt.Fprintln(w, "could not disassemble - op_id unknown...")
		fmt.Fprintln(w, "turning off debug mode.")
		s.Debug = false
	}
	fmt.Fprint(w, "=== end of disassembly\n\n")
}

// Step executes the instruction at the program counter. It reports false
// once an instruction has signalled halt.
func (vm *VM) Step(code Code) (bool, error) {
	s := vm.state
	pc := s.PC
	if pc < 0 || pc >= len(code) {
		return false, &RuntimeError{Kind: ErrProgramCounterOutOfBounds, PC: pc}
	}

	in := code[pc]
	if s.Debug {
		writeTrace(s.Diagnostics(), vm.registry, in, pc)
	}

	// increase the program counter here so its value can be overwritten
	// by the instruction when it executes
	s.PC = pc + 1

	behavior, ok := vm.registry.Behavior(in.Op)
	if !ok {
		return false, &RuntimeError{Kind: ErrUnknownOpcode, PC: pc, Op: in.Op}
	}

	more, err := behavior(s, in.Arg)
	if err != nil {
		name, _ := vm.registry.Describe(in.Op)
		return false, &RuntimeError{Kind: err, PC: pc, Op: in.Op, Mnemonic: name}
	}
	return more, nil
}

// ExitValue returns the top of the stack, or 0 if the stack is empty.
func (vm *VM) ExitValue() int64 {
	top, err := vm.state.Peek()
	if err != nil {
		return 0
	}
	return top
}
