// Package bytecode provides a small stack-based virtual machine with a
// dynamically extensible instruction set, a text-to-bytecode assembler and
// an execution engine with optional step-level tracing.
//
// # Architecture Overview
//
// The package consists of several components:
//
//   - Registry: maps mnemonics to opcode ids and opcode ids to behaviors.
//     Ids are assigned sequentially and never reused. Registering a mnemonic
//     a second time shadows the earlier registration for assembly, but both
//     ids stay dispatchable.
//
//   - Assembler: converts newline-delimited "MNEMONIC [ARGUMENT]" text into
//     a Code sequence of (opcode id, int64 argument) pairs.
//
//   - State: the operand stack, program counter, debug flag, the program
//     output buffer and the diagnostic writer used by PRINT and tracing.
//
//   - VM: owns one Registry and one State. Run executes a Code sequence
//     until an instruction signals halt (EXIT) or fails.
//
// # Execution Model
//
// The engine advances the program counter before invoking an instruction,
// so jump instructions simply overwrite it. Running off either end of the
// code without executing EXIT is an error (ErrProgramCounterOutOfBounds).
//
// There is no implicit step limit: a program such as
//
//	LOAD_CONST 5
//	JMP 0
//
// never halts under Run. Callers that need a bound should drive the VM with
// Step, or use the runner package.
//
// # Failure Semantics
//
// Assembly errors (*AssemblyError) abort assembly with no partial code.
// Runtime errors (*RuntimeError) abort the run and leave the State as it was
// at the failing instruction; the VM and its Registry remain usable after
// Reset. The engine never resets state on its own.
package bytecode
