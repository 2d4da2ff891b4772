package bytecode

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// BuiltinInfo describes a built-in instruction for documentation and
// editor tooling.
type BuiltinInfo struct {
	Name      string // Mnemonic
	StackPop  int    // Values popped
	StackPush int    // Values pushed
	UsesArg   bool   // Whether the argument is meaningful
	Summary   string
	behavior  Behavior
}

// builtinTable lists the built-in instructions in registration order.
var builtinTable = []BuiltinInfo{
	{"PRINT", 0, 0, false, "write top of stack to the diagnostic stream", opPrint},
	{"LOAD_CONST", 0, 1, true, "push the argument", opLoadConst},
	{"EXIT", 0, 0, false, "halt execution", opExit},
	{"POP", 1, 0, false, "discard top of stack", opPop},
	{"ADD", 2, 1, false, "pop b, pop a, push a+b", binaryOp(func(a, b int64) (int64, error) {
		return a + b, nil
	})},
	{"DIV", 2, 1, false, "pop b, pop a, push a/b", binaryOp(func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	})},
	{"EQ", 2, 1, false, "pop b, pop a, push 1 if a == b else 0", binaryOp(func(a, b int64) (int64, error) {
		return boolToInt(a == b), nil
	})},
	{"NEQ", 2, 1, false, "pop b, pop a, push 1 if a != b else 0", binaryOp(func(a, b int64) (int64, error) {
		return boolToInt(a != b), nil
	})},
	{"DUP", 1, 2, false, "push a copy of top of stack", opDup},
	{"JMP", 0, 0, true, "jump to the argument address", opJump},
	{"JMPZ", 1, 0, true, "pop; jump to the argument address if zero", opJumpZero},
	{"WRITE", 0, 0, false, "append top of stack as decimal text to the output", opWrite},
	{"WRITE_CHAR", 0, 0, false, "append top of stack as a character to the output", opWriteChar},
}

// RegisterBuiltins registers the built-in instruction set into r.
func RegisterBuiltins(r *Registry) {
	for _, b := range builtinTable {
		r.Register(b.Name, b.behavior)
	}
}

// Builtins returns metadata for the built-in instructions in registration
// order.
func Builtins() []BuiltinInfo {
	out := make([]BuiltinInfo, len(builtinTable))
	copy(out, builtinTable)
	return out
}

// LookupBuiltin returns metadata for a built-in mnemonic.
func LookupBuiltin(name string) (BuiltinInfo, bool) {
	for _, b := range builtinTable {
		if b.Name == name {
			return b, true
		}
	}
	return BuiltinInfo{}, false
}

func opPrint(s *State, _ int64) (bool, error) {
	top, err := s.Peek()
	if err != nil {
		return false, err
	}
	fmt.Fprintln(s.Diagnostics(), top)
	return true, nil
}

func opLoadConst(s *State, arg int64) (bool, error) {
	s.Push(arg)
	return true, nil
}

func opExit(*State, int64) (bool, error) {
	return false, nil
}

func opPop(s *State, _ int64) (bool, error) {
	_, err := s.Pop()
	return err == nil, err
}

func opDup(s *State, _ int64) (bool, error) {
	top, err := s.Peek()
	if err != nil {
		return false, err
	}
	s.Push(top)
	return true, nil
}

func opJump(s *State, addr int64) (bool, error) {
	s.PC = int(addr)
	return true, nil
}

func opJumpZero(s *State, addr int64) (bool, error) {
	top, err := s.Pop()
	if err != nil {
		return false, err
	}
	if top == 0 {
		s.PC = int(addr)
	}
	return true, nil
}

func opWrite(s *State, _ int64) (bool, error) {
	top, err := s.Peek()
	if err != nil {
		return false, err
	}
	s.WriteOutput(strconv.FormatInt(top, 10))
	return true, nil
}

func opWriteChar(s *State, _ int64) (bool, error) {
	top, err := s.Peek()
	if err != nil {
		return false, err
	}
	// out of range values would be truncated by the rune conversion
	if top < 0 || top > utf8.MaxRune {
		s.WriteOutput(string(utf8.RuneError))
		return true, nil
	}
	s.WriteOutput(string(rune(top)))
	return true, nil
}

// binaryOp pops b then a and pushes op(a, b). A failure after the pops
// leaves both operands consumed.
func binaryOp(op func(a, b int64) (int64, error)) Behavior {
	return func(s *State, _ int64) (bool, error) {
		b, err := s.Pop()
		if err != nil {
			return false, err
		}
		a, err := s.Pop()
		if err != nil {
			return false, err
		}
		result, err := op(a, b)
		if err != nil {
			return false, err
		}
		s.Push(result)
		return true, nil
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
