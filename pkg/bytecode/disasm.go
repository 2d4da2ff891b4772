package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble returns a human-readable listing of code, one instruction per
// line. If an opcode id is not registered, the listing up to that point is
// returned together with a *DisassemblyError.
func Disassemble(r *Registry, code Code) (string, error) {
	var sb strings.Builder
	err := writeListing(&sb, r, code, formatListingLine)
	return sb.String(), err
}

// DisassembleToLines returns the listing as a slice of lines.
func DisassembleToLines(r *Registry, code Code) ([]string, error) {
	text, err := Disassemble(r, code)
	if text == "" {
		return nil, err
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), err
}

// DisassembleInstruction renders a single instruction. Unregistered ids are
// shown as op_<id>.
func DisassembleInstruction(r *Registry, in Instruction) string {
	return fmt.Sprintf("%s %d", mnemonicOf(r, in.Op), in.Arg)
}

func formatListingLine(index int, name string, arg int64) string {
	return fmt.Sprintf("%04d  %-12s %d\n", index, name, arg)
}

func formatDebugLine(_ int, name string, arg int64) string {
	return fmt.Sprintf("%s %d\n", name, arg)
}

// writeListing writes one formatted line per instruction and stops at the
// first unregistered id.
func writeListing(w io.Writer, r *Registry, code Code, format func(int, string, int64) string) error {
	for i, in := range code {
		name, ok := r.Describe(in.Op)
		if !ok {
			return &DisassemblyError{Index: i, Op: in.Op}
		}
		io.WriteString(w, format(i, name, in.Arg))
	}
	return nil
}

// writeTrace writes the per-step trace line.
func writeTrace(w io.Writer, r *Registry, in Instruction, pc int) {
	fmt.Fprintf(w, "-- exec %s arg=%d at pc=%d\n", mnemonicOf(r, in.Op), in.Arg, pc)
}

func mnemonicOf(r *Registry, op OpcodeID) string {
	if name, ok := r.Describe(op); ok {
		return name
	}
	return fmt.Sprintf("op_%d", op)
}
