package bytecode

import (
	"errors"
	"strings"
	"testing"
)

func builtinRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

func TestDisassembleEmpty(t *testing.T) {
	out, err := Disassemble(builtinRegistry(), nil)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if out != "" {
		t.Errorf("output = %q, want empty", out)
	}
}

func TestDisassembleSimple(t *testing.T) {
	r := builtinRegistry()
	code, err := Assemble(r, "LOAD_CONST 2\nLOAD_CONST 3\nADD\nEXIT")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	output, err := Disassemble(r, code)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}

	for _, want := range []string{"0000  LOAD_CONST", "0001  LOAD_CONST", "0002  ADD", "0003  EXIT"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in:\n%s", want, output)
		}
	}
	if strings.Count(output, "\n") != 4 {
		t.Errorf("expected 4 lines, got:\n%s", output)
	}
}

func TestDisassembleReassembles(t *testing.T) {
	r := builtinRegistry()
	src := "LOAD_CONST 5\nDUP\nJMPZ 4\nWRITE\nEXIT"
	code, err := Assemble(r, src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var lines []string
	for _, in := range code {
		lines = append(lines, DisassembleInstruction(r, in))
	}
	again, err := Assemble(r, strings.Join(lines, "\n"))
	if err != nil {
		t.Fatalf("reassemble: %v", err)
	}
	if !again.Equal(code) {
		t.Errorf("reassembled code differs: %v vs %v", again, code)
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	r := builtinRegistry()
	exit, _ := r.Resolve("EXIT")
	code := Code{{exit, 0}, {Op: 77, Arg: 1}, {exit, 0}}

	output, err := Disassemble(r, code)
	if !errors.Is(err, ErrDisassembly) {
		t.Fatalf("error = %v, want ErrDisassembly", err)
	}

	var disErr *DisassemblyError
	if !errors.As(err, &disErr) || disErr.Index != 1 || disErr.Op != 77 {
		t.Errorf("DisassemblyError = %+v", disErr)
	}
	if !strings.Contains(output, "EXIT") || strings.Count(output, "\n") != 1 {
		t.Errorf("partial listing = %q", output)
	}
	if Classify(err) != ClassDisassembly {
		t.Errorf("Classify = %q", Classify(err))
	}
}

func TestDisassembleInstructionUnknown(t *testing.T) {
	got := DisassembleInstruction(NewRegistry(), Instruction{Op: 3, Arg: -2})
	if got != "op_3 -2" {
		t.Errorf("DisassembleInstruction = %q", got)
	}
}

func TestDisassembleToLines(t *testing.T) {
	r := builtinRegistry()
	code, _ := Assemble(r, "LOAD_CONST 1\nEXIT")

	lines, err := DisassembleToLines(r, code)
	if err != nil {
		t.Fatalf("DisassembleToLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "0001  EXIT") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
