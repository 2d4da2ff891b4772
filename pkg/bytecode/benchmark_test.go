// Package bytecode benchmarks
//
// These benchmarks measure the performance of:
// - Assembly
// - Dispatch through the registry
// - Disassembly
//
// Run: go test -bench=. ./pkg/bytecode/...
// Run with memory stats: go test -bench=. -benchmem ./pkg/bytecode/...
package bytecode

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

// countdownSource counts n down to zero, then exits with 0.
func countdownSource(n int) string {
	return fmt.Sprintf(strings.Join([]string{
		"LOAD_CONST %d",
		"DUP",
		"JMPZ 6",
		"LOAD_CONST -1",
		"ADD",
		"JMP 1",
		"EXIT",
	}, "\n"), n)
}

// ============================================================
// Assembly Benchmarks
// ============================================================

// BenchmarkAssembleSmall measures assembly of a short program
func BenchmarkAssembleSmall(b *testing.B) {
	r := NewRegistry()
	RegisterBuiltins(r)
	src := countdownSource(10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Assemble(r, src)
	}
}

// BenchmarkAssembleLarge measures assembly of a long straight-line program
func BenchmarkAssembleLarge(b *testing.B) {
	r := NewRegistry()
	RegisterBuiltins(r)
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteString("LOAD_CONST 1\nLOAD_CONST 2\nADD\nPOP\n")
	}
	sb.WriteString("EXIT\n")
	src := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Assemble(r, src)
	}
}

// ============================================================
// Execution Benchmarks
// ============================================================

// BenchmarkRunCountdown measures the dispatch loop on a tight loop
func BenchmarkRunCountdown(b *testing.B) {
	vm := New(WithDiagnostics(io.Discard))
	code, err := vm.Assemble(countdownSource(1000))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.Reset()
		if _, _, err := vm.Run(code); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRunDebug measures the cost of tracing every step
func BenchmarkRunDebug(b *testing.B) {
	vm := New(WithDebug(true), WithDiagnostics(io.Discard))
	code, err := vm.Assemble(countdownSource(100))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		vm.Reset()
		_, _, _ = vm.Run(code)
	}
}

// ============================================================
// Disassembly Benchmarks
// ============================================================

// BenchmarkDisassemble measures listing a mid-sized program
func BenchmarkDisassemble(b *testing.B) {
	r := NewRegistry()
	RegisterBuiltins(r)
	code := make(Code, 0, 500)
	for i := 0; i < 500; i++ {
		code = append(code, Instruction{Op: OpcodeID(i % r.Len()), Arg: int64(i)})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Disassemble(r, code)
	}
}
