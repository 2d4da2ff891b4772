package runner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/chazu/stackvm/pkg/bytecode"
)

func newVM(t *testing.T, src string) (*bytecode.VM, bytecode.Code) {
	t.Helper()
	vm := bytecode.New(bytecode.WithDiagnostics(&bytes.Buffer{}))
	code, err := vm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return vm, code
}

func TestRunCompletes(t *testing.T) {
	vm, code := newVM(t, "LOAD_CONST 2\nLOAD_CONST 3\nADD\nWRITE\nEXIT")

	res, err := Run(context.Background(), vm, code, Limits{MaxSteps: 100})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Exit != 5 || res.Output != "5" || res.Steps != 5 {
		t.Errorf("Result = %+v", res)
	}
}

func TestRunUnlimited(t *testing.T) {
	vm, code := newVM(t, "LOAD_CONST 1\nEXIT")

	res, err := Run(context.Background(), vm, code, Limits{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Exit != 1 || res.Steps != 2 {
		t.Errorf("Result = %+v", res)
	}
}

func TestRunStepBudget(t *testing.T) {
	vm, code := newVM(t, "LOAD_CONST 5\nJMP 0")

	res, err := Run(context.Background(), vm, code, Limits{MaxSteps: 10})
	if !errors.Is(err, ErrStepBudgetExhausted) {
		t.Fatalf("error = %v, want ErrStepBudgetExhausted", err)
	}
	if res.Steps != 10 {
		t.Errorf("Steps = %d, want 10", res.Steps)
	}
	if vm.State().Depth() != 5 {
		t.Errorf("Depth = %d, want 5", vm.State().Depth())
	}
	if Classify(err) != ClassBudget {
		t.Errorf("Classify = %q", Classify(err))
	}
}

func TestRunCancelled(t *testing.T) {
	vm, code := newVM(t, "LOAD_CONST 5\nJMP 0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, vm, code, Limits{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if res.Steps != 0 {
		t.Errorf("Steps = %d, want 0", res.Steps)
	}
	if Classify(err) != ClassCancelled {
		t.Errorf("Classify = %q", Classify(err))
	}
}

func TestRunRuntimeError(t *testing.T) {
	vm, code := newVM(t, "LOAD_CONST 1\nWRITE\nPOP\nPOP")

	res, err := Run(context.Background(), vm, code, Limits{MaxSteps: 100})
	if !errors.Is(err, bytecode.ErrStackUnderflow) {
		t.Fatalf("error = %v", err)
	}
	if res.Output != "1" || res.Steps != 4 {
		t.Errorf("Result = %+v", res)
	}
	if Classify(err) != bytecode.ClassRuntime {
		t.Errorf("Classify = %q", Classify(err))
	}
}

func TestClassifyNil(t *testing.T) {
	if Classify(nil) != bytecode.ClassNone {
		t.Errorf("Classify(nil) = %q", Classify(nil))
	}
}
