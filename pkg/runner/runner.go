// Package runner drives a bytecode VM under limits chosen by the caller:
// a step budget and context cancellation. The VM itself has neither.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/chazu/stackvm/pkg/bytecode"
)

// ErrStepBudgetExhausted is returned when a program has not halted within
// Limits.MaxSteps instructions.
var ErrStepBudgetExhausted = errors.New("step budget exhausted")

// Limits bounds a single run. The zero value imposes no limit.
type Limits struct {
	MaxSteps int
}

// Result is the outcome of a run.
type Result struct {
	Exit   int64
	Output string
	Steps  int
}

// Run executes code on vm the way VM.Run does, but stops early when ctx is
// done or the step budget is used up. Partial results are returned with
// the error; the VM keeps whatever state the run reached.
func Run(ctx context.Context, vm *bytecode.VM, code bytecode.Code, limits Limits) (Result, error) {
	var res Result

	vm.DebugDisassemble(code)

	for {
		if err := ctx.Err(); err != nil {
			res.Output = vm.State().Output()
			return res, err
		}
		if limits.MaxSteps > 0 && res.Steps >= limits.MaxSteps {
			res.Output = vm.State().Output()
			return res, fmt.Errorf("%w after %d steps", ErrStepBudgetExhausted, res.Steps)
		}

		more, err := vm.Step(code)
		res.Steps++
		if err != nil {
			res.Output = vm.State().Output()
			return res, err
		}
		if !more {
			break
		}
	}

	res.Exit = vm.ExitValue()
	res.Output = vm.State().Output()
	return res, nil
}

// Error classes added on top of bytecode.Classify.
const (
	ClassBudget    bytecode.ErrorClass = "budget"
	ClassCancelled bytecode.ErrorClass = "cancelled"
)

// Classify extends bytecode.Classify with the limit errors of this package.
func Classify(err error) bytecode.ErrorClass {
	switch {
	case errors.Is(err, ErrStepBudgetExhausted):
		return ClassBudget
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassCancelled
	default:
		return bytecode.Classify(err)
	}
}
