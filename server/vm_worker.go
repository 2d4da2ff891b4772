package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/stackvm/pkg/bytecode"
)

// ErrWorkerStopped is returned by Do after Stop.
var ErrWorkerStopped = errors.New("vm worker stopped")

// vmRequest represents a unit of work to be executed on the VM goroutine.
type vmRequest struct {
	fn   func(*bytecode.VM) any
	done chan vmResult
}

// vmResult holds the return value from a VM operation.
type vmResult struct {
	value any
	err   error
}

// VMWorker serializes all access to one VM through a single goroutine.
// A VM runs one program at a time; handlers must go through the worker so
// runs against the same state never interleave.
type VMWorker struct {
	vm       *bytecode.VM
	requests chan vmRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewVMWorker creates a VMWorker and starts the processing goroutine.
func NewVMWorker(v *bytecode.VM) *VMWorker {
	w := &VMWorker{
		vm:       v,
		requests: make(chan vmRequest, 16),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes VM requests sequentially on a dedicated goroutine.
func (w *VMWorker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs a function on the VM, recovering from panics raised by
// custom instruction behaviors.
func (w *VMWorker) execute(fn func(*bytecode.VM) any) vmResult {
	var result vmResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("vm panic: %v", r)
			}
		}()
		result.value = fn(w.vm)
	}()
	return result
}

// Do submits a function for execution on the VM goroutine and blocks until
// it completes, ctx is done or the worker stops. A request still queued at
// Stop is never run and reports ErrWorkerStopped. A function abandoned
// because of ctx keeps running; it should observe ctx itself.
func (w *VMWorker) Do(ctx context.Context, fn func(*bytecode.VM) any) (any, error) {
	req := vmRequest{
		fn:   fn,
		done: make(chan vmResult, 1),
	}

	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, ErrWorkerStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		select {
		case result := <-req.done:
			return result.value, result.err
		default:
			return nil, ErrWorkerStopped
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop shuts down the worker goroutine. It is safe to call more than once.
func (w *VMWorker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
