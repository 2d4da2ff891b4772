package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/pkg/runner"
	"github.com/chazu/stackvm/server"
)

type runOptions struct {
	debug    bool
	maxSteps int
	disasm   bool
	diag     io.Writer
}

// runLocal assembles and runs source in-process and returns the exit
// status for the process.
func runLocal(ctx context.Context, source string, opts runOptions, stdout, stderr io.Writer) int {
	v := bytecode.New(bytecode.WithDebug(opts.debug), bytecode.WithDiagnostics(opts.diag))

	code, err := v.Assemble(source)
	if err != nil {
		fmt.Fprintf(stderr, "Assembly error: %v\n", err)
		return exitBadInput
	}

	if opts.disasm {
		listing, err := bytecode.Disassemble(v.Registry(), code)
		fmt.Fprint(stdout, listing)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	res, err := runner.Run(ctx, v, code, runner.Limits{MaxSteps: opts.maxSteps})
	fmt.Fprint(stdout, res.Output)
	log.Debugf("executed %d steps", res.Steps)
	if err != nil {
		var rtErr *bytecode.RuntimeError
		if errors.As(err, &rtErr) {
			log.Debugf("stack at failure: %v", v.State().Stack())
		}
		fmt.Fprintf(stderr, "Error (%s): %v\n", runner.Classify(err), err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "exit: %d\n", res.Exit)
	return exitOK
}

// runRemote sends source to a VM server and reports the result the same
// way runLocal does. Diagnostics captured by the server are copied to
// opts.diag.
func runRemote(ctx context.Context, client *server.Client, source string, opts runOptions, stdout, stderr io.Writer) int {
	if opts.disasm {
		resp, err := client.Assemble(ctx, &server.AssembleRequest{Source: source})
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFailure
		}
		if resp.Error != "" {
			fmt.Fprintf(stderr, "Assembly error: %s\n", resp.Error)
			return exitBadInput
		}
		fmt.Fprint(stdout, resp.Listing)
		return exitOK
	}

	resp, err := client.Run(ctx, &server.RunRequest{
		Source:   source,
		Debug:    opts.debug,
		MaxSteps: opts.maxSteps,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	fmt.Fprint(opts.diag, resp.Diagnostics)
	fmt.Fprint(stdout, resp.Output)
	switch {
	case resp.ErrorClass == string(bytecode.ClassAssembly):
		fmt.Fprintf(stderr, "Assembly error: %s\n", resp.Error)
		return exitBadInput
	case resp.Error != "":
		fmt.Fprintf(stderr, "Error (%s): %s\n", resp.ErrorClass, resp.Error)
		return exitFailure
	}
	fmt.Fprintf(stdout, "exit: %d\n", resp.Exit)
	return exitOK
}
