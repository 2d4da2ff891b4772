// stackvm CLI - assembles and runs stack machine programs
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/tliron/commonlog"

	"github.com/chazu/stackvm/manifest"
	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/server"

	_ "github.com/tliron/commonlog/simple"
)

// Process exit statuses.
const (
	exitOK       = 0
	exitFailure  = 1
	exitBadInput = 2
)

var log = commonlog.GetLogger("stackvm.cli")

func main() {
	os.Exit(realMain())
}

func realMain() int {
	var verbose countFlag
	flag.Var(&verbose, "v", "Verbose output (repeat for more: -v -v is debug)")
	debug := flag.Bool("debug", false, "Print disassembly and a per-step trace to the diagnostic stream")
	maxSteps := flag.Int("max-steps", 0, "Stop after N instructions (0 means no limit)")
	configDir := flag.String("config", "", "Directory containing stackvm.toml (default: search upward from .)")
	disasm := flag.Bool("disasm", false, "Print the disassembly and exit")
	serveMode := flag.Bool("serve", false, "Start the VM server (Connect, CBOR codec)")
	servePort := flag.Int("port", 0, "Server port (used with -serve, default from stackvm.toml or 4580)")
	lspMode := flag.Bool("lsp", false, "Start the assembly language server on stdio")
	remote := flag.String("remote", "", "Run the program on a remote server, e.g. http://localhost:4580")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stackvm [options] [program.svm]\n\n")
		fmt.Fprintf(os.Stderr, "Assembles and runs a stack machine program.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  stackvm hello.svm                  # Run a program\n")
		fmt.Fprintf(os.Stderr, "  stackvm -debug -max-steps 100 x.svm # Trace, stop after 100 steps\n")
		fmt.Fprintf(os.Stderr, "  stackvm -disasm x.svm              # Show the assembled code\n")
		fmt.Fprintf(os.Stderr, "  stackvm -serve -port 8080          # Serve the VM over HTTP\n")
		fmt.Fprintf(os.Stderr, "  stackvm -remote http://host:4580 x.svm\n")
	}
	flag.Parse()

	m, err := loadManifest(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitBadInput
	}

	// Flags given on the command line override the manifest.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			m.VM.Debug = *debug
		case "max-steps":
			m.VM.MaxSteps = *maxSteps
		case "port":
			m.Server.Port = *servePort
		}
	})
	if int(verbose) > m.Log.Verbosity {
		m.Log.Verbosity = int(verbose)
	}
	commonlog.Configure(m.Log.Verbosity, m.LogFile())

	if *lspMode {
		if err := server.NewLSP(bytecode.New()).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "LSP error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	if *serveMode {
		addr := fmt.Sprintf(":%d", m.Server.Port)
		srv := server.New(server.WithMaxSteps(m.VM.MaxSteps))
		defer srv.Stop()
		if err := srv.ListenAndServe(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	path := flag.Arg(0)
	if path == "" {
		path = m.EntryPath()
	}
	if path == "" || flag.NArg() > 1 {
		flag.Usage()
		return exitBadInput
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitBadInput
	}
	log.Infof("loaded %s (%d bytes)", path, len(source))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := runOptions{
		debug:    m.VM.Debug,
		maxSteps: m.VM.MaxSteps,
		disasm:   *disasm,
		diag:     m.DiagnosticsWriter(),
	}
	if *remote != "" {
		client := server.NewClient(http.DefaultClient, *remote)
		return runRemote(ctx, client, string(source), opts, os.Stdout, os.Stderr)
	}
	return runLocal(ctx, string(source), opts, os.Stdout, os.Stderr)
}

// loadManifest loads stackvm.toml from dir, or searches upward from the
// working directory when dir is empty. Without a file the defaults apply.
func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default()
	}
	return m, nil
}
