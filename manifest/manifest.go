// Package manifest handles stackvm.toml configuration.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "stackvm.toml"

// DefaultPort is the server port used when none is configured.
const DefaultPort = 4580

// Manifest represents a stackvm.toml configuration.
type Manifest struct {
	Program ProgramConfig `toml:"program"`
	VM      VMConfig      `toml:"vm"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`

	// Dir is the directory containing the stackvm.toml file (set at load time).
	Dir string `toml:"-"`
}

// ProgramConfig names the program to run when none is given on the
// command line.
type ProgramConfig struct {
	Entry string `toml:"entry"`
}

// VMConfig configures VM execution.
type VMConfig struct {
	Debug       bool   `toml:"debug"`
	MaxSteps    int    `toml:"max-steps"`
	Diagnostics string `toml:"diagnostics"` // "stdout" or "stderr"
}

// ServerConfig configures the RPC server.
type ServerConfig struct {
	Port int `toml:"port"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns a manifest with every default applied.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses a stackvm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	m.applyDefaults()

	return &m, nil
}

// FindAndLoad walks up from startDir to find a stackvm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) validate() error {
	switch m.VM.Diagnostics {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("vm.diagnostics must be \"stdout\" or \"stderr\", got %q", m.VM.Diagnostics)
	}
	if m.VM.MaxSteps < 0 {
		return fmt.Errorf("vm.max-steps must not be negative, got %d", m.VM.MaxSteps)
	}
	return nil
}

func (m *Manifest) applyDefaults() {
	if m.VM.Diagnostics == "" {
		m.VM.Diagnostics = "stdout"
	}
	if m.Server.Port == 0 {
		m.Server.Port = DefaultPort
	}
}

// DiagnosticsWriter returns the stream named by vm.diagnostics.
func (m *Manifest) DiagnosticsWriter() io.Writer {
	if m.VM.Diagnostics == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

// EntryPath returns the absolute path of program.entry, or "" if unset.
func (m *Manifest) EntryPath() string {
	if m.Program.Entry == "" {
		return ""
	}
	if filepath.IsAbs(m.Program.Entry) {
		return m.Program.Entry
	}
	return filepath.Join(m.Dir, m.Program.Entry)
}

// LogFile returns the log file path, or nil to log to stderr.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}
