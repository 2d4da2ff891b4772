package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/stackvm/manifest"
)

const examplesDir = "../../examples"

func TestExamples(t *testing.T) {
	m, err := loadManifest(examplesDir)
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if m.VM.MaxSteps == 0 {
		t.Fatal("examples manifest should bound runs")
	}

	tests := []struct {
		file   string
		status int
		stdout string
	}{
		{"add.svm", exitOK, "exit: 5\n"},
		{"hello.svm", exitOK, "Hi\nexit: 10\n"},
		{"countdown.svm", exitOK, "3 2 1 exit: 0\n"},
		{"divzero.svm", exitFailure, ""},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(examplesDir, tt.file))
			if err != nil {
				t.Fatal(err)
			}

			var stdout, stderr, diag bytes.Buffer
			opts := runOptions{maxSteps: m.VM.MaxSteps, diag: &diag}
			status := runLocal(context.Background(), string(source), opts, &stdout, &stderr)
			if status != tt.status {
				t.Errorf("status = %d, want %d (stderr %q)", status, tt.status, stderr.String())
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.stdout)
			}
		})
	}
}

func TestExamples_EntryPoint(t *testing.T) {
	m, err := manifest.Load(examplesDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(m.EntryPath()); err != nil {
		t.Errorf("entry %s: %v", m.EntryPath(), err)
	}
}

func TestLoadManifest_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	m, err := loadManifest("")
	if err != nil {
		t.Fatalf("loadManifest: %v", err)
	}
	if m.Server.Port != manifest.DefaultPort {
		t.Errorf("Port = %d, want %d", m.Server.Port, manifest.DefaultPort)
	}
}
