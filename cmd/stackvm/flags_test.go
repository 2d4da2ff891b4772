package main

import (
	"flag"
	"io"
	"testing"
)

func TestCountFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"absent", nil, 0},
		{"once", []string{"-v"}, 1},
		{"twice", []string{"-v", "-v"}, 2},
		{"three times", []string{"-v", "-v", "-v"}, 3},
		{"explicit", []string{"-v=4"}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("stackvm", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			var v countFlag
			fs.Var(&v, "v", "verbosity")
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if int(v) != tt.want {
				t.Errorf("count = %d, want %d", v, tt.want)
			}
		})
	}
}

func TestCountFlag_RejectsGarbage(t *testing.T) {
	var v countFlag
	if err := v.Set("lots"); err == nil {
		t.Error("Set(lots) should fail")
	}
}
