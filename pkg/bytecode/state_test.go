package bytecode

import (
	"errors"
	"os"
	"testing"
)

func TestStatePushPop(t *testing.T) {
	s := NewState(nil)
	s.Push(1)
	s.Push(2)

	if s.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", s.Depth())
	}
	if top, _ := s.Peek(); top != 2 {
		t.Errorf("Peek = %d, want 2", top)
	}
	if v, _ := s.Pop(); v != 2 {
		t.Errorf("Pop = %d, want 2", v)
	}
	if v, _ := s.Pop(); v != 1 {
		t.Errorf("Pop = %d, want 1", v)
	}
	if _, err := s.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Pop on empty = %v", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("Peek on empty = %v", err)
	}
}

func TestStateStackIsCopy(t *testing.T) {
	s := NewState(nil)
	s.Push(10)
	snapshot := s.Stack()
	snapshot[0] = 99

	if top, _ := s.Peek(); top != 10 {
		t.Errorf("Stack() should return a copy, top = %d", top)
	}
}

func TestStateReset(t *testing.T) {
	s := NewState(nil)
	s.Push(1)
	s.PC = 4
	s.Debug = true
	s.WriteOutput("abc")

	s.Reset()

	if s.PC != 0 || s.Depth() != 0 || s.Output() != "" {
		t.Errorf("Reset left PC=%d depth=%d output=%q", s.PC, s.Depth(), s.Output())
	}
	if !s.Debug {
		t.Error("Reset should keep the debug flag")
	}
}

func TestStateDefaultDiagnostics(t *testing.T) {
	s := NewState(nil)
	if s.Diagnostics() != os.Stdout {
		t.Error("default diagnostics should be os.Stdout")
	}
}
