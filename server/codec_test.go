package server

import (
	"bytes"
	"testing"

	"github.com/chazu/stackvm/pkg/bytecode"
)

func TestCBORCodec_Name(t *testing.T) {
	if got := (cborCodec{}).Name(); got != "cbor" {
		t.Errorf("Name = %q, want %q", got, "cbor")
	}
}

func TestCBORCodec_CarriesCode(t *testing.T) {
	var c cborCodec
	in := &RunRequest{
		Code:     bytecode.Code{{Op: 1, Arg: -3}, {Op: 2}},
		Debug:    true,
		MaxSteps: 10,
	}

	data, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out RunRequest
	if err := c.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !out.Code.Equal(in.Code) {
		t.Errorf("Code = %v, want %v", out.Code, in.Code)
	}
	if !out.Debug || out.MaxSteps != 10 {
		t.Errorf("scalar fields lost: %+v", out)
	}
}

func TestCBORCodec_Deterministic(t *testing.T) {
	var c cborCodec
	msg := &InstructionInfo{Mnemonic: "ADD", Opcode: 4, StackPop: 2, StackPush: 1}

	a, err := c.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, _ := c.Marshal(msg)
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding should be byte-stable")
	}
}

func TestCBORCodec_UnmarshalGarbage(t *testing.T) {
	var out RunResponse
	if err := (cborCodec{}).Unmarshal([]byte{0xff, 0x00}, &out); err == nil {
		t.Error("Unmarshal of garbage should fail")
	}
}
