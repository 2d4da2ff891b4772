package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/pkg/runner"
)

// VMService implements the stackvm.v1.VMService Connect procedures.
// Assembly and runtime failures are reported in-band in the responses;
// Connect errors are reserved for malformed requests and unknown sessions.
type VMService struct {
	sessions *SessionStore
	builtins *bytecode.Registry
	maxSteps int
}

// NewVMService creates a VMService. maxSteps caps every run; zero leaves
// runs bounded only by the request and its context.
func NewVMService(sessions *SessionStore, maxSteps int) *VMService {
	builtins := bytecode.NewRegistry()
	bytecode.RegisterBuiltins(builtins)
	return &VMService{
		sessions: sessions,
		builtins: builtins,
		maxSteps: maxSteps,
	}
}

// Assemble translates source into code without running it.
func (s *VMService) Assemble(
	ctx context.Context,
	req *connect.Request[AssembleRequest],
) (*connect.Response[AssembleResponse], error) {
	if req.Msg.Source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	resp := &AssembleResponse{}
	code, err := bytecode.Assemble(s.builtins, req.Msg.Source)
	if err != nil {
		resp.Error, resp.ErrorClass, resp.Line = describeError(err)
		log.Debugf("assemble rejected: %v", err)
		return connect.NewResponse(resp), nil
	}

	resp.Code = code
	// Assembled code only references registered opcodes, so the listing
	// cannot fail here.
	resp.Listing, _ = bytecode.Disassemble(s.builtins, code)
	return connect.NewResponse(resp), nil
}

// Run assembles and runs a program, on a fresh VM or on a session VM.
func (s *VMService) Run(
	ctx context.Context,
	req *connect.Request[RunRequest],
) (*connect.Response[RunResponse], error) {
	msg := req.Msg
	if msg.Source == "" && len(msg.Code) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source or code is required"))
	}
	if msg.MaxSteps < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("max_steps must not be negative"))
	}
	limits := runner.Limits{MaxSteps: s.effectiveMaxSteps(msg.MaxSteps)}

	if msg.SessionID == "" {
		resp := s.runOn(ctx, bytecode.New(), msg, limits)
		return connect.NewResponse(resp), nil
	}

	session, ok := s.sessions.Get(msg.SessionID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", msg.SessionID))
	}

	result, err := session.Worker().Do(ctx, func(v *bytecode.VM) any {
		return s.runOn(ctx, v, msg, limits)
	})
	if err != nil {
		resp := &RunResponse{}
		resp.Error, resp.ErrorClass, resp.Line = describeError(err)
		return connect.NewResponse(resp), nil
	}
	return connect.NewResponse(result.(*RunResponse)), nil
}

// runOn runs msg on v, capturing diagnostics for this run only.
func (s *VMService) runOn(ctx context.Context, v *bytecode.VM, msg *RunRequest, limits runner.Limits) *RunResponse {
	var diag bytes.Buffer
	st := v.State()
	prevDiag, prevDebug := st.Diagnostics(), st.Debug
	defer func() {
		st.SetDiagnostics(prevDiag)
		st.Debug = prevDebug
	}()
	st.SetDiagnostics(&diag)
	st.Debug = msg.Debug

	if msg.Reset {
		v.Reset()
	}

	resp := &RunResponse{}
	code := msg.Code
	if msg.Source != "" {
		assembled, err := v.Assemble(msg.Source)
		if err != nil {
			resp.Error, resp.ErrorClass, resp.Line = describeError(err)
			resp.Stack = st.Stack()
			resp.PC = st.PC
			return resp
		}
		code = assembled
	}

	res, err := runner.Run(ctx, v, code, limits)
	resp.Exit = res.Exit
	resp.Output = res.Output
	resp.Steps = res.Steps
	resp.Stack = st.Stack()
	resp.PC = st.PC
	resp.Diagnostics = diag.String()
	if err != nil {
		resp.Error, resp.ErrorClass, resp.Line = describeError(err)
		log.Debugf("run failed after %d steps: %v", res.Steps, err)
	}
	return resp
}

// Disassemble lists code against the built-in instructions.
func (s *VMService) Disassemble(
	ctx context.Context,
	req *connect.Request[DisassembleRequest],
) (*connect.Response[DisassembleResponse], error) {
	listing, err := bytecode.Disassemble(s.builtins, req.Msg.Code)
	resp := &DisassembleResponse{Listing: listing}
	if err != nil {
		resp.Error, resp.ErrorClass, _ = describeError(err)
	}
	return connect.NewResponse(resp), nil
}

// Instructions lists the registered instructions of a session VM, or the
// built-ins when no session is named.
func (s *VMService) Instructions(
	ctx context.Context,
	req *connect.Request[InstructionsRequest],
) (*connect.Response[InstructionsResponse], error) {
	if req.Msg.SessionID == "" {
		return connect.NewResponse(&InstructionsResponse{Instructions: describeRegistry(s.builtins)}), nil
	}

	session, ok := s.sessions.Get(req.Msg.SessionID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", req.Msg.SessionID))
	}
	result, err := session.Worker().Do(ctx, func(v *bytecode.VM) any {
		return describeRegistry(v.Registry())
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewResponse(&InstructionsResponse{Instructions: result.([]InstructionInfo)}), nil
}

// CreateSession starts a VM whose state persists across Run calls.
func (s *VMService) CreateSession(
	ctx context.Context,
	req *connect.Request[CreateSessionRequest],
) (*connect.Response[CreateSessionResponse], error) {
	session := s.sessions.Create(req.Msg.Name)
	log.Infof("session %s created (%q)", session.ID, session.Name)
	return connect.NewResponse(&CreateSessionResponse{SessionID: session.ID}), nil
}

// DestroySession drops a session and its VM.
func (s *VMService) DestroySession(
	ctx context.Context,
	req *connect.Request[DestroySessionRequest],
) (*connect.Response[DestroySessionResponse], error) {
	if req.Msg.SessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("session_id is required"))
	}
	existed := s.sessions.Destroy(req.Msg.SessionID)
	if existed {
		log.Infof("session %s destroyed", req.Msg.SessionID)
	}
	return connect.NewResponse(&DestroySessionResponse{Existed: existed}), nil
}

func (s *VMService) effectiveMaxSteps(requested int) int {
	switch {
	case s.maxSteps == 0:
		return requested
	case requested == 0 || requested > s.maxSteps:
		return s.maxSteps
	default:
		return requested
	}
}

// describeError flattens err into the in-band error fields.
func describeError(err error) (msg, class string, line int) {
	var asmErr *bytecode.AssemblyError
	if errors.As(err, &asmErr) {
		line = asmErr.Line
	}
	return err.Error(), string(runner.Classify(err)), line
}

func describeRegistry(r *bytecode.Registry) []InstructionInfo {
	names := r.Mnemonics()
	out := make([]InstructionInfo, 0, len(names))
	for _, name := range names {
		id, _ := r.Resolve(name)
		info := InstructionInfo{Mnemonic: name, Opcode: uint32(id)}
		if b, ok := bytecode.LookupBuiltin(name); ok {
			info.StackPop = b.StackPop
			info.StackPush = b.StackPush
			info.UsesArg = b.UsesArg
			info.Summary = b.Summary
		}
		out = append(out, info)
	}
	return out
}
