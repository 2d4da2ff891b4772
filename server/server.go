package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/stackvm/pkg/bytecode"
)

var log = commonlog.GetLogger("stackvm.server")

// ServiceName is the Connect service name for VMService.
const ServiceName = "stackvm.v1.VMService"

// Procedure paths served by Server.
const (
	AssembleProcedure       = "/" + ServiceName + "/Assemble"
	RunProcedure            = "/" + ServiceName + "/Run"
	DisassembleProcedure    = "/" + ServiceName + "/Disassemble"
	InstructionsProcedure   = "/" + ServiceName + "/Instructions"
	CreateSessionProcedure  = "/" + ServiceName + "/CreateSession"
	DestroySessionProcedure = "/" + ServiceName + "/DestroySession"
)

// Server exposes VMService over Connect with the CBOR codec.
type Server struct {
	sessions *SessionStore
	service  *VMService
	mux      *http.ServeMux
	http     *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxSteps int
	newVM    func() *bytecode.VM
}

// WithMaxSteps caps the number of instructions any single run may execute.
// Zero means no server-side cap.
func WithMaxSteps(n int) ServerOption {
	return func(c *serverConfig) { c.maxSteps = n }
}

// WithSessionVM sets the constructor for session VMs, allowing sessions to
// carry custom instructions. The default is a VM with only the built-ins.
func WithSessionVM(fn func() *bytecode.VM) ServerOption {
	return func(c *serverConfig) { c.newVM = fn }
}

// New creates a Server.
func New(opts ...ServerOption) *Server {
	cfg := &serverConfig{
		newVM: func() *bytecode.VM { return bytecode.New() },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sessions := NewSessionStore(cfg.newVM)
	s := &Server{
		sessions: sessions,
		service:  NewVMService(sessions, cfg.maxSteps),
		mux:      http.NewServeMux(),
	}

	codec := connect.WithCodec(cborCodec{})
	svc := s.service
	s.mux.Handle(AssembleProcedure, connect.NewUnaryHandler(AssembleProcedure, svc.Assemble, codec))
	s.mux.Handle(RunProcedure, connect.NewUnaryHandler(RunProcedure, svc.Run, codec))
	s.mux.Handle(DisassembleProcedure, connect.NewUnaryHandler(DisassembleProcedure, svc.Disassemble, codec))
	s.mux.Handle(InstructionsProcedure, connect.NewUnaryHandler(InstructionsProcedure, svc.Instructions, codec))
	s.mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, svc.CreateSession, codec))
	s.mux.Handle(DestroySessionProcedure, connect.NewUnaryHandler(DestroySessionProcedure, svc.DestroySession, codec))

	return s
}

// Handler returns the HTTP handler serving every procedure.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Sessions returns the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// ListenAndServe starts the HTTP server on the given address, in the form
// "host:port" or ":port". It returns nil after Stop.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Noticef("stackvm server listening on %s", addr)
	log.Infof("  Connect (CBOR): http://%s%s", addr, RunProcedure)

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts down the HTTP server, if running, and every session.
func (s *Server) Stop() {
	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			log.Warningf("shutdown: %v", err)
		}
	}
	s.sessions.Close()
}
