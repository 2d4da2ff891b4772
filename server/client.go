package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// Client calls a remote VMService.
type Client struct {
	assemble       *connect.Client[AssembleRequest, AssembleResponse]
	run            *connect.Client[RunRequest, RunResponse]
	disassemble    *connect.Client[DisassembleRequest, DisassembleResponse]
	instructions   *connect.Client[InstructionsRequest, InstructionsResponse]
	createSession  *connect.Client[CreateSessionRequest, CreateSessionResponse]
	destroySession *connect.Client[DestroySessionRequest, DestroySessionResponse]
}

// NewClient creates a Client for the server at baseURL, for example
// "http://localhost:4580".
func NewClient(httpClient connect.HTTPClient, baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	codec := connect.WithCodec(cborCodec{})
	return &Client{
		assemble:       connect.NewClient[AssembleRequest, AssembleResponse](httpClient, baseURL+AssembleProcedure, codec),
		run:            connect.NewClient[RunRequest, RunResponse](httpClient, baseURL+RunProcedure, codec),
		disassemble:    connect.NewClient[DisassembleRequest, DisassembleResponse](httpClient, baseURL+DisassembleProcedure, codec),
		instructions:   connect.NewClient[InstructionsRequest, InstructionsResponse](httpClient, baseURL+InstructionsProcedure, codec),
		createSession:  connect.NewClient[CreateSessionRequest, CreateSessionResponse](httpClient, baseURL+CreateSessionProcedure, codec),
		destroySession: connect.NewClient[DestroySessionRequest, DestroySessionResponse](httpClient, baseURL+DestroySessionProcedure, codec),
	}
}

// Assemble calls VMService.Assemble.
func (c *Client) Assemble(ctx context.Context, req *AssembleRequest) (*AssembleResponse, error) {
	resp, err := c.assemble.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Run calls VMService.Run.
func (c *Client) Run(ctx context.Context, req *RunRequest) (*RunResponse, error) {
	resp, err := c.run.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Disassemble calls VMService.Disassemble.
func (c *Client) Disassemble(ctx context.Context, req *DisassembleRequest) (*DisassembleResponse, error) {
	resp, err := c.disassemble.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Instructions calls VMService.Instructions.
func (c *Client) Instructions(ctx context.Context, req *InstructionsRequest) (*InstructionsResponse, error) {
	resp, err := c.instructions.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// CreateSession calls VMService.CreateSession.
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*CreateSessionResponse, error) {
	resp, err := c.createSession.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// DestroySession calls VMService.DestroySession.
func (c *Client) DestroySession(ctx context.Context, req *DestroySessionRequest) (*DestroySessionResponse, error) {
	resp, err := c.destroySession.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
