package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/stackvm/pkg/bytecode"
	"github.com/chazu/stackvm/pkg/textutil"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "stackvm-lsp"

// LspServer provides editor features for assembly source: diagnostics,
// mnemonic completion, hover and jump-target definition.
type LspServer struct {
	worker *VMWorker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server resolving mnemonics against v.
func NewLSP(v *bytecode.VM) *LspServer {
	s := &LspServer{
		worker:  NewVMWorker(v),
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
		TextDocumentDefinition: s.textDocumentDefinition,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "stackvm LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// --- Language features ---

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	prefix := extractPrefix(text, params.Position)
	result, err := s.worker.Do(context.Background(), func(v *bytecode.VM) any {
		return complete(v.Registry(), prefix)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}

	result, err := s.worker.Do(context.Background(), func(v *bytecode.VM) any {
		return hover(v.Registry(), word)
	})
	if err != nil || result == nil {
		return nil, nil
	}
	return result.(*protocol.Hover), nil
}

// textDocumentDefinition resolves a jump operand to the source line of the
// instruction it targets.
func (s *LspServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	text, ok := s.document(uri)
	if !ok {
		return nil, nil
	}

	line, ok := jumpTarget(text, params.Position)
	if !ok {
		return nil, nil
	}
	return []protocol.Location{{
		URI: uri,
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line)},
			End:   protocol.Position{Line: protocol.UInteger(line)},
		},
	}}, nil
}

// --- Registry-backed logic (called on worker goroutine) ---

func complete(r *bytecode.Registry, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	upper := strings.ToUpper(prefix)

	for _, name := range r.Mnemonics() {
		if !strings.HasPrefix(name, prefix) && !strings.HasPrefix(name, upper) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := "instruction"
		if info, ok := bytecode.LookupBuiltin(name); ok {
			detail = info.Summary
		}
		nameCopy := name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &nameCopy,
		})
	}

	return items
}

func hover(r *bytecode.Registry, word string) *protocol.Hover {
	id, ok := r.Resolve(word)
	if !ok {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (opcode %d)\n", word, id)
	if info, ok := bytecode.LookupBuiltin(word); ok {
		fmt.Fprintf(&b, "\n%s\n\npops %d, pushes %d", info.Summary, info.StackPop, info.StackPush)
		if info.UsesArg {
			b.WriteString(", uses its operand")
		}
		b.WriteString("\n")
	}
	if ids := r.Registrations(word); len(ids) > 1 {
		shadowed := make([]string, 0, len(ids)-1)
		for _, old := range ids[:len(ids)-1] {
			shadowed = append(shadowed, strconv.FormatUint(uint64(old), 10))
		}
		fmt.Fprintf(&b, "\nshadows opcode %s\n", strings.Join(shadowed, ", "))
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result, err := s.worker.Do(context.Background(), func(v *bytecode.VM) any {
		return diagnose(v.Registry(), text)
	})
	if err != nil {
		log.Warningf("diagnostics for %s: %v", uri, err)
		return
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: result.([]protocol.Diagnostic),
	})
}

// diagnose assembles text and reports the first rejected line. The
// assembler stops at the first failure, so there is at most one.
func diagnose(r *bytecode.Registry, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	_, err := bytecode.Assemble(r, text)
	if err == nil {
		return diagnostics
	}

	var asmErr *bytecode.AssemblyError
	line := 0
	width := 0
	if errors.As(err, &asmErr) {
		line = asmErr.Line - 1
		width = len(asmErr.Text)
	}

	severity := protocol.DiagnosticSeverityError
	source := lspName
	return append(diagnostics, protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(width)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  err.Error(),
	})
}

var jumpMnemonics = map[string]bool{"JMP": true, "JMPZ": true}

// jumpTarget reports the 0-based source line of the instruction addressed
// by the operand under pos.
func jumpTarget(text string, pos protocol.Position) (int, bool) {
	word := extractWord(text, pos)
	if word == "" {
		return 0, false
	}

	lines := textutil.Lines(text)
	if int(pos.Line) >= len(lines) {
		return 0, false
	}
	fields := textutil.Split(lines[pos.Line], ' ')
	if len(fields) != 2 || !jumpMnemonics[fields[0]] || !strings.HasSuffix(fields[1], word) {
		return 0, false
	}

	// parse the operand the way the assembler does, so "+3" and "3" agree
	addr, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || addr < 0 {
		return 0, false
	}

	index := 0
	for i, line := range lines {
		if len(textutil.Split(line, ' ')) == 0 {
			continue
		}
		if int64(index) == addr {
			return i, true
		}
		index++
	}
	return 0, false
}

// --- Text extraction helpers ---

// extractPrefix returns the word fragment before the cursor for completion.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	return line[start:col]
}

// extractWord returns the full word under the cursor.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := lineAt(text, pos)
	if !ok {
		return ""
	}

	start := col
	for start > 0 && isWordByte(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	return line[start:end]
}

func lineAt(text string, pos protocol.Position) (string, int, bool) {
	lines := textutil.Lines(text)
	if int(pos.Line) >= len(lines) {
		return "", 0, false
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}
	return line, col, true
}

func isWordByte(c byte) bool {
	ch := rune(c)
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-'
}

func boolPtr(b bool) *bool {
	return &b
}
