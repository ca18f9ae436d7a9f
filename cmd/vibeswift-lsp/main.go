// Command vibeswift-lsp exposes compile-only diagnostics over the
// Language Server Protocol: didOpen/didChange triggers compile and
// publishes whatever diagnostics come back. It never runs a program,
// so it introduces no new capability surface.
package main

import (
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/vibeswift/engine"
	"github.com/chazu/vibeswift/internal/config"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/diag"
)

const lspName = "vibeswift-lsp"

var version = "0.1.0"

func main() {
	commonlog.Configure(1, nil)

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	s := newServer(cfg)
	if err := s.server.RunStdio(); err != nil {
		panic(err)
	}
}

// server bridges LSP document lifecycle events to the Engine's
// compile-only path.
type server struct {
	eng  *engine.Engine
	caps capability.Set

	mu   sync.Mutex
	docs map[string]string // URI -> full document text

	handler protocol.Handler
	server  *glspserver.Server
}

func newServer(cfg config.Config) *server {
	s := &server{
		eng:  engine.New(cfg),
		caps: cfg.DefaultCapabilities,
		docs: make(map[string]string),
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
	}
	s.server = glspserver.NewServer(&s.handler, lspName, false)
	return s
}

func (s *server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &version,
		},
	}, nil
}

func (s *server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error { return nil }

func (s *server) shutdown(ctx *glsp.Context) error { return nil }

func (s *server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if len(params.ContentChanges) == 0 {
		return nil
	}
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}

	s.mu.Lock()
	s.docs[string(uri)] = whole.Text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, whole.Text)
	return nil
}

func (s *server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
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

func (s *server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	result := s.eng.Compile(text, string(uri), s.caps)
	diagnostics := toLspDiagnostics(result.Diagnostics)

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func toLspDiagnostics(diags []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	source := lspName
	for _, d := range diags {
		severity := toLspSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    toLspRange(d.Span),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toLspRange(span *diag.Span) protocol.Range {
	if span == nil {
		zero := protocol.Position{Line: 0, Character: 0}
		return protocol.Range{Start: zero, End: zero}
	}
	return protocol.Range{Start: toLspPosition(span.Start), End: toLspPosition(span.End)}
}

// toLspPosition converts a 1-based diag.Position to LSP's 0-based
// line/character pair.
func toLspPosition(p diag.Position) protocol.Position {
	line := p.Line - 1
	if line < 0 {
		line = 0
	}
	col := p.Column - 1
	if col < 0 {
		col = 0
	}
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

func toLspSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SeverityError:
		return protocol.DiagnosticSeverityError
	case diag.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diag.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

func boolPtr(b bool) *bool { return &b }
