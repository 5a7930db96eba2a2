// Package lsp publishes compiler diagnostics over the Language Server
// Protocol. A Server tracks one Compiler shared across every open
// document, the same way the compiler facade is meant to be driven by a
// long-lived caller: each didOpen/didChange reparses just the
// changed file and republishes every currently-open file's diagnostics,
// since a symbol-table change in one file (a duplicate export, say) can
// affect diagnostics anchored in another.
package lsp

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/tola-lang/tola/pkg/tola/compiler"
)

// Server dispatches the subset of the Language Server Protocol needed to
// keep an editor's diagnostics in sync with the Tola compiler facade.
type Server struct {
	comp *compiler.Compiler
	open map[string]bool
}

// NewServer constructs a server with a fresh, empty compiler handle.
func NewServer() *Server {
	return &Server{
		comp: compiler.New(),
		open: make(map[string]bool),
	}
}

// Run drives the server's JSON-RPC2 connection over rwc until the client
// disconnects or sends "exit".
func (s *Server) Run(rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	conn.Go(context.Background(), func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		return s.handle(ctx, conn, reply, req)
	})

	<-conn.Done()

	return conn.Err()
}

func (s *Server) handle(ctx context.Context, conn jsonrpc2.Conn, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	log.Debugf("lsp: %s", req.Method())

	switch req.Method() {
	case protocol.MethodInitialize:
		return reply(ctx, &protocol.InitializeResult{
			Capabilities: protocol.ServerCapabilities{
				TextDocumentSync: protocol.TextDocumentSyncKindFull,
			},
		}, nil)

	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)

	case protocol.MethodTextDocumentDidOpen:
		var params protocol.DidOpenTextDocumentParams

		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		path := params.TextDocument.URI.Filename()
		s.open[path] = true
		s.reparse(ctx, conn, path, []byte(params.TextDocument.Text))

		return reply(ctx, nil, nil)

	case protocol.MethodTextDocumentDidChange:
		var params protocol.DidChangeTextDocumentParams

		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		path := params.TextDocument.URI.Filename()

		if len(params.ContentChanges) > 0 {
			s.reparse(ctx, conn, path, []byte(params.ContentChanges[len(params.ContentChanges)-1].Text))
		}

		return reply(ctx, nil, nil)

	case protocol.MethodTextDocumentDidClose:
		var params protocol.DidCloseTextDocumentParams

		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, err)
		}

		delete(s.open, params.TextDocument.URI.Filename())

		return reply(ctx, nil, nil)

	case protocol.MethodShutdown:
		return reply(ctx, nil, nil)

	case protocol.MethodExit:
		return conn.Close()

	default:
		return reply(ctx, nil, jsonrpc2.ErrMethodNotFound)
	}
}

// reparse feeds contents through the compiler facade's parse and
// check_types stages and republishes diagnostics for every open document,
// since symbol-table and type-check diagnostics are not confined to the
// file that changed.
func (s *Server) reparse(ctx context.Context, conn jsonrpc2.Conn, path string, contents []byte) {
	s.comp.Parse(path, contents)
	s.comp.CheckTypes()

	for openPath := range s.open {
		diags := diagnosticsForFile(s.comp.Errors(), openPath, openPath == path)

		params := &protocol.PublishDiagnosticsParams{
			URI:         uri.File(openPath),
			Diagnostics: diags,
		}

		if err := conn.Notify(ctx, protocol.MethodTextDocumentPublishDiagnostics, params); err != nil {
			log.WithError(err).Warn("lsp: failed to publish diagnostics")
		}
	}
}
