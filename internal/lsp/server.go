// Package lsp implements the language server surface from spec §4.9 (C9):
// a document store keyed by URI, synchronous rebuild-on-open/change, and
// the request handlers §6 lists under "LSP". It is grounded on the
// teacher's single-threaded, synchronous-to-completion execution model
// (§5: "no operation suspends") generalized from a batch compiler
// invocation to a long-lived per-document store, and wired onto
// go.lsp.dev/protocol's typed structures and go.lsp.dev/jsonrpc2's stdio
// framing the way other_examples/manifests/miaomiao1992-dingo pulls in
// the same pair for its own language server.
//
// server.go is deliberately thin: it only decodes/encodes JSON-RPC
// envelopes and dispatches by method name onto Server's plain-Go-typed
// methods in handlers.go, so a transport-layer API correction never
// touches the request logic those methods implement.
package lsp

import (
	"context"
	"encoding/json"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// Serve runs srv as a stdio JSON-RPC server over rwc until the
// connection closes or ctx is cancelled (§5 "a single-threaded loop that
// reads framed JSON-RPC messages from standard input ... writes framed
// responses to standard output; there is no request concurrency").
func Serve(ctx context.Context, rwc io.ReadWriteCloser, srv *Server, log *zap.Logger) error {
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, dispatcher(conn, srv, log))
	<-conn.Done()
	return conn.Err()
}

func dispatcher(conn jsonrpc2.Conn, srv *Server, log *zap.Logger) jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		switch req.Method() {
		case "initialize":
			return reply(ctx, srv.Initialize(), nil)
		case "initialized", "exit", "shutdown":
			return reply(ctx, nil, nil)

		case "textDocument/didOpen":
			var p protocol.DidOpenTextDocumentParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			diags := srv.DidOpen(string(p.TextDocument.URI), p.TextDocument.Text, int32(p.TextDocument.Version))
			publish(ctx, conn, log, p.TextDocument.URI, diags)
			return reply(ctx, nil, nil)

		case "textDocument/didChange":
			var p protocol.DidChangeTextDocumentParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			diags := srv.DidChange(string(p.TextDocument.URI), int32(p.TextDocument.Version), toContentChanges(p.ContentChanges))
			publish(ctx, conn, log, p.TextDocument.URI, diags)
			return reply(ctx, nil, nil)

		case "textDocument/didClose":
			var p protocol.DidCloseTextDocumentParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			srv.DidClose(string(p.TextDocument.URI))
			return reply(ctx, nil, nil)

		case "textDocument/hover":
			var p protocol.HoverParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.Hover(string(p.TextDocument.URI), p.Position), nil)

		case "textDocument/completion":
			var p protocol.CompletionParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.Completion(string(p.TextDocument.URI), p.Position), nil)

		case "textDocument/documentSymbol":
			var p protocol.DocumentSymbolParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.DocumentSymbol(string(p.TextDocument.URI)), nil)

		case "textDocument/definition":
			var p protocol.DefinitionParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.Definition(string(p.TextDocument.URI), p.Position), nil)

		case "textDocument/codeAction":
			var p protocol.CodeActionParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.CodeActions(string(p.TextDocument.URI), p.Range), nil)

		case "textDocument/formatting":
			var p protocol.DocumentFormattingParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.Formatting(string(p.TextDocument.URI)), nil)

		case "textDocument/semanticTokens/full":
			var p protocol.SemanticTokensParams
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, srv.SemanticTokens(string(p.TextDocument.URI)), nil)

		case "textDocument/x-blueprint-compile":
			var p protocol.TextDocumentIdentifier
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			xml, ok := srv.Compile(string(p.URI))
			if !ok {
				return reply(ctx, nil, nil)
			}
			return reply(ctx, struct {
				XML string `json:"xml"`
			}{XML: xml}, nil)

		case "x-blueprint/decompile":
			var p struct {
				BLP string `json:"blp"`
			}
			if err := unmarshal(req, &p); err != nil {
				return reply(ctx, nil, err)
			}
			src, err := srv.Decompile(p.BLP)
			if err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, struct {
				BLP string `json:"blp"`
			}{BLP: src}, nil)

		default:
			log.Debug("unhandled lsp method", zap.String("method", req.Method()))
			return reply(ctx, nil, nil)
		}
	}
}

func unmarshal(req jsonrpc2.Request, v any) error {
	return json.Unmarshal(req.Params(), v)
}

func toContentChanges(in []protocol.TextDocumentContentChangeEvent) []ContentChange {
	out := make([]ContentChange, 0, len(in))
	for _, c := range in {
		if c.Range == nil {
			out = append(out, ContentChange{HasRange: false, Text: c.Text})
			continue
		}
		out = append(out, ContentChange{
			HasRange:  true,
			StartLine: int(c.Range.Start.Line),
			StartChar: int(c.Range.Start.Character),
			EndLine:   int(c.Range.End.Line),
			EndChar:   int(c.Range.End.Character),
			Text:      c.Text,
		})
	}
	return out
}

func publish(ctx context.Context, conn jsonrpc2.Conn, log *zap.Logger, uri protocol.DocumentURI, diags []protocol.Diagnostic) {
	params := protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: diags}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		log.Warn("publishDiagnostics failed", zap.Error(err), zap.String("uri", string(uri)))
	}
}
