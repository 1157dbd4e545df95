// Package lsp implements the language server surface from spec §4.9 (C9):
// a document store keyed by URI, synchronous rebuild-on-open/change, and
// the request handlers §6 lists under "LSP". It is grounded on the
// teacher's single-threaded, synchronous-to-completion execution model
// (§5: "no operation suspends") generalized from a batch compiler
// invocation to a long-lived per-document store, and wired onto
// go.lsp.dev/protocol's typed structures and go.lsp.dev/jsonrpc2's stdio
// framing the way other_examples/manifests/miaomiao1992-dingo pulls in
// the same pair for its own language server.
package lsp

import (
	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/idr"
	"github.com/uidl-lang/uidlc/internal/lexer"
	"github.com/uidl-lang/uidlc/internal/token"
)

// OpenFile is one entry of the §4.9 "uri -> OpenFile{text, version, tokens,
// ast, diagnostics}" document store.
type OpenFile struct {
	URI         string
	Text        string
	Version     int32
	Source      *token.Source
	Tokens      []token.Token
	UI          *ast.UI
	Env         *ast.Env
	Diagnostics []*diag.Diagnostic
}

// Store is the LSP server's single-threaded document table (§5: "the
// document store is therefore mutated without locks").
type Store struct {
	files  map[string]*OpenFile
	loader *idr.Loader
}

// NewStore creates an empty store backed by loader for IDR resolution.
func NewStore(loader *idr.Loader) *Store {
	return &Store{files: map[string]*OpenFile{}, loader: loader}
}

// Open registers uri with its initial text and rebuilds it synchronously
// (§4.9 "on open ... rebuilds tokens and AST synchronously").
func (s *Store) Open(uri, text string, version int32) *OpenFile {
	f := &OpenFile{URI: uri, Text: text, Version: version}
	s.files[uri] = f
	s.rebuild(f)
	return f
}

// Change replaces uri's text (the caller has already applied any
// incremental edits left-to-right, per §4.9) and rebuilds it.
func (s *Store) Change(uri, text string, version int32) *OpenFile {
	f, ok := s.files[uri]
	if !ok {
		return s.Open(uri, text, version)
	}
	f.Text = text
	f.Version = version
	s.rebuild(f)
	return f
}

// Close removes uri from the store.
func (s *Store) Close(uri string) { delete(s.files, uri) }

// Get returns the open file for uri, or nil if it isn't open.
func (s *Store) Get(uri string) *OpenFile { return s.files[uri] }

func (s *Store) rebuild(f *OpenFile) {
	f.Source = token.NewSource(f.Text)
	toks, _ := lexer.Tokenize(f.Text)
	f.Tokens = toks

	env := ast.NewEnv(s.loader)
	f.Env = env
	f.UI = ast.Parse(f.Source, toks, env)
	f.UI.Validate(env)
	f.Diagnostics = env.Diags.All()
}

// ApplyRangeEdit applies one incremental change (a half-open
// line/column range plus replacement text) to text, returning the new
// text. startLine/startCol/endLine/endCol are 0-based LSP coordinates;
// edits within one change notification must be applied left-to-right in
// the order LSP sends them (§4.9).
func ApplyRangeEdit(src *token.Source, startLine, startCol, endLine, endCol int, newText string) string {
	start := src.Offset(token.Position{Line: startLine + 1, Column: startCol + 1})
	end := src.Offset(token.Position{Line: endLine + 1, Column: endCol + 1})
	return src.Text[:start] + newText + src.Text[end:]
}
