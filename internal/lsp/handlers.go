package lsp

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/completion"
	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/expr"
	"github.com/uidl-lang/uidlc/internal/fmtedit"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/xmlout"
	"go.lsp.dev/protocol"
)

// Server dispatches LSP requests against a Store (§4.9). Its methods
// take and return plain Go/protocol values rather than jsonrpc2 request
// objects, so the request logic is exercised directly from tests without
// a transport in the loop.
type Server struct {
	Store      *Store
	XMLOptions xmlout.Options
}

// NewServer creates a Server over store.
func NewServer(store *Store) *Server {
	return &Server{Store: store}
}

// Initialize returns this server's capabilities (§6's LSP capability
// list: incremental sync, semantic tokens, completion, code actions,
// hover, document symbols, definition, formatting).
func (s *Server) Initialize() protocol.InitializeResult {
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			CompletionProvider:         &protocol.CompletionOptions{},
			HoverProvider:              true,
			DocumentSymbolProvider:     true,
			DefinitionProvider:         true,
			CodeActionProvider:         true,
			DocumentFormattingProvider: true,
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes: []protocol.SemanticTokenTypes{"enumMember"},
				},
				Full: true,
			},
		},
		ServerInfo: &protocol.ServerInfo{Name: "uidlc"},
	}
}

// DidOpen handles textDocument/didOpen and returns the diagnostics to
// publish (§4.9 "on open ... publishes diagnostics").
func (s *Server) DidOpen(uri string, text string, version int32) []protocol.Diagnostic {
	f := s.Store.Open(uri, text, version)
	return toLSPDiagnostics(protocol.DocumentURI(uri), f.Diagnostics)
}

// ContentChange mirrors one LSP TextDocumentContentChangeEvent: either a
// ranged incremental edit or, when HasRange is false, a full-text
// replacement.
type ContentChange struct {
	HasRange                                bool
	StartLine, StartChar, EndLine, EndChar int
	Text                                    string
}

// DidChange handles textDocument/didChange, applying each content change
// against the document's current text in order (§4.9 "applied
// left-to-right in event order") before a single rebuild.
func (s *Server) DidChange(uri string, version int32, changes []ContentChange) []protocol.Diagnostic {
	f := s.Store.Get(uri)
	if f == nil {
		return nil
	}
	text := f.Text
	for _, c := range changes {
		if !c.HasRange {
			text = c.Text
			continue
		}
		text = ApplyRangeEdit(token.NewSource(text), c.StartLine, c.StartChar, c.EndLine, c.EndChar, c.Text)
	}
	f = s.Store.Change(uri, text, version)
	return toLSPDiagnostics(protocol.DocumentURI(uri), f.Diagnostics)
}

// DidClose handles textDocument/didClose.
func (s *Server) DidClose(uri string) { s.Store.Close(uri) }

// Hover looks up documentation by byte index (§4.9).
func (s *Server) Hover(uri string, pos protocol.Position) *protocol.Hover {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	offset := toByteOffset(f.Source, pos)
	n := completion.NodeAt(f.UI, offset)
	text := hoverText(n, f.Env)
	if text == "" {
		return nil
	}
	rng := toLSPRange(n.Range())
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: text},
		Range:    &rng,
	}
}

func hoverText(n ast.Node, env *ast.Env) string {
	switch v := n.(type) {
	case *ast.Object:
		t := v.ResolvedType(env)
		if t == nil {
			return ""
		}
		msg := fmt.Sprintf("**%s**", t.FullName)
		if t.Deprecated {
			msg += "\n\ndeprecated: " + t.DeprecatedMsg
		}
		return msg
	case *ast.Property:
		obj, ok := v.Parent().(*ast.Object)
		if !ok {
			return v.Name
		}
		t := obj.ResolvedType(env)
		if t == nil {
			return v.Name
		}
		if p, ok := t.PropertyByName(v.Name); ok {
			return fmt.Sprintf("**%s**: %s\n\n%s", p.Name, p.Type.FullName, p.Docs)
		}
		return v.Name
	case *ast.Signal:
		return fmt.Sprintf("**%s**", v.Name)
	case *ast.FlagsOrIdent:
		return fmt.Sprintf("`%s`", v.Name)
	default:
		return ""
	}
}

// Completion handles textDocument/completion (§4.10), merging the
// pattern-matched registry with the property/signal/enum-member items
// available at the enclosing object, the way completer Build callbacks
// that return nil defer to these context-bound helpers.
func (s *Server) Completion(uri string, pos protocol.Position) []protocol.CompletionItem {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	offset := toByteOffset(f.Source, pos)
	items := completion.Complete(f.UI, f.Source, f.Tokens, f.Env, offset)

	n := completion.NodeAt(f.UI, offset)
	if obj := enclosingObjectFor(n); obj != nil {
		items = append(items, completion.PropertyItems(obj, f.Env)...)
		items = append(items, completion.SignalItems(obj, f.Env)...)
	}
	if p, ok := n.(*ast.Property); ok {
		if obj, ok := p.Parent().(*ast.Object); ok {
			if t := obj.ResolvedType(f.Env); t != nil {
				if prop, ok := t.PropertyByName(p.Name); ok {
					items = append(items, completion.EnumMemberItems(prop.Type)...)
				}
			}
		}
	}

	out := make([]protocol.CompletionItem, 0, len(items))
	for _, it := range items {
		out = append(out, toLSPCompletionItem(it))
	}
	return out
}

func enclosingObjectFor(n ast.Node) *ast.Object {
	for cur := n; cur != nil; cur = cur.Parent() {
		if o, ok := cur.(*ast.Object); ok {
			return o
		}
	}
	return nil
}

// DocumentSymbol handles textDocument/documentSymbol.
func (s *Server) DocumentSymbol(uri string) []protocol.DocumentSymbol {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	root := toLSPSymbol(f.UI.DocumentSymbol())
	return root.Children
}

// Definition handles textDocument/definition: an id reference at the
// root of a lookup chain (e.g. `source.property`) resolves to the
// object that declared that id (§4.9 "definition (go-to-definition)").
func (s *Server) Definition(uri string, pos protocol.Position) *protocol.Location {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	offset := toByteOffset(f.Source, pos)
	n := completion.NodeAt(f.UI, offset)
	ev, ok := n.(*ast.ExprValue)
	if !ok {
		return nil
	}
	name, ok := rootIdentName(ev.Expr, f.Source)
	if !ok {
		return nil
	}
	obj, ok := f.UI.ObjectByID(name)
	if !ok {
		return nil
	}
	loc := protocol.Location{URI: protocol.DocumentURI(uri), Range: toLSPRange(obj.IDRng)}
	return &loc
}

// rootIdentName walks down a lookup chain's Receiver links to the
// leftmost literal and, if it is a bare identifier (not `item`, not a
// number/string literal — those carry a LitType, a bare scope reference
// never does until resolved), returns its source text.
func rootIdentName(e expr.Expr, src *token.Source) (string, bool) {
	for {
		lk, ok := e.(*expr.Lookup)
		if !ok {
			break
		}
		e = lk.Receiver
	}
	lit, ok := e.(*expr.Literal)
	if !ok || lit.IsItem || lit.LitType != nil {
		return "", false
	}
	r := lit.Rng
	return src.Text[r.Start:r.End], true
}

// CodeActions collects quick fixes whose diagnostic range overlaps the
// requested range (§4.9 "code actions collected from diagnostics whose
// range overlaps the request range").
func (s *Server) CodeActions(uri string, r protocol.Range) []protocol.CodeAction {
	f := s.Store.Get(uri)
	if f == nil {
		return nil
	}
	reqStart := toByteOffset(f.Source, r.Start)
	reqEnd := toByteOffset(f.Source, r.End)
	var out []protocol.CodeAction
	for _, d := range f.Diagnostics {
		if !rangesOverlap(d.Range.Start, d.Range.End, reqStart, reqEnd) {
			continue
		}
		for _, a := range d.Actions {
			out = append(out, toLSPCodeAction(protocol.DocumentURI(uri), d, a))
		}
	}
	return out
}

func rangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// SemanticTokens returns the delta-encoded (deltaLine, deltaChar,
// length, tokenType, modifiers) quintuples for every enum/bitfield
// member reference (§4.9 "one token type, enumMember; full only").
func (s *Server) SemanticTokens(uri string) *protocol.SemanticTokens {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	var ranges []token.Range
	collectEnumRanges(f.UI, &ranges)

	data := make([]uint32, 0, len(ranges)*5)
	prevLine, prevChar := uint32(0), uint32(0)
	for _, r := range ranges {
		pos := toLSPPosition(r.StartPosition())
		deltaLine := pos.Line - prevLine
		deltaChar := pos.Character
		if deltaLine == 0 {
			deltaChar = pos.Character - prevChar
		}
		data = append(data, deltaLine, deltaChar, uint32(r.Len()), 0, 0)
		prevLine, prevChar = pos.Line, pos.Character
	}
	return &protocol.SemanticTokens{Data: data}
}

func collectEnumRanges(n ast.Node, out *[]token.Range) {
	switch v := n.(type) {
	case *ast.FlagsOrIdent:
		*out = append(*out, v.Range())
	case *ast.FlagsValue:
		*out = append(*out, v.Rngs...)
	case *ast.UI:
		for _, o := range v.Objects {
			collectEnumRanges(o, out)
		}
		if v.Template != nil {
			collectEnumRanges(v.Template, out)
		}
	case *ast.Template:
		for _, o := range v.Objects {
			collectEnumRanges(o, out)
		}
	case *ast.Object:
		for _, p := range v.Properties {
			collectEnumRanges(p, out)
		}
		for _, c := range v.Children {
			collectEnumRanges(c, out)
		}
	case *ast.Property:
		if v.Value != nil {
			collectEnumRanges(v.Value, out)
		}
	case *ast.ArrayValue:
		for _, it := range v.Items {
			collectEnumRanges(it, out)
		}
	case *ast.ObjectValue:
		collectEnumRanges(v.Obj, out)
	}
}

// Compile handles the custom textDocument/x-blueprint-compile request
// (§6): returns generated XML, or ok=false when the document still has
// blocking errors.
func (s *Server) Compile(uri string) (xml string, ok bool) {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return "", false
	}
	if hasBlockingErrors(f.Diagnostics) {
		return "", false
	}
	return xmlout.Emit(f.UI, f.Env, s.XMLOptions), true
}

func hasBlockingErrors(diags []*diag.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// Decompile handles the custom x-blueprint/decompile request (§6). XML-
// to-source generation is out of scope (§1 Non-goals); this reports that
// explicitly rather than leaving the method unimplemented.
func (s *Server) Decompile(xml string) (string, error) {
	return "", fmt.Errorf("decompile is not implemented: generating source from XML is out of scope")
}

// Formatting handles textDocument/formatting by delegating to
// internal/fmtedit (§4.9 "formatting delegated to the formatter").
func (s *Server) Formatting(uri string) []protocol.TextEdit {
	f := s.Store.Get(uri)
	if f == nil || f.UI == nil {
		return nil
	}
	doc := fmtedit.NewDocument(f.UI, f.Tokens, f.Source)
	formatted := fmtedit.Reformat(doc)
	if formatted == f.Text {
		return nil
	}
	full := token.NewRange(0, len(f.Text), f.Source)
	return []protocol.TextEdit{{Range: toLSPRange(full), NewText: formatted}}
}
