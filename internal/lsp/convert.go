package lsp

import (
	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/completion"
	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/token"
	"go.lsp.dev/protocol"
)

// toLSPPosition converts a 1-based token.Position to a 0-based LSP one.
func toLSPPosition(p token.Position) protocol.Position {
	return protocol.Position{Line: uint32(p.Line - 1), Character: uint32(p.Column - 1)}
}

func toLSPRange(r token.Range) protocol.Range {
	return protocol.Range{Start: toLSPPosition(r.StartPosition()), End: toLSPPosition(r.EndPosition())}
}

func toByteOffset(src *token.Source, pos protocol.Position) int {
	return src.Offset(token.Position{Line: int(pos.Line) + 1, Column: int(pos.Character) + 1})
}

func severity(s diag.Severity) protocol.DiagnosticSeverity {
	if s == diag.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func tags(d *diag.Diagnostic) []protocol.DiagnosticTag {
	switch d.Tag {
	case diag.TagDeprecated:
		return []protocol.DiagnosticTag{protocol.DiagnosticTagDeprecated}
	case diag.TagUnnecessary:
		return []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
	default:
		return nil
	}
}

// toLSPDiagnostic converts one internal diagnostic to its LSP wire shape
// (§7 "LSP: send diagnostics with LSP severity, tags, related-information
// entries, and code actions").
func toLSPDiagnostic(uri protocol.DocumentURI, d *diag.Diagnostic) protocol.Diagnostic {
	out := protocol.Diagnostic{
		Range:    toLSPRange(d.Range),
		Severity: severity(d.Severity),
		Source:   "uidlc",
		Message:  d.Message,
		Tags:     tags(d),
	}
	for _, rel := range d.Related {
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: toLSPRange(rel.Range)},
			Message:  rel.Message,
		})
	}
	return out
}

// toLSPDiagnostics converts a file's full diagnostic list, preserving
// source order (§5).
func toLSPDiagnostics(uri protocol.DocumentURI, diags []*diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toLSPDiagnostic(uri, d))
	}
	return out
}

// toLSPSymbol converts one §4.5 Symbol (and its children) to a
// protocol.DocumentSymbol.
func toLSPSymbol(s ast.Symbol) protocol.DocumentSymbol {
	out := protocol.DocumentSymbol{
		Name:           s.Name,
		Detail:         s.Detail,
		Kind:           symbolKind(s.Kind),
		Range:          toLSPRange(s.FullRange),
		SelectionRange: toLSPRange(s.SelectionRange),
	}
	for _, c := range s.Children {
		out.Children = append(out.Children, toLSPSymbol(c))
	}
	return out
}

func symbolKind(astKind string) protocol.SymbolKind {
	switch astKind {
	case "UI":
		return protocol.SymbolKindFile
	case "Object":
		return protocol.SymbolKindObject
	case "Template":
		return protocol.SymbolKindClass
	case "Property":
		return protocol.SymbolKindProperty
	case "Signal":
		return protocol.SymbolKindEvent
	default:
		return protocol.SymbolKindVariable
	}
}

func completionKind(k completion.ItemKind) protocol.CompletionItemKind {
	switch k {
	case completion.KindProperty:
		return protocol.CompletionItemKindProperty
	case completion.KindSignal:
		return protocol.CompletionItemKindEvent
	case completion.KindEnumMember:
		return protocol.CompletionItemKindEnumMember
	case completion.KindClass:
		return protocol.CompletionItemKindClass
	case completion.KindNamespace:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindKeyword
	}
}

// toLSPCompletionItem converts one completion.Item, preserving its
// sort-key and turning any additional edits into LSP AdditionalTextEdits
// (§4.10 "additional-text-edits used e.g. to auto-insert a using Foo 1
// import").
func toLSPCompletionItem(it completion.Item) protocol.CompletionItem {
	out := protocol.CompletionItem{
		Label:      it.Label,
		Kind:       completionKind(it.Kind),
		Detail:     it.Detail,
		SortText:   it.SortKey,
		InsertText: it.Snippet,
	}
	if it.Docs != "" {
		out.Documentation = it.Docs
	}
	for _, e := range it.AdditionalEdits {
		out.AdditionalTextEdits = append(out.AdditionalTextEdits, protocol.TextEdit{
			Range:   toLSPRange(e.Range),
			NewText: e.NewText,
		})
	}
	return out
}

// toLSPCodeAction converts one quick-fix code action attached to d.
func toLSPCodeAction(uri protocol.DocumentURI, d *diag.Diagnostic, a diag.CodeAction) protocol.CodeAction {
	changes := map[protocol.DocumentURI][]protocol.TextEdit{}
	for _, e := range a.Edits {
		changes[uri] = append(changes[uri], protocol.TextEdit{Range: toLSPRange(e.Range), NewText: e.NewText})
	}
	kind := protocol.QuickFix
	return protocol.CodeAction{
		Title:       a.Title,
		Kind:        kind,
		Diagnostics: []protocol.Diagnostic{toLSPDiagnostic(uri, d)},
		Edit:        &protocol.WorkspaceEdit{Changes: changes},
	}
}
