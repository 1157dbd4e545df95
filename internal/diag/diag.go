// Package diag implements the diagnostic taxonomy and code-action model
// from spec §4.7/§7 (C7): typed error kinds, severities, related
// information, hints, and quick-fix code actions, plus the CLI
// pretty-printer. It follows the teacher's internal/errors package
// (CompilerError.Format: header, source line, caret, message) adapted
// from DWScript's single free-text error into this compiler's richer
// diagnostic record with kind, severity, hints, and actions.
package diag

import (
	"fmt"
	"strings"

	"github.com/uidl-lang/uidlc/internal/token"
)

// Severity mirrors the LSP severities the diagnostic is eventually
// rendered as (§7: CLI and LSP share one model).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Tag marks a diagnostic for editor-specific rendering (LSP
// DiagnosticTag): strike-through for deprecated, fade for unused.
type Tag int

const (
	TagNone Tag = iota
	TagDeprecated
	TagUnnecessary
)

// Kind is the semantic error taxonomy from §7 — never a bare string, so
// callers can switch on it and the CLI/LSP layers can each decide how a
// kind should be tagged or surfaced.
type Kind int

const (
	LexError Kind = iota
	ParseError
	UnresolvedReference
	TypeMismatch
	DuplicateDefinition
	DeprecatedUse
	UnusedDeclaration
	VersionMismatch
	MissingNamespace
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case UnresolvedReference:
		return "UnresolvedReference"
	case TypeMismatch:
		return "TypeMismatch"
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case DeprecatedUse:
		return "DeprecatedUse"
	case UnusedDeclaration:
		return "UnusedDeclaration"
	case VersionMismatch:
		return "VersionMismatch"
	case MissingNamespace:
		return "MissingNamespace"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// DefaultSeverity returns the severity a Kind carries unless overridden
// (DeprecatedUse and UnusedDeclaration are warnings; everything else
// blocks code generation per §7).
func (k Kind) DefaultSeverity() Severity {
	switch k {
	case DeprecatedUse, UnusedDeclaration:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// RelatedInfo is a secondary range attached to a diagnostic, e.g. the
// first definition site of a duplicate id.
type RelatedInfo struct {
	Range   token.Range
	Message string
}

// TextEdit replaces the text spanning Range with NewText. An empty
// Range with Start == End is a pure insertion.
type TextEdit struct {
	Range   token.Range
	NewText string
}

// CodeAction is a quick fix: a human title plus one or more edits to
// apply together (§4.7 "optional additional edits for multi-site
// fixes").
type CodeAction struct {
	Title string
	Edits []TextEdit
}

// Diagnostic is the unit produced by every validator (§4.7).
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Tag      Tag
	Message  string
	Range    token.Range
	Related  []RelatedInfo
	Hints    []string
	Actions  []CodeAction
}

// New creates a diagnostic at its kind's default severity.
func New(kind Kind, r token.Range, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Severity: kind.DefaultSeverity(), Range: r, Message: message}
}

// WithHint appends a free-form follow-up line.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.Hints = append(d.Hints, hint)
	return d
}

// WithAction appends a quick-fix code action.
func (d *Diagnostic) WithAction(a CodeAction) *Diagnostic {
	d.Actions = append(d.Actions, a)
	return d
}

// WithRelated appends a related-information entry.
func (d *Diagnostic) WithRelated(r token.Range, message string) *Diagnostic {
	d.Related = append(d.Related, RelatedInfo{Range: r, Message: message})
	return d
}

// Bag is an append-only collection accumulated during a single in-order
// traversal (§5: "all diagnostics ... produced in source order"), the
// parse context's error/warning list from §4.4 generalized to carry
// full Diagnostic values instead of bare strings.
type Bag struct {
	items []*Diagnostic
}

// Add appends d to the bag.
func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

// All returns every diagnostic added so far, in source order.
func (b *Bag) All() []*Diagnostic { return b.items }

// HasErrors reports whether any diagnostic blocks code generation.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len reports how many diagnostics are in the bag.
func (b *Bag) Len() int { return len(b.items) }

// Format renders one diagnostic the way the CLI prints it: a header
// with file/line/column, the offending source line, a caret, the
// message, then any hints — the same shape as the teacher's
// CompilerError.Format, extended with hint lines.
func Format(d *Diagnostic, file string, src *token.Source) string {
	var sb strings.Builder
	pos := d.Range.StartPosition()

	if file != "" {
		fmt.Fprintf(&sb, "%s: %s in %s:%d:%d\n", d.Severity, d.Kind, file, pos.Line, pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: %s at %d:%d\n", d.Severity, d.Kind, pos.Line, pos.Column)
	}

	if line := sourceLine(src, pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+pos.Column-1))
		sb.WriteString("^\n")
	}

	sb.WriteString(d.Message)
	for _, h := range d.Hints {
		sb.WriteString("\n  hint: ")
		sb.WriteString(h)
	}
	return sb.String()
}

func sourceLine(src *token.Source, lineNum int) string {
	if src == nil {
		return ""
	}
	lines := strings.Split(src.Text, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders every diagnostic in the bag, with a summary count
// when there is more than one (§7 "summary count when more than one").
func FormatAll(b *Bag, file string, src *token.Source) string {
	items := b.All()
	if len(items) == 0 {
		return ""
	}
	if len(items) == 1 {
		return Format(items[0], file, src)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d diagnostic(s):\n\n", len(items))
	for i, d := range items {
		fmt.Fprintf(&sb, "[%d of %d]\n", i+1, len(items))
		sb.WriteString(Format(d, file, src))
		if i < len(items)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
