// Package xmlout implements the XML output adapter from spec §4.8 (C8):
// once a document's validators report no errors, the AST walks itself
// and emits nested XML elements through a small sink contract
// (open_tag/close_tag/self_closing/text/cdata), the same streaming,
// no-intermediate-DOM style internal/idr's xml.go reads introspection
// data with, run in reverse. Standard library only (encoding/xml's own
// Encoder does not expose self-closing-tag control or a raw-text/CDATA
// split the way the sink contract requires, so the writer is hand
// rolled the way the teacher's own output-formatting code — pkg/printer
// — builds source text directly onto a strings.Builder rather than
// through a generic templating library).
package xmlout

import (
	"strings"

	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Attr is one XML attribute, kept ordered (unlike a map) since emitted
// attribute order should be deterministic for round-trip tests (§8
// "Round-trip on valid samples").
type Attr struct {
	Name  string
	Value string
}

// Sink is the emission contract §4.8 specifies. A node only needs to
// know how to call these five methods on itself and its children; it
// never builds an intermediate document.
type Sink interface {
	OpenTag(name string, attrs []Attr)
	CloseTag()
	SelfClosing(name string, attrs []Attr)
	Text(s string)
	CDATA(s string)
}

// Options configures the writer: indentation and an optional
// generated-file notice prepended as a comment before the root element
// (§4.8 "root may prepend a generated-file notice").
type Options struct {
	Indent          string // per-level indent string, e.g. "  "; empty disables pretty-printing
	GeneratedNotice string
}

// Writer is the concrete Sink: a streaming, indentation-aware XML
// writer with entity-escaped attribute values.
type Writer struct {
	sb    strings.Builder
	opts  Options
	stack []string
	depth int
}

// NewWriter creates a Writer ready to receive OpenTag/Text/CloseTag
// calls from Emit.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts}
}

// String returns the accumulated output.
func (w *Writer) String() string { return w.sb.String() }

func (w *Writer) writeIndent() {
	if w.opts.Indent == "" {
		return
	}
	w.sb.WriteString(strings.Repeat(w.opts.Indent, w.depth))
}

func (w *Writer) newline() {
	if w.opts.Indent != "" {
		w.sb.WriteString("\n")
	}
}

func (w *Writer) OpenTag(name string, attrs []Attr) {
	w.writeIndent()
	w.sb.WriteString("<")
	w.sb.WriteString(name)
	writeAttrs(&w.sb, attrs)
	w.sb.WriteString(">")
	w.newline()
	w.stack = append(w.stack, name)
	w.depth++
}

func (w *Writer) CloseTag() {
	if len(w.stack) == 0 {
		return
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.depth--
	w.writeIndent()
	w.sb.WriteString("</")
	w.sb.WriteString(name)
	w.sb.WriteString(">")
	w.newline()
}

func (w *Writer) SelfClosing(name string, attrs []Attr) {
	w.writeIndent()
	w.sb.WriteString("<")
	w.sb.WriteString(name)
	writeAttrs(&w.sb, attrs)
	w.sb.WriteString("/>")
	w.newline()
}

func (w *Writer) Text(s string) {
	w.sb.WriteString(escapeText(s))
}

func (w *Writer) CDATA(s string) {
	w.sb.WriteString("<![CDATA[")
	w.sb.WriteString(s)
	w.sb.WriteString("]]>")
}

// Comment emits an XML comment, used only for the generated-file notice
// immediately before the root element.
func (w *Writer) Comment(s string) {
	w.writeIndent()
	w.sb.WriteString("<!-- ")
	w.sb.WriteString(s)
	w.sb.WriteString(" -->")
	w.newline()
}

func writeAttrs(sb *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		sb.WriteString(" ")
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteString(`"`)
	}
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// Emit walks a validated UI and returns its XML rendering (§4.8). The
// caller is responsible for having already run ui.Validate(env) and
// checking env.Diags.HasErrors() — Emit does not re-validate.
func Emit(ui *ast.UI, env *ast.Env, opts Options) string {
	w := NewWriter(opts)
	if opts.GeneratedNotice != "" {
		w.Comment(opts.GeneratedNotice)
	}
	w.OpenTag("interface", nil)
	for _, imp := range ui.Imports {
		w.SelfClosing("requires", []Attr{
			{Name: "lib", Value: strings.ToLower(imp.Namespace)},
			{Name: "version", Value: imp.Version},
		})
	}
	if ui.TranslationDomain != "" {
		w.SelfClosing("translation-domain", []Attr{{Name: "domain", Value: ui.TranslationDomain}})
	}
	if ui.Template != nil {
		emitTemplate(w, ui.Template, env)
	}
	for _, obj := range ui.Objects {
		emitObject(w, obj, env)
	}
	w.CloseTag()
	return w.String()
}

func emitTemplate(w *Writer, t *ast.Template, env *ast.Env) {
	attrs := []Attr{{Name: "class", Value: t.Name}}
	if t.ForClass != "" {
		attrs = append(attrs, Attr{Name: "parent", Value: classAttr(env.ResolveClass(t.ForClass))})
	}
	w.OpenTag("template", attrs)
	for _, obj := range t.Objects {
		emitObject(w, obj, env)
	}
	w.CloseTag()
}

func emitObject(w *Writer, obj *ast.Object, env *ast.Env) {
	attrs := []Attr{{Name: "class", Value: classAttr(obj.ResolvedType(env))}}
	if obj.ID != "" {
		attrs = append(attrs, Attr{Name: "id", Value: obj.ID})
	}
	w.OpenTag("object", attrs)
	for _, p := range obj.Properties {
		emitProperty(w, p, env)
	}
	for _, s := range obj.Signals {
		emitSignal(w, s)
	}
	for _, c := range obj.Children {
		emitObject(w, c, env)
	}
	w.CloseTag()
}

func emitProperty(w *Writer, p *ast.Property, env *ast.Env) {
	attrs := []Attr{{Name: "name", Value: p.Name}}
	if p.Bind {
		attrs = append(attrs, Attr{Name: "bind", Value: "true"})
	}
	if ts, ok := p.Value.(*ast.TranslatedString); ok {
		attrs = append(attrs, Attr{Name: "translatable", Value: "yes"})
		if ts.Context != "" {
			attrs = append(attrs, Attr{Name: "context", Value: ts.Context})
		}
	}
	if _, isObj := p.Value.(*ast.ObjectValue); isObj {
		w.OpenTag("property", attrs)
		emitValue(w, p.Value, env)
		w.CloseTag()
		return
	}
	w.OpenTag("property", attrs)
	emitValue(w, p.Value, env)
	w.CloseTag()
}

func emitSignal(w *Writer, s *ast.Signal) {
	attrs := []Attr{{Name: "name", Value: s.Name}, {Name: "handler", Value: s.Handler}}
	if s.Swapped {
		attrs = append(attrs, Attr{Name: "swapped", Value: "true"})
	}
	if s.After {
		attrs = append(attrs, Attr{Name: "after", Value: "true"})
	}
	w.SelfClosing("signal", attrs)
}

// emitValue dispatches on the Value variant (§3 "Value variants"). Most
// forms render as inline text inside the already-opened <property>
// element; ObjectValue and ArrayValue need their own nested structure.
func emitValue(w *Writer, v ast.Value, env *ast.Env) {
	switch val := v.(type) {
	case *ast.TranslatedString:
		w.Text(val.Text)
	case *ast.Literal:
		w.Text(val.Raw)
	case *ast.FlagsOrIdent:
		w.Text(val.Name)
	case *ast.FlagsValue:
		w.Text(strings.Join(val.Names, "|"))
	case *ast.ObjectValue:
		emitObject(w, val.Obj, env)
	case *ast.ArrayValue:
		w.OpenTag("array", nil)
		for _, item := range val.Items {
			w.OpenTag("item", nil)
			emitValue(w, item, env)
			w.CloseTag()
		}
		w.CloseTag()
	case *ast.ExprValue:
		w.Text(exprSourceText(val))
	}
}

// exprSourceText is a best-effort rendering of an expression value back
// to source text, used only for diagnostics-free emission of `expr`
// properties the underlying toolkit (not this compiler) interprets at
// runtime — the XML schema treats it as an opaque string.
func exprSourceText(v *ast.ExprValue) string {
	return v.Range().Text()
}

// classAttr converts a resolved namespace-qualified type name
// ("Gtk.Box") into the flat class attribute the emitted schema uses
// ("GtkBox"), per §8 scenario 1.
func classAttr(t *types.Type) string {
	return strings.ReplaceAll(t.FullName, ".", "")
}
