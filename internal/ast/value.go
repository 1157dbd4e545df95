package ast

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/expr"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Value is any of the forms a property or argument value can take (§4.5
// "Value variants"): a translated string, a plain literal, a bare
// identifier that may name a flag/enum member, a pipe-separated flags
// combination, an inline object, an array of values, or an expression.
type Value interface {
	Node
	// ValueType returns the value's resolved type given the surrounding
	// ValueTypeCtx, or nil if it cannot be determined.
	ValueType(env *Env) *types.Type
}

// TranslatedString is `_("text")` or `C_("context", "text")` (§4.5).
type TranslatedString struct {
	base
	Text    string
	Context string // empty unless the C_() form was used
}

func (v *TranslatedString) Kind() string { return "TranslatedString" }
func (v *TranslatedString) ValueType(env *Env) *types.Type { return types.NewPrimitive(types.PrimString) }
func (v *TranslatedString) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		if expected != nil && expected.Expected != nil && !expected.Expected.Incomplete {
			if !types.IsAssignableFrom(expected.Expected, types.NewPrimitive(types.PrimString)) {
				env.Diags.Add(diag.New(diag.TypeMismatch, v.rng,
					fmt.Sprintf("translated string is not assignable to %s", expected.Expected.FullName)))
			}
		}
	})
}
func (v *TranslatedString) DocumentSymbol() Symbol {
	return Symbol{Name: v.Text, Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng}
}

// Literal is a bare number or quoted string value; boolean keywords parse
// as FlagsOrIdent.
type Literal struct {
	base
	Raw     string
	LitType *types.Type
}

func (v *Literal) Kind() string               { return "Literal" }
func (v *Literal) ValueType(env *Env) *types.Type { return v.LitType }
func (v *Literal) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		if expected == nil || expected.Expected == nil || v.LitType == nil {
			return
		}
		if expected.Expected.Incomplete || v.LitType.Incomplete {
			return
		}
		if !types.IsAssignableFrom(expected.Expected, v.LitType) {
			env.Diags.Add(diag.New(diag.TypeMismatch, v.rng,
				fmt.Sprintf("%q is not assignable to %s", v.Raw, expected.Expected.FullName)))
		}
	})
}
func (v *Literal) DocumentSymbol() Symbol {
	return Symbol{Name: v.Raw, Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng}
}

// FlagsOrIdent is a bare identifier that names a single enum/bitfield
// member or a boolean keyword, resolved against the ValueTypeCtx's
// expected type (§4.5).
type FlagsOrIdent struct {
	base
	Name string
}

func (v *FlagsOrIdent) Kind() string { return "FlagsOrIdent" }

func (v *FlagsOrIdent) ValueType(env *Env) *types.Type {
	expected := valueTypeOf(v)
	if expected == nil || expected.Expected == nil {
		return nil
	}
	return expected.Expected
}

func (v *FlagsOrIdent) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		if expected == nil || expected.Expected == nil {
			return
		}
		t := expected.Expected
		if t.Incomplete {
			return
		}
		switch t.Kind {
		case types.KindEnum, types.KindBitfield:
			if _, ok := t.MemberByNick(v.Name); !ok {
				if _, ok2 := t.MemberByName(v.Name); !ok2 {
					names := memberNames(t)
					d := diag.New(diag.UnresolvedReference, v.rng,
						fmt.Sprintf("%s has no member %q", t.FullName, v.Name))
					if best := diag.DidYouMean(v.Name, names); best != "" {
						d.WithHint(fmt.Sprintf("did you mean %q?", best))
						d.WithAction(diag.CodeAction{Title: fmt.Sprintf("Change to %q", best),
							Edits: []diag.TextEdit{{Range: v.rng, NewText: best}}})
					}
					env.Diags.Add(d)
				}
			}
		case types.KindPrimitive:
			if v.Name != "true" && v.Name != "false" {
				env.Diags.Add(diag.New(diag.TypeMismatch, v.rng,
					fmt.Sprintf("%q is not a valid value of type %s", v.Name, t.FullName)))
			}
		}
	})
}

func memberNames(t *types.Type) []string {
	out := make([]string, len(t.Members))
	for i, m := range t.Members {
		out[i] = m.Name
	}
	return out
}

func (v *FlagsOrIdent) DocumentSymbol() Symbol {
	return Symbol{Name: v.Name, Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng}
}

// FlagsValue is a pipe-separated combination of bitfield members, e.g.
// `flag_a | flag_b` (§4.5).
type FlagsValue struct {
	base
	Names []string
	Rngs  []token.Range
}

func (v *FlagsValue) Kind() string { return "FlagsValue" }
func (v *FlagsValue) ValueType(env *Env) *types.Type {
	expected := valueTypeOf(v)
	if expected == nil {
		return nil
	}
	return expected.Expected
}

func (v *FlagsValue) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		if expected == nil || expected.Expected == nil || expected.Expected.Incomplete {
			return
		}
		t := expected.Expected
		if t.Kind != types.KindBitfield {
			env.Diags.Add(diag.New(diag.TypeMismatch, v.rng, fmt.Sprintf("%s is not a bitfield, it cannot take a flags combination", t.FullName)))
			return
		}
		for i, name := range v.Names {
			if _, ok := t.MemberByNick(name); !ok {
				if _, ok2 := t.MemberByName(name); !ok2 {
					env.Diags.Add(diag.New(diag.UnresolvedReference, v.Rngs[i], fmt.Sprintf("%s has no member %q", t.FullName, name)))
				}
			}
		}
	})
}

func (v *FlagsValue) DocumentSymbol() Symbol {
	return Symbol{Name: "flags", Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng}
}

// ObjectValue is an inline object literal used as a property value, e.g. a
// widget's child set via a property rather than a child declaration (§4.5).
type ObjectValue struct {
	base
	Obj *Object
}

func (v *ObjectValue) Kind() string { return "ObjectValue" }
func (v *ObjectValue) ValueType(env *Env) *types.Type { return v.Obj.ResolvedType(env) }
func (v *ObjectValue) Validate(env *Env) {
	v.runOnce(func() {
		v.Obj.Validate(env)
		expected := valueTypeOf(v)
		if expected == nil || expected.Expected == nil || expected.Expected.Incomplete {
			return
		}
		objType := v.Obj.ResolvedType(env)
		if objType != nil && !objType.Incomplete && !types.IsAssignableFrom(expected.Expected, objType) {
			env.Diags.Add(diag.New(diag.TypeMismatch, v.rng,
				fmt.Sprintf("%s is not assignable to %s", objType.FullName, expected.Expected.FullName)))
		}
	})
}
func (v *ObjectValue) DocumentSymbol() Symbol { return v.Obj.DocumentSymbol() }

// ArrayValue is `[v1, v2, …]` (§4.5).
type ArrayValue struct {
	base
	Items []Value
}

func (v *ArrayValue) Kind() string { return "ArrayValue" }

func (v *ArrayValue) ValueType(env *Env) *types.Type {
	expected := valueTypeOf(v)
	if expected != nil && expected.Expected != nil {
		return expected.Expected
	}
	return nil
}

func (v *ArrayValue) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		var elemExpected *ValueTypeCtx
		if expected != nil && expected.Expected != nil && expected.Expected.Kind == types.KindArray {
			elemExpected = &ValueTypeCtx{Expected: expected.Expected.Elem, AllowNull: expected.AllowNull}
		}
		for _, item := range v.Items {
			item.SetParent(v)
			withValueType(item, elemExpected, func() { item.Validate(env) })
		}
		if expected != nil && expected.Expected != nil && !expected.Expected.Incomplete && expected.Expected.Kind != types.KindArray {
			env.Diags.Add(diag.New(diag.TypeMismatch, v.rng, fmt.Sprintf("%s is not an array type", expected.Expected.FullName)))
		}
	})
}

func (v *ArrayValue) DocumentSymbol() Symbol {
	children := make([]Symbol, len(v.Items))
	for i, it := range v.Items {
		children[i] = it.DocumentSymbol()
	}
	return Symbol{Name: "array", Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng, Children: children}
}

// ExprValue wraps an expression-language value, e.g. `expr e.p as <T>`
// (§4.5, §4.6). It delegates type inference and checking to internal/expr
// through the scopeAdapter, keeping internal/ast the only package that
// depends on both ast and expr.
type ExprValue struct {
	base
	Expr expr.Expr
}

func (v *ExprValue) Kind() string { return "ExprValue" }

func (v *ExprValue) ValueType(env *Env) *types.Type {
	return v.Expr.Type(&expr.Ctx{Diags: env.Diags, Scope: scopeAdapterFor(v)})
}

func (v *ExprValue) Validate(env *Env) {
	v.runOnce(func() {
		expected := valueTypeOf(v)
		ctx := &expr.Ctx{Diags: env.Diags, Scope: scopeAdapterFor(v)}
		var evc *expr.ValueTypeCtx
		if expected != nil {
			evc = &expr.ValueTypeCtx{Expected: expected.Expected, AllowNull: expected.AllowNull, MustInferType: expected.MustInferType}
		}
		expr.ValidateForType(v.Expr, ctx, evc)
	})
}

func (v *ExprValue) DocumentSymbol() Symbol {
	return Symbol{Name: "expr", Kind: v.Kind(), FullRange: v.rng, SelectionRange: v.rng}
}

// withValueType temporarily makes n provide ValueTypeCtx vt to its own
// Validate call by wrapping it in a throwaway provider pushed as n's
// parent for the duration of fn — used when a container (array, try
// branch) needs to hand each child a distinct expected type without
// mutating the real tree.
func withValueType(n Node, vt *ValueTypeCtx, fn func()) {
	if vt == nil {
		fn()
		return
	}
	orig := n.Parent()
	n.SetParent(&valueTypeWrapper{base: base{parent: orig}, vt: vt})
	defer n.SetParent(orig)
	fn()
}

type valueTypeWrapper struct {
	base
	vt *ValueTypeCtx
}

func (w *valueTypeWrapper) Kind() string                 { return "valueTypeWrapper" }
func (w *valueTypeWrapper) Validate(env *Env)             {}
func (w *valueTypeWrapper) DocumentSymbol() Symbol        { return Symbol{} }
func (w *valueTypeWrapper) provideScope() (*ScopeCtx, bool) { return nil, false }
func (w *valueTypeWrapper) provideValueType() (*ValueTypeCtx, bool) { return w.vt, true }
