// Package expr implements the Pratt-driven expression sub-language from
// spec §4.6 (C6): literal, lookup, cast, closure, and try expressions,
// with type inference/checking and cast-auto-fix diagnostics. It builds
// on internal/combinator's PrattTable (itself grounded on the teacher's
// Pratt precedence handling in internal/parser/parser.go) and depends
// only on internal/types and internal/diag — never internal/ast — so
// that ast.Value's ExprValue variant can hold an expr.Expr without
// creating an import cycle; the small Scope interface here is the
// minimal contract ast.ScopeCtx is adapted to satisfy.
package expr

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Scope resolves an identifier to its type within the enclosing object
// graph (§3 Scope context). ast.ScopeCtx implements this directly.
type Scope interface {
	LookupType(name string) (*types.Type, bool)
	ThisType() (*types.Type, bool)
}

// ValueTypeCtx mirrors ast.ValueTypeCtx's shape (§3) for the expected
// type of an expression position.
type ValueTypeCtx struct {
	Expected      *types.Type
	AllowNull     bool
	MustInferType bool
}

// Ctx threads validation state through expression checking.
type Ctx struct {
	Diags *diag.Bag
	Scope Scope
}

// Expr is any node of the expression grammar (§4.6).
type Expr interface {
	Range() token.Range
	// Type returns the expression's inferred type, or nil when
	// inference fails (e.g. a bare `item` lookup with no enclosing
	// `this` binding).
	Type(ctx *Ctx) *types.Type
	// Validate runs this expression's own checks and recurses into
	// children; it does not check against an outer ValueTypeCtx —
	// callers needing that call ValidateForType.
	Validate(ctx *Ctx)
}

// ValidateForType is the top-level check §4.6 describes: match an
// expression's result against the outer ValueTypeCtx, producing a
// cast-repair auto-fix when the types are castable but not directly
// assignable.
func ValidateForType(e Expr, ctx *Ctx, expected *ValueTypeCtx) {
	e.Validate(ctx)
	if expected == nil || expected.Expected == nil || expected.MustInferType {
		return
	}
	actual := e.Type(ctx)
	if actual == nil {
		if expected.AllowNull {
			return
		}
		ctx.Diags.Add(diag.New(diag.TypeMismatch, e.Range(), "cannot determine the type of this expression").
			WithHint("add an explicit cast, e.g. `e as <Type>`"))
		return
	}
	if types.IsAssignableFrom(expected.Expected, actual) {
		return
	}
	if types.IsCastableTo(expected.Expected, actual) {
		d := diag.New(diag.TypeMismatch, e.Range(),
			fmt.Sprintf("cannot assign %s to %s without a cast", actual.FullName, expected.Expected.FullName))
		d.Severity = diag.SeverityWarning
		d.WithAction(diag.CodeAction{
			Title: fmt.Sprintf("Insert `as <%s>`", expected.Expected.FullName),
			Edits: []diag.TextEdit{{
				Range:   token.NewRange(e.Range().End, e.Range().End, nil),
				NewText: fmt.Sprintf(" as <%s>", expected.Expected.FullName),
			}},
		})
		ctx.Diags.Add(d)
		return
	}
	ctx.Diags.Add(diag.New(diag.TypeMismatch, e.Range(),
		fmt.Sprintf("cannot assign %s to %s", actual.FullName, expected.Expected.FullName)))
}

// Literal is a literal expression (number, string, or boolean/enum
// identifier) whose type is fixed once resolved, and the special
// identifier literal `item`.
type Literal struct {
	Rng      token.Range
	LitType  *types.Type
	IsItem   bool // the bare identifier `item` — only valid as a lookup chain head
}

func (l *Literal) Range() token.Range { return l.Rng }

func (l *Literal) Type(ctx *Ctx) *types.Type {
	if l.IsItem {
		if ctx.Scope != nil {
			if t, ok := ctx.Scope.ThisType(); ok {
				return t
			}
		}
		return nil
	}
	return l.LitType
}

func (l *Literal) Validate(ctx *Ctx) {
	if l.IsItem {
		if ctx.Scope == nil {
			ctx.Diags.Add(diag.New(diag.UnresolvedReference, l.Rng, "`item` is only valid inside a list-item factory"))
			return
		}
		if _, ok := ctx.Scope.ThisType(); !ok {
			ctx.Diags.Add(diag.New(diag.UnresolvedReference, l.Rng, "`item` is only valid inside a list-item factory"))
		}
	}
}

// Lookup is `e.p` (§4.6): requires e's type to be a class/interface
// declaring property p.
type Lookup struct {
	Rng      token.Range
	Receiver Expr
	Property string
	PropRng  token.Range
}

func (l *Lookup) Range() token.Range { return l.Rng }

func (l *Lookup) Type(ctx *Ctx) *types.Type {
	recvType := l.Receiver.Type(ctx)
	if recvType == nil {
		return nil
	}
	if p, ok := recvType.PropertyByName(l.Property); ok {
		return p.Type
	}
	return nil
}

func (l *Lookup) Validate(ctx *Ctx) {
	l.Receiver.Validate(ctx)
	recvType := l.Receiver.Type(ctx)
	if recvType == nil {
		if _, isLit := l.Receiver.(*Literal); !isLit {
			ctx.Diags.Add(diag.New(diag.TypeMismatch, l.Receiver.Range(), "cannot determine type of expression").
				WithHint("add an explicit cast, e.g. `e as <Type>`"))
		}
		return
	}
	if recvType.Incomplete {
		return
	}
	if recvType.Kind != types.KindClass && recvType.Kind != types.KindInterface {
		ctx.Diags.Add(diag.New(diag.TypeMismatch, l.PropRng, fmt.Sprintf("%s is not a class or interface", recvType.FullName)))
		return
	}
	if _, ok := recvType.PropertyByName(l.Property); !ok {
		names := propertyNames(recvType)
		d := diag.New(diag.UnresolvedReference, l.PropRng,
			fmt.Sprintf("%s does not have a property %q", recvType.FullName, l.Property))
		if best := diag.DidYouMean(l.Property, names); best != "" {
			d.WithHint(fmt.Sprintf("did you mean %q?", best))
			d.WithAction(diag.CodeAction{
				Title: fmt.Sprintf("Change to %q", best),
				Edits: []diag.TextEdit{{Range: l.PropRng, NewText: best}},
			})
		}
		ctx.Diags.Add(d)
	}
}

func propertyNames(t *types.Type) []string {
	props := t.AllProperties()
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}

// Cast is `e as <T>` or the legacy `e as (T)` form (§4.6).
type Cast struct {
	Rng      token.Range
	Inner    Expr
	Target   *types.Type
	IsLegacy bool
}

func (c *Cast) Range() token.Range { return c.Rng }
func (c *Cast) Type(ctx *Ctx) *types.Type { return c.Target }

func (c *Cast) Validate(ctx *Ctx) {
	ValidateForType(c.Inner, ctx, &ValueTypeCtx{Expected: nil, AllowNull: true, MustInferType: true})
	innerType := c.Inner.Type(ctx)
	if innerType != nil && c.Target != nil && !innerType.Incomplete && !c.Target.Incomplete {
		if !types.IsCastableTo(c.Target, innerType) {
			ctx.Diags.Add(diag.New(diag.TypeMismatch, c.Rng,
				fmt.Sprintf("cannot cast %s to %s", innerType.FullName, c.Target.FullName)))
		}
	}
	if c.IsLegacy {
		d := diag.New(diag.ParseError, c.Rng, "legacy cast syntax `e as (T)` is deprecated, use `e as <T>`")
		d.Severity = diag.SeverityWarning
		ctx.Diags.Add(d)
	}
}

// Closure is `[$]name(args…)` (§4.6).
type Closure struct {
	Rng        token.Range
	NameRng    token.Range
	Name       string
	External   bool
	Args       []Expr
	ResultType *types.Type // from enclosing ValueTypeCtx/cast, if known
}

func (c *Closure) Range() token.Range     { return c.Rng }
func (c *Closure) Type(ctx *Ctx) *types.Type { return c.ResultType }

func (c *Closure) Validate(ctx *Ctx) {
	if !c.External {
		ctx.Diags.Add(diag.New(diag.ParseError, c.NameRng,
			"closures must be marked external with a leading '$' (bare function references are reserved)"))
	}
	if c.ResultType == nil {
		ctx.Diags.Add(diag.New(diag.TypeMismatch, c.Rng, "closure result type cannot be determined here"))
	}
	for _, a := range c.Args {
		ValidateForType(a, ctx, &ValueTypeCtx{MustInferType: true, AllowNull: true})
	}
}

// Try is `try { e1, e2, … }` (§4.6).
type Try struct {
	Rng      token.Range
	Branches []Expr
}

func (t *Try) Range() token.Range { return t.Rng }

func (t *Try) Type(ctx *Ctx) *types.Type {
	if len(t.Branches) == 0 {
		return nil
	}
	if len(t.Branches) == 1 {
		return t.Branches[0].Type(ctx)
	}
	common := t.Branches[0].Type(ctx)
	for _, b := range t.Branches[1:] {
		common = types.CommonAncestor(common, b.Type(ctx))
		if common == nil {
			return nil
		}
	}
	return common
}

func (t *Try) Validate(ctx *Ctx) {
	if len(t.Branches) == 0 {
		ctx.Diags.Add(diag.New(diag.ParseError, t.Rng, "try expression must have at least one branch"))
		return
	}
	for _, b := range t.Branches {
		b.Validate(ctx)
	}
	if len(t.Branches) == 1 {
		d := diag.New(diag.ParseError, t.Rng, "try expression with a single branch is unnecessary")
		d.Severity = diag.SeverityWarning
		d.Tag = diag.TagUnnecessary
		d.WithAction(diag.CodeAction{Title: "Remove try { }", Edits: []diag.TextEdit{{Range: t.Rng, NewText: ""}}})
		ctx.Diags.Add(d)
		return
	}
	if t.Type(ctx) == nil {
		ctx.Diags.Add(diag.New(diag.TypeMismatch, t.Rng, "try branches do not share a common ancestor type"))
	}
}

// PrecLookup and PrecCast are the binding powers NewTable registers on a
// combinator.PrattTable for this grammar (§4.6): lookup and cast share
// the same postfix precedence since both are left-associative postfix
// operators applied in source order.
const (
	PrecLookup = 10
	PrecCast   = 10
)
