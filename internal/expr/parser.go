package expr

import (
	"github.com/uidl-lang/uidlc/internal/combinator"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// ClassResolver resolves a (possibly namespace-qualified) type name
// used in a cast expression. ast.Env implements this.
type ClassResolver interface {
	ResolveClass(name string) *types.Type
}

// ParserEnv bundles what the expression grammar needs from its host
// document while staying independent of the ast package.
type ParserEnv struct {
	Resolver ClassResolver
}

// NewTable builds the Pratt table for the `expr` grammar (§4.6):
//
//	expr    := primary { postfix }
//	primary := try | closure | literal | '(' expr ')'
//	postfix := '.' ident | 'as' ('<' type '>' | '(' type ')')
//
// No prefix rule is registered for translated strings, so `_("...")` is
// not parsed as an expression primary.
//
// registered once per document parse and reused for every expression
// position in it.
func NewTable(env *ParserEnv) *combinator.PrattTable {
	t := combinator.NewPrattTable()

	t.Prefix(token.NUMBER, func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		tok := c.Current()
		lit := &Literal{Rng: tok.Range(c.Source()), LitType: types.NewPrimitive(types.PrimFloat64)}
		return wrapResult(c.Advance(), lit, false)
	})
	t.Prefix(token.QUOTED, func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		tok := c.Current()
		lit := &Literal{Rng: tok.Range(c.Source()), LitType: types.NewPrimitive(types.PrimString)}
		return wrapResult(c.Advance(), lit, false)
	})
	t.Prefix(token.IDENT, func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		tok := c.Current()
		text := c.Source().Text[tok.Start:tok.End]
		if text == "item" {
			lit := &Literal{Rng: tok.Range(c.Source()), IsItem: true}
			return wrapResult(c.Advance(), lit, false)
		}
		// A bare identifier standing alone is a flags-or-ident literal
		// resolved later by the value layer; here it types as unknown
		// until a lookup chain or cast pins it down.
		lit := &Literal{Rng: tok.Range(c.Source())}
		return wrapResult(c.Advance(), lit, false)
	})
	t.PrefixOp("$", func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		return parseClosure(c, ctx, true)
	})
	t.PrefixOp("try", func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		return parseTry(c, ctx, env)
	})
	t.PrefixOp("(", func(c *combinator.Cursor, ctx *combinator.Ctx) combinator.Result {
		inner := NewTable(env).Parse(0)(c.Advance(), ctx)
		if !inner.Ok() {
			return inner
		}
		if tokenText(inner.Cursor) != ")" {
			return combinator.Result{Status: combinator.StatusFailure}
		}
		return wrapResult(inner.Cursor.Advance(), innerExpr(inner), false)
	})

	t.Infix(".", PrecLookup, func(c *combinator.Cursor, ctx *combinator.Ctx, left *combinator.Group) combinator.Result {
		after := c.Advance()
		nameTok := after.Current()
		lk := &Lookup{
			Rng:      left.Range.Join(nameTok.Range(after.Source())),
			Receiver: groupExpr(left),
			Property: after.Source().Text[nameTok.Start:nameTok.End],
			PropRng:  nameTok.Range(after.Source()),
		}
		return wrapResult(after.Advance(), lk, false)
	})
	t.Infix("as", PrecCast, func(c *combinator.Cursor, ctx *combinator.Ctx, left *combinator.Group) combinator.Result {
		return parseCast(c, ctx, left, env)
	})

	return t
}

// Parse parses one top-level expression starting at c.
func Parse(c *combinator.Cursor, ctx *combinator.Ctx, env *ParserEnv) (Expr, *combinator.Cursor, bool) {
	r := NewTable(env).Parse(0)(c, ctx)
	if !r.Ok() {
		return nil, c, false
	}
	return groupExpr(r.Group), r.Cursor, true
}

// exprHolder stashes a constructed Expr inside a combinator.Group's
// literal map so later infix steps (and the top-level Parse call) can
// recover it — the combinator engine's Group is generic over ast-kind
// groups, so the expression grammar piggybacks a literal capture to
// carry its richer Go value across combinator boundaries.
const exprHolderKey = "__expr"

func wrapResult(cur *combinator.Cursor, e Expr, incomplete bool) combinator.Result {
	g := &combinator.Group{Kind: "Expr", Range: e.Range(), Literals: map[string]any{exprHolderKey: e}, Tokens: map[string]token.Token{}}
	g.Incomplete = incomplete
	return combinator.Result{Status: combinator.StatusSuccess, Cursor: cur, Group: g}
}

func groupExpr(g *combinator.Group) Expr {
	if g == nil {
		return nil
	}
	if e, ok := g.Literal(exprHolderKey); ok {
		return e.(Expr)
	}
	return nil
}

func innerExpr(r combinator.Result) Expr { return groupExpr(r.Group) }

func tokenText(c *combinator.Cursor) string {
	tok := c.Current()
	return c.Source().Text[tok.Start:tok.End]
}

func parseClosure(c *combinator.Cursor, ctx *combinator.Ctx, external bool) combinator.Result {
	start := c.Range()
	cur := c.Advance() // consume '$'
	nameTok := cur.Current()
	name := cur.Source().Text[nameTok.Start:nameTok.End]
	cur = cur.Advance()
	if tokenText(cur) != "(" {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	cur = cur.Advance()
	var args []Expr
	if tokenText(cur) != ")" {
		for {
			argExpr, next, ok := Parse(cur, ctx, nil)
			if !ok {
				return combinator.Result{Status: combinator.StatusFailure}
			}
			args = append(args, argExpr)
			cur = next
			if tokenText(cur) == "," {
				cur = cur.Advance()
				continue
			}
			break
		}
	}
	if tokenText(cur) != ")" {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	endRng := cur.Range()
	cur = cur.Advance()
	cl := &Closure{
		Rng:      start.Join(endRng),
		NameRng:  nameTok.Range(c.Source()),
		Name:     name,
		External: external,
		Args:     args,
	}
	return wrapResult(cur, cl, false)
}

func parseTry(c *combinator.Cursor, ctx *combinator.Ctx, env *ParserEnv) combinator.Result {
	start := c.Range()
	cur := c.Advance() // consume 'try'
	if tokenText(cur) != "{" {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	cur = cur.Advance()
	var branches []Expr
	if tokenText(cur) != "}" {
		for {
			br, next, ok := Parse(cur, ctx, env)
			if !ok {
				return combinator.Result{Status: combinator.StatusFailure}
			}
			branches = append(branches, br)
			cur = next
			if tokenText(cur) == "," {
				cur = cur.Advance()
				continue
			}
			break
		}
	}
	if tokenText(cur) != "}" {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	endRng := cur.Range()
	cur = cur.Advance()
	t := &Try{Rng: start.Join(endRng), Branches: branches}
	return wrapResult(cur, t, false)
}

func parseCast(c *combinator.Cursor, ctx *combinator.Ctx, left *combinator.Group, env *ParserEnv) combinator.Result {
	cur := c.Advance() // consume 'as'
	legacy := false
	var closeText string
	if tokenText(cur) == "<" {
		closeText = ">"
	} else if tokenText(cur) == "(" {
		legacy = true
		closeText = ")"
	} else {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	cur = cur.Advance()
	nameTok := cur.Current()
	typeName := cur.Source().Text[nameTok.Start:nameTok.End]
	cur = cur.Advance()
	if tokenText(cur) == "." {
		cur = cur.Advance()
		next := cur.Current()
		typeName = typeName + "." + cur.Source().Text[next.Start:next.End]
		cur = cur.Advance()
	}
	if tokenText(cur) != closeText {
		return combinator.Result{Status: combinator.StatusFailure}
	}
	endRng := cur.Range()
	cur = cur.Advance()
	var target *types.Type
	if env != nil && env.Resolver != nil {
		target = env.Resolver.ResolveClass(typeName)
	} else {
		target = types.NewExtern(typeName)
	}
	cast := &Cast{Rng: left.Range.Join(endRng), Inner: groupExpr(left), Target: target, IsLegacy: legacy}
	return wrapResult(cur, cast, false)
}
