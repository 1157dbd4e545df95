package combinator

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/token"
)

// Status tags a Result the way §4.4 specifies: success or empty may
// advance the input (empty never does, by construction); failure always
// leaves the cursor where it started.
type Status int

const (
	StatusFailure Status = iota
	StatusEmpty
	StatusSuccess
)

// Result is what every combinator's parse(ctx) returns.
type Result struct {
	Status Status
	Cursor *Cursor
	Group  *Group
}

func (r Result) Ok() bool { return r.Status != StatusFailure }

// Ctx threads the append-only diagnostic bag through a parse, as §4.4
// requires ("the parse context carries an append-only list of errors
// and warnings so recovery never loses diagnostics").
type Ctx struct {
	Diags *diag.Bag
}

// NewCtx creates a parse context with a fresh diagnostic bag.
func NewCtx() *Ctx { return &Ctx{Diags: &diag.Bag{}} }

// Parser is the combinator signature: given a cursor and context,
// produce a Result. Combinators compose by wrapping other Parsers.
type Parser func(c *Cursor, ctx *Ctx) Result

func fail(c *Cursor) Result { return Result{Status: StatusFailure, Cursor: c} }

func emptyOK(c *Cursor, kind string) Result {
	r := c.Range()
	r.End = r.Start
	return Result{Status: StatusEmpty, Cursor: c, Group: newGroup(kind, r)}
}

func success(c *Cursor, g *Group) Result {
	return Result{Status: StatusSuccess, Cursor: c, Group: g}
}

// Sequence runs parts in order, merging their groups into one group of
// the given kind. If any part fails, the whole sequence fails and the
// cursor is left exactly where Sequence started (automatic rollback,
// since no combinator here mutates anything — failure just means the
// advanced cursor from successful parts is discarded).
func Sequence(kind string, parts ...Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		start := c.Range()
		start.End = start.Start
		g := newGroup(kind, start)
		cur := c
		advanced := false
		for _, p := range parts {
			r := p(cur, ctx)
			if r.Status == StatusFailure {
				return fail(c)
			}
			if r.Status == StatusSuccess {
				advanced = true
			}
			g.merge(r.Group)
			if r.Group != nil {
				g.Range = g.Range.Join(r.Group.Range)
			}
			cur = r.Cursor
		}
		if !advanced {
			return Result{Status: StatusEmpty, Cursor: cur, Group: g}
		}
		return success(cur, g)
	}
}

// AnyOf tries each alternative in order and returns the first one that
// doesn't fail (§4.4 "first-match").
func AnyOf(parts ...Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		for _, p := range parts {
			if r := p(c, ctx); r.Ok() {
				return r
			}
		}
		return fail(c)
	}
}

// Optional makes p's failure acceptable: on failure it returns an empty
// success at the original position instead of propagating the failure.
func Optional(p Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		if r := p(c, ctx); r.Ok() {
			return r
		}
		return emptyOK(c, "")
	}
}

// ZeroOrMore repeatedly applies p, collecting each success as a child,
// stopping at the first failure or the first Empty result (an Empty
// result never advances, so looping on it would hang forever — §4.4).
func ZeroOrMore(kind string, p Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		start := c.Range()
		start.End = start.Start
		g := newGroup(kind, start)
		cur := c
		for {
			r := p(cur, ctx)
			if r.Status != StatusSuccess {
				break
			}
			g.addChild(r.Group)
			cur = r.Cursor
		}
		if cur.Pos() == c.Pos() {
			return Result{Status: StatusEmpty, Cursor: cur, Group: g}
		}
		return success(cur, g)
	}
}

// Delimited parses item (sep item)*, accepting a trailing separator
// before the list logically ends (the caller's terminator check decides
// where that is) per §4.4.
func Delimited(kind string, item, sep Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		start := c.Range()
		start.End = start.Start
		g := newGroup(kind, start)
		first := item(c, ctx)
		if !first.Ok() {
			return Result{Status: StatusEmpty, Cursor: c, Group: g}
		}
		g.addChild(first.Group)
		cur := first.Cursor
		for {
			s := sep(cur, ctx)
			if !s.Ok() {
				break
			}
			next := item(s.Cursor, ctx)
			if !next.Ok() {
				// trailing separator: accept and stop.
				cur = s.Cursor
				break
			}
			g.addChild(next.Group)
			cur = next.Cursor
		}
		return success(cur, g)
	}
}

// Until repeatedly parses item, recovering from failures by recording a
// diagnostic and skipping one token, continuing until terminator
// matches or the cursor reaches EOF. Until never fails (§4.4).
func Until(kind string, item Parser, terminator Parser, message string) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		start := c.Range()
		start.End = start.Start
		g := newGroup(kind, start)
		cur := c
		for {
			if cur.AtEOF() {
				break
			}
			if terminator(cur, ctx).Ok() {
				break
			}
			r := item(cur, ctx)
			if r.Ok() {
				if r.Group != nil {
					g.addChild(r.Group)
				}
				if r.Cursor.Pos() == cur.Pos() {
					// Empty success with no progress: force an advance to
					// guarantee Until always terminates.
					cur = cur.Advance()
				} else {
					cur = r.Cursor
				}
				continue
			}
			ctx.Diags.Add(diag.New(diag.ParseError, cur.Range(), message))
			g.Incomplete = true
			cur = cur.Advance()
		}
		return success(cur, g)
	}
}

// Statement sequences parts, then requires and consumes a trailing ';'.
// A failure anywhere inside is caught: the offending token is recorded
// as a diagnostic, the group is marked incomplete, and Statement itself
// recovers by skipping forward to the next ';' (§4.4/§7).
func Statement(kind string, message string, parts ...Parser) Parser {
	body := Sequence(kind, parts...)
	return func(c *Cursor, ctx *Ctx) Result {
		r := body(c, ctx)
		cur := c
		var g *Group
		if r.Ok() {
			g = r.Group
			cur = r.Cursor
		} else {
			start := c.Range()
			start.End = start.Start
			g = newGroup(kind, start)
			g.Incomplete = true
			ctx.Diags.Add(diag.New(diag.ParseError, c.Range(), message))
		}
		for !cur.AtEOF() && cur.Current().Kind != token.SEMI {
			if g.Incomplete {
				cur = cur.Advance()
				continue
			}
			break
		}
		if cur.Current().Kind == token.SEMI {
			g.Range = g.Range.Join(cur.Range())
			cur = cur.Advance()
		} else if !g.Incomplete {
			ctx.Diags.Add(diag.New(diag.ParseError, cur.Range(), "expected ';'"))
			g.Incomplete = true
		}
		return success(cur, g)
	}
}

// GroupC wraps child's result in a fresh Group of the given kind,
// turning a composite parse into a single labeled node the way C5
// expects to materialize an AST node from.
func GroupC(kind string, child Parser) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		r := child(c, ctx)
		if r.Status == StatusFailure {
			return r
		}
		g := newGroup(kind, r.Group.Range)
		g.merge(r.Group)
		g.Children = r.Group.Children
		if r.Group.Incomplete {
			g.Incomplete = true
		}
		return Result{Status: r.Status, Cursor: r.Cursor, Group: g}
	}
}

// Match succeeds without capturing when the current token's text
// equals s (used for punctuation/operator literals already classified
// by kind, e.g. an OPERATOR token spelling ":=").
func Match(s string) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		if c.Source().Text[c.Current().Start:c.Current().End] == s {
			return success(c.Advance(), newGroup("", c.Range()))
		}
		return fail(c)
	}
}

// Keyword succeeds when the current token is an identifier spelling s
// exactly.
func Keyword(s string) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		cur := c.Current()
		if cur.Kind == token.IDENT && c.Source().Text[cur.Start:cur.End] == s {
			return success(c.Advance(), newGroup("", c.Range()))
		}
		return fail(c)
	}
}

// UseExact matches a token of kind k spelling exactly s and captures it
// under key.
func UseExact(key string, k token.Kind, s string) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		cur := c.Current()
		if cur.Kind != k || c.Source().Text[cur.Start:cur.End] != s {
			return fail(c)
		}
		g := newGroup("", c.Range())
		g.Tokens[key] = cur
		return success(c.Advance(), g)
	}
}

func captureKind(key string, k token.Kind) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		cur := c.Current()
		if cur.Kind != k {
			return fail(c)
		}
		g := newGroup("", c.Range())
		g.Tokens[key] = cur
		return success(c.Advance(), g)
	}
}

// UseIdent captures an IDENT token under key.
func UseIdent(key string) Parser { return captureKind(key, token.IDENT) }

// UseNumber captures a NUMBER token under key.
func UseNumber(key string) Parser { return captureKind(key, token.NUMBER) }

// UseQuoted captures a QUOTED token under key.
func UseQuoted(key string) Parser { return captureKind(key, token.QUOTED) }

// UseLiteral unconditionally attaches value under key without consuming
// any input — used to stamp a group with a value computed by the
// caller (e.g. a resolved enum member) rather than a raw token.
func UseLiteral(key string, value any) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		g := emptyOK(c, "").Group
		g.Literals[key] = value
		return Result{Status: StatusEmpty, Cursor: c, Group: g}
	}
}

// Err wraps child so that a failure is promoted into a recorded
// diagnostic anchored at the current position instead of propagating
// as a hard failure — the "expected x" message §4.4 describes. The
// combinator itself never fails once wrapped: callers that need to
// keep parsing after a missing-but-expected construct get an
// incomplete empty group back.
func Err(child Parser, message string) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		r := child(c, ctx)
		if r.Ok() {
			return r
		}
		ctx.Diags.Add(diag.New(diag.ParseError, c.Range(), message))
		g := emptyOK(c, "").Group
		g.Incomplete = true
		return Result{Status: StatusEmpty, Cursor: c, Group: g}
	}
}

// errMsg is a small helper for combinators that need a formatted
// "expected X, found Y" message without each caller re-deriving it.
func errMsg(expected string, got token.Token, src *token.Source) string {
	return fmt.Sprintf("expected %s, found %q", expected, got.Range(src).Text())
}
