package combinator

import "github.com/uidl-lang/uidlc/internal/token"

// PrefixFn parses a primary/prefix expression starting at c.
type PrefixFn func(c *Cursor, ctx *Ctx) Result

// InfixFn parses the continuation of an expression given the
// already-parsed left operand.
type InfixFn func(c *Cursor, ctx *Ctx, left *Group) Result

type infixEntry struct {
	precedence int
	fn         InfixFn
}

// PrattTable is an iterative precedence-climbing expression parser
// (§9 design note: "implement as an iterative loop over a
// precedence-indexed table of infix handlers; prefix handlers dispatch
// on the next token kind"), grounded on the teacher's Pratt precedence
// table in internal/parser/parser.go, generalized from a single fixed
// operator grammar to the registrable table the expression
// sub-language (C6) needs for its lookup/cast/closure/try forms.
type PrattTable struct {
	prefixByKind map[token.Kind]PrefixFn
	prefixByOp   map[string]PrefixFn
	infix        map[string]infixEntry
}

// NewPrattTable creates an empty table.
func NewPrattTable() *PrattTable {
	return &PrattTable{
		prefixByKind: map[token.Kind]PrefixFn{},
		prefixByOp:   map[string]PrefixFn{},
		infix:        map[string]infixEntry{},
	}
}

// Prefix registers a prefix handler keyed by token kind (identifiers,
// numbers, strings, parens — anything whose dispatch doesn't need the
// token's exact text).
func (t *PrattTable) Prefix(kind token.Kind, fn PrefixFn) {
	t.prefixByKind[kind] = fn
}

// PrefixOp registers a prefix handler keyed by exact operator/keyword
// text (e.g. unary "-", "try", "$").
func (t *PrattTable) PrefixOp(text string, fn PrefixFn) {
	t.prefixByOp[text] = fn
}

// Infix registers an infix/postfix handler at the given binding power,
// keyed by the operator's exact text (e.g. ".", "as").
func (t *PrattTable) Infix(text string, precedence int, fn InfixFn) {
	t.infix[text] = infixEntry{precedence: precedence, fn: fn}
}

func tokenText(c *Cursor, tok token.Token) string {
	return c.Source().Text[tok.Start:tok.End]
}

// Parse runs the precedence-climbing loop starting at minPrecedence:
// dispatch a prefix handler for the current token, then repeatedly
// consume infix operators whose registered precedence is at least
// minPrecedence, left-associatively, as an explicit iterative loop
// rather than mutual recursion (§9).
func (t *PrattTable) Parse(minPrecedence int) Parser {
	return func(c *Cursor, ctx *Ctx) Result {
		cur := c.Current()
		var r Result
		if fn, ok := t.prefixByOp[tokenText(c, cur)]; ok {
			r = fn(c, ctx)
		} else if fn, ok := t.prefixByKind[cur.Kind]; ok {
			r = fn(c, ctx)
		} else {
			return fail(c)
		}
		if !r.Ok() {
			return r
		}
		left := r.Group
		at := r.Cursor

		for {
			opTok := at.Current()
			entry, ok := t.infix[tokenText(at, opTok)]
			if !ok || entry.precedence < minPrecedence {
				break
			}
			next := entry.fn(at, ctx, left)
			if !next.Ok() {
				break
			}
			left = next.Group
			at = next.Cursor
		}
		return success(at, left)
	}
}
