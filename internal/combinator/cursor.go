// Package combinator implements the generic parse-tree engine from spec
// §4.4 (C4): a result algebra of success/empty/failure over an
// immutable token cursor, with combinators for sequencing, alternation,
// repetition, panic-mode recovery, and Pratt-style expression parsing.
// The cursor follows the teacher's internal/parser.TokenCursor (buffered
// lookahead shared across cheap immutable copies, backed by a slice
// index rather than a fresh slice per step) adapted to operate over the
// tokenizer's pre-computed flat token slice (§4.1 is already total, so
// there is no lexer to pull from lazily) and to skip whitespace/comment
// tokens transparently the way every parser-facing consumer must
// (§3 "skip set").
package combinator

import "github.com/uidl-lang/uidlc/internal/token"

// Cursor is an immutable position into a pre-filtered view of
// significant tokens. Copying a Cursor is O(1): it shares the
// underlying slice and only differs by index.
type Cursor struct {
	toks []token.Token // only non-skippable tokens, plus a trailing EOF
	src  *token.Source
	pos  int
}

// NewCursor builds a Cursor from the tokenizer's full flat sequence,
// discarding whitespace/comment tokens per Kind.IsSkippable.
func NewCursor(all []token.Token, src *token.Source) *Cursor {
	toks := make([]token.Token, 0, len(all))
	for _, t := range all {
		if !t.Kind.IsSkippable() {
			toks = append(toks, t)
		}
	}
	return &Cursor{toks: toks, src: src}
}

// Source returns the cursor's owning source text.
func (c *Cursor) Source() *token.Source { return c.src }

// Current returns the token at the cursor's position.
func (c *Cursor) Current() token.Token {
	return c.Peek(0)
}

// Peek returns the token n positions ahead without advancing, clamping
// to the final (EOF) token when n runs past the end.
func (c *Cursor) Peek(n int) token.Token {
	idx := c.pos + n
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.toks) {
		return c.toks[len(c.toks)-1]
	}
	return c.toks[idx]
}

// Advance returns a new cursor one token ahead. Advancing past EOF is a
// no-op — EOF never advances further, so a combinator that keeps
// retrying at end-of-input cannot loop forever.
func (c *Cursor) Advance() *Cursor {
	if c.pos >= len(c.toks)-1 {
		return c
	}
	return &Cursor{toks: c.toks, src: c.src, pos: c.pos + 1}
}

// Pos exposes the raw index for diagnostics/memoization keys.
func (c *Cursor) Pos() int { return c.pos }

// AtEOF reports whether the cursor is positioned on the final token.
func (c *Cursor) AtEOF() bool { return c.Current().Kind == token.EOF }

// Range returns the token.Range of the current token.
func (c *Cursor) Range() token.Range { return c.Current().Range(c.src) }
