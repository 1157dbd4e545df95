// Package fmtedit exposes the minimal surface an external formatter needs
// from this compiler's front end (§6 "format" CLI command, listed there
// as an external collaborator): a whitespace-aware token stream plus the
// byte ranges of every parsed node. It does not implement layout rules
// itself — the formatter's actual reflow/indentation policy is out of
// scope (§1 Non-goals) — the same way the teacher's pkg/printer is kept
// entirely separate from lexer/parser and is handed only a finished AST.
package fmtedit

import (
	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/token"
)

// TokenStream pairs a full token sequence (including skippable whitespace
// and comment tokens, which a layout engine needs to preserve blank
// lines and trailing comments) with the Source it indexes into.
type TokenStream struct {
	Tokens []token.Token
	Source *token.Source
}

// NewTokenStream wraps toks/src for handoff to an external formatter.
func NewTokenStream(toks []token.Token, src *token.Source) *TokenStream {
	return &TokenStream{Tokens: toks, Source: src}
}

// TokensIn returns the subsequence of ts.Tokens whose range falls within
// n's range, inclusive of the whitespace/comment tokens an external
// layout engine would need to reflow around n without losing them.
func (ts *TokenStream) TokensIn(n ast.Node) []token.Token {
	r := n.Range()
	var out []token.Token
	for _, t := range ts.Tokens {
		if t.Start >= r.Start && t.End <= r.End {
			out = append(out, t)
		}
	}
	return out
}

// Document is the full contract handed to an external formatter: the
// validated AST plus its backing token stream, so layout decisions can
// consult both node kind/range (for grouping) and the literal token
// sequence (for preserving comments and blank-line runs).
type Document struct {
	UI     *ast.UI
	Tokens *TokenStream
}

// NewDocument builds the formatter-facing view of a parsed file.
func NewDocument(ui *ast.UI, toks []token.Token, src *token.Source) *Document {
	return &Document{UI: ui, Tokens: NewTokenStream(toks, src)}
}

// Reformat returns the formatted text for doc. Since the formatter's own
// layout rules are out of scope (§1), this is the identity transform: it
// returns the original source unchanged. It exists so the CLI's `format`
// command and the LSP's formatting request have a single call site to
// replace once a real layout engine is wired in, without having to
// rediscover where the token/AST handoff needs to happen.
func Reformat(doc *Document) string {
	return doc.Tokens.Source.Text
}

// WouldChange reports whether Reformat(doc) differs from the original
// source, as `format --check` (§6) needs. Always false until Reformat
// stops being an identity transform.
func WouldChange(doc *Document) bool {
	return Reformat(doc) != doc.Tokens.Source.Text
}
