package ast

import (
	"github.com/uidl-lang/uidlc/internal/token"
)

// Node is the interface every AST node kind implements (§3 "AST Node
// (abstract)"). Concrete validation, docs, and reference behavior live
// on the concrete types; Node exposes only the structural operations
// every consumer (completion, LSP, diagnostics) needs regardless of
// kind.
type Node interface {
	Parent() Node
	SetParent(Node)
	Range() token.Range
	Kind() string
	Validate(env *Env)
	DocumentSymbol() Symbol
}

// Symbol is the §4.5 document_symbol tuple.
type Symbol struct {
	Name          string
	Kind          string
	FullRange     token.Range
	SelectionRange token.Range
	Detail        string
	Children      []Symbol
}

// base is embedded by every concrete node kind to supply the Parent/
// Range/validated-once bookkeeping common to all of them, mirroring
// how every DWScript AST node embeds a shared position/parent field in
// the teacher's pkg/ast package.
type base struct {
	parent    Node
	rng       token.Range
	validated bool
}

func (b *base) Parent() Node         { return b.parent }
func (b *base) SetParent(p Node)     { b.parent = p }
func (b *base) Range() token.Range   { return b.rng }

// runOnce guards a validator so that a node already marked failed
// (validated) is silently skipped on subsequent access (§4.5, §7
// "a validator that has already failed is silently skipped on
// subsequent access").
func (b *base) runOnce(fn func()) {
	if b.validated {
		return
	}
	b.validated = true
	fn()
}
