package combinator

import "github.com/uidl-lang/uidlc/internal/token"

// Group is the generic parse-tree node §3 describes: an AST-kind tag,
// a byte range, ordered children, keyed token captures, keyed literal
// captures, and an incomplete flag recording that recovery occurred
// somewhere inside it. internal/ast materializes typed nodes from
// Groups; C4 itself is agnostic to what a Kind means.
type Group struct {
	Kind     string
	Range    token.Range
	Children []*Group
	Tokens   map[string]token.Token
	Literals map[string]any
	Incomplete bool
}

// newGroup creates an empty group of the given kind at r.
func newGroup(kind string, r token.Range) *Group {
	return &Group{Kind: kind, Range: r, Tokens: map[string]token.Token{}, Literals: map[string]any{}}
}

// addChild appends child and widens the group's range to cover it.
func (g *Group) addChild(child *Group) {
	g.Children = append(g.Children, child)
	g.Range = g.Range.Join(child.Range)
	if child.Incomplete {
		g.Incomplete = true
	}
}

// ChildrenOfKind filters g's direct children by Kind, the operation
// internal/ast's "children grouped by kind" lazily wraps.
func (g *Group) ChildrenOfKind(kind string) []*Group {
	var out []*Group
	for _, c := range g.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Token returns a captured token by key.
func (g *Group) Token(key string) (token.Token, bool) {
	t, ok := g.Tokens[key]
	return t, ok
}

// Literal returns a captured literal value by key.
func (g *Group) Literal(key string) (any, bool) {
	v, ok := g.Literals[key]
	return v, ok
}

// merge folds other's captures and children into g (used by Sequence to
// flatten a run of sub-results into one group without nesting a Group
// combinator at every step).
func (g *Group) merge(other *Group) {
	if other == nil {
		return
	}
	for k, v := range other.Tokens {
		g.Tokens[k] = v
	}
	for k, v := range other.Literals {
		g.Literals[k] = v
	}
	g.Children = append(g.Children, other.Children...)
	if other.Incomplete {
		g.Incomplete = true
	}
}
