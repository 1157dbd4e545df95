// Package completion implements the completion engine from spec §4.10
// (C10): a static registry of completer descriptors, each naming the
// AST node kinds it applies inside, an optional enclosing-class filter,
// and a set of right-anchored token patterns to match against the
// tokens immediately preceding the cursor. Grounded on the combinator
// engine's token/cursor primitives (internal/combinator, internal/token)
// the same way internal/expr's Pratt table is a registrable set of
// handlers over the same token stream, generalized here from "parse an
// expression" to "suggest what could come next."
package completion

import (
	"sort"
	"strings"

	"github.com/uidl-lang/uidlc/internal/ast"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// ItemKind mirrors the LSP CompletionItemKind categories this engine
// actually produces.
type ItemKind int

const (
	KindKeyword ItemKind = iota
	KindProperty
	KindSignal
	KindEnumMember
	KindClass
	KindNamespace
)

// Item is one completion suggestion (§4.10).
type Item struct {
	Label           string
	Kind            ItemKind
	Snippet         string
	Detail          string
	Docs            string
	AdditionalEdits []TextEdit
	SortKey         string
}

// TextEdit is an additional edit a completion applies alongside
// inserting its label, e.g. auto-inserting a missing `using` import.
type TextEdit struct {
	Range   token.Range
	NewText string
}

// SubclassRef restricts a completer to firing only when the enclosing
// object's resolved class descends from Namespace.Name.
type SubclassRef struct {
	Namespace string
	Name      string
}

// PatternElem matches one of the last (up to) five non-skippable tokens
// before the cursor, right-anchored. A Literal match requires the
// token's exact text; otherwise any token of Kind matches and, when Var
// is set, its text is captured into the match-variables map.
type PatternElem struct {
	Kind    token.Kind
	Literal string // empty means match any token of Kind
	Var     string // capture variable name, empty means don't capture
}

// Completer is one registered descriptor (§4.10 design note "explicit
// static list of completer descriptors").
type Completer struct {
	Name              string
	AppliesIn         []string // ast Node Kind() values; empty means any
	AppliesInSubclass []SubclassRef
	Patterns          [][]PatternElem // any one matching is sufficient
	Build             func(vars map[string]string, env *ast.Env) []Item
}

var registry []Completer

// Register adds c to the global completer registry. Called from
// package init blocks, keeping the registry a flat, inspectable list
// rather than a runtime-built one.
func Register(c Completer) { registry = append(registry, c) }

func init() {
	registerNamespaceCompleter()
	registerPropertyNameCompleter()
	registerEnumValueCompleter()
	registerSignalNameCompleter()
}

// Complete runs the §4.10 algorithm: locate the token under the cursor,
// find the smallest node whose range contains the cursor (nodes parsed
// with errors are not skipped), then test every registered completer
// against that node and the preceding token run.
func Complete(ui *ast.UI, src *token.Source, toks []token.Token, env *ast.Env, offset int) []Item {
	significant := filterSignificant(toks)
	idx := tokenIndexAt(significant, src, offset)

	node := enclosingNode(ui, offset)
	if node == nil {
		node = ui
	}
	vars0 := precedingTokens(significant, src, idx)

	var out []Item
	for _, c := range registry {
		if !appliesToKind(c, node) {
			continue
		}
		if !appliesToSubclass(c, node, env) {
			continue
		}
		if vars, ok := matchAny(c.Patterns, vars0); ok {
			out = append(out, c.Build(vars, env)...)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey < out[j].SortKey })
	return out
}

func filterSignificant(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if !t.Kind.IsSkippable() {
			out = append(out, t)
		}
	}
	return out
}

// tokenIndexAt finds the index of the token containing offset, or the
// nearest preceding token if offset falls inside whitespace; an
// identifier under (or ending at) the cursor is stepped over to the token
// before it (§4.10 step 1: "locate token under cursor ... move left past
// it").
func tokenIndexAt(toks []token.Token, src *token.Source, offset int) int {
	best := -1
	for i, t := range toks {
		if t.Start <= offset {
			best = i
		} else {
			break
		}
	}
	if best < 0 {
		return 0
	}
	if toks[best].Kind == token.IDENT && offset <= toks[best].End {
		best--
	}
	return best
}

// precedingTokens returns up to the 5 tokens immediately at-or-before
// idx, in source order, for right-anchored pattern matching.
func precedingTokens(toks []token.Token, src *token.Source, idx int) []tokenText {
	start := idx - 4
	if start < 0 {
		start = 0
	}
	out := make([]tokenText, 0, idx-start+1)
	for i := start; i <= idx && i < len(toks); i++ {
		t := toks[i]
		out = append(out, tokenText{Kind: t.Kind, Text: src.Text[t.Start:t.End]})
	}
	return out
}

type tokenText struct {
	Kind token.Kind
	Text string
}

// matchAny tries each pattern right-anchored against the tail of prev;
// a pattern matches only if it fully aligns against the trailing tokens.
func matchAny(patterns [][]PatternElem, prev []tokenText) (map[string]string, bool) {
	for _, pat := range patterns {
		if len(pat) > len(prev) {
			continue
		}
		offset := len(prev) - len(pat)
		vars := map[string]string{}
		ok := true
		for i, elem := range pat {
			tok := prev[offset+i]
			if elem.Literal != "" && tok.Text != elem.Literal {
				ok = false
				break
			}
			if elem.Literal == "" && tok.Kind != elem.Kind {
				ok = false
				break
			}
			if elem.Var != "" {
				vars[elem.Var] = tok.Text
			}
		}
		if ok {
			return vars, true
		}
	}
	if len(patterns) == 0 {
		return map[string]string{}, true
	}
	return nil, false
}

func appliesToKind(c Completer, n ast.Node) bool {
	if len(c.AppliesIn) == 0 {
		return true
	}
	for _, k := range c.AppliesIn {
		if n.Kind() == k {
			return true
		}
	}
	return false
}

func appliesToSubclass(c Completer, n ast.Node, env *ast.Env) bool {
	if len(c.AppliesInSubclass) == 0 {
		return true
	}
	obj := enclosingObject(n)
	if obj == nil {
		return false
	}
	t := obj.ResolvedType(env)
	for _, ref := range c.AppliesInSubclass {
		target := env.ResolveClass(ref.Namespace + "." + ref.Name)
		if types.IsSubclassOf(t, target) {
			return true
		}
	}
	return false
}

func enclosingObject(n ast.Node) *ast.Object {
	for cur := n; cur != nil; cur = cur.Parent() {
		if o, ok := cur.(*ast.Object); ok {
			return o
		}
	}
	return nil
}

// NodeAt returns the smallest AST node whose range contains offset,
// exported for hover/definition lookups outside the completion engine
// that need the same "locate enclosing node" logic §4.10 step 2 defines.
func NodeAt(ui *ast.UI, offset int) ast.Node { return enclosingNode(ui, offset) }

// enclosingNode walks the document tree to find the smallest node whose
// range contains offset (§4.10 step 2). Ties (a node whose range is
// empty at offset, e.g. inside an incomplete body) resolve to the
// deepest match found.
func enclosingNode(ui *ast.UI, offset int) ast.Node {
	best := ast.Node(ui)
	for _, o := range ui.Objects {
		walkNode(o, offset, &best)
	}
	if ui.Template != nil {
		walkNode(ui.Template, offset, &best)
	}
	return best
}

func walkNode(n ast.Node, offset int, best *ast.Node) {
	if !n.Range().Contains(offset) {
		return
	}
	*best = n
	switch v := n.(type) {
	case *ast.Object:
		for _, p := range v.Properties {
			walkNode(p, offset, best)
		}
		for _, s := range v.Signals {
			walkNode(s, offset, best)
		}
		for _, c := range v.Children {
			walkNode(c, offset, best)
		}
	case *ast.Property:
		if v.Value != nil {
			walkNode(v.Value, offset, best)
		}
	case *ast.Template:
		for _, o := range v.Objects {
			walkNode(o, offset, best)
		}
	case *ast.ArrayValue:
		for _, it := range v.Items {
			walkNode(it, offset, best)
		}
	case *ast.ObjectValue:
		walkNode(v.Obj, offset, best)
	}
}

func registerNamespaceCompleter() {
	Register(Completer{
		Name:      "namespace-after-using",
		AppliesIn: []string{"UI"},
		Patterns: [][]PatternElem{
			{{Kind: token.IDENT, Literal: "using"}},
		},
		Build: func(vars map[string]string, env *ast.Env) []Item {
			var items []Item
			for ns := range env.Imports {
				items = append(items, Item{Label: ns, Kind: KindNamespace, SortKey: "1" + ns})
			}
			return items
		},
	})
}

func registerPropertyNameCompleter() {
	Register(Completer{
		Name:      "property-name",
		AppliesIn: []string{"Object"},
		Patterns: [][]PatternElem{
			{{Kind: token.LBRACE}},
			{{Kind: token.SEMI}},
		},
		Build: func(vars map[string]string, env *ast.Env) []Item {
			return nil // items come from PropertyItems, which internal/lsp's completion handler calls with the enclosing object
		},
	})
}

func registerEnumValueCompleter() {
	Register(Completer{
		Name:      "enum-value",
		AppliesIn: []string{"FlagsOrIdent", "Property"},
		Patterns: [][]PatternElem{
			{{Kind: token.IDENT}, {Kind: token.OPERATOR, Literal: ":"}},
		},
		Build: func(vars map[string]string, env *ast.Env) []Item {
			return nil
		},
	})
}

func registerSignalNameCompleter() {
	Register(Completer{
		Name:      "signal-name",
		AppliesIn: []string{"Object"},
		Patterns: [][]PatternElem{
			{{Kind: token.SEMI}},
			{{Kind: token.LBRACE}},
		},
		Build: func(vars map[string]string, env *ast.Env) []Item {
			return nil
		},
	})
}

// PropertyItems builds completion items for every writable, non-deprecated
// property on obj's resolved class, suitable for a completer whose
// AppliesInSubclass/context needs the actual enclosing object — exposed
// separately because Build callbacks only receive matched text
// variables and env, not the enclosing node itself.
func PropertyItems(obj *ast.Object, env *ast.Env) []Item {
	t := obj.ResolvedType(env)
	if t == nil || t.Incomplete {
		return nil
	}
	var items []Item
	for _, p := range t.AllProperties() {
		if p.Deprecated || !p.Writable {
			continue
		}
		items = append(items, Item{
			Label:   p.Name,
			Kind:    KindProperty,
			Snippet: p.Name + ": ${1}",
			Detail:  p.Type.FullName,
			Docs:    p.Docs,
			SortKey: "2" + p.Name,
		})
	}
	return items
}

// SignalItems builds completion items for every signal on obj's
// resolved class.
func SignalItems(obj *ast.Object, env *ast.Env) []Item {
	t := obj.ResolvedType(env)
	if t == nil || t.Incomplete {
		return nil
	}
	var items []Item
	for _, s := range t.Signals {
		items = append(items, Item{
			Label:   s.Name,
			Kind:    KindSignal,
			Snippet: s.Name + " => ${1:handler}()",
			Docs:    s.Docs,
			SortKey: "3" + s.Name,
		})
	}
	return items
}

// EnumMemberItems builds completion items for an expected enum/bitfield
// type's members, used at a property-value position.
func EnumMemberItems(t *types.Type) []Item {
	if t == nil || (t.Kind != types.KindEnum && t.Kind != types.KindBitfield) {
		return nil
	}
	var items []Item
	for _, m := range t.Members {
		label := m.Nick
		if label == "" {
			label = strings.ToLower(m.Name)
		}
		items = append(items, Item{Label: label, Kind: KindEnumMember, Detail: t.FullName, SortKey: "2" + label})
	}
	return items
}
