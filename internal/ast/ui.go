package ast

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/token"
)

// Import is one `using Namespace version;` directive at the top of a
// document (§3, §6).
type Import struct {
	Namespace string
	Version   string
	Rng       token.Range
}

// UI is the document root (§3 "UI (root)"): the toolkit directive's
// imports, an optional translation domain, the top-level objects, and at
// most one template. It memoizes the id-to-object scope map so every
// descendant's ancestor walk to provideScope is O(depth), not O(objects).
type UI struct {
	base
	Imports            []Import
	TranslationDomain  string
	Objects            []*Object
	Template           *Template

	env *Env // stashed for provideValueType helpers that need env outside Validate

	scope            *ScopeCtx
	usedNamespaces   map[string]bool
	legacyTemplateIDs map[string]bool
}

func (u *UI) Kind() string { return "UI" }

func (u *UI) provideScope() (*ScopeCtx, bool) {
	if u.scope == nil {
		objs := map[string]*Object{}
		u.collectObjectIDs(u.Objects, objs)
		if u.Template != nil {
			u.collectObjectIDs(u.Template.Objects, objs)
		}
		u.scope = &ScopeCtx{Objects: objs}
	}
	return u.scope, true
}

func (u *UI) provideValueType() (*ValueTypeCtx, bool) { return nil, false }

func (u *UI) collectObjectIDs(objs []*Object, out map[string]*Object) {
	for _, o := range objs {
		if o.ID != "" {
			if _, seen := out[o.ID]; !seen {
				out[o.ID] = o
			}
		}
		u.collectObjectIDs(o.Children, out)
	}
}

// ObjectByID resolves id against the document's id scope, the same map
// provideScope memoizes for expression lookups — exposed for callers
// outside this package (the LSP's go-to-definition handler) that need
// the same resolution without depending on the unexported
// contextProvider interface.
func (u *UI) ObjectByID(id string) (*Object, bool) {
	scope, _ := u.provideScope()
	return scope.Lookup(id)
}

// Validate runs the toolkit-version and import resolution first (every
// descendant's class resolution depends on them), then walks objects and
// the template (§4.5 "UI.Validate" order).
func (u *UI) Validate(env *Env) {
	u.runOnce(func() {
		u.env = env
		if len(u.Imports) == 0 {
			env.Diags.Add(diag.New(diag.MissingNamespace, u.rng, "document has no `using` directive; at least one toolkit namespace is required"))
		}
		for _, imp := range u.Imports {
			if _, err := env.Import(imp.Namespace, imp.Version); err != nil {
				env.Diags.Add(diag.New(diag.VersionMismatch, imp.Rng,
					fmt.Sprintf("could not load %s-%s: %v", imp.Namespace, imp.Version, err)))
			}
		}
		u.provideScope()
		u.usedNamespaces = map[string]bool{}
		for ns := range env.Imports {
			u.usedNamespaces[ns] = true
		}

		for _, o := range u.Objects {
			o.SetParent(u)
			o.Validate(env)
		}
		if u.Template != nil {
			u.Template.SetParent(u)
			u.Template.Validate(env)
			if u.Template.Name != "" {
				if u.legacyTemplateIDs == nil {
					u.legacyTemplateIDs = map[string]bool{}
				}
				u.legacyTemplateIDs[u.Template.Name] = true
			}
		}
	})
}

// UsedNamespaces returns the namespaces actually imported by this
// document, memoized during Validate.
func (u *UI) UsedNamespaces() map[string]bool { return u.usedNamespaces }

// LegacyTemplateIDs returns the set of names usable, for back-compat, as
// an alias for the template's declared name (§9 "legacy template id
// handling" open question). The set is recorded during Validate; no
// completion or hover code reads it. It is excluded from id-uniqueness
// checking since a template is never instantiated by id the way a
// regular object is.
func (u *UI) LegacyTemplateIDs() map[string]bool { return u.legacyTemplateIDs }

func (u *UI) DocumentSymbol() Symbol {
	var children []Symbol
	for _, o := range u.Objects {
		children = append(children, o.DocumentSymbol())
	}
	if u.Template != nil {
		children = append(children, u.Template.DocumentSymbol())
	}
	return Symbol{Name: "document", Kind: "UI", FullRange: u.rng, SelectionRange: u.rng, Children: children}
}

// Template is the document's single list-item factory (§3, §6):
// `template Name : ParentClass { … }`, or an orphan `template Name { … }`
// with no declared parent class. Its objects see an implicit `item`
// binding of type ParentClass through ScopeCtx.This when a parent is
// declared.
type Template struct {
	base
	Name        string
	NameRng     token.Range
	ForClass    string // empty for an orphan template
	ForClassRng token.Range
	Objects     []*Object
}

func (t *Template) Kind() string { return "Template" }

func (t *Template) provideScope() (*ScopeCtx, bool) {
	ui, ok := t.Parent().(*UI)
	if !ok {
		return nil, false
	}
	docScope, _ := ui.provideScope()
	if t.ForClass == "" {
		return &ScopeCtx{Objects: docScope.Objects}, true
	}
	env := currentEnv(t)
	if env == nil {
		return &ScopeCtx{Objects: docScope.Objects}, true
	}
	this := env.ResolveClass(t.ForClass)
	return &ScopeCtx{Objects: docScope.Objects, This: this}, true
}

func (t *Template) provideValueType() (*ValueTypeCtx, bool) { return nil, false }

func (t *Template) Validate(env *Env) {
	t.runOnce(func() {
		if t.ForClass != "" {
			this := env.ResolveClass(t.ForClass)
			if this.Incomplete {
				env.Diags.Add(diag.New(diag.UnresolvedReference, t.ForClassRng,
					fmt.Sprintf("class %q could not be resolved against any imported namespace", t.ForClass)))
			}
		}
		for _, o := range t.Objects {
			o.SetParent(t)
			o.Validate(env)
		}
	})
}

func (t *Template) DocumentSymbol() Symbol {
	var children []Symbol
	for _, o := range t.Objects {
		children = append(children, o.DocumentSymbol())
	}
	name := t.Name
	if t.ForClass != "" {
		name = fmt.Sprintf("%s : %s", t.Name, t.ForClass)
	}
	return Symbol{Name: name, Kind: "Template", FullRange: t.rng, SelectionRange: t.NameRng, Children: children}
}
