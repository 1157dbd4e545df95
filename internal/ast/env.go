package ast

import (
	"strings"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/idr"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Env is threaded through every Validate call: the diagnostic bag
// (§4.4's parse-context error list, extended to validation), the IDR
// loader, and the current file's imported-namespaces context (§3 "IDR
// context"). Lookups proceed imported-first, then the implicit default
// namespace — the toolkit namespace named by the file's leading `using`
// directive.
type Env struct {
	Diags            *diag.Bag
	Loader           *idr.Loader
	Imports          map[string]*types.Registry // key: lowercased namespace name
	DefaultNamespace string
}

// NewEnv creates an Env backed by loader, with no namespaces imported
// yet; UI.Validate populates Imports from its `using` directives.
func NewEnv(loader *idr.Loader) *Env {
	return &Env{Diags: &diag.Bag{}, Loader: loader, Imports: map[string]*types.Registry{}}
}

// Import loads namespace/version and records it as visible to lookups
// in this file. The first imported namespace becomes the default
// (§3 "first directive must be the toolkit").
func (e *Env) Import(namespace, version string) (*types.Registry, error) {
	reg, err := e.Loader.Load(namespace, version)
	if err != nil {
		return nil, err
	}
	key := strings.ToLower(namespace)
	e.Imports[key] = reg
	if e.DefaultNamespace == "" {
		e.DefaultNamespace = key
	}
	return reg, nil
}

// ResolveClass looks up a namespace-qualified or bare class name against
// the imports, default namespace last. Returns an incomplete Extern
// type (never nil) when nothing resolves, per §4.2/§4.3 degraded
// behavior for unresolved references.
func (e *Env) ResolveClass(name string) *types.Type {
	if ns, short, ok := splitQualified(name); ok {
		if reg, ok := e.Imports[strings.ToLower(ns)]; ok {
			if t, ok := reg.Lookup(short); ok {
				return t
			}
		}
		return types.NewExtern(name)
	}
	if e.DefaultNamespace != "" {
		if reg, ok := e.Imports[e.DefaultNamespace]; ok {
			if t, ok := reg.Lookup(name); ok {
				return t
			}
		}
	}
	return types.NewExtern(name)
}

func splitQualified(name string) (namespace, short string, ok bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name, false
	}
	return name[:i], name[i+1:], true
}
