package ast

import (
	"github.com/uidl-lang/uidlc/internal/expr"
	"github.com/uidl-lang/uidlc/internal/types"
)

// scopeAdapter makes the ancestor-walked ScopeCtx satisfy expr.Scope, the
// minimal contract the expression sub-language depends on. It is the one
// bridge between internal/ast and internal/expr's otherwise independent
// type hierarchies.
type scopeAdapter struct {
	scope *ScopeCtx
	env   *Env
}

func scopeAdapterFor(n Node) expr.Scope {
	return &scopeAdapter{scope: scopeOf(n), env: currentEnv(n)}
}

func (a *scopeAdapter) LookupType(name string) (*types.Type, bool) {
	if a.scope == nil || a.env == nil {
		return nil, false
	}
	obj, ok := a.scope.Lookup(name)
	if !ok {
		return nil, false
	}
	return obj.ResolvedType(a.env), true
}

func (a *scopeAdapter) ThisType() (*types.Type, bool) {
	if a.scope == nil || a.scope.This == nil {
		return nil, false
	}
	return a.scope.This, true
}
