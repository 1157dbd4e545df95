package ast

import (
	"fmt"

	"github.com/uidl-lang/uidlc/internal/diag"
	"github.com/uidl-lang/uidlc/internal/token"
	"github.com/uidl-lang/uidlc/internal/types"
)

// Object is a single `ClassName id? { … }` declaration (§3, §4.5): a
// reference to a toolkit or templated class, an optional id unique within
// the enclosing document, and a body of properties/signals/children.
type Object struct {
	base
	ClassName   string
	ClassRng    token.Range
	ID          string
	IDRng       token.Range
	Properties  []*Property
	Signals     []*Signal
	Children    []*Object // objects nested directly (not via a property)

	resolvedType *types.Type // memoized by ResolvedType
}

func (o *Object) Kind() string { return "Object" }

// ResolvedType resolves and memoizes the object's class against env,
// returning an Incomplete Extern placeholder (never nil) when the class
// name does not resolve (§4.2 degraded behavior).
func (o *Object) ResolvedType(env *Env) *types.Type {
	if o.resolvedType == nil {
		o.resolvedType = env.ResolveClass(o.ClassName)
	}
	return o.resolvedType
}

func (o *Object) Validate(env *Env) {
	o.runOnce(func() {
		t := o.ResolvedType(env)
		if t.Incomplete {
			env.Diags.Add(diag.New(diag.UnresolvedReference, o.ClassRng,
				fmt.Sprintf("class %q could not be resolved against any imported namespace", o.ClassName)))
		} else if t.Kind == types.KindClass && t.Abstract {
			env.Diags.Add(diag.New(diag.TypeMismatch, o.ClassRng,
				fmt.Sprintf("%s is abstract and cannot be instantiated directly", t.FullName)))
		} else if t.Kind == types.KindInterface {
			env.Diags.Add(diag.New(diag.TypeMismatch, o.ClassRng,
				fmt.Sprintf("%s is an interface, it cannot be instantiated", t.FullName)))
		}

		if o.ID != "" {
			if s := scopeOf(o); s != nil {
				if existing, ok := s.Objects[o.ID]; ok && existing != o {
					env.Diags.Add(diag.New(diag.DuplicateDefinition, o.IDRng,
						fmt.Sprintf("id %q is already used by another object in this document", o.ID)))
				}
			}
		}

		seenProps := map[string]token.Range{}
		for _, p := range o.Properties {
			p.SetParent(o)
			if prev, dup := seenProps[p.Name]; dup {
				env.Diags.Add(diag.New(diag.DuplicateDefinition, p.NameRng,
					fmt.Sprintf("property %q is set more than once", p.Name)).
					WithRelated(prev, "previous value set here"))
			} else {
				seenProps[p.Name] = p.NameRng
			}
			p.Validate(env)
		}
		for _, s := range o.Signals {
			s.SetParent(o)
			s.Validate(env)
		}
		for _, c := range o.Children {
			c.SetParent(o)
			c.Validate(env)
		}
	})
}

func (o *Object) DocumentSymbol() Symbol {
	name := o.ClassName
	if o.ID != "" {
		name = fmt.Sprintf("%s (%s)", o.ID, o.ClassName)
	}
	var children []Symbol
	for _, p := range o.Properties {
		children = append(children, p.DocumentSymbol())
	}
	for _, s := range o.Signals {
		children = append(children, s.DocumentSymbol())
	}
	for _, c := range o.Children {
		children = append(children, c.DocumentSymbol())
	}
	return Symbol{Name: name, Kind: "Object", FullRange: o.rng, SelectionRange: o.ClassRng, Children: children}
}

// Property is a `name: value;` assignment inside an object body (§4.5).
type Property struct {
	base
	Name    string
	NameRng token.Range
	Value   Value
	Bind    bool // set by `bind expr` values; flagged when the property is construct-only
}

func (p *Property) Kind() string { return "Property" }

func (p *Property) provideValueType() (*ValueTypeCtx, bool) {
	obj, ok := p.Parent().(*Object)
	if !ok {
		return nil, false
	}
	env := currentEnv(p)
	if env == nil {
		return nil, false
	}
	t := obj.ResolvedType(env)
	if t == nil || t.Incomplete {
		return &ValueTypeCtx{MustInferType: true, AllowNull: true}, true
	}
	prop, ok := t.PropertyByName(p.Name)
	if !ok {
		return &ValueTypeCtx{MustInferType: true, AllowNull: true}, true
	}
	return &ValueTypeCtx{Expected: prop.Type}, true
}

func (p *Property) provideScope() (*ScopeCtx, bool) { return nil, false }

func (p *Property) Validate(env *Env) {
	p.runOnce(func() {
		obj, _ := p.Parent().(*Object)
		if obj == nil {
			return
		}
		t := obj.ResolvedType(env)
		if !t.Incomplete {
			prop, ok := t.PropertyByName(p.Name)
			if !ok {
				names := make([]string, 0, len(t.AllProperties()))
				for _, pr := range t.AllProperties() {
					names = append(names, pr.Name)
				}
				d := diag.New(diag.UnresolvedReference, p.NameRng,
					fmt.Sprintf("%s has no property %q", t.FullName, p.Name))
				if best := diag.DidYouMean(p.Name, names); best != "" {
					d.WithHint(fmt.Sprintf("did you mean %q?", best))
					d.WithAction(diag.CodeAction{Title: fmt.Sprintf("Change to %q", best),
						Edits: []diag.TextEdit{{Range: p.NameRng, NewText: best}}})
				}
				env.Diags.Add(d)
			} else {
				if !prop.Writable {
					env.Diags.Add(diag.New(diag.InternalInvariant, p.NameRng,
						fmt.Sprintf("property %q is read-only", p.Name)))
				}
				if prop.Deprecated {
					d := diag.New(diag.DeprecatedUse, p.NameRng, fmt.Sprintf("property %q is deprecated", p.Name))
					d.Tag = diag.TagDeprecated
					if prop.DeprecatedMsg != "" {
						d.WithHint(prop.DeprecatedMsg)
					}
					env.Diags.Add(d)
				}
				if p.Bind && prop.ConstructOnly {
					env.Diags.Add(diag.New(diag.InternalInvariant, p.NameRng,
						fmt.Sprintf("property %q can only be set at construction, it cannot be bound", p.Name)))
				}
			}
		}
		if p.Value != nil {
			p.Value.SetParent(p)
			p.Value.Validate(env)
		}
	})
}

func (p *Property) DocumentSymbol() Symbol {
	var children []Symbol
	if p.Value != nil {
		children = append(children, p.Value.DocumentSymbol())
	}
	return Symbol{Name: p.Name, Kind: "Property", FullRange: p.rng, SelectionRange: p.NameRng, Children: children}
}

// Signal is a `name(::detail)? => handler (swapped)? (after)?;` connection
// (§4.5).
type Signal struct {
	base
	Name       string
	NameRng    token.Range
	Detail     string
	Handler    string
	HandlerRng token.Range
	Swapped    bool
	After      bool
	Object     *Object // optional inline handler-argument object
}

func (s *Signal) Kind() string { return "Signal" }

func (s *Signal) Validate(env *Env) {
	s.runOnce(func() {
		obj, _ := s.Parent().(*Object)
		if obj == nil {
			return
		}
		t := obj.ResolvedType(env)
		if !t.Incomplete {
			if _, ok := t.SignalByName(s.Name); !ok {
				env.Diags.Add(diag.New(diag.UnresolvedReference, s.NameRng,
					fmt.Sprintf("%s has no signal %q", t.FullName, s.Name)))
			}
		}
		if s.Object != nil {
			s.Object.SetParent(s)
			s.Object.Validate(env)
		}
	})
}

func (s *Signal) DocumentSymbol() Symbol {
	return Symbol{Name: s.Name, Kind: "Signal", FullRange: s.rng, SelectionRange: s.NameRng}
}

// currentEnv finds the validating Env stashed by UI.Validate at the root,
// so nested nodes' provideValueType implementations (run outside their own
// Validate, e.g. from valueTypeOf during a sibling's check) can still
// resolve property types without threading an extra parameter through
// every context accessor.
func currentEnv(n Node) *Env {
	for cur := n; cur != nil; cur = cur.Parent() {
		if ui, ok := cur.(*UI); ok {
			return ui.env
		}
	}
	return nil
}
