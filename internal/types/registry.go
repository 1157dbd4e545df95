package types

import "strings"

// Registry holds every Type loaded for one namespace, keyed by lower-cased
// name for case-insensitive lookup — the same convention the teacher's
// internal/interp/types.TypeSystem registries use for its builtin/class
// tables.
type Registry struct {
	Namespace string
	Version   string
	byName    map[string]*Type
}

// NewRegistry creates an empty registry for one (namespace, version) pair.
func NewRegistry(namespace, version string) *Registry {
	return &Registry{Namespace: namespace, Version: version, byName: map[string]*Type{}}
}

// Register adds t under its short name (the part after the namespace
// dot, e.g. "Button" for "Gtk.Button"). Re-registering the same name
// replaces the previous entry, matching the teacher's last-write-wins
// registry semantics.
func (r *Registry) Register(name string, t *Type) {
	r.byName[strings.ToLower(name)] = t
}

// Lookup finds a type by its short name, case-insensitively.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

// Names returns every registered short name, in no particular order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}

// Len reports how many types are registered.
func (r *Registry) Len() int { return len(r.byName) }
