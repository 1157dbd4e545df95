// Package idr loads introspection-repository XML files (§4.2, C2) and
// exposes them as internal/types.Registry values keyed by
// (namespace, version). It follows the search-path/registration pattern
// sketched by the teacher's internal/units package (NewUnitRegistry,
// RegisterUnit/GetUnit, case-insensitive names, a loading set for cycle
// detection) generalized from loading DWScript .dws/.pas unit files by
// name to loading namespace .gir-shaped XML files by (namespace,
// version), and parsed with encoding/xml's streaming Decoder rather than
// a DOM, per the allow-listed-SAX design note in §4.2 (justified in
// SPEC_FULL.md since no pack dependency offers a SAX-shaped XML reader).
package idr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uidl-lang/uidlc/internal/types"
)

// Loader resolves and caches namespace type registries across an
// include graph, detecting cycles the way RegisterUnit/loading does in
// the teacher's unit registry.
type Loader struct {
	searchPaths []string
	cache       map[string]*types.Registry // key: "Namespace-Version"
	loading     map[string]bool            // cycle guard, same key
}

// NewLoader creates a Loader searching searchPaths in order; an empty
// slice defaults to the current directory, matching
// NewUnitRegistry(nil)'s default in the teacher package.
func NewLoader(searchPaths []string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	return &Loader{
		searchPaths: searchPaths,
		cache:       map[string]*types.Registry{},
		loading:     map[string]bool{},
	}
}

func cacheKey(namespace, version string) string {
	return strings.ToLower(namespace) + "-" + version
}

// Load resolves namespace/version, parsing its XML file and recursively
// resolving any <include> directives, returning the fully-populated
// registry. Repeated calls for the same (namespace, version) return the
// cached registry without re-parsing.
func (l *Loader) Load(namespace, version string) (*types.Registry, error) {
	key := cacheKey(namespace, version)
	if reg, ok := l.cache[key]; ok {
		return reg, nil
	}
	if l.loading[key] {
		return nil, fmt.Errorf("idr: include cycle detected loading %s-%s", namespace, version)
	}
	l.loading[key] = true
	defer delete(l.loading, key)

	path, err := l.findNamespaceFile(namespace, version)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idr: opening %s: %w", path, err)
	}
	defer f.Close()

	reg, includes, err := parseRepository(f, namespace, version)
	if err != nil {
		return nil, fmt.Errorf("idr: parsing %s: %w", path, err)
	}
	l.cache[key] = reg

	for _, inc := range includes {
		if _, err := l.Load(inc.Name, inc.Version); err != nil {
			return nil, fmt.Errorf("idr: resolving include %s-%s from %s: %w", inc.Name, inc.Version, namespace, err)
		}
	}
	l.resolveExterns(reg)
	return reg, nil
}

// resolveExterns walks reg's classes and interfaces, replacing any
// Extern placeholder left by resolveRef with the real type from
// whichever namespace registry in the cache declares it, now that every
// include has loaded. A placeholder that still can't be found (the
// namespace never declared that name, or its file failed to load)
// is left as-is: §4.2 requires unresolved references to degrade to an
// incomplete type rather than abort the whole load.
func (l *Loader) resolveExterns(reg *types.Registry) {
	lookup := func(fullName string) *types.Type {
		i := strings.LastIndexByte(fullName, '.')
		if i < 0 {
			return nil
		}
		ns := fullName[:i]
		short := fullName[i+1:]
		for _, cached := range l.cache {
			if strings.EqualFold(cached.Namespace, ns) {
				if t, ok := cached.Lookup(short); ok {
					return t
				}
			}
		}
		return nil
	}
	fix := func(ref *types.Type) *types.Type {
		if ref == nil || ref.Kind != types.KindExtern {
			return ref
		}
		if real := lookup(ref.FullName); real != nil {
			return real
		}
		return ref
	}
	for _, name := range reg.Names() {
		t, _ := reg.Lookup(name)
		if t.Kind != types.KindClass && t.Kind != types.KindInterface {
			continue
		}
		t.Parent = fix(t.Parent)
		for i, impl := range t.Implements {
			t.Implements[i] = fix(impl)
		}
		for i, pre := range t.Prerequisites {
			t.Prerequisites[i] = fix(pre)
		}
		for i := range t.Properties {
			t.Properties[i].Type = fix(t.Properties[i].Type)
		}
	}
}

// findNamespaceFile searches searchPaths for "<Namespace>-<Version>.xml",
// case-insensitively, mirroring FindUnit's extension-preference search
// but over a single fixed extension since IDR files have no alternate
// forms.
func (l *Loader) findNamespaceFile(namespace, version string) (string, error) {
	want := strings.ToLower(namespace + "-" + version + ".xml")
	var tried []string
	for _, dir := range l.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			tried = append(tried, dir)
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.ToLower(e.Name()) == want {
				return filepath.Join(dir, e.Name()), nil
			}
		}
		tried = append(tried, dir)
	}
	return "", fmt.Errorf("idr: namespace %s-%s not found, searched: %s", namespace, version, strings.Join(tried, ", "))
}
