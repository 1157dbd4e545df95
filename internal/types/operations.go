package types

// IsSubclassOf reports whether child is parent or descends from it by
// following Parent links. Mirrors the teacher's IsSubclassOf test shape
// (internal/types/type_compatibility_test.go), generalized from DWScript's
// single class hierarchy to this type system's class kind.
func IsSubclassOf(child, parent *Type) bool {
	if child == nil || parent == nil {
		return false
	}
	for cur := child; cur != nil; cur = cur.Parent {
		if cur == parent || cur.FullName == parent.FullName {
			return true
		}
	}
	return false
}

// Implements reports whether cls (or an ancestor of cls) declares iface
// among its Implements list, or whether cls's interface prerequisite
// chain includes iface when cls is itself an interface.
func Implements(cls, iface *Type) bool {
	if cls == nil || iface == nil {
		return false
	}
	if cls.Kind == KindInterface {
		for _, prereq := range cls.Prerequisites {
			if prereq.FullName == iface.FullName || Implements(prereq, iface) {
				return true
			}
		}
		return cls.FullName == iface.FullName
	}
	for cur := cls; cur != nil; cur = cur.Parent {
		for _, impl := range cur.Implements {
			if impl.FullName == iface.FullName || Implements(impl, iface) {
				return true
			}
		}
	}
	return false
}

// IsAssignableFrom reports whether a value of type src may be assigned to
// a slot declared as dst, per §4.3: identical types, numeric widening,
// class/interface subtyping, and the universal acceptance of extern
// (incomplete) types to avoid cascading diagnostics past a load failure.
func IsAssignableFrom(dst, src *Type) bool {
	if dst == nil || src == nil {
		return false
	}
	if dst.Incomplete || src.Incomplete {
		return true
	}
	if dst.FullName == src.FullName && dst.Kind == src.Kind {
		return true
	}
	switch dst.Kind {
	case KindPrimitive:
		return src.Kind == KindPrimitive && numericWidens(dst.Primitive, src.Primitive)
	case KindClass:
		return src.Kind == KindClass && IsSubclassOf(src, dst)
	case KindInterface:
		return Implements(src, dst)
	case KindArray:
		return src.Kind == KindArray && IsAssignableFrom(dst.Elem, src.Elem)
	case KindEnum, KindBitfield:
		return false
	default:
		return false
	}
}

// numericWidens reports whether a value of primitive `from` fits without
// loss of information into `to` — same signedness family, non-decreasing
// width, or promotion to a float of equal or greater width.
func numericWidens(to, from Primitive) bool {
	if to == from {
		return true
	}
	if !isNumeric(to) || !isNumeric(from) {
		return false
	}
	if isFloat(to) {
		if isFloat(from) {
			return primitiveWidth[to] >= primitiveWidth[from]
		}
		return primitiveWidth[to] >= primitiveWidth[from]
	}
	if isFloat(from) {
		return false
	}
	if isUnsigned(to) != isUnsigned(from) {
		return false
	}
	return primitiveWidth[to] >= primitiveWidth[from]
}

// IsCastableTo reports whether an explicit `as` cast (§4.6) from src to
// dst is permitted: every assignable pair is castable, plus numeric
// cross-family casts, plus downcasts along a class/interface hierarchy in
// either direction (checked at runtime, per the expression sub-language's
// design note on casts).
func IsCastableTo(dst, src *Type) bool {
	if IsAssignableFrom(dst, src) {
		return true
	}
	if dst == nil || src == nil {
		return false
	}
	if dst.Kind == KindPrimitive && src.Kind == KindPrimitive {
		return isNumeric(dst.Primitive) && isNumeric(src.Primitive)
	}
	if dst.Kind == KindClass && src.Kind == KindClass {
		return IsSubclassOf(dst, src) || IsSubclassOf(src, dst)
	}
	if dst.Kind == KindInterface && src.Kind == KindClass {
		return Implements(src, dst)
	}
	if dst.Kind == KindClass && src.Kind == KindInterface {
		return Implements(dst, src)
	}
	return false
}

// CommonAncestor returns the most specific class both a and b descend
// from (including either being the other's ancestor), or nil if they
// share no class in common — used when a try expression's branches have
// different class types (§4.6 type inference).
func CommonAncestor(a, b *Type) *Type {
	if a == nil || b == nil || a.Kind != KindClass || b.Kind != KindClass {
		return nil
	}
	ancestors := map[string]*Type{}
	for cur := a; cur != nil; cur = cur.Parent {
		ancestors[cur.FullName] = cur
	}
	for cur := b; cur != nil; cur = cur.Parent {
		if anc, ok := ancestors[cur.FullName]; ok {
			return anc
		}
	}
	return nil
}
