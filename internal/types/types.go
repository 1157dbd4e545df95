// Package types implements the type system described in spec §3/§4.3 (C3):
// a tagged-variant Type representing primitives, enumerations, bitfields,
// classes, interfaces, arrays, and extern placeholders, plus the
// assignability/castability/common-ancestor operations that drive value
// checking in the AST validators (C5) and the expression engine (C6).
//
// The shape follows the teacher's internal/interp/types.TypeSystem
// (registries keyed by lowercased name) and internal/types' test suite
// (IsSubclassOf, IsAssignableFrom, common-ancestor reduction), generalized
// from DWScript's class/record/interface model to this language's
// introspection-backed type model (§3).
package types

import "strings"

// Kind tags which variant a Type value holds.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindBitfield
	KindClass
	KindInterface
	KindArray
	KindExtern
)

// Primitive enumerates the basic scalar kinds from §3.
type Primitive int

const (
	PrimBool Primitive = iota
	PrimInt8
	PrimInt16
	PrimInt32
	PrimInt64
	PrimUint8
	PrimUint16
	PrimUint32
	PrimUint64
	PrimFloat32
	PrimFloat64
	PrimString
	PrimTypeHandle
	PrimChar
	PrimVoid
)

var primitiveWidth = map[Primitive]int{
	PrimInt8: 8, PrimUint8: 8,
	PrimInt16: 16, PrimUint16: 16,
	PrimInt32: 32, PrimUint32: 32, PrimFloat32: 32,
	PrimInt64: 64, PrimUint64: 64, PrimFloat64: 64,
}

func isFloat(p Primitive) bool { return p == PrimFloat32 || p == PrimFloat64 }

func isUnsigned(p Primitive) bool {
	switch p {
	case PrimUint8, PrimUint16, PrimUint32, PrimUint64:
		return true
	default:
		return false
	}
}

func isNumeric(p Primitive) bool {
	switch p {
	case PrimBool, PrimString, PrimTypeHandle, PrimChar, PrimVoid:
		return false
	default:
		return true
	}
}

// EnumMember is one entry of an Enumeration or Bitfield.
type EnumMember struct {
	Name  string
	Nick  string // hyphenated lower-case alias (§4.3)
	Value int64
	Docs  string
}

// Property describes one property slot on a Class or Interface.
type Property struct {
	Name          string
	Type          *Type
	Writable      bool
	ConstructOnly bool
	Deprecated    bool
	DeprecatedMsg string
	Docs          string
}

// Signal describes one signal slot on a Class or Interface.
type Signal struct {
	Name          string
	Deprecated    bool
	DeprecatedMsg string
	Docs          string
}

// Type is the tagged-variant representation from §3. Exactly one of the
// kind-specific fields is meaningful, selected by Kind.
type Type struct {
	Kind Kind

	Name         string
	FullName     string
	GLibTypeName string

	Deprecated    bool
	DeprecatedMsg string
	Incomplete    bool // true for Extern and classes lacking loaded introspection

	Primitive Primitive

	Members []EnumMember // Enum, Bitfield

	Parent     *Type   // Class
	Implements []*Type // Class: implemented interfaces
	Properties []Property
	Signals    []Signal
	Abstract   bool // Class

	Prerequisites []*Type // Interface

	Elem *Type // Array: inner type
}

// NewPrimitive returns the (interned-by-value) Type for a primitive kind.
func NewPrimitive(p Primitive) *Type {
	return &Type{Kind: KindPrimitive, Primitive: p, Name: primitiveName(p), FullName: primitiveName(p)}
}

func primitiveName(p Primitive) string {
	switch p {
	case PrimBool:
		return "bool"
	case PrimInt8:
		return "int8"
	case PrimInt16:
		return "int16"
	case PrimInt32:
		return "int32"
	case PrimInt64:
		return "int64"
	case PrimUint8:
		return "uint8"
	case PrimUint16:
		return "uint16"
	case PrimUint32:
		return "uint32"
	case PrimUint64:
		return "uint64"
	case PrimFloat32:
		return "float32"
	case PrimFloat64:
		return "float64"
	case PrimString:
		return "string"
	case PrimTypeHandle:
		return "type"
	case PrimChar:
		return "char"
	case PrimVoid:
		return "void"
	default:
		return "unknown"
	}
}

// NewArray wraps inner as an array element type.
func NewArray(inner *Type) *Type {
	name := inner.Name + "[]"
	return &Type{Kind: KindArray, Name: name, FullName: name, Elem: inner}
}

// NewExtern creates a placeholder type for a namespace-qualified class the
// compiler cannot introspect (§3 "Extern"). Most validations are
// suppressed on extern types via Incomplete.
func NewExtern(fullName string) *Type {
	return &Type{Kind: KindExtern, Name: fullName, FullName: fullName, Incomplete: true}
}

// NewClass creates a class type with Incomplete unset. The IDR loader
// never marks a class incomplete; a class it cannot find is represented
// by a NewExtern placeholder instead.
func NewClass(fullName string, parent *Type) *Type {
	return &Type{Kind: KindClass, Name: fullName, FullName: fullName, Parent: parent}
}

// NewInterface creates an interface type with the given prerequisite
// types (§4.3 parent_types for interfaces).
func NewInterface(fullName string, prerequisites ...*Type) *Type {
	return &Type{Kind: KindInterface, Name: fullName, FullName: fullName, Prerequisites: prerequisites}
}

// NewEnum creates an enumeration type.
func NewEnum(fullName string, members ...EnumMember) *Type {
	return &Type{Kind: KindEnum, Name: fullName, FullName: fullName, Members: members}
}

// NewBitfield creates a bitfield type (values are bit positions, §3).
func NewBitfield(fullName string, members ...EnumMember) *Type {
	return &Type{Kind: KindBitfield, Name: fullName, FullName: fullName, Members: members}
}

// MemberByName looks up an Enum/Bitfield member by its canonical name,
// case-sensitively, as the IDR's introspected names are.
func (t *Type) MemberByName(name string) (EnumMember, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}

// MemberByNick looks up a member by its hyphenated lower-case nick (§4.3).
func (t *Type) MemberByNick(nick string) (EnumMember, bool) {
	lower := strings.ToLower(nick)
	for _, m := range t.Members {
		if strings.ToLower(m.Nick) == lower {
			return m, true
		}
	}
	return EnumMember{}, false
}

// PropertyByName finds a declared property by name, case-sensitively.
func (t *Type) PropertyByName(name string) (Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// SignalByName finds a declared signal by name.
func (t *Type) SignalByName(name string) (Signal, bool) {
	for _, s := range t.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

// ParentTypes iterates the type's direct supertypes (§4.3
// parent_types): parent class then implemented interfaces for a class,
// or prerequisites for an interface. Other kinds have none.
func (t *Type) ParentTypes() []*Type {
	switch t.Kind {
	case KindClass:
		out := make([]*Type, 0, 1+len(t.Implements))
		if t.Parent != nil {
			out = append(out, t.Parent)
		}
		out = append(out, t.Implements...)
		return out
	case KindInterface:
		return t.Prerequisites
	default:
		return nil
	}
}

// AllProperties walks the class/interface hierarchy (self first) and
// returns every property visible on t, including inherited ones. Later
// (more-derived) declarations shadow earlier ones with the same name.
func (t *Type) AllProperties() []Property {
	var out []Property
	seen := map[string]bool{}
	var walk func(*Type)
	walk = func(cur *Type) {
		if cur == nil {
			return
		}
		for _, p := range cur.Properties {
			if !seen[p.Name] {
				seen[p.Name] = true
				out = append(out, p)
			}
		}
		for _, parent := range cur.ParentTypes() {
			walk(parent)
		}
	}
	walk(t)
	return out
}
