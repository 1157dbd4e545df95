package types

import "testing"

func TestIsSubclassOf(t *testing.T) {
	tObject := NewClass("GObject.Object", nil)
	tPerson := NewClass("Demo.Person", tObject)
	tEmployee := NewClass("Demo.Employee", tPerson)
	tUnrelated := NewClass("Demo.Point", nil)

	cases := []struct {
		name   string
		child  *Type
		parent *Type
		want   bool
	}{
		{"self", tEmployee, tEmployee, true},
		{"direct parent", tEmployee, tPerson, true},
		{"grandparent", tEmployee, tObject, true},
		{"unrelated", tEmployee, tUnrelated, false},
		{"reversed", tObject, tEmployee, false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSubclassOf(tt.child, tt.parent); got != tt.want {
				t.Errorf("IsSubclassOf(%s, %s) = %v, want %v", tt.child.FullName, tt.parent.FullName, got, tt.want)
			}
		})
	}
}

func TestIsAssignableFromClasses(t *testing.T) {
	tWidget := NewClass("Gtk.Widget", nil)
	tButton := NewClass("Gtk.Button", tWidget)
	tLabel := NewClass("Gtk.Label", tWidget)

	if !IsAssignableFrom(tWidget, tButton) {
		t.Error("a Button value should be assignable to a Widget slot")
	}
	if IsAssignableFrom(tButton, tWidget) {
		t.Error("a Widget value should not be assignable to a Button slot")
	}
	if IsAssignableFrom(tButton, tLabel) {
		t.Error("sibling classes should not be assignable")
	}
}

func TestIsAssignableFromNumeric(t *testing.T) {
	i32 := NewPrimitive(PrimInt32)
	i64 := NewPrimitive(PrimInt64)
	u32 := NewPrimitive(PrimUint32)
	f64 := NewPrimitive(PrimFloat64)
	str := NewPrimitive(PrimString)

	if !IsAssignableFrom(i64, i32) {
		t.Error("int32 should widen into int64")
	}
	if IsAssignableFrom(i32, i64) {
		t.Error("int64 should not narrow into int32")
	}
	if IsAssignableFrom(i32, u32) {
		t.Error("uint32 should not assign into int32 (signedness mismatch)")
	}
	if !IsAssignableFrom(f64, i32) {
		t.Error("int32 should promote into float64")
	}
	if IsAssignableFrom(str, i32) {
		t.Error("int32 should not assign into string")
	}
}

func TestIsAssignableFromIncompleteIsPermissive(t *testing.T) {
	extern := NewExtern("Unresolved.Thing")
	str := NewPrimitive(PrimString)
	if !IsAssignableFrom(extern, str) || !IsAssignableFrom(str, extern) {
		t.Error("assignability involving an incomplete type should be permitted both ways")
	}
}

func TestImplements(t *testing.T) {
	iBuildable := NewInterface("Gtk.Buildable")
	tWidget := NewClass("Gtk.Widget", nil)
	tWidget.Implements = []*Type{iBuildable}
	tButton := NewClass("Gtk.Button", tWidget)

	if !Implements(tButton, iBuildable) {
		t.Error("Button should inherit Widget's Buildable implementation")
	}
	tPoint := NewClass("Demo.Point", nil)
	if Implements(tPoint, iBuildable) {
		t.Error("unrelated class should not implement Buildable")
	}
}

func TestIsCastableTo(t *testing.T) {
	tWidget := NewClass("Gtk.Widget", nil)
	tButton := NewClass("Gtk.Button", tWidget)
	i32 := NewPrimitive(PrimInt32)
	f64 := NewPrimitive(PrimFloat64)

	if !IsCastableTo(tButton, tWidget) {
		t.Error("downcast from Widget to Button should be castable")
	}
	if !IsCastableTo(f64, i32) {
		t.Error("int32 to float64 should be castable")
	}
	if IsCastableTo(NewPrimitive(PrimString), tWidget) {
		t.Error("class to string should not be castable")
	}
}

func TestCommonAncestor(t *testing.T) {
	tWidget := NewClass("Gtk.Widget", nil)
	tButton := NewClass("Gtk.Button", tWidget)
	tLabel := NewClass("Gtk.Label", tWidget)
	tPoint := NewClass("Demo.Point", nil)

	if got := CommonAncestor(tButton, tLabel); got != tWidget {
		t.Errorf("CommonAncestor(Button, Label) = %v, want Widget", got)
	}
	if got := CommonAncestor(tButton, tButton); got != tButton {
		t.Errorf("CommonAncestor(Button, Button) = %v, want Button", got)
	}
	if got := CommonAncestor(tButton, tPoint); got != nil {
		t.Errorf("CommonAncestor(Button, Point) = %v, want nil", got)
	}
}

func TestEnumNickLookup(t *testing.T) {
	orientation := NewEnum("Gtk.Orientation",
		EnumMember{Name: "HORIZONTAL", Nick: "horizontal", Value: 0},
		EnumMember{Name: "VERTICAL", Nick: "vertical", Value: 1},
	)
	m, ok := orientation.MemberByNick("Vertical")
	if !ok || m.Value != 1 {
		t.Fatalf("MemberByNick(Vertical) = %+v, %v", m, ok)
	}
	if _, ok := orientation.MemberByNick("diagonal"); ok {
		t.Error("expected no match for unknown nick")
	}
}

func TestAllPropertiesInheritsAndShadows(t *testing.T) {
	base := NewClass("Gtk.Widget", nil)
	base.Properties = []Property{{Name: "visible", Type: NewPrimitive(PrimBool)}}
	derived := NewClass("Gtk.Button", base)
	derived.Properties = []Property{
		{Name: "label", Type: NewPrimitive(PrimString)},
		{Name: "visible", Type: NewPrimitive(PrimString)},
	}

	props := derived.AllProperties()
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d: %+v", len(props), props)
	}
	for _, p := range props {
		if p.Name == "visible" && p.Type.Primitive != PrimString {
			t.Errorf("expected derived 'visible' to shadow the inherited one, got %v", p.Type.Primitive)
		}
	}
}

func TestRegistryCaseInsensitiveLookup(t *testing.T) {
	reg := NewRegistry("Gtk", "4.0")
	reg.Register("Button", NewClass("Gtk.Button", nil))
	if _, ok := reg.Lookup("button"); !ok {
		t.Error("expected case-insensitive lookup to find Button")
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Error("expected lookup of unregistered name to fail")
	}
}
