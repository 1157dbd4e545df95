package idr

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/uidl-lang/uidlc/internal/types"
)

func writeNamespaceFile(t *testing.T, dir, namespace, version, body string) {
	t.Helper()
	content := `<?xml version="1.0"?>
<repository>
  <namespace name="` + namespace + `" version="` + version + `">
` + body + `
  </namespace>
</repository>`
	path := filepath.Join(dir, namespace+"-"+version+".xml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestLoadSimpleNamespace(t *testing.T) {
	dir := t.TempDir()
	writeNamespaceFile(t, dir, "Gtk", "4.0", `
    <enumeration name="Orientation">
      <member name="HORIZONTAL" value="0" nick="horizontal"/>
      <member name="VERTICAL" value="1" nick="vertical"/>
    </enumeration>
    <class name="Widget">
      <property name="visible" type="gboolean"/>
    </class>
    <class name="Button" parent="Gtk.Widget">
      <property name="label" type="utf8"/>
    </class>`)

	l := NewLoader([]string{dir})
	reg, err := l.Load("Gtk", "4.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	orient, ok := reg.Lookup("Orientation")
	if !ok || orient.Kind != types.KindEnum {
		t.Fatalf("expected Orientation enum, got %+v, %v", orient, ok)
	}
	if m, ok := orient.MemberByNick("vertical"); !ok || m.Value != 1 {
		t.Errorf("expected vertical nick to resolve to value 1, got %+v, %v", m, ok)
	}

	button, ok := reg.Lookup("Button")
	if !ok || button.Kind != types.KindClass {
		t.Fatalf("expected Button class, got %+v, %v", button, ok)
	}
	if button.Parent == nil || button.Parent.Name != "Gtk.Widget" {
		t.Fatalf("expected Button.Parent resolved to Gtk.Widget, got %+v", button.Parent)
	}
	if button.Parent.Kind != types.KindClass {
		t.Errorf("expected parent reference resolved to a real class, got incomplete=%v kind=%v", button.Parent.Incomplete, button.Parent.Kind)
	}
}

func TestLoadResolvesIncludes(t *testing.T) {
	dir := t.TempDir()
	writeNamespaceFile(t, dir, "GObject", "2.0", `
    <class name="Object"/>`)
	writeNamespaceFile(t, dir, "Gtk", "4.0", `
    <include name="GObject" version="2.0"/>
    <class name="Widget" parent="GObject.Object"/>`)

	l := NewLoader([]string{dir})
	reg, err := l.Load("Gtk", "4.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	widget, _ := reg.Lookup("Widget")
	if widget.Parent == nil || widget.Parent.Incomplete {
		t.Fatalf("expected Widget.Parent resolved via include, got %+v", widget.Parent)
	}
}

func TestLoadCachesByNamespaceVersion(t *testing.T) {
	dir := t.TempDir()
	writeNamespaceFile(t, dir, "Gtk", "4.0", `<class name="Widget"/>`)

	l := NewLoader([]string{dir})
	first, err := l.Load("Gtk", "4.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load("Gtk", "4.0")
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if first != second {
		t.Error("expected second Load to return the cached registry instance")
	}
}

func TestLoadMissingNamespace(t *testing.T) {
	l := NewLoader([]string{t.TempDir()})
	if _, err := l.Load("Nope", "1.0"); err == nil {
		t.Fatal("expected an error for a missing namespace file")
	}
}

func TestLoadUnresolvableReferenceStaysIncomplete(t *testing.T) {
	dir := t.TempDir()
	writeNamespaceFile(t, dir, "Gtk", "4.0", `<class name="Widget" parent="Ghost.Missing"/>`)

	l := NewLoader([]string{dir})
	reg, err := l.Load("Gtk", "4.0")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	widget, _ := reg.Lookup("Widget")
	if widget.Parent == nil || !widget.Parent.Incomplete {
		t.Fatalf("expected unresolved parent to remain an incomplete placeholder, got %+v", widget.Parent)
	}
}
