package idr

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uidl-lang/uidlc/internal/types"
)

// include is one <include name="..." version="..."/> directive found
// inside a <namespace>.
type include struct {
	Name    string
	Version string
}

// allowed lists the element names parseRepository understands; any other
// element is ignored rather than rejected (allow-listed elements nested
// inside it are still read), so newer IDR
// files with additional metadata the compiler doesn't need still load —
// the "allow-list" behavior the design note calls for instead of a
// strict DOM schema validation.
var allowed = map[string]bool{
	"repository":    true,
	"namespace":     true,
	"include":       true,
	"enumeration":   true,
	"bitfield":      true,
	"member":        true,
	"class":         true,
	"interface":     true,
	"prerequisite":  true,
	"implements":    true,
	"property":      true,
	"signal":        true,
	"doc":           true,
}

// parseRepository streams r token by token with xml.Decoder.Token,
// building a Registry for the declared namespace/version. Cross-type
// references (parent class, implemented interface, property type) that
// name a class not yet seen in this file are filled in with a
// types.NewExtern placeholder; once all includes have loaded,
// Loader.resolveExterns replaces each placeholder pointer with the real
// type, and a placeholder no cached namespace declares stays Incomplete,
// which is the degraded-but-safe behavior §4.2 specifies for unresolved
// references.
func parseRepository(r io.Reader, wantNamespace, wantVersion string) (*types.Registry, []include, error) {
	dec := xml.NewDecoder(r)

	var reg *types.Registry
	var includes []include

	var curClass *types.Type
	var curIface *types.Type
	var curEnumMembers []types.EnumMember
	var curEnumName, curEnumFull string
	var curBitfield bool
	var stack []string

	flushEnum := func() {
		if curEnumName == "" || reg == nil {
			return
		}
		var t *types.Type
		if curBitfield {
			t = types.NewBitfield(curEnumFull, curEnumMembers...)
		} else {
			t = types.NewEnum(curEnumFull, curEnumMembers...)
		}
		reg.Register(curEnumName, t)
		curEnumName, curEnumFull = "", ""
		curEnumMembers = nil
		curBitfield = false
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("xml token: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			stack = append(stack, name)
			if !allowed[name] {
				continue
			}
			attrs := attrMap(el.Attr)
			switch name {
			case "namespace":
				ns := attrs["name"]
				ver := attrs["version"]
				reg = types.NewRegistry(ns, ver)
			case "include":
				includes = append(includes, include{Name: attrs["name"], Version: attrs["version"]})
			case "enumeration":
				flushEnum()
				curEnumName = attrs["name"]
				curEnumFull = qualify(reg, curEnumName)
				curBitfield = false
			case "bitfield":
				flushEnum()
				curEnumName = attrs["name"]
				curEnumFull = qualify(reg, curEnumName)
				curBitfield = true
			case "member":
				val, _ := strconv.ParseInt(attrs["value"], 0, 64)
				curEnumMembers = append(curEnumMembers, types.EnumMember{
					Name:  attrs["name"],
					Nick:  attrs["nick"],
					Value: val,
				})
			case "class":
				full := qualify(reg, attrs["name"])
				var parent *types.Type
				if p := attrs["parent"]; p != "" {
					parent = resolveRef(reg, p)
				}
				curClass = types.NewClass(full, parent)
				curClass.Deprecated = attrs["deprecated"] == "1" || attrs["deprecated"] == "true"
				curClass.DeprecatedMsg = attrs["deprecated-version"]
				curClass.Abstract = attrs["abstract"] == "1" || attrs["abstract"] == "true"
			case "interface":
				full := qualify(reg, attrs["name"])
				curIface = types.NewInterface(full)
			case "prerequisite":
				if curIface != nil {
					curIface.Prerequisites = append(curIface.Prerequisites, resolveRef(reg, attrs["name"]))
				}
			case "implements":
				if curClass != nil {
					curClass.Implements = append(curClass.Implements, resolveRef(reg, attrs["name"]))
				}
			case "property":
				prop := types.Property{
					Name:          attrs["name"],
					Type:          resolveRef(reg, attrs["type"]),
					Writable:      attrs["writable"] != "0" && attrs["writable"] != "false",
					ConstructOnly: attrs["construct-only"] == "1" || attrs["construct-only"] == "true",
					Deprecated:    attrs["deprecated"] == "1" || attrs["deprecated"] == "true",
					DeprecatedMsg: attrs["deprecated-version"],
				}
				if curClass != nil {
					curClass.Properties = append(curClass.Properties, prop)
				} else if curIface != nil {
					curIface.Properties = append(curIface.Properties, prop)
				}
			case "signal":
				sig := types.Signal{
					Name:          attrs["name"],
					Deprecated:    attrs["deprecated"] == "1" || attrs["deprecated"] == "true",
					DeprecatedMsg: attrs["deprecated-version"],
				}
				if curClass != nil {
					curClass.Signals = append(curClass.Signals, sig)
				} else if curIface != nil {
					curIface.Signals = append(curIface.Signals, sig)
				}
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch el.Name.Local {
			case "enumeration", "bitfield":
				flushEnum()
			case "class":
				if reg != nil && curClass != nil {
					reg.Register(lastSegment(curClass.Name), curClass)
				}
				curClass = nil
			case "interface":
				if reg != nil && curIface != nil {
					reg.Register(lastSegment(curIface.Name), curIface)
				}
				curIface = nil
			}
		case xml.CharData:
			// doc text and whitespace; not retained at this layer.
		}
	}

	if reg == nil {
		return nil, nil, fmt.Errorf("no <namespace> element found")
	}
	if !strings.EqualFold(reg.Namespace, wantNamespace) || reg.Version != wantVersion {
		return nil, nil, fmt.Errorf("file declares namespace %s-%s, expected %s-%s", reg.Namespace, reg.Version, wantNamespace, wantVersion)
	}
	return reg, includes, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

func qualify(reg *types.Registry, name string) string {
	if reg == nil {
		return name
	}
	return reg.Namespace + "." + name
}

func lastSegment(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// resolveRef creates a placeholder Type for a cross-reference by name.
// Same-namespace bare names are qualified against reg; dotted names
// ("GObject.Object") are taken as already fully qualified. The caller
// cannot know yet whether this names a class or interface, so it's left
// incomplete until a later pass substitutes the real type looked up
// from the owning namespace's registry.
func resolveRef(reg *types.Registry, name string) *types.Type {
	full := name
	if !strings.Contains(name, ".") {
		full = qualify(reg, name)
	}
	return types.NewExtern(full)
}
