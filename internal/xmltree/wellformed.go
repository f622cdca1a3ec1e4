package xmltree

import (
	"bytes"
	"encoding/xml"
	"regexp"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func isNamespaceDecl(a xml.Attr) bool {
	return a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns")
}

// hasDuplicateAttr reports whether a start tag names the same attribute twice.
// Names are compared after prefix resolution.
func hasDuplicateAttr(attrs []xml.Attr) bool {
	for i := range attrs {
		for j := i + 1; j < len(attrs); j++ {
			if attrs[i].Name == attrs[j].Name {
				return true
			}
		}
	}
	return false
}

func declaredNamespaces(attrs []xml.Attr) []string {
	var out []string
	for _, a := range attrs {
		if isNamespaceDecl(a) {
			out = append(out, a.Value)
		}
	}
	return out
}

// bound reports whether a resolved name space is in scope. encoding/xml leaves
// an undeclared prefix in place of the namespace URI, so a space that matches
// no declaration in scope is an unbound prefix.
func bound(space string, scopes [][]string) bool {
	if space == "" || space == xmlNamespace {
		return true
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		for _, ns := range scopes[i] {
			if ns == space {
				return true
			}
		}
	}
	return false
}

var entityDecl = regexp.MustCompile(`<!ENTITY\s+([A-Za-z_:][-A-Za-z0-9._:]*)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// internalEntities returns the general entities with literal values declared
// in a DOCTYPE internal subset. Parameter and external entities are skipped.
func internalEntities(dir xml.Directive) map[string]string {
	if !bytes.HasPrefix(dir, []byte("DOCTYPE")) {
		return nil
	}
	out := make(map[string]string)
	for _, m := range entityDecl.FindAllSubmatch(dir, -1) {
		name := string(m[1])
		if _, dup := out[name]; dup {
			continue
		}
		if m[2] != nil {
			out[name] = string(m[2])
		} else {
			out[name] = string(m[3])
		}
	}
	return out
}
