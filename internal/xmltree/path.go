package xmltree

import (
	"fmt"
	"strings"
)

// Path is a compiled ElementTree-style location path relative to a node.
//
// Supported syntax:
//
//	name        child elements called name
//	*           any child element
//	a/b         b children of a children
//	.//name     name elements anywhere below the context node
//	a//b        b elements anywhere below a children
//
// A leading "." refers to the context node and is optional for child steps.
// Names compare against the element's local name, so namespace prefixes are
// ignored.
type Path struct {
	raw   string
	steps []step
}

type step struct {
	name       string
	descendant bool
}

func (s step) matches(n *Node) bool {
	return s.name == "*" || n.Name.Local == s.name
}

// Compile parses a location path.
func Compile(path string) (Path, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return Path{}, fmt.Errorf("xmltree: empty path")
	}
	if strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") {
		return Path{}, fmt.Errorf("xmltree: absolute path %q not supported", path)
	}
	p = strings.TrimPrefix(p, ".")

	var steps []step
	first := true
	for p != "" {
		descendant := false
		switch {
		case strings.HasPrefix(p, "//"):
			descendant = true
			p = p[2:]
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		case !first:
			return Path{}, fmt.Errorf("xmltree: malformed path %q", path)
		}
		first = false

		name := p
		if i := strings.IndexByte(p, '/'); i >= 0 {
			name, p = p[:i], p[i:]
		} else {
			p = ""
		}
		if name == "" || strings.ContainsAny(name, "[]@()") || name == "." || name == ".." {
			return Path{}, fmt.Errorf("xmltree: unsupported step %q in path %q", name, path)
		}
		steps = append(steps, step{name: name, descendant: descendant})
	}
	if len(steps) == 0 {
		return Path{}, fmt.Errorf("xmltree: path %q selects no elements", path)
	}
	return Path{raw: path, steps: steps}, nil
}

// MustCompile is like Compile but panics when the path is invalid. It is
// meant for package-level path variables.
func MustCompile(path string) Path {
	p, err := Compile(path)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source text of the path.
func (p Path) String() string { return p.raw }
