package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Node is one element of a parsed XML document. Only elements are kept;
// comments, processing instructions and directives are dropped.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Node

	// text is the character data that appears before the first child element.
	text  string
	order int
}

// Parse decodes a complete XML document into a tree and returns its root.
// The whole document must be well-formed: exactly one root element, every
// element closed, unique attributes, bound namespace prefixes, and nothing but
// whitespace, comments or processing instructions outside the root. A declared
// non-UTF-8 encoding is transcoded.
func Parse(r io.Reader) (*Node, error) {
	return parse(r, charsetReader)
}

// ParseString parses an already decoded document. The encoding named in the
// XML declaration, if any, is ignored.
func ParseString(s string) (*Node, error) {
	return parse(strings.NewReader(s), func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	})
}

func parse(r io.Reader, csr func(string, io.Reader) (io.Reader, error)) (*Node, error) {
	// BOMOverride only transcodes when a BOM is present; other input is passed through untouched.
	d := xml.NewDecoder(transform.NewReader(r, unicode.BOMOverride(transform.Nop)))
	d.CharsetReader = csr

	var (
		root   *Node
		stack  []*Node
		scopes [][]string
		seq    int
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil && len(stack) == 0 {
				return nil, syntaxError(d, "junk after document element")
			}
			if hasDuplicateAttr(t.Attr) {
				return nil, syntaxError(d, "duplicate attribute")
			}
			scopes = append(scopes, declaredNamespaces(t.Attr))
			if !bound(t.Name.Space, scopes) {
				return nil, syntaxError(d, "unbound prefix "+t.Name.Space)
			}
			for _, a := range t.Attr {
				if isNamespaceDecl(a) {
					continue
				}
				if !bound(a.Name.Space, scopes) {
					return nil, syntaxError(d, "unbound prefix "+a.Name.Space)
				}
			}
			n := &Node{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...), order: seq}
			seq++
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		case xml.Directive:
			if root == nil {
				for name, v := range internalEntities(t) {
					if d.Entity == nil {
						d.Entity = make(map[string]string)
					}
					if _, dup := d.Entity[name]; !dup {
						d.Entity[name] = v
					}
				}
			}
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					if root == nil {
						return nil, syntaxError(d, "text before document element")
					}
					return nil, syntaxError(d, "junk after document element")
				}
				continue
			}
			cur := stack[len(stack)-1]
			if len(cur.Children) == 0 {
				cur.text += string(t)
			}
		}
	}
	if root == nil {
		return nil, syntaxError(d, "no element found")
	}
	if len(stack) > 0 {
		return nil, syntaxError(d, "unexpected EOF")
	}
	return root, nil
}

func syntaxError(d *xml.Decoder, msg string) error {
	line, _ := d.InputPos()
	return &xml.SyntaxError{Msg: msg, Line: line}
}

// charsetReader resolves declared encodings through x/net's label table.
// UTF-16 input has already been transcoded by the BOM override, so a
// UTF-16 declaration is passed through as is.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-16", "utf-16le", "utf-16be":
		return input, nil
	}
	return charset.NewReaderLabel(label, input)
}

// Text returns the character data that precedes the node's first child
// element, the way ElementTree-style APIs expose element text.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

// Attr looks up an attribute by local name. Namespace declarations are
// never matched.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if isNamespaceDecl(a) {
			continue
		}
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when the attribute is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Find returns the first node matched by p in document order.
func (n *Node) Find(p Path) (*Node, bool) {
	all := n.FindAll(p)
	if len(all) == 0 {
		return nil, false
	}
	return all[0], true
}

// FindAll returns every node matched by p, deduplicated and in document order.
func (n *Node) FindAll(p Path) []*Node {
	if n == nil || len(p.steps) == 0 {
		return nil
	}
	current := []*Node{n}
	for _, st := range p.steps {
		var next []*Node
		seen := make(map[*Node]struct{})
		add := func(c *Node) {
			if _, dup := seen[c]; dup {
				return
			}
			seen[c] = struct{}{}
			next = append(next, c)
		}
		for _, cur := range current {
			if st.descendant {
				walk(cur, func(d *Node) {
					if d != cur && st.matches(d) {
						add(d)
					}
				})
				continue
			}
			for _, c := range cur.Children {
				if st.matches(c) {
					add(c)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		sortByOrder(next)
		current = next
	}
	return current
}

// walk visits n and its descendants in pre-order.
func walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}

func sortByOrder(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].order < nodes[j].order })
}
