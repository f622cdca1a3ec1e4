// Package dictionary turns a HANA calculation view XML export into data
// dictionary rows: one per input parameter followed by one per view column.
package dictionary

import (
	"bytes"
	"strings"

	"github.com/hyperifyio/hanadict/internal/xmltree"
)

var (
	entityPath       = xmltree.MustCompile(".//input/entity")
	parameterPath    = xmltree.MustCompile(".//parameter")
	elementPath      = xmltree.MustCompile(".//viewNode/element")
	endUserTextsPath = xmltree.MustCompile(".//endUserTexts")
	inlineTypePath   = xmltree.MustCompile(".//inlineType")
)

const entityPrefix = "#//"

// ParseError reports a document that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse xml: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// Document is the result of extracting one XML export.
type Document struct {
	SourceEntity string
	Rows         []Row
}

// Extract parses already decoded xmlText and returns its dictionary rows.
// The encoding named in the XML declaration is ignored. Malformed input
// yields a *ParseError and no rows.
func Extract(xmlText string) ([]Row, error) {
	root, err := xmltree.ParseString(xmlText)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return fromTree(root).Rows, nil
}

// ExtractBytes is Extract over raw bytes, transcoded from the declared encoding.
func ExtractBytes(b []byte) ([]Row, error) {
	doc, err := ExtractDocument(b)
	if err != nil {
		return nil, err
	}
	return doc.Rows, nil
}

// ExtractDocument is Extract that also reports the document-level source entity.
func ExtractDocument(b []byte) (Document, error) {
	root, err := xmltree.Parse(bytes.NewReader(b))
	if err != nil {
		return Document{}, &ParseError{Err: err}
	}
	return fromTree(root), nil
}

func fromTree(root *xmltree.Node) Document {
	source := sourceEntity(root)
	params := root.FindAll(parameterPath)
	elems := root.FindAll(elementPath)

	rows := make([]Row, 0, len(params)+len(elems))
	for _, p := range params {
		rows = append(rows, parameterRow(p))
	}
	for _, e := range elems {
		rows = append(rows, attributeRow(e, source))
	}
	return Document{SourceEntity: source, Rows: rows}
}

func sourceEntity(root *xmltree.Node) string {
	n, ok := root.Find(entityPath)
	if !ok {
		return NotApplicable
	}
	return strings.TrimPrefix(n.Text(), entityPrefix)
}

func parameterRow(n *xmltree.Node) Row {
	return Row{
		TechnicalName:   n.AttrOr("name", ""),
		FieldLabel:      label(n),
		SourceTableView: NotApplicable,
		SourceFieldName: NotApplicable,
		Kind:            KindParameter,
		Mapping:         MappingNone,
		DataType:        NotApplicable,
		Logic:           NotApplicable,
	}
}

func attributeRow(n *xmltree.Node, source string) Row {
	name := n.AttrOr("name", "")
	return Row{
		TechnicalName:   name,
		FieldLabel:      label(n),
		SourceTableView: source,
		SourceFieldName: strings.ReplaceAll(name, "#", ""),
		Kind:            KindAttribute,
		Mapping:         MappingDirect,
		DataType:        dataType(n),
		Logic:           NotApplicable,
	}
}

func label(n *xmltree.Node) string {
	t, ok := n.Find(endUserTextsPath)
	if !ok {
		return ""
	}
	return t.AttrOr("label", "")
}

// dataType renders the inline type as TYPE or TYPE(length); a length of "0"
// means none was declared.
func dataType(n *xmltree.Node) string {
	t, ok := n.Find(inlineTypePath)
	if !ok {
		return NotApplicable
	}
	primitive := t.AttrOr("primitiveType", "")
	length := t.AttrOr("length", "0")
	if length == "0" {
		return primitive
	}
	return primitive + "(" + length + ")"
}
