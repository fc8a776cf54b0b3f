package sax

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// TreeBuilder is a Handler that builds an XML document from the events.
// Foreign subtrees get an xmlns declaration on their root element and the
// document element is put in the XHTML namespace.
type TreeBuilder struct {
	doc     *etree.Document
	node    *etree.Element
	pending []string
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

// Document returns the built document. It is nil until EndDocument.
func (t *TreeBuilder) Document() *etree.Document {
	if t.node != nil {
		return nil
	}
	return t.doc
}

func (t *TreeBuilder) StartDocument(ctx context.Context) error {
	t.doc = etree.NewDocument()
	t.node = &t.doc.Element
	return nil
}

func (t *TreeBuilder) EndDocument(ctx context.Context) error {
	if t.node != &t.doc.Element {
		return errors.New("unbalanced element events")
	}
	t.node = nil
	return nil
}

func (t *TreeBuilder) StartDoctype(ctx context.Context, name, publicID, systemID string) error {
	var sb strings.Builder
	sb.WriteString("DOCTYPE " + name)
	switch {
	case publicID != "":
		sb.WriteString(` PUBLIC "` + publicID + `"`)
		if systemID != "" {
			sb.WriteString(` "` + systemID + `"`)
		}
	case systemID != "":
		sb.WriteString(` SYSTEM "` + systemID + `"`)
	}
	t.node.CreateDirective(sb.String())
	return nil
}

func (t *TreeBuilder) EndDoctype(ctx context.Context) error {
	return nil
}

func (t *TreeBuilder) StartPrefixMapping(ctx context.Context, prefix, uri string) error {
	t.pending = append(t.pending, uri)
	return nil
}

func (t *TreeBuilder) EndPrefixMapping(ctx context.Context, prefix string) error {
	return nil
}

func (t *TreeBuilder) StartElement(ctx context.Context, uri, localName, qName string, attrs []Attribute) error {
	e := t.node.CreateElement(localName)
	switch {
	case len(t.pending) > 0:
		e.CreateAttr("xmlns", t.pending[len(t.pending)-1])
		t.pending = t.pending[:0]
	case t.node == &t.doc.Element:
		e.CreateAttr("xmlns", uri)
	}
	for _, a := range attrs {
		if a.QName == "xmlns" || strings.HasPrefix(a.QName, "xmlns:") {
			continue
		}
		e.CreateAttr(a.QName, a.Value)
	}
	t.node = e
	return nil
}

func (t *TreeBuilder) EndElement(ctx context.Context, uri, localName, qName string) error {
	parent := t.node.Parent()
	if parent == nil || t.node.Tag != localName {
		return errors.Errorf("unexpected end of element %s", qName)
	}
	t.node = parent
	return nil
}

func (t *TreeBuilder) Characters(ctx context.Context, data []byte) error {
	t.node.CreateText(string(data))
	return nil
}

func (t *TreeBuilder) Comment(ctx context.Context, data []byte) error {
	// XML comments may not contain "--".
	t.node.CreateComment(strings.ReplaceAll(string(data), "--", "- -"))
	return nil
}
