package sax

import (
	"context"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/pkg/errors"
)

func ignoreUnspecified(err error) error {
	if errors.Cause(err) == ErrHandlerUnspecified {
		return nil
	}
	return err
}

// foreignRoot reports whether id starts an SVG or MathML subtree, i.e. its
// parent is not in the same namespace.
func foreignRoot(doc *dom.Document, id dom.NodeID) bool {
	n := doc.Node(id)
	if n.Namespace != dom.SVG && n.Namespace != dom.MathML {
		return false
	}
	p := doc.Parent(id)
	if p == dom.Nil {
		return true
	}
	pn := doc.Node(p)
	return pn.Type != dom.ElementNode || pn.Namespace != n.Namespace
}

func qualifiedName(n *dom.Node) string {
	if n.Namespace == dom.HTML {
		return n.Name
	}
	return n.Namespace.Prefix() + ":" + n.Name
}

func attributes(n *dom.Node) []Attribute {
	if len(n.Attrs) == 0 {
		return nil
	}
	attrs := make([]Attribute, len(n.Attrs))
	for i, a := range n.Attrs {
		attrs[i] = Attribute{
			URI:       string(a.Namespace),
			LocalName: a.Name,
			QName:     a.QualifiedName(),
			Value:     a.Value,
		}
	}
	return attrs
}

func doctypeIDs(n *dom.Node) (public, system string) {
	for _, a := range n.Attrs {
		switch a.Name {
		case "public":
			public = a.Value
		case "system":
			system = a.Value
		}
	}
	return public, system
}

// Emit walks a finished document and reports it to h. Callbacks that
// return ErrHandlerUnspecified are skipped; any other error, or the
// cancellation of ctx, stops the walk.
func Emit(ctx context.Context, doc *dom.Document, h Handler) error {
	if err := ignoreUnspecified(h.StartDocument(ctx)); err != nil {
		return errors.Wrap(err, "start document")
	}

	enter := func(id dom.NodeID) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := doc.Node(id)
		switch n.Type {
		case dom.ElementNode:
			if foreignRoot(doc, id) {
				if err := ignoreUnspecified(h.StartPrefixMapping(ctx, n.Namespace.Prefix(), string(n.Namespace))); err != nil {
					return err
				}
			}
			return ignoreUnspecified(h.StartElement(ctx, string(n.Namespace), n.Name, qualifiedName(n), attributes(n)))
		case dom.TextNode:
			return ignoreUnspecified(h.Characters(ctx, []byte(n.Data)))
		case dom.CommentNode:
			return ignoreUnspecified(h.Comment(ctx, []byte(n.Data)))
		case dom.DoctypeNode:
			public, system := doctypeIDs(n)
			if err := ignoreUnspecified(h.StartDoctype(ctx, n.Name, public, system)); err != nil {
				return err
			}
			return ignoreUnspecified(h.EndDoctype(ctx))
		}
		return nil
	}
	leave := func(id dom.NodeID) error {
		n := doc.Node(id)
		if n.Type != dom.ElementNode {
			return nil
		}
		if err := ignoreUnspecified(h.EndElement(ctx, string(n.Namespace), n.Name, qualifiedName(n))); err != nil {
			return err
		}
		if foreignRoot(doc, id) {
			return ignoreUnspecified(h.EndPrefixMapping(ctx, n.Namespace.Prefix()))
		}
		return nil
	}

	for _, c := range doc.Children(doc.Root()) {
		if err := doc.Walk(c, enter, leave); err != nil {
			return errors.Wrap(err, "emit")
		}
	}

	if err := ignoreUnspecified(h.EndDocument(ctx)); err != nil {
		return errors.Wrap(err, "end document")
	}
	return nil
}
