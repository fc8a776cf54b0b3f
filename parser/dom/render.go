package dom

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLNode copies the subtree rooted at id into a golang.org/x/net/html
// tree. Foreign elements keep their "svg" or "math" namespace and adjusted
// attributes keep their prefix, the way x/net/html's own parser stores them.
func (d *Document) HTMLNode(id NodeID) *html.Node {
	n := d.Node(id)
	out := &html.Node{}
	switch n.Type {
	case DocumentNode:
		out.Type = html.DocumentNode
	case DoctypeNode:
		out.Type = html.DoctypeNode
		out.Data = n.Name
		for _, a := range n.Attrs {
			out.Attr = append(out.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
	case ElementNode:
		out.Type = html.ElementNode
		out.Data = n.Name
		if n.Namespace == HTML {
			out.DataAtom = atom.Lookup([]byte(n.Name))
		} else {
			out.Namespace = n.Namespace.Prefix()
		}
		if len(n.Attrs) > 0 {
			out.Attr = make([]html.Attribute, len(n.Attrs))
			for i, a := range n.Attrs {
				out.Attr[i] = html.Attribute{Namespace: a.Prefix, Key: a.Name, Val: a.Value}
			}
		}
	case TextNode:
		out.Type = html.TextNode
		out.Data = n.Data
	case CommentNode:
		out.Type = html.CommentNode
		out.Data = n.Data
	}
	for c := n.FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		out.AppendChild(d.HTMLNode(c))
	}
	return out
}

// Render serializes the children of id as HTML with html.Render. Text
// inside noscript is always written raw.
func (d *Document) Render(w io.Writer, id NodeID) error {
	for c := d.nodes[id].FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		if err := html.Render(w, d.HTMLNode(c)); err != nil {
			return errors.Wrap(err, "render")
		}
	}
	return nil
}

// HTML is Render of the whole document into a string.
func (d *Document) HTML() string {
	var sb strings.Builder
	d.Render(&sb, d.Root())
	return sb.String()
}
