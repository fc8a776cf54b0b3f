package dom

import (
	"bufio"
	"io"
	"sort"
	"strings"
)

// Dump writes the html5lib tree-construction test format for every child of
// the root: one "| "-prefixed line per node, two spaces of indentation per
// level, with attributes sorted by name on the lines below their element.
func (d *Document) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for c := d.nodes[0].FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		d.dumpNode(bw, c, 0)
	}
	return bw.Flush()
}

// String returns the Dump output without the trailing newline.
func (d *Document) String() string {
	var sb strings.Builder
	d.Dump(&sb)
	return strings.TrimRight(sb.String(), "\n")
}

func dumpIndent(w *bufio.Writer, level int) {
	w.WriteString("| ")
	for i := 0; i < level; i++ {
		w.WriteString("  ")
	}
}

func (d *Document) dumpNode(w *bufio.Writer, id NodeID, level int) {
	n := &d.nodes[id]
	dumpIndent(w, level)
	switch n.Type {
	case ElementNode:
		w.WriteByte('<')
		if p := n.Namespace.Prefix(); p != "" {
			w.WriteString(p)
			w.WriteByte(' ')
		}
		w.WriteString(n.Name)
		w.WriteString(">\n")

		attrs := make([]string, 0, len(n.Attrs))
		for _, a := range n.Attrs {
			name := a.Name
			if p := a.Namespace.Prefix(); p != "" {
				name = p + " " + a.Name
			}
			attrs = append(attrs, name+"=\""+a.Value+"\"")
		}
		sort.Strings(attrs)
		for _, a := range attrs {
			dumpIndent(w, level+1)
			w.WriteString(a)
			w.WriteByte('\n')
		}
	case TextNode:
		w.WriteString("\"" + n.Data + "\"\n")
	case CommentNode:
		w.WriteString("<!-- " + n.Data + " -->\n")
	case DoctypeNode:
		w.WriteString("<!DOCTYPE " + n.Name)
		pub, hasPub := n.Attr("public")
		sys, hasSys := n.Attr("system")
		if hasPub || hasSys {
			w.WriteString(" \"" + pub + "\" \"" + sys + "\"")
		}
		w.WriteString(">\n")
	}
	for c := n.FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		d.dumpNode(w, c, level+1)
	}
}
