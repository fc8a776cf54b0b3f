package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func element(d *Document, parent NodeID, name string, attrs ...Attr) NodeID {
	id := d.CreateElement(HTML, name, attrs)
	d.AppendChild(parent, id)
	return id
}

func names(d *Document, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n := d.Node(id)
		if n.Type == TextNode {
			out = append(out, "#"+n.Data)
			continue
		}
		out = append(out, n.Name)
	}
	return out
}

func TestInsertAndDetach(t *testing.T) {
	t.Parallel()
	d := New()
	root := element(d, d.Root(), "div")
	a := element(d, root, "a")
	c := element(d, root, "c")
	b := d.CreateElement(HTML, "b", nil)
	d.InsertBefore(root, b, c)
	assert.Equal(t, []string{"a", "b", "c"}, names(d, d.Children(root)))
	assert.Equal(t, root, d.Parent(b))

	d.Detach(a)
	assert.Equal(t, []string{"b", "c"}, names(d, d.Children(root)))
	assert.Equal(t, Nil, d.Parent(a))
	assert.Equal(t, b, d.Node(root).FirstChild)

	// Re-attaching moves the node rather than copying it.
	d.AppendChild(c, b)
	assert.Equal(t, []string{"c"}, names(d, d.Children(root)))
	assert.Equal(t, []string{"b"}, names(d, d.Children(c)))

	d.Detach(a)
	assert.Equal(t, 5, d.Len())
}

func TestTextMerging(t *testing.T) {
	t.Parallel()
	d := New()
	p := element(d, d.Root(), "p")
	d.AppendText(p, "a")
	d.AppendText(p, "b")
	br := element(d, p, "br")
	d.InsertTextBefore(p, br, "c")
	d.InsertTextBefore(p, br, "d")
	d.InsertTextBefore(p, Nil, "e")
	assert.Equal(t, []string{"#abcd", "br", "#e"}, names(d, d.Children(p)))
}

func TestReparentAndClone(t *testing.T) {
	t.Parallel()
	d := New()
	src := element(d, d.Root(), "b", Attr{Name: "class", Value: "x"})
	element(d, src, "i")
	d.AppendText(src, "t")

	clone := d.CloneElement(src)
	assert.Equal(t, Nil, d.Parent(clone))
	assert.Empty(t, d.Children(clone))
	v, ok := d.Node(clone).Attr("class")
	require.True(t, ok)
	assert.Equal(t, "x", v)

	// Attributes are copied, not shared.
	d.Node(clone).Attrs[0].Value = "y"
	v, _ = d.Node(src).Attr("class")
	assert.Equal(t, "x", v)

	d.ReparentChildren(clone, src)
	assert.Empty(t, d.Children(src))
	assert.Equal(t, []string{"i", "#t"}, names(d, d.Children(clone)))
}

func TestInvalidNodePanics(t *testing.T) {
	t.Parallel()
	d := New()
	assert.Panics(t, func() { d.Node(Nil) })
	assert.Panics(t, func() { d.Node(NodeID(d.Len())) })
}

func TestWalkOrder(t *testing.T) {
	t.Parallel()
	d := New()
	a := element(d, d.Root(), "a")
	b := element(d, a, "b")
	element(d, b, "c")
	element(d, a, "d")

	var events []string
	err := d.Walk(a, func(id NodeID) error {
		events = append(events, "+"+d.Node(id).Name)
		return nil
	}, func(id NodeID) error {
		events = append(events, "-"+d.Node(id).Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"+a", "+b", "+c", "-c", "-b", "+d", "-d", "-a"}, events)
}

func TestDump(t *testing.T) {
	t.Parallel()
	d := New()
	d.AppendChild(d.Root(), d.CreateDoctype("html", []Attr{{Name: "public", Value: "p"}}))
	htmlID := element(d, d.Root(), "html")
	body := element(d, htmlID, "body", Attr{Name: "z", Value: "1"}, Attr{Name: "a", Value: "2"})
	svg := d.CreateElement(SVG, "svg", []Attr{{Namespace: XLink, Prefix: "xlink", Name: "href", Value: "#x"}})
	d.AppendChild(body, svg)
	d.AppendChild(body, d.CreateComment("c"))
	d.AppendText(body, "t")

	want := strings.Join([]string{
		`| <!DOCTYPE html "p" "">`,
		`| <html>`,
		`|   <body>`,
		`|     a="2"`,
		`|     z="1"`,
		`|     <svg svg>`,
		`|       xlink href="#x"`,
		`|     <!-- c -->`,
		`|     "t"`,
	}, "\n")
	assert.Equal(t, want, d.String())
}

func TestRender(t *testing.T) {
	t.Parallel()
	d := New()
	d.AppendChild(d.Root(), d.CreateDoctype("html", nil))
	body := element(d, d.Root(), "body")
	p := element(d, body, "p", Attr{Name: "title", Value: "a\"<&"})
	d.AppendText(p, "1 < 2 & \u00a0")
	element(d, p, "br")
	pre := element(d, body, "pre")
	d.AppendText(pre, "\nx")
	script := element(d, body, "script")
	d.AppendText(script, "a<b")
	noscript := element(d, body, "noscript")
	d.AppendText(noscript, "<i>")
	d.AppendChild(body, d.CreateComment("c"))

	assert.Equal(t,
		`<!DOCTYPE html><body><p title="a&#34;&lt;&amp;">1 &lt; 2 &amp; `+"\u00a0"+`<br/></p><pre>`+"\n\nx"+`</pre><script>a<b</script><noscript><i></noscript><!--c--></body>`,
		d.HTML())
}

func TestHTMLNode(t *testing.T) {
	t.Parallel()
	d := New()
	d.AppendChild(d.Root(), d.CreateDoctype("html", []Attr{{Name: "system", Value: "about:legacy-compat"}}))
	body := element(d, d.Root(), "body")
	svg := d.CreateElement(SVG, "svg", []Attr{
		{Namespace: XLink, Prefix: "xlink", Name: "href", Value: "#x"},
		{Namespace: XMLNS, Name: "xmlns", Value: string(SVG)},
	})
	d.AppendChild(body, svg)
	d.AppendText(svg, "t")

	n := d.HTMLNode(d.Root())
	require.Equal(t, html.DocumentNode, n.Type)
	doctype := n.FirstChild
	assert.Equal(t, html.DoctypeNode, doctype.Type)
	assert.Equal(t, []html.Attribute{{Key: "system", Val: "about:legacy-compat"}}, doctype.Attr)

	b := doctype.NextSibling
	assert.Equal(t, atom.Body, b.DataAtom)
	assert.Equal(t, "", b.Namespace)
	s := b.FirstChild
	assert.Equal(t, "svg", s.Namespace)
	assert.Equal(t, []html.Attribute{{Namespace: "xlink", Key: "href", Val: "#x"}, {Key: "xmlns", Val: string(SVG)}}, s.Attr)
	assert.Equal(t, "t", s.FirstChild.Data)

	assert.Equal(t,
		`<!DOCTYPE html SYSTEM "about:legacy-compat"><body><svg xlink:href="#x" xmlns="http://www.w3.org/2000/svg">t</svg></body>`,
		d.HTML())
}

func TestNamespacePrefix(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", HTML.Prefix())
	assert.Equal(t, "svg", SVG.Prefix())
	assert.Equal(t, "math", MathML.Prefix())
	assert.Equal(t, "xlink:href", Attr{Namespace: XLink, Prefix: "xlink", Name: "href"}.QualifiedName())
	assert.Equal(t, "quirks", Quirks.String())
	assert.Equal(t, "element", ElementNode.String())
}
