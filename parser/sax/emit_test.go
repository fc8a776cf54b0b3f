package sax

import (
	"context"
	"strings"
	"testing"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds:
//
//	<!DOCTYPE html>
//	<html><body>x<svg><a xlink:href="#y"></a></svg><!--c--></body></html>
func sample() *dom.Document {
	d := dom.New()
	d.AppendChild(d.Root(), d.CreateDoctype("html", nil))
	html := d.CreateElement(dom.HTML, "html", nil)
	d.AppendChild(d.Root(), html)
	body := d.CreateElement(dom.HTML, "body", nil)
	d.AppendChild(html, body)
	d.AppendText(body, "x")
	svg := d.CreateElement(dom.SVG, "svg", nil)
	d.AppendChild(body, svg)
	a := d.CreateElement(dom.SVG, "a", []dom.Attr{{Namespace: dom.XLink, Prefix: "xlink", Name: "href", Value: "#y"}})
	d.AppendChild(svg, a)
	d.AppendChild(body, d.CreateComment("c"))
	return d
}

func recorder(events *[]string) *SAX2 {
	add := func(s string) { *events = append(*events, s) }
	h := New()
	h.StartDocumentHandler = func(context.Context) error { add("start-document"); return nil }
	h.EndDocumentHandler = func(context.Context) error { add("end-document"); return nil }
	h.StartDoctypeHandler = func(_ context.Context, name, _, _ string) error { add("doctype " + name); return nil }
	h.StartPrefixMappingHandler = func(_ context.Context, prefix, uri string) error {
		add("xmlns:" + prefix + "=" + uri)
		return nil
	}
	h.EndPrefixMappingHandler = func(_ context.Context, prefix string) error { add("end xmlns:" + prefix); return nil }
	h.StartElementHandler = func(_ context.Context, _, _, qName string, attrs []Attribute) error {
		s := "<" + qName
		for _, a := range attrs {
			s += " " + a.QName + "=" + a.Value
		}
		add(s + ">")
		return nil
	}
	h.EndElementHandler = func(_ context.Context, _, _, qName string) error { add("</" + qName + ">"); return nil }
	h.CharactersHandler = func(_ context.Context, data []byte) error { add(string(data)); return nil }
	h.CommentHandler = func(_ context.Context, data []byte) error { add("<!--" + string(data) + "-->"); return nil }
	return h
}

func TestEmitOrder(t *testing.T) {
	t.Parallel()
	var events []string
	require.NoError(t, Emit(context.Background(), sample(), recorder(&events)))
	assert.Equal(t, []string{
		"start-document",
		"doctype html",
		"<html>", "<body>", "x",
		"xmlns:svg=" + string(dom.SVG),
		"<svg:svg>", "<svg:a xlink:href=#y>", "</svg:a>", "</svg:svg>",
		"end xmlns:svg",
		"<!--c-->",
		"</body>", "</html>",
		"end-document",
	}, events)
}

func TestEmitSkipsUnspecified(t *testing.T) {
	t.Parallel()
	var texts []string
	h := New()
	h.CharactersHandler = func(_ context.Context, data []byte) error {
		texts = append(texts, string(data))
		return nil
	}
	require.NoError(t, Emit(context.Background(), sample(), h))
	assert.Equal(t, []string{"x"}, texts)
}

func TestEmitStopsOnError(t *testing.T) {
	t.Parallel()
	stop := errors.New("stop")
	var seen int
	h := New()
	h.StartElementHandler = func(context.Context, string, string, string, []Attribute) error {
		seen++
		return stop
	}
	err := Emit(context.Background(), sample(), h)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, seen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Emit(ctx, sample(), New()), context.Canceled)
}

func TestTreeBuilder(t *testing.T) {
	t.Parallel()
	b := NewTreeBuilder()
	assert.Nil(t, b.Document())
	require.NoError(t, Emit(context.Background(), sample(), b))

	doc := b.Document()
	require.NotNil(t, doc)
	out, err := doc.WriteToString()
	require.NoError(t, err)
	assert.Equal(t,
		`<!DOCTYPE html><html xmlns="http://www.w3.org/1999/xhtml"><body>x<svg xmlns="http://www.w3.org/2000/svg"><a xlink:href="#y"/></svg><!--c--></body></html>`,
		out)

	svg := doc.FindElement("//svg")
	require.NotNil(t, svg)
	assert.Equal(t, string(dom.SVG), svg.SelectAttrValue("xmlns", ""))
}

func TestTreeBuilderComments(t *testing.T) {
	t.Parallel()
	d := dom.New()
	d.AppendChild(d.Root(), d.CreateComment("a--b"))
	b := NewTreeBuilder()
	require.NoError(t, Emit(context.Background(), d, b))
	out, err := b.Document().WriteToString()
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "<!--a- -b-->"), out)
}

func TestTreeBuilderUnbalanced(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewTreeBuilder()
	require.NoError(t, b.StartDocument(ctx))
	require.NoError(t, b.StartElement(ctx, string(dom.HTML), "p", "p", nil))
	assert.Error(t, b.EndElement(ctx, string(dom.HTML), "b", "b"))
	assert.Error(t, b.EndDocument(ctx))
}
