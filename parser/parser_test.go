package parser

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/heathj/htmlstream/parser/dom"
	"github.com/heathj/htmlstream/parser/sax"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

var streamingInputs = []string{
	"<!DOCTYPE html><html lang=en><head><title>a &amp; b</title></head><body><p class=x>1<b>2<i>3</b>4</i>5</p></body></html>",
	"<table>X<tr><td>Y</td></tr></table><pre>\n\nz</pre><textarea>\nq</textarea>",
	"<script>if (a<b && c) { d('</scr' + 'ipt>'); }</script><style>p > a {}</style>",
	"<svg viewBox='0 0 1 1'><![CDATA[x<y]]><foreignObject><p>café</foreignObject></svg>&notin;&#x1F600;&amp",
	"<ul><li>one<li>two</ul>\r\n<!-- c --><select><option>a<option>b</select>",
}

func writeChunks(t *testing.T, p *StreamParser, in string, size int) *Result {
	t.Helper()
	for len(in) > 0 {
		n := size
		if n > len(in) {
			n = len(in)
		}
		_, err := p.WriteString(in[:n])
		require.NoError(t, err)
		in = in[n:]
	}
	res, err := p.Close()
	require.NoError(t, err)
	return res
}

// TestStreamingMatchesWhole checks that the tree and the errors do not
// depend on how the input is cut into chunks.
func TestStreamingMatchesWhole(t *testing.T) {
	for _, in := range streamingInputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			want, err := Parse(in)
			require.NoError(t, err)
			for size := 1; size <= len(in); size++ {
				got := writeChunks(t, NewStreamParser(), in, size)
				if diff := cmp.Diff(want.Document.String(), got.Document.String()); diff != "" {
					t.Fatalf("chunk size %d (-whole +chunked):\n%s", size, diff)
				}
				if diff := cmp.Diff(want.Errors, got.Errors); diff != "" {
					t.Fatalf("chunk size %d errors (-whole +chunked):\n%s", size, diff)
				}
			}
		})
	}
}

func TestParseReader(t *testing.T) {
	t.Parallel()
	in := streamingInputs[0]
	want, err := Parse(in)
	require.NoError(t, err)

	got, err := ParseReader(iotest.OneByteReader(strings.NewReader(in)))
	require.NoError(t, err)
	assert.Equal(t, want.Document.String(), got.Document.String())

	_, err = ParseReader(iotest.ErrReader(io.ErrUnexpectedEOF))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestStreamParserClose(t *testing.T) {
	t.Parallel()
	p := NewStreamParser()
	_, err := p.WriteString("<p>x")
	require.NoError(t, err)

	first, err := p.Close()
	require.NoError(t, err)
	second, err := p.Close()
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = p.WriteString("y")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStreamParserBuildsIncrementally(t *testing.T) {
	t.Parallel()
	p := NewStreamParser()
	_, err := p.WriteString("<p>a<b>b")
	require.NoError(t, err)
	// The tree grows as input arrives; only pending text is held back.
	assert.Contains(t, p.TreeConstructor.doc.String(), "<b>")
	assert.NotContains(t, p.TreeConstructor.doc.String(), `"b"`)

	res, err := p.Close()
	require.NoError(t, err)
	assert.Contains(t, res.Document.String(), `"b"`)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	var seen []ParseError
	res, err := Parse("<p>&unknown;</i><div>", WithErrorHandler(func(e ParseError) { seen = append(seen, e) }))
	require.NoError(t, err)
	assert.Equal(t, res.Errors, seen)

	codes := errorCodes(res.Errors)
	assert.Equal(t, []ErrorCode{errMissingDoctype, errUnknownNamedCharacterReference, errUnexpectedEndTag, errUnclosedElements}, codes)
	assert.Equal(t, []string{"i"}, res.Errors[2].Args)
	assert.Equal(t, []string{"div"}, res.Errors[3].Args)
	assert.Equal(t, 1, res.Errors[2].Line)
}

func TestParseErrorOrder(t *testing.T) {
	t.Parallel()
	res, err := Parse("&unknown;<p></b>")
	require.NoError(t, err)
	require.Equal(t, []ErrorCode{errUnknownNamedCharacterReference, errMissingDoctype, errUnexpectedEndTag}, errorCodes(res.Errors))

	// The character reference is found before the text is handed to tree
	// construction, which then reports the doctype at the text's start.
	assert.Greater(t, res.Errors[0].Column, res.Errors[1].Column)
	assert.Equal(t, 1, res.Errors[1].Line)
	// Tag errors are placed at the end of the tag.
	assert.Greater(t, res.Errors[2].Column, len("&unknown;<p></"))
}

func TestNoErrorsForConformingDocument(t *testing.T) {
	t.Parallel()
	res, err := Parse("<!DOCTYPE html><html><head><title>x</title></head><body><p>y</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
}

func TestQuirksMode(t *testing.T) {
	tests := []struct {
		in   string
		opts []ParseOption
		want dom.QuirksMode
	}{
		{"<!DOCTYPE html>", nil, dom.NoQuirks},
		{"<p>", nil, dom.Quirks},
		{"<p>", []ParseOption{WithIframeSrcdoc(true)}, dom.NoQuirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN">`, nil, dom.Quirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN" "http://www.w3.org/TR/html4/loose.dtd">`, nil, dom.LimitedQuirks},
		{`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "x">`, nil, dom.LimitedQuirks},
		{`<!DOCTYPE html SYSTEM "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd">`, nil, dom.Quirks},
		{"<!DOCTYPE svg>", nil, dom.Quirks},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			res, err := Parse(tt.in, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Document.Mode)
		})
	}
}

func TestVoidElementsHaveNoChildren(t *testing.T) {
	t.Parallel()
	void := map[string]bool{"br": true, "img": true, "input": true, "hr": true}
	res, err := Parse("<br><img src=a><input>x<hr>y")
	require.NoError(t, err)
	doc := res.Document
	doc.Walk(doc.Root(), func(id dom.NodeID) error {
		n := doc.Node(id)
		if n.Type == dom.ElementNode && void[n.Name] {
			assert.Empty(t, doc.Children(id), n.Name)
		}
		return nil
	}, nil)
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"<!DOCTYPE html><title>a&lt;b</title><p class=\"x&quot;\">1<b>2</p>3",
		"<table><tr><td>x</table>",
		"<svg><path d='M0'/></svg><math><mi>x</mi></math>",
		"<pre>\n\nx</pre><textarea>\n\ny</textarea>",
		"<script>a<b</script><p>&nbsp;&amp;&gt;</p><!--c-->",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			first, err := Parse(in)
			require.NoError(t, err)
			second, err := Parse(first.Document.HTML())
			require.NoError(t, err)
			if diff := cmp.Diff(first.Document.String(), second.Document.String()); diff != "" {
				t.Errorf("(-first +second):\n%s", diff)
			}
		})
	}
}

func TestFragments(t *testing.T) {
	tests := []struct {
		context string
		in      string
		want    string
	}{
		{"div", "<b>x</b>y", "| <b>\n|   \"x\"\n| \"y\""},
		{"td", "<td>a</td>b", "| \"ab\""},
		{"tr", "<td>a", "| <td>\n|   \"a\""},
		{"table", "x<tr>", "| \"x\"\n| <tbody>\n|   <tr>"},
		{"title", "<b>&amp;</b>", "| \"<b>&</b>\""},
		{"textarea", "</p>&lt;", "| \"</p><\""},
		{"style", "&amp;<b>", "| \"&amp;<b>\""},
		{"script", "<!--x-->", "| \"<!--x-->\""},
		{"plaintext", "</plaintext>", "| \"</plaintext>\""},
		{"select", "<option>a<p>b", "| <option>\n|   \"ab\""},
		{"svg path", "<circle/>x", "| <svg circle>\n| \"x\""},
		{"math mi", "<b>x</b>", "| <b>\n|   \"x\""},
		{"svg path", "<nobr>X", "| <svg nobr>\n|   \"X\""},
		{"svg path", "<font color></font>X", "| <svg font>\n|   color=\"\"\n| \"X\""},
		{"svg svg", "<div><h1>X</h1></div>", "| <svg div>\n|   <svg h1>\n|     \"X\""},
		{"math math", "<div></div>", "| <math div>"},
		{"math annotation-xml", "<div></div>", "| <math div>"},
		{"svg foreignObject", "<div></div>", "| <div>"},
		{"div", "<svg><div>", "| <svg svg>\n| <div>"},
		{"html", "<p>x", "| <head>\n| <body>\n|   <p>\n|     \"x\""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.context+"/"+tt.in, func(t *testing.T) {
			t.Parallel()
			res, err := ParseFragment(tt.context, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Document.String())
		})
	}
}

func TestFragmentForm(t *testing.T) {
	t.Parallel()
	res, err := ParseFragment("form", "<form><input>")
	require.NoError(t, err)
	assert.Equal(t, "| <input>", res.Document.String())
}

func TestUnknownContext(t *testing.T) {
	for _, ctx := range []string{"", "nosuchelement", "xml foo", "svg ", "svg"} {
		ctx := ctx
		t.Run(ctx, func(t *testing.T) {
			t.Parallel()
			_, err := ParseFragment(ctx, "x")
			if ctx == "svg" {
				// svg is also an HTML tag name.
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrUnknownContext)
		})
	}
}

func TestSinkReceivesTree(t *testing.T) {
	t.Parallel()
	var events []string
	h := sax.New()
	h.StartElementHandler = func(_ context.Context, uri, localName, qName string, attrs []sax.Attribute) error {
		events = append(events, "<"+qName)
		return nil
	}
	h.EndElementHandler = func(_ context.Context, uri, localName, qName string) error {
		events = append(events, qName+">")
		return nil
	}
	h.CharactersHandler = func(_ context.Context, data []byte) error {
		events = append(events, string(data))
		return nil
	}

	_, err := Parse("<table>X<tr><td>Y</table>", WithSink(h))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"<html", "<head", "head>", "<body", "X",
		"<table", "<tbody", "<tr", "<td", "Y", "td>", "tr>", "tbody>", "table>",
		"body>", "html>",
	}, events)
}

func TestLoggerReceivesTraces(t *testing.T) {
	t.Parallel()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	_, err := Parse("<p>x", WithLogger(logger))
	require.NoError(t, err)

	var tokens, errs int
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "token":
			tokens++
		case "parse error":
			errs++
		}
	}
	assert.Positive(t, tokens)
	assert.Equal(t, 1, errs)
}

// netDump renders an x/net/html tree in the same format as Document.Dump.
func netDump(n *html.Node) string {
	var lines []string
	var walk func(n *html.Node, level int)
	indent := func(level int) string { return "| " + strings.Repeat("  ", level) }
	walk = func(n *html.Node, level int) {
		switch n.Type {
		case html.ElementNode:
			name := n.Data
			if n.Namespace != "" {
				name = n.Namespace + " " + name
			}
			lines = append(lines, indent(level)+"<"+name+">")
			var attrs []string
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + " " + key
				}
				attrs = append(attrs, key+`="`+a.Val+`"`)
			}
			sort.Strings(attrs)
			for _, a := range attrs {
				lines = append(lines, indent(level+1)+a)
			}
		case html.TextNode:
			lines = append(lines, indent(level)+`"`+n.Data+`"`)
		case html.CommentNode:
			lines = append(lines, indent(level)+"<!-- "+n.Data+" -->")
		case html.DoctypeNode:
			lines = append(lines, indent(level)+"<!DOCTYPE "+n.Data+">")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, level+1)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, 0)
	}
	return strings.Join(lines, "\n")
}

// TestAgreesWithNetHTML compares trees with golang.org/x/net/html on
// documents where both follow the same rules.
func TestAgreesWithNetHTML(t *testing.T) {
	inputs := []string{
		"<!DOCTYPE html><html><head><title>t</title></head><body><p>a<b>b<i>c</b>d</i>e</p></body></html>",
		"<ul><li>one<li>two<ol><li>x</ol></ul>",
		"<table><caption>c<tr><td>1<td>2<tr><th>h</table>after",
		"<dl><dt>a<dd>b<dt>c</dl>",
		"<p>one<div>two</div><p>three",
		"<a href=x>1<a href=y>2</a>",
		"<form><input name=a><form><input name=b></form>",
		"<svg><foreignObject><p>x</p></foreignObject><circle r=1/></svg><math><mi>x</mi></math>",
		"<head><script>if (a<b) {}</script><style>p>a{}</style></head>",
		"<frameset><frame></frameset>",
		"<h1>a<h2>b</h2></h1>",
		"<button><button>x",
		"<nobr>a<nobr>b",
		"<table><tr><td><table><tr><td>x</td></tr></table></td></tr></table>",
		"<select><option>a<option>b<optgroup><option>c</select>",
		"<p>a</p>\n<!-- c -->\n</body>\n</html>\n<!-- after -->",
		"x<br></br>y",
		"<textarea>\n\nx</textarea><pre>\ny</pre>",
		"<image src=a>",
		"<ruby>a<rb>b<rt>c<rp>d</ruby>",
		"&lt;&notin;&#x1F600;&#0;",
		"<b><p>x</b>y",
		"<table><td>a</td><tr>b</table>",
	}
	for _, in := range inputs {
		in := in
		t.Run(in, func(t *testing.T) {
			t.Parallel()
			ours, err := Parse(in)
			require.NoError(t, err)
			theirs, err := html.Parse(strings.NewReader(in))
			require.NoError(t, err)
			if diff := cmp.Diff(netDump(theirs), ours.Document.String()); diff != "" {
				t.Errorf("(-x/net +ours):\n%s", diff)
			}
		})
	}
}
