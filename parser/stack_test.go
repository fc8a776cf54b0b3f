package parser

import (
	"strings"
	"testing"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html/atom"
)

// stackOf builds a stack from names such as "html body svg:foreignObject p".
func stackOf(names string) *openElements {
	s := newOpenElements()
	for i, n := range strings.Fields(names) {
		ns := dom.HTML
		if prefix, local, ok := strings.Cut(n, ":"); ok {
			switch prefix {
			case "svg":
				ns = dom.SVG
			case "math":
				ns = dom.MathML
			}
			n = local
		}
		s.push(newStackItem(dom.NodeID(i+1), ns, n))
	}
	return s
}

func TestScopeQueries(t *testing.T) {
	tests := []struct {
		stack string
		query func(*openElements) bool
		want  bool
		desc  string
	}{
		{"html body p", func(s *openElements) bool { return s.inScope(atom.P) }, true, "p in scope"},
		{"html body p button", func(s *openElements) bool { return s.inButtonScope(atom.P) }, false, "button hides p"},
		{"html body p button", func(s *openElements) bool { return s.inScope(atom.P) }, true, "button is not a default boundary"},
		{"html body ul li ol", func(s *openElements) bool { return s.inListItemScope(atom.Li) }, false, "ol hides li"},
		{"html body ul li ol", func(s *openElements) bool { return s.inScope(atom.Li) }, true, "ol is not a default boundary"},
		{"html body table tr td p", func(s *openElements) bool { return s.inTableScope(atom.Tr) }, true, "td is not a table boundary"},
		{"html body table tr td p", func(s *openElements) bool { return s.inScope(atom.Tr) }, false, "td hides tr"},
		{"html body table tbody", func(s *openElements) bool { return s.inTableScope(atom.Table) }, true, "table itself"},
		{"html body p svg:svg svg:foreignObject div", func(s *openElements) bool { return s.inScope(atom.P) }, false, "foreignObject hides p"},
		{"html body p math:math math:mi", func(s *openElements) bool { return s.inScope(atom.P) }, false, "mi hides p"},
		{"html body p math:math math:mrow", func(s *openElements) bool { return s.inScope(atom.P) }, true, "mrow is transparent"},
		{"html body p svg:title", func(s *openElements) bool { return s.inScope(atom.P) }, false, "svg title hides p"},
		{"html body div svg:p", func(s *openElements) bool { return s.inScope(atom.P) }, false, "foreign p never matches"},
		{"html body select optgroup option", func(s *openElements) bool { return s.inSelectScope(atom.Select) }, true, "options are transparent"},
		{"html body select div", func(s *openElements) bool { return s.inSelectScope(atom.Select) }, false, "anything else hides select"},
		{"html body h2 span", func(s *openElements) bool { return s.hasAnyInScope(atom.H1, atom.H2) }, true, "headings"},
		{"html body template p", func(s *openElements) bool { return s.inTableScope(atom.Table) }, false, "template hides table"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.query(stackOf(tt.stack)))
		})
	}
}

// TestScopeInsideCell checks the stack left by <table><tr><td><b>: the cell
// is a boundary for the default scope but not for table scope.
func TestScopeInsideCell(t *testing.T) {
	t.Parallel()
	p := NewStreamParser()
	_, err := p.WriteString("<table><tr><td><b>")
	require.NoError(t, err)
	oe := p.TreeConstructor.oe

	var names []string
	for i := 0; i < oe.len(); i++ {
		names = append(names, oe.at(i).name)
	}
	require.Equal(t, []string{"html", "body", "table", "tbody", "tr", "td", "b"}, names)

	assert.False(t, oe.inScope(atom.Table))
	assert.True(t, oe.inTableScope(atom.Table))
	assert.True(t, oe.inScope(atom.Td))
	assert.True(t, oe.inScope(atom.B))
	assert.False(t, oe.inTableScope(atom.Body))

	nested := stackOf("html body table tbody tr td table")
	assert.False(t, nested.inTableScope(atom.Td), "the inner table hides the cell")
}

func TestOpenElements(t *testing.T) {
	t.Parallel()
	s := stackOf("html body div p span")
	assert.Equal(t, dom.NodeID(1), s.html)
	assert.Equal(t, dom.NodeID(2), s.body)

	assert.Equal(t, 3, s.findIndex(atom.P))
	assert.True(t, s.nodeInScope(4))
	assert.Equal(t, 2, s.furthestBlockForFormattingElement(1))

	s.generateImpliedEndTags()
	assert.Equal(t, "span", s.top().name, "span is not implied")

	s.pop()
	s.generateImpliedEndTags(atom.P)
	assert.Equal(t, "p", s.top().name)
	s.generateImpliedEndTags()
	assert.Equal(t, "div", s.top().name)

	require.True(t, s.popUntilPopped(atom.Body))
	assert.Equal(t, 1, s.len())
	assert.False(t, s.popUntilPopped(atom.Table))
}

func TestTableContextPops(t *testing.T) {
	t.Parallel()
	s := stackOf("html body table tbody tr td")
	s.popUntilTableRowScopeMarker()
	assert.Equal(t, "tr", s.top().name)
	s.popUntilTableBodyScopeMarker()
	assert.Equal(t, "tbody", s.top().name)
	s.popUntilTableScopeMarker()
	assert.Equal(t, "table", s.top().name)
}

func TestIsSpecial(t *testing.T) {
	t.Parallel()
	assert.True(t, isSpecial(newStackItem(1, dom.HTML, "div")))
	assert.True(t, isSpecial(newStackItem(1, dom.HTML, "search")))
	assert.False(t, isSpecial(newStackItem(1, dom.HTML, "span")))
	assert.False(t, isSpecial(newStackItem(1, dom.HTML, "b")))
	assert.True(t, isSpecial(newStackItem(1, dom.SVG, "foreignObject")))
	assert.False(t, isSpecial(newStackItem(1, dom.SVG, "div")))
	assert.True(t, isSpecial(newStackItem(1, dom.MathML, "annotation-xml")))
}

func TestNoahsArk(t *testing.T) {
	t.Parallel()
	var f activeFormatting
	attrs := []dom.Attr{{Name: "class", Value: "x"}}
	for i := 1; i <= 4; i++ {
		f.push(newStackItem(dom.NodeID(i), dom.HTML, "b"), attrs)
	}
	assert.Equal(t, 3, f.len())
	assert.Equal(t, -1, f.index(1), "the earliest twin is evicted")

	f.push(newStackItem(5, dom.HTML, "b"), []dom.Attr{{Name: "class", Value: "y"}})
	assert.Equal(t, 4, f.len(), "different attributes are not twins")

	f.insertMarker()
	f.push(newStackItem(6, dom.HTML, "b"), attrs)
	assert.Equal(t, 6, f.len(), "twins before a marker do not count")
	assert.Equal(t, 5, f.lastBeforeMarker("b"))

	f.clearToLastMarker()
	assert.Equal(t, 4, f.len())
	assert.Equal(t, -1, f.lastBeforeMarker("i"))
}
