package parser

import (
	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

// stackItem is one open element. It mirrors the fields of the arena node the
// builder looks at most, so scope walks never touch the document.
type stackItem struct {
	id   dom.NodeID
	ns   dom.Namespace
	name string
	atom atom.Atom
}

func newStackItem(id dom.NodeID, ns dom.Namespace, name string) stackItem {
	return stackItem{id: id, ns: ns, name: name, atom: atom.Lookup([]byte(name))}
}

// isHTML reports whether the item is an HTML element with one of the given
// tag names.
func (s stackItem) isHTML(names ...atom.Atom) bool {
	if s.ns != dom.HTML {
		return false
	}
	for _, a := range names {
		if s.atom == a {
			return true
		}
	}
	return false
}

func (s stackItem) is(ns dom.Namespace, a atom.Atom) bool {
	return s.ns == ns && s.atom == a
}

// openElements is the stack of open elements. The bottom is the html element.
type openElements struct {
	items []stackItem

	html, head, body dom.NodeID
}

func newOpenElements() *openElements {
	return &openElements{html: dom.Nil, head: dom.Nil, body: dom.Nil}
}

func (s *openElements) len() int {
	return len(s.items)
}

func (s *openElements) push(item stackItem) {
	s.items = append(s.items, item)
	if item.ns != dom.HTML {
		return
	}
	switch item.atom {
	case atom.Html:
		if s.html == dom.Nil {
			s.html = item.id
		}
	case atom.Body:
		if s.body == dom.Nil {
			s.body = item.id
		}
	}
}

func (s *openElements) pop() stackItem {
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last
}

// top is the current node. It returns the zero item on an empty stack.
func (s *openElements) top() stackItem {
	if len(s.items) == 0 {
		return stackItem{id: dom.Nil}
	}
	return s.items[len(s.items)-1]
}

func (s *openElements) at(i int) stackItem {
	return s.items[i]
}

// index returns the position of id on the stack, or -1.
func (s *openElements) index(id dom.NodeID) int {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].id == id {
			return i
		}
	}
	return -1
}

func (s *openElements) contains(id dom.NodeID) bool {
	return s.index(id) != -1
}

// findIndex returns the position of the topmost HTML element named a, or -1.
func (s *openElements) findIndex(a atom.Atom) int {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].isHTML(a) {
			return i
		}
	}
	return -1
}

func (s *openElements) remove(id dom.NodeID) {
	i := s.index(id)
	if i == -1 {
		return
	}
	copy(s.items[i:], s.items[i+1:])
	s.items = s.items[:len(s.items)-1]
}

func (s *openElements) insertAt(i int, item stackItem) {
	s.items = append(s.items, stackItem{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = item
}

func (s *openElements) replace(i int, item stackItem) {
	s.items[i] = item
}

type scope int

const (
	defaultScope scope = iota
	listItemScope
	buttonScope
	tableScope
	selectScope
)

// isScopeBoundary reports whether item stops a search in the given scope.
// https://html.spec.whatwg.org/multipage/parsing.html#has-an-element-in-the-specific-scope
func isScopeBoundary(item stackItem, sc scope) bool {
	switch sc {
	case tableScope:
		return item.isHTML(atom.Html, atom.Table, atom.Template)
	case selectScope:
		return !item.isHTML(atom.Optgroup, atom.Option)
	case listItemScope:
		if item.isHTML(atom.Ol, atom.Ul) {
			return true
		}
	case buttonScope:
		if item.isHTML(atom.Button) {
			return true
		}
	}
	switch item.ns {
	case dom.HTML:
		return item.isHTML(atom.Applet, atom.Caption, atom.Html, atom.Table, atom.Td, atom.Th, atom.Marquee, atom.Object, atom.Template)
	case dom.MathML:
		switch item.atom {
		case atom.Mi, atom.Mo, atom.Mn, atom.Ms, atom.Mtext, atom.AnnotationXml:
			return true
		}
	case dom.SVG:
		switch item.atom {
		case atom.ForeignObject, atom.Desc, atom.Title:
			return true
		}
	}
	return false
}

// indexInScope walks down from the top looking for an HTML element named one
// of names and returns its position, or -1 when a boundary of sc comes
// first.
func (s *openElements) indexInScope(sc scope, names ...atom.Atom) int {
	for i := len(s.items) - 1; i >= 0; i-- {
		item := s.items[i]
		if item.isHTML(names...) {
			return i
		}
		if isScopeBoundary(item, sc) {
			return -1
		}
	}
	return -1
}

func (s *openElements) inScope(a atom.Atom) bool {
	return s.indexInScope(defaultScope, a) != -1
}

func (s *openElements) inListItemScope(a atom.Atom) bool {
	return s.indexInScope(listItemScope, a) != -1
}

func (s *openElements) inButtonScope(a atom.Atom) bool {
	return s.indexInScope(buttonScope, a) != -1
}

func (s *openElements) inTableScope(a atom.Atom) bool {
	return s.indexInScope(tableScope, a) != -1
}

func (s *openElements) inSelectScope(a atom.Atom) bool {
	return s.indexInScope(selectScope, a) != -1
}

// hasAnyInScope is inScope for a set of names, e.g. the six heading levels.
func (s *openElements) hasAnyInScope(names ...atom.Atom) bool {
	return s.indexInScope(defaultScope, names...) != -1
}

// nodeInScope reports whether the exact element id is in the default scope.
func (s *openElements) nodeInScope(id dom.NodeID) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		item := s.items[i]
		if item.id == id {
			return true
		}
		if isScopeBoundary(item, defaultScope) {
			return false
		}
	}
	return false
}

// furthestBlockForFormattingElement returns the position of the lowest
// special element above position fe, or -1 when there is none.
func (s *openElements) furthestBlockForFormattingElement(fe int) int {
	for i := fe + 1; i < len(s.items); i++ {
		if isSpecial(s.items[i]) {
			return i
		}
	}
	return -1
}

// popUntilPopped pops elements until an HTML element named one of names has
// been popped. It reports whether one was found.
func (s *openElements) popUntilPopped(names ...atom.Atom) bool {
	for len(s.items) > 0 {
		if s.pop().isHTML(names...) {
			return true
		}
	}
	return false
}

// popUntilIndex pops every element at position i and above.
func (s *openElements) popUntilIndex(i int) {
	s.items = s.items[:i]
}

// https://html.spec.whatwg.org/multipage/parsing.html#clear-the-stack-back-to-a-table-context
func (s *openElements) popUntilTableScopeMarker() {
	s.popUntilTop(atom.Table, atom.Template, atom.Html)
}

// https://html.spec.whatwg.org/multipage/parsing.html#clear-the-stack-back-to-a-table-body-context
func (s *openElements) popUntilTableBodyScopeMarker() {
	s.popUntilTop(atom.Tbody, atom.Tfoot, atom.Thead, atom.Template, atom.Html)
}

// https://html.spec.whatwg.org/multipage/parsing.html#clear-the-stack-back-to-a-table-row-context
func (s *openElements) popUntilTableRowScopeMarker() {
	s.popUntilTop(atom.Tr, atom.Template, atom.Html)
}

func (s *openElements) popUntilTop(names ...atom.Atom) {
	for len(s.items) > 0 && !s.top().isHTML(names...) {
		s.pop()
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#generate-implied-end-tags
func (s *openElements) generateImpliedEndTags(except ...atom.Atom) {
	for len(s.items) > 0 {
		top := s.top()
		if !top.isHTML(atom.Dd, atom.Dt, atom.Li, atom.Optgroup, atom.Option, atom.P, atom.Rb, atom.Rp, atom.Rt, atom.Rtc) {
			return
		}
		if top.isHTML(except...) {
			return
		}
		s.pop()
	}
}

// generateAllImpliedEndTagsThoroughly is the variant used when a table cell,
// caption or template closes.
func (s *openElements) generateAllImpliedEndTagsThoroughly() {
	for len(s.items) > 0 && s.top().isHTML(atom.Caption, atom.Colgroup, atom.Dd, atom.Dt, atom.Li, atom.Optgroup,
		atom.Option, atom.P, atom.Rb, atom.Rp, atom.Rt, atom.Rtc, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr) {
		s.pop()
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#special
func isSpecial(item stackItem) bool {
	switch item.ns {
	case dom.HTML:
		switch item.atom {
		case atom.Address, atom.Applet, atom.Area, atom.Article, atom.Aside, atom.Base, atom.Basefont, atom.Bgsound,
			atom.Blockquote, atom.Body, atom.Br, atom.Button, atom.Caption, atom.Center, atom.Col, atom.Colgroup,
			atom.Dd, atom.Details, atom.Dir, atom.Div, atom.Dl, atom.Dt, atom.Embed, atom.Fieldset, atom.Figcaption,
			atom.Figure, atom.Footer, atom.Form, atom.Frame, atom.Frameset, atom.H1, atom.H2, atom.H3, atom.H4,
			atom.H5, atom.H6, atom.Head, atom.Header, atom.Hgroup, atom.Hr, atom.Html, atom.Iframe, atom.Img,
			atom.Input, atom.Keygen, atom.Li, atom.Link, atom.Listing, atom.Main, atom.Marquee, atom.Menu,
			atom.Meta, atom.Nav, atom.Noembed, atom.Noframes, atom.Noscript, atom.Object, atom.Ol, atom.P,
			atom.Param, atom.Plaintext, atom.Pre, atom.Script, atom.Section, atom.Select, atom.Source,
			atom.Style, atom.Summary, atom.Table, atom.Tbody, atom.Td, atom.Template, atom.Textarea, atom.Tfoot,
			atom.Th, atom.Thead, atom.Title, atom.Tr, atom.Track, atom.Ul, atom.Wbr, atom.Xmp:
			return true
		}
		return item.name == "search"
	case dom.MathML:
		switch item.atom {
		case atom.Mi, atom.Mo, atom.Mn, atom.Ms, atom.Mtext, atom.AnnotationXml:
			return true
		}
	case dom.SVG:
		switch item.atom {
		case atom.ForeignObject, atom.Desc, atom.Title:
			return true
		}
	}
	return false
}
