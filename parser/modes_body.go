package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) inBodyModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		data := c.dropNulls(t.Data)
		if data == "" {
			return false, inBody
		}
		c.reconstructActiveFormattingElements()
		c.insertCharacters(data)
		if !isAllWhitespace(data) {
			c.framesetOK = false
		}
	case commentToken:
		c.insertComment(t.Data)
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
	case startTagToken:
		return c.inBodyStartTag(t)
	case endTagToken:
		return c.inBodyEndTag(t)
	case endOfFileToken:
		c.reportUnclosed()
		return c.stopParsing()
	}
	return false, inBody
}

func (c *HTMLTreeConstructor) inBodyStartTag(t *Token) (bool, insertionMode) {
	switch t.Atom {
	case atom.Html:
		c.parseError(errUnexpectedStartTag, t.TagName)
		c.mergeAttributes(c.oe.at(0).id, t)
	case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noframes, atom.Script, atom.Style,
		atom.Title:
		return c.useRulesFor(t, inBody, inHead)
	case atom.Body:
		c.parseError(errUnexpectedStartTag, t.TagName)
		if c.oe.len() < 2 || !c.oe.at(1).isHTML(atom.Body) {
			break
		}
		c.framesetOK = false
		c.mergeAttributes(c.oe.at(1).id, t)
	case atom.Frameset:
		c.parseError(errUnexpectedStartTag, t.TagName)
		if c.oe.len() < 2 || !c.oe.at(1).isHTML(atom.Body) || !c.framesetOK {
			break
		}
		c.doc.Detach(c.oe.at(1).id)
		c.oe.popUntilIndex(1)
		c.insertHTMLElementForToken(t)
		return false, inFrameset
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Center, atom.Details, atom.Dialog,
		atom.Dir, atom.Div, atom.Dl, atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer, atom.Header,
		atom.Hgroup, atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.P, atom.Section, atom.Summary, atom.Ul:
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		c.closePElementInButtonScope()
		if c.getCurrentNode().isHTML(atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6) {
			c.parseError(errUnexpectedStartTag, t.TagName)
			c.oe.pop()
		}
		c.insertHTMLElementForToken(t)
	case atom.Pre, atom.Listing:
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
		c.skipLeadingNewline = true
		c.framesetOK = false
	case atom.Form:
		if c.formElementPointer != dom.Nil {
			c.parseError(errUnexpectedStartTag, t.TagName)
			break
		}
		c.closePElementInButtonScope()
		c.formElementPointer = c.insertHTMLElementForToken(t).id
	case atom.Li:
		c.framesetOK = false
		c.closeListItem(atom.Li)
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case atom.Dd, atom.Dt:
		c.framesetOK = false
		c.closeListItem(atom.Dd, atom.Dt)
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
	case atom.Plaintext:
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
		c.switchTokenizer(plaintextState)
	case atom.Button:
		if c.oe.inScope(atom.Button) {
			c.parseError(errUnexpectedStartTag, t.TagName)
			c.oe.generateImpliedEndTags()
			c.oe.popUntilPopped(atom.Button)
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
	case atom.A:
		if i := c.activeFormattingElements.lastBeforeMarker("a"); i != -1 {
			c.parseError(errNestedFormattingTag, t.TagName)
			stale := c.activeFormattingElements.at(i).id
			if c.adoptionAgencyAlgorithm(&Token{TokenType: endTagToken, TagName: "a", Atom: atom.A}) {
				c.anyOtherEndTag(&Token{TokenType: endTagToken, TagName: "a", Atom: atom.A})
			}
			c.activeFormattingElements.remove(stale)
			c.oe.remove(stale)
		}
		c.reconstructActiveFormattingElements()
		c.insertFormattingElementForToken(t)
	case atom.B, atom.Big, atom.Code, atom.Em, atom.Font, atom.I, atom.S, atom.Small, atom.Strike, atom.Strong,
		atom.Tt, atom.U:
		c.reconstructActiveFormattingElements()
		c.insertFormattingElementForToken(t)
	case atom.Nobr:
		c.reconstructActiveFormattingElements()
		if c.oe.inScope(atom.Nobr) {
			c.parseError(errNestedFormattingTag, t.TagName)
			c.adoptionAgencyAlgorithm(&Token{TokenType: endTagToken, TagName: "nobr", Atom: atom.Nobr})
			c.reconstructActiveFormattingElements()
		}
		c.insertFormattingElementForToken(t)
	case atom.Applet, atom.Marquee, atom.Object:
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.activeFormattingElements.insertMarker()
		c.framesetOK = false
	case atom.Table:
		if c.doc.Mode != dom.Quirks {
			c.closePElementInButtonScope()
		}
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
		return false, inTable
	case atom.Area, atom.Br, atom.Embed, atom.Img, atom.Keygen, atom.Wbr:
		c.insertVoidElement(t)
		c.framesetOK = false
	case atom.Input:
		c.insertVoidElement(t)
		if v, ok := t.attr("type"); !ok || !strings.EqualFold(v, "hidden") {
			c.framesetOK = false
		}
	case atom.Param, atom.Source, atom.Track:
		c.insertHTMLElementForToken(t)
		c.oe.pop()
		c.acknowledgeSelfClosingTag()
	case atom.Hr:
		c.closePElementInButtonScope()
		c.insertHTMLElementForToken(t)
		c.oe.pop()
		c.acknowledgeSelfClosingTag()
		c.framesetOK = false
	case atom.Image:
		c.parseError(errUnexpectedStartTag, t.TagName)
		t.TagName, t.Atom = "img", atom.Img
		return true, inBody
	case atom.Textarea:
		c.insertHTMLElementForToken(t)
		c.skipLeadingNewline = true
		c.switchTokenizer(rcDataState)
		c.originalInsertionMode = c.mode
		c.framesetOK = false
		return false, text
	case atom.Xmp:
		c.closePElementInButtonScope()
		c.reconstructActiveFormattingElements()
		c.framesetOK = false
		return c.parseGenericRawTextElement(t)
	case atom.Iframe:
		c.framesetOK = false
		return c.parseGenericRawTextElement(t)
	case atom.Noembed:
		return c.parseGenericRawTextElement(t)
	case atom.Noscript:
		if c.config.scripting {
			return c.parseGenericRawTextElement(t)
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
	case atom.Select:
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
		c.framesetOK = false
		switch c.mode {
		case inTable, inCaption, inTableBody, inRow, inCell:
			return false, inSelectInTable
		}
		return false, inSelect
	case atom.Optgroup, atom.Option:
		if c.getCurrentNode().isHTML(atom.Option) {
			c.oe.pop()
		}
		c.reconstructActiveFormattingElements()
		c.insertHTMLElementForToken(t)
	case atom.Rb, atom.Rtc:
		if c.oe.inScope(atom.Ruby) {
			c.oe.generateImpliedEndTags()
			if !c.getCurrentNode().isHTML(atom.Ruby) {
				c.parseError(errUnexpectedStartTag, t.TagName)
			}
		}
		c.insertHTMLElementForToken(t)
	case atom.Rp, atom.Rt:
		if c.oe.inScope(atom.Ruby) {
			c.oe.generateImpliedEndTags(atom.Rtc)
			if !c.getCurrentNode().isHTML(atom.Ruby, atom.Rtc) {
				c.parseError(errUnexpectedStartTag, t.TagName)
			}
		}
		c.insertHTMLElementForToken(t)
	case atom.Math, atom.Svg:
		c.reconstructActiveFormattingElements()
		ns := dom.MathML
		if t.Atom == atom.Svg {
			ns = dom.SVG
			adjustSVGAttributes(t.Attributes)
		} else {
			adjustMathMLAttributes(t.Attributes)
		}
		adjustForeignAttributes(t.Attributes)
		c.insertForeignElementForToken(t, ns)
		if t.SelfClosing {
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
		}
	case atom.Caption, atom.Col, atom.Colgroup, atom.Frame, atom.Head, atom.Tbody, atom.Td, atom.Tfoot,
		atom.Th, atom.Thead, atom.Tr:
		c.parseError(errUnexpectedStartTag, t.TagName)
	default:
		// search has no atom of its own.
		if t.TagName == "search" {
			c.closePElementInButtonScope()
		} else {
			c.reconstructActiveFormattingElements()
		}
		c.insertHTMLElementForToken(t)
	}
	return false, inBody
}

// insertVoidElement inserts an element that never has children.
func (c *HTMLTreeConstructor) insertVoidElement(t *Token) {
	c.reconstructActiveFormattingElements()
	c.insertHTMLElementForToken(t)
	c.oe.pop()
	c.acknowledgeSelfClosingTag()
}

// closeListItem runs the li/dd/dt start tag loop that implicitly closes an
// open item of the same kind.
func (c *HTMLTreeConstructor) closeListItem(names ...atom.Atom) {
	for i := c.oe.len() - 1; i >= 0; i-- {
		node := c.oe.at(i)
		if node.isHTML(names...) {
			c.oe.generateImpliedEndTags(node.atom)
			if !c.getCurrentNode().isHTML(node.atom) {
				c.parseError(errEndTagTooEarly, node.name)
			}
			c.oe.popUntilPopped(node.atom)
			return
		}
		if isSpecial(node) && !node.isHTML(atom.Address, atom.Div, atom.P) {
			return
		}
	}
}

func (c *HTMLTreeConstructor) inBodyEndTag(t *Token) (bool, insertionMode) {
	switch t.Atom {
	case atom.Body:
		if !c.oe.inScope(atom.Body) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			break
		}
		c.reportUnclosed()
		return false, afterBody
	case atom.Html:
		if !c.oe.inScope(atom.Body) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			break
		}
		c.reportUnclosed()
		return true, afterBody
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Button, atom.Center, atom.Details,
		atom.Dialog, atom.Dir, atom.Div, atom.Dl, atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer,
		atom.Header, atom.Hgroup, atom.Listing, atom.Main, atom.Menu, atom.Nav, atom.Ol, atom.Pre, atom.Section,
		atom.Summary, atom.Ul:
		c.closeElementInScope(t, defaultScope)
	case atom.Form:
		node := c.formElementPointer
		c.formElementPointer = dom.Nil
		if node == dom.Nil || !c.oe.nodeInScope(node) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			break
		}
		c.oe.generateImpliedEndTags()
		if c.getCurrentNode().id != node {
			c.parseError(errEndTagTooEarly, t.TagName)
		}
		c.oe.remove(node)
	case atom.P:
		if !c.oe.inButtonScope(atom.P) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			c.insertHTMLElement(atom.P)
		}
		c.closePElement()
	case atom.Li:
		c.closeElementInScope(t, listItemScope)
	case atom.Dd, atom.Dt:
		c.closeElementInScope(t, defaultScope)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		headings := []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}
		if !c.oe.hasAnyInScope(headings...) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			break
		}
		c.oe.generateImpliedEndTags()
		if !c.getCurrentNode().isHTML(t.Atom) {
			c.parseError(errEndTagTooEarly, t.TagName)
		}
		c.oe.popUntilPopped(headings...)
	case atom.A, atom.B, atom.Big, atom.Code, atom.Em, atom.Font, atom.I, atom.Nobr, atom.S, atom.Small,
		atom.Strike, atom.Strong, atom.Tt, atom.U:
		if c.adoptionAgencyAlgorithm(t) {
			c.anyOtherEndTag(t)
		}
	case atom.Applet, atom.Marquee, atom.Object:
		if c.closeElementInScope(t, defaultScope) {
			c.activeFormattingElements.clearToLastMarker()
		}
	case atom.Br:
		c.parseError(errUnexpectedEndTag, t.TagName)
		c.insertVoidElement(&Token{TokenType: startTagToken, TagName: "br", Atom: atom.Br})
		c.framesetOK = false
	default:
		if t.TagName == "search" {
			c.closeElementInScope(t, defaultScope)
			break
		}
		c.anyOtherEndTag(t)
	}
	return false, inBody
}

// closeElementInScope closes the element named by the end tag t when it is
// in scope sc, generating implied end tags first. It reports whether the
// element was open.
func (c *HTMLTreeConstructor) closeElementInScope(t *Token, sc scope) bool {
	if c.oe.indexInScope(sc, t.Atom) == -1 {
		c.parseError(errUnexpectedEndTag, t.TagName)
		return false
	}
	c.oe.generateImpliedEndTags(t.Atom)
	if !c.getCurrentNode().isHTML(t.Atom) {
		c.parseError(errEndTagTooEarly, t.TagName)
	}
	c.oe.popUntilPopped(t.Atom)
	return true
}
