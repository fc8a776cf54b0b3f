package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intable
func (c *HTMLTreeConstructor) inTableModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		if c.getCurrentNode().isHTML(atom.Table, atom.Tbody, atom.Template, atom.Tfoot, atom.Thead, atom.Tr) {
			c.pendingTableCharacters.Reset()
			c.originalInsertionMode = c.mode
			return true, inTableText
		}
	case commentToken:
		c.insertComment(t.Data)
		return false, inTable
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, inTable
	case startTagToken:
		switch t.Atom {
		case atom.Caption:
			c.oe.popUntilTableScopeMarker()
			c.activeFormattingElements.insertMarker()
			c.insertHTMLElementForToken(t)
			return false, inCaption
		case atom.Colgroup:
			c.oe.popUntilTableScopeMarker()
			c.insertHTMLElementForToken(t)
			return false, inColumnGroup
		case atom.Col:
			c.oe.popUntilTableScopeMarker()
			c.insertHTMLElement(atom.Colgroup)
			return true, inColumnGroup
		case atom.Tbody, atom.Tfoot, atom.Thead:
			c.oe.popUntilTableScopeMarker()
			c.insertHTMLElementForToken(t)
			return false, inTableBody
		case atom.Td, atom.Th, atom.Tr:
			c.oe.popUntilTableScopeMarker()
			c.insertHTMLElement(atom.Tbody)
			return true, inTableBody
		case atom.Table:
			c.parseError(errUnexpectedStartTag, t.TagName)
			if !c.oe.inTableScope(atom.Table) {
				return false, inTable
			}
			c.oe.popUntilPopped(atom.Table)
			return true, c.resetInsertionMode()
		case atom.Style, atom.Script:
			return c.useRulesFor(t, inTable, inHead)
		case atom.Input:
			if v, ok := t.attr("type"); ok && strings.EqualFold(v, "hidden") {
				c.parseError(errUnexpectedStartTag, t.TagName)
				c.insertHTMLElementForToken(t)
				c.oe.pop()
				c.acknowledgeSelfClosingTag()
				return false, inTable
			}
		case atom.Form:
			c.parseError(errUnexpectedStartTag, t.TagName)
			if c.formElementPointer != dom.Nil {
				return false, inTable
			}
			c.formElementPointer = c.insertHTMLElementForToken(t).id
			c.oe.pop()
			return false, inTable
		}
	case endTagToken:
		switch t.Atom {
		case atom.Table:
			if !c.oe.inTableScope(atom.Table) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inTable
			}
			c.oe.popUntilPopped(atom.Table)
			return false, c.resetInsertionMode()
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html, atom.Tbody, atom.Td, atom.Tfoot,
			atom.Th, atom.Thead, atom.Tr:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inTable
		}
	case endOfFileToken:
		return c.useRulesFor(t, inTable, inBody)
	}

	c.parseError(errFosterParentedContent, t.TagName)
	c.fosterParenting = true
	defer func() { c.fosterParenting = false }()
	return c.useRulesFor(t, inTable, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intabletext
func (c *HTMLTreeConstructor) inTableTextModeHandler(t *Token) (bool, insertionMode) {
	if t.TokenType == characterToken {
		c.pendingTableCharacters.WriteString(c.dropNulls(t.Data))
		return false, inTableText
	}

	pending := c.pendingTableCharacters.String()
	c.pendingTableCharacters.Reset()
	if !isAllWhitespace(pending) {
		c.parseError(errFosterParentedContent)
		c.fosterParenting = true
		c.inBodyModeHandler(&Token{TokenType: characterToken, Data: pending, Line: t.Line, Column: t.Column})
		c.fosterParenting = false
	} else {
		c.insertCharacters(pending)
	}
	return true, c.originalInsertionMode
}

// closeCaption pops the open caption and its descendants. It reports
// whether there was a caption in table scope to close.
func (c *HTMLTreeConstructor) closeCaption(t *Token) bool {
	if !c.oe.inTableScope(atom.Caption) {
		c.parseError(errUnexpectedEndTag, t.TagName)
		return false
	}
	c.oe.generateImpliedEndTags()
	if !c.getCurrentNode().isHTML(atom.Caption) {
		c.parseError(errEndTagTooEarly, "caption")
	}
	c.oe.popUntilPopped(atom.Caption)
	c.activeFormattingElements.clearToLastMarker()
	return true
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incaption
func (c *HTMLTreeConstructor) inCaptionModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case startTagToken:
		switch t.Atom {
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			if !c.closeCaption(t) {
				return false, inCaption
			}
			return true, inTable
		}
	case endTagToken:
		switch t.Atom {
		case atom.Caption:
			if !c.closeCaption(t) {
				return false, inCaption
			}
			return false, inTable
		case atom.Table:
			if !c.closeCaption(t) {
				return false, inCaption
			}
			return true, inTable
		case atom.Body, atom.Col, atom.Colgroup, atom.Html, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead,
			atom.Tr:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inCaption
		}
	}
	return c.useRulesFor(t, inCaption, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incolgroup
func (c *HTMLTreeConstructor) inColumnGroupModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		c.insertCharacters(ws)
		if rest == "" {
			return false, inColumnGroup
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t.Data)
		return false, inColumnGroup
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, inColumnGroup
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, inColumnGroup, inBody)
		case atom.Col:
			c.insertHTMLElementForToken(t)
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
			return false, inColumnGroup
		}
	case endTagToken:
		switch t.Atom {
		case atom.Colgroup:
			if !c.getCurrentNode().isHTML(atom.Colgroup) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inColumnGroup
			}
			c.oe.pop()
			return false, inTable
		case atom.Col:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inColumnGroup
		}
	case endOfFileToken:
		return c.useRulesFor(t, inColumnGroup, inBody)
	}

	if !c.getCurrentNode().isHTML(atom.Colgroup) {
		c.parseError(errUnexpectedCharacters)
		return false, inColumnGroup
	}
	c.oe.pop()
	return true, inTable
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intbody
func (c *HTMLTreeConstructor) inTableBodyModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case startTagToken:
		switch t.Atom {
		case atom.Tr:
			c.oe.popUntilTableBodyScopeMarker()
			c.insertHTMLElementForToken(t)
			return false, inRow
		case atom.Th, atom.Td:
			c.parseError(errUnexpectedStartTag, t.TagName)
			c.oe.popUntilTableBodyScopeMarker()
			c.insertHTMLElement(atom.Tr)
			return true, inRow
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead:
			return c.closeTableBody(t)
		}
	case endTagToken:
		switch t.Atom {
		case atom.Tbody, atom.Tfoot, atom.Thead:
			if !c.oe.inTableScope(t.Atom) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inTableBody
			}
			c.oe.popUntilTableBodyScopeMarker()
			c.oe.pop()
			return false, inTable
		case atom.Table:
			return c.closeTableBody(t)
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html, atom.Td, atom.Th, atom.Tr:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inTableBody
		}
	}
	return c.useRulesFor(t, inTableBody, inTable)
}

// closeTableBody closes the open tbody, thead or tfoot and reprocesses t in
// the in table mode.
func (c *HTMLTreeConstructor) closeTableBody(t *Token) (bool, insertionMode) {
	if c.oe.indexInScope(tableScope, atom.Tbody, atom.Thead, atom.Tfoot) == -1 {
		c.parseError(errUnexpectedStartTag, t.TagName)
		return false, inTableBody
	}
	c.oe.popUntilTableBodyScopeMarker()
	c.oe.pop()
	return true, inTable
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intr
func (c *HTMLTreeConstructor) inRowModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case startTagToken:
		switch t.Atom {
		case atom.Th, atom.Td:
			c.oe.popUntilTableRowScopeMarker()
			c.insertHTMLElementForToken(t)
			c.activeFormattingElements.insertMarker()
			return false, inCell
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
			return c.closeRow(t, true)
		}
	case endTagToken:
		switch t.Atom {
		case atom.Tr:
			return c.closeRow(t, false)
		case atom.Table:
			return c.closeRow(t, true)
		case atom.Tbody, atom.Tfoot, atom.Thead:
			if !c.oe.inTableScope(t.Atom) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inRow
			}
			return c.closeRow(t, true)
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html, atom.Td, atom.Th:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inRow
		}
	}
	return c.useRulesFor(t, inRow, inTable)
}

// closeRow pops the open tr. When reprocess is set the token is handled
// again in the in table body mode.
func (c *HTMLTreeConstructor) closeRow(t *Token, reprocess bool) (bool, insertionMode) {
	if !c.oe.inTableScope(atom.Tr) {
		c.parseError(errUnexpectedEndTag, t.TagName)
		return false, inRow
	}
	c.oe.popUntilTableRowScopeMarker()
	c.oe.pop()
	return reprocess, inTableBody
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-intd
func (c *HTMLTreeConstructor) inCellModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case startTagToken:
		switch t.Atom {
		case atom.Caption, atom.Col, atom.Colgroup, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr:
			if c.oe.indexInScope(tableScope, atom.Td, atom.Th) == -1 {
				c.parseError(errUnexpectedStartTag, t.TagName)
				return false, inCell
			}
			c.closeCell()
			return true, inRow
		}
	case endTagToken:
		switch t.Atom {
		case atom.Td, atom.Th:
			if !c.oe.inTableScope(t.Atom) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inCell
			}
			c.oe.generateImpliedEndTags()
			if !c.getCurrentNode().isHTML(t.Atom) {
				c.parseError(errEndTagTooEarly, t.TagName)
			}
			c.oe.popUntilPopped(t.Atom)
			c.activeFormattingElements.clearToLastMarker()
			return false, inRow
		case atom.Body, atom.Caption, atom.Col, atom.Colgroup, atom.Html:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inCell
		case atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr:
			if !c.oe.inTableScope(t.Atom) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inCell
			}
			c.closeCell()
			return true, inRow
		}
	}
	return c.useRulesFor(t, inCell, inBody)
}

// https://html.spec.whatwg.org/multipage/parsing.html#close-the-cell
func (c *HTMLTreeConstructor) closeCell() {
	c.oe.generateImpliedEndTags()
	if !c.getCurrentNode().isHTML(atom.Td, atom.Th) {
		c.parseError(errEndTagTooEarly, c.getCurrentNode().name)
	}
	c.oe.popUntilPopped(atom.Td, atom.Th)
	c.activeFormattingElements.clearToLastMarker()
}
