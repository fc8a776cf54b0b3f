package parser

import "golang.org/x/net/html/atom"

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselect
func (c *HTMLTreeConstructor) inSelectModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		c.insertCharacters(c.dropNulls(t.Data))
	case commentToken:
		c.insertComment(t.Data)
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, inSelect, inBody)
		case atom.Option:
			if c.getCurrentNode().isHTML(atom.Option) {
				c.oe.pop()
			}
			c.insertHTMLElementForToken(t)
		case atom.Optgroup:
			if c.getCurrentNode().isHTML(atom.Option) {
				c.oe.pop()
			}
			if c.getCurrentNode().isHTML(atom.Optgroup) {
				c.oe.pop()
			}
			c.insertHTMLElementForToken(t)
		case atom.Hr:
			if c.getCurrentNode().isHTML(atom.Option) {
				c.oe.pop()
			}
			if c.getCurrentNode().isHTML(atom.Optgroup) {
				c.oe.pop()
			}
			c.insertHTMLElementForToken(t)
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
		case atom.Select:
			c.parseError(errUnexpectedStartTag, t.TagName)
			if c.oe.inSelectScope(atom.Select) {
				c.oe.popUntilPopped(atom.Select)
				return false, c.resetInsertionMode()
			}
		case atom.Input, atom.Keygen, atom.Textarea:
			c.parseError(errUnexpectedStartTag, t.TagName)
			if c.oe.inSelectScope(atom.Select) {
				c.oe.popUntilPopped(atom.Select)
				return true, c.resetInsertionMode()
			}
		case atom.Script:
			return c.useRulesFor(t, inSelect, inHead)
		default:
			c.parseError(errUnexpectedStartTag, t.TagName)
		}
	case endTagToken:
		switch t.Atom {
		case atom.Optgroup:
			if c.getCurrentNode().isHTML(atom.Option) && c.oe.len() > 1 && c.oe.at(c.oe.len()-2).isHTML(atom.Optgroup) {
				c.oe.pop()
			}
			if c.getCurrentNode().isHTML(atom.Optgroup) {
				c.oe.pop()
			} else {
				c.parseError(errUnexpectedEndTag, t.TagName)
			}
		case atom.Option:
			if c.getCurrentNode().isHTML(atom.Option) {
				c.oe.pop()
			} else {
				c.parseError(errUnexpectedEndTag, t.TagName)
			}
		case atom.Select:
			if !c.oe.inSelectScope(atom.Select) {
				c.parseError(errUnexpectedEndTag, t.TagName)
				break
			}
			c.oe.popUntilPopped(atom.Select)
			return false, c.resetInsertionMode()
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
		}
	case endOfFileToken:
		return c.useRulesFor(t, inSelect, inBody)
	}
	return false, inSelect
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inselectintable
func (c *HTMLTreeConstructor) inSelectInTableModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case startTagToken, endTagToken:
		switch t.Atom {
		case atom.Caption, atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr, atom.Td, atom.Th:
			if t.TokenType == startTagToken {
				c.parseError(errUnexpectedStartTag, t.TagName)
			} else {
				c.parseError(errUnexpectedEndTag, t.TagName)
				if !c.oe.inTableScope(t.Atom) {
					return false, inSelectInTable
				}
			}
			c.oe.popUntilPopped(atom.Select)
			return true, c.resetInsertionMode()
		}
	}
	return c.useRulesFor(t, inSelectInTable, inSelect)
}
