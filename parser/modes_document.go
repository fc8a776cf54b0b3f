package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
func (c *HTMLTreeConstructor) initialModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		_, rest := splitLeadingWhitespace(t.Data)
		if rest == "" {
			return false, initial
		}
		t.Data = rest
	case commentToken:
		c.insertCommentAt(c.doc.Root(), t.Data)
		return false, initial
	case docTypeToken:
		if !isConformingDoctype(t) {
			c.parseError(errNonConformingDoctype, t.TagName)
		}
		var ids []dom.Attr
		if t.HasPublicIdentifier {
			ids = append(ids, dom.Attr{Name: "public", Value: t.PublicIdentifier})
		}
		if t.HasSystemIdentifier {
			ids = append(ids, dom.Attr{Name: "system", Value: t.SystemIdentifier})
		}
		c.doc.AppendChild(c.doc.Root(), c.doc.CreateDoctype(t.TagName, ids))
		c.doc.Mode = quirksModeFor(t, c.config.iframeSrcdoc)
		return false, beforeHTML
	}

	if !c.config.iframeSrcdoc {
		c.parseError(errMissingDoctype)
		c.doc.Mode = dom.Quirks
	}
	return true, beforeHTML
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-html-insertion-mode
func (c *HTMLTreeConstructor) beforeHTMLModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, beforeHTML
	case commentToken:
		c.insertCommentAt(c.doc.Root(), t.Data)
		return false, beforeHTML
	case characterToken:
		_, rest := splitLeadingWhitespace(t.Data)
		if rest == "" {
			return false, beforeHTML
		}
		t.Data = rest
	case startTagToken:
		if t.Atom == atom.Html {
			item := c.createElementForToken(t, dom.HTML)
			c.doc.AppendChild(c.doc.Root(), item.id)
			c.oe.push(item)
			return false, beforeHead
		}
	case endTagToken:
		switch t.Atom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, beforeHTML
		}
	}

	item := c.createElementForToken(&Token{TokenType: startTagToken, TagName: "html", Atom: atom.Html}, dom.HTML)
	c.doc.AppendChild(c.doc.Root(), item.id)
	c.oe.push(item)
	return true, beforeHead
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-before-head-insertion-mode
func (c *HTMLTreeConstructor) beforeHeadModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		_, rest := splitLeadingWhitespace(t.Data)
		if rest == "" {
			return false, beforeHead
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t.Data)
		return false, beforeHead
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, beforeHead
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, beforeHead, inBody)
		case atom.Head:
			c.setHead(c.insertHTMLElementForToken(t))
			return false, inHead
		}
	case endTagToken:
		switch t.Atom {
		case atom.Head, atom.Body, atom.Html, atom.Br:
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, beforeHead
		}
	}

	c.setHead(c.insertHTMLElement(atom.Head))
	return true, inHead
}

func (c *HTMLTreeConstructor) setHead(item stackItem) {
	c.headElementPointer = item.id
	c.oe.head = item.id
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inhead
func (c *HTMLTreeConstructor) inHeadModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		c.insertCharacters(ws)
		if rest == "" {
			return false, inHead
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t.Data)
		return false, inHead
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, inHead
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, inHead, inBody)
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta:
			c.insertHTMLElementForToken(t)
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
			return false, inHead
		case atom.Title:
			return c.parseGenericRCDATAElement(t)
		case atom.Noscript:
			if c.config.scripting {
				return c.parseGenericRawTextElement(t)
			}
			c.insertHTMLElementForToken(t)
			return false, inHeadNoScript
		case atom.Noframes, atom.Style:
			return c.parseGenericRawTextElement(t)
		case atom.Script:
			c.insertHTMLElementForToken(t)
			c.switchTokenizer(scriptDataState)
			c.originalInsertionMode = c.mode
			return false, text
		case atom.Head:
			c.parseError(errUnexpectedStartTag, t.TagName)
			return false, inHead
		}
	case endTagToken:
		switch t.Atom {
		case atom.Head:
			c.oe.pop()
			return false, afterHead
		case atom.Body, atom.Html, atom.Br:
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inHead
		}
	}

	c.oe.pop()
	return true, afterHead
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inheadnoscript
func (c *HTMLTreeConstructor) inHeadNoScriptModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, inHeadNoScript
	case commentToken:
		return c.useRulesFor(t, inHeadNoScript, inHead)
	case characterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		c.insertCharacters(ws)
		if rest == "" {
			return false, inHeadNoScript
		}
		t.Data = rest
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, inHeadNoScript, inBody)
		case atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noframes, atom.Style:
			return c.useRulesFor(t, inHeadNoScript, inHead)
		case atom.Head, atom.Noscript:
			c.parseError(errUnexpectedStartTag, t.TagName)
			return false, inHeadNoScript
		}
	case endTagToken:
		switch t.Atom {
		case atom.Noscript:
			c.oe.pop()
			return false, inHead
		case atom.Br:
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, inHeadNoScript
		}
	}

	c.parseError(errUnexpectedCharacters)
	c.oe.pop()
	return true, inHead
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-head-insertion-mode
func (c *HTMLTreeConstructor) afterHeadModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		c.insertCharacters(ws)
		if rest == "" {
			return false, afterHead
		}
		t.Data = rest
	case commentToken:
		c.insertComment(t.Data)
		return false, afterHead
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, afterHead
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, afterHead, inBody)
		case atom.Body:
			c.insertHTMLElementForToken(t)
			c.framesetOK = false
			return false, inBody
		case atom.Frameset:
			c.insertHTMLElementForToken(t)
			return false, inFrameset
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta, atom.Noframes, atom.Script,
			atom.Style, atom.Title:
			c.parseError(errUnexpectedStartTag, t.TagName)
			head := newStackItem(c.headElementPointer, dom.HTML, "head")
			c.oe.push(head)
			reprocess, next := c.useRulesFor(t, afterHead, inHead)
			c.oe.remove(head.id)
			return reprocess, next
		case atom.Head:
			c.parseError(errUnexpectedStartTag, t.TagName)
			return false, afterHead
		}
	case endTagToken:
		switch t.Atom {
		case atom.Body, atom.Html, atom.Br:
		default:
			c.parseError(errUnexpectedEndTag, t.TagName)
			return false, afterHead
		}
	}

	c.insertHTMLElement(atom.Body)
	return true, inBody
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-incdata
func (c *HTMLTreeConstructor) textModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		c.insertCharacters(t.Data)
		return false, text
	case endOfFileToken:
		c.parseError(errUnclosedElements, c.getCurrentNode().name)
		c.oe.pop()
		return true, c.originalInsertionMode
	case endTagToken:
		c.oe.pop()
		return false, c.originalInsertionMode
	}
	return false, text
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterbody
func (c *HTMLTreeConstructor) afterBodyModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		if isAllWhitespace(t.Data) {
			return c.useRulesFor(t, afterBody, inBody)
		}
	case commentToken:
		c.insertCommentAt(c.oe.at(0).id, t.Data)
		return false, afterBody
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, afterBody
	case startTagToken:
		if t.Atom == atom.Html {
			return c.useRulesFor(t, afterBody, inBody)
		}
	case endTagToken:
		if t.Atom == atom.Html {
			if c.context != nil {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, afterBody
			}
			return false, afterAfterBody
		}
	case endOfFileToken:
		return c.stopParsing()
	}

	c.parseError(errUnexpectedCharacters)
	return true, inBody
}

// onlyWhitespace keeps the whitespace characters of s and drops the rest.
func onlyWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(whitespace, r) {
			return r
		}
		return -1
	}, s)
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inframeset
func (c *HTMLTreeConstructor) inFramesetModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		ws := onlyWhitespace(t.Data)
		if len(ws) != len(t.Data) {
			c.parseError(errUnexpectedCharacters)
		}
		c.insertCharacters(ws)
		return false, inFrameset
	case commentToken:
		c.insertComment(t.Data)
		return false, inFrameset
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, inFrameset
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, inFrameset, inBody)
		case atom.Frameset:
			c.insertHTMLElementForToken(t)
			return false, inFrameset
		case atom.Frame:
			c.insertHTMLElementForToken(t)
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
			return false, inFrameset
		case atom.Noframes:
			return c.useRulesFor(t, inFrameset, inHead)
		}
	case endTagToken:
		if t.Atom == atom.Frameset {
			if c.oe.len() == 1 {
				c.parseError(errUnexpectedEndTag, t.TagName)
				return false, inFrameset
			}
			c.oe.pop()
			if c.context == nil && !c.getCurrentNode().isHTML(atom.Frameset) {
				return false, afterFrameset
			}
			return false, inFrameset
		}
	case endOfFileToken:
		if c.oe.len() != 1 {
			c.parseError(errUnclosedElements, c.getCurrentNode().name)
		}
		return c.stopParsing()
	}

	c.parseError(errUnexpectedStartTag, t.TagName)
	return false, inFrameset
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-afterframeset
func (c *HTMLTreeConstructor) afterFramesetModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		ws := onlyWhitespace(t.Data)
		if len(ws) != len(t.Data) {
			c.parseError(errUnexpectedCharacters)
		}
		c.insertCharacters(ws)
		return false, afterFrameset
	case commentToken:
		c.insertComment(t.Data)
		return false, afterFrameset
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
		return false, afterFrameset
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, afterFrameset, inBody)
		case atom.Noframes:
			return c.useRulesFor(t, afterFrameset, inHead)
		}
	case endTagToken:
		if t.Atom == atom.Html {
			return false, afterAfterFrameset
		}
	case endOfFileToken:
		return c.stopParsing()
	}

	c.parseError(errUnexpectedStartTag, t.TagName)
	return false, afterFrameset
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-body-insertion-mode
func (c *HTMLTreeConstructor) afterAfterBodyModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case commentToken:
		c.insertCommentAt(c.doc.Root(), t.Data)
		return false, afterAfterBody
	case docTypeToken:
		return c.useRulesFor(t, afterAfterBody, inBody)
	case characterToken:
		if isAllWhitespace(t.Data) {
			return c.useRulesFor(t, afterAfterBody, inBody)
		}
	case startTagToken:
		if t.Atom == atom.Html {
			return c.useRulesFor(t, afterAfterBody, inBody)
		}
	case endOfFileToken:
		return c.stopParsing()
	}

	c.parseError(errUnexpectedCharacters)
	return true, inBody
}

// https://html.spec.whatwg.org/multipage/parsing.html#the-after-after-frameset-insertion-mode
func (c *HTMLTreeConstructor) afterAfterFramesetModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case commentToken:
		c.insertCommentAt(c.doc.Root(), t.Data)
		return false, afterAfterFrameset
	case docTypeToken:
		return c.useRulesFor(t, afterAfterFrameset, inBody)
	case characterToken:
		ws := onlyWhitespace(t.Data)
		if len(ws) != len(t.Data) {
			c.parseError(errUnexpectedCharacters)
		}
		if ws == "" {
			return false, afterAfterFrameset
		}
		t.Data = ws
		return c.useRulesFor(t, afterAfterFrameset, inBody)
	case startTagToken:
		switch t.Atom {
		case atom.Html:
			return c.useRulesFor(t, afterAfterFrameset, inBody)
		case atom.Noframes:
			return c.useRulesFor(t, afterAfterFrameset, inHead)
		}
	case endOfFileToken:
		return c.stopParsing()
	}

	c.parseError(errUnexpectedStartTag, t.TagName)
	return false, afterAfterFrameset
}
