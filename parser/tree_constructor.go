package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/atom"
)

const whitespace = "\t\n\f\r "

// Bounds of the adoption agency loops.
const (
	adoptionOuterLoopLimit = 8
	adoptionInnerLoopLimit = 3
)

type insertionMode uint

const (
	initial insertionMode = iota
	beforeHTML
	beforeHead
	inHead
	inHeadNoScript
	afterHead
	inBody
	text
	inTable
	inTableText
	inCaption
	inColumnGroup
	inTableBody
	inRow
	inCell
	inSelect
	inSelectInTable
	inForeignContent
	afterBody
	inFrameset
	afterFrameset
	afterAfterBody
	afterAfterFrameset
)

var insertionModeNames = [...]string{
	initial:            "initial",
	beforeHTML:         "before html",
	beforeHead:         "before head",
	inHead:             "in head",
	inHeadNoScript:     "in head noscript",
	afterHead:          "after head",
	inBody:             "in body",
	text:               "text",
	inTable:            "in table",
	inTableText:        "in table text",
	inCaption:          "in caption",
	inColumnGroup:      "in column group",
	inTableBody:        "in table body",
	inRow:              "in row",
	inCell:             "in cell",
	inSelect:           "in select",
	inSelectInTable:    "in select in table",
	inForeignContent:   "in foreign content",
	afterBody:          "after body",
	inFrameset:         "in frameset",
	afterFrameset:      "after frameset",
	afterAfterBody:     "after after body",
	afterAfterFrameset: "after after frameset",
}

func (m insertionMode) String() string {
	if int(m) < len(insertionModeNames) {
		return insertionModeNames[m]
	}
	return "unknown"
}

type treeConstructionModeHandler func(t *Token) (bool, insertionMode)

// HTMLTreeConstructor holds the state for various state of the tree construction phase.
type HTMLTreeConstructor struct {
	doc                      *dom.Document
	config                   htmlParserConfig
	oe                       *openElements
	activeFormattingElements activeFormatting
	mode                     insertionMode
	originalInsertionMode    insertionMode
	headElementPointer       dom.NodeID
	formElementPointer       dom.NodeID
	framesetOK               bool
	fosterParenting          bool
	pendingTableCharacters   strings.Builder
	mappings                 map[insertionMode]treeConstructionModeHandler

	// context is the context element of a fragment parse. It lives in the
	// arena but is never attached to the tree.
	context *stackItem

	tok                     *Token
	selfClosingAcknowledged bool
	nextTokenizerState      *tokenizerState
	skipLeadingNewline      bool
	stopped                 bool
}

// NewHTMLTreeConstructor creates an HTMLTreeConstructor that builds into doc.
func NewHTMLTreeConstructor(doc *dom.Document, config htmlParserConfig) *HTMLTreeConstructor {
	c := &HTMLTreeConstructor{
		doc:                doc,
		config:             config,
		oe:                 newOpenElements(),
		mode:               initial,
		headElementPointer: dom.Nil,
		formElementPointer: dom.Nil,
		framesetOK:         true,
	}
	c.createMappings()
	return c
}

func (c *HTMLTreeConstructor) createMappings() {
	c.mappings = map[insertionMode]treeConstructionModeHandler{
		initial:            c.initialModeHandler,
		beforeHTML:         c.beforeHTMLModeHandler,
		beforeHead:         c.beforeHeadModeHandler,
		inHead:             c.inHeadModeHandler,
		inHeadNoScript:     c.inHeadNoScriptModeHandler,
		afterHead:          c.afterHeadModeHandler,
		inBody:             c.inBodyModeHandler,
		text:               c.textModeHandler,
		inTable:            c.inTableModeHandler,
		inTableText:        c.inTableTextModeHandler,
		inCaption:          c.inCaptionModeHandler,
		inColumnGroup:      c.inColumnGroupModeHandler,
		inTableBody:        c.inTableBodyModeHandler,
		inRow:              c.inRowModeHandler,
		inCell:             c.inCellModeHandler,
		inSelect:           c.inSelectModeHandler,
		inSelectInTable:    c.inSelectInTableModeHandler,
		inForeignContent:   c.inForeignContentModeHandler,
		afterBody:          c.afterBodyModeHandler,
		inFrameset:         c.inFramesetModeHandler,
		afterFrameset:      c.afterFramesetModeHandler,
		afterAfterBody:     c.afterAfterBodyModeHandler,
		afterAfterFrameset: c.afterAfterFramesetModeHandler,
	}
}

func (c *HTMLTreeConstructor) log() logrus.FieldLogger {
	return c.config.logger
}

// ProcessToken runs one token through tree construction and returns the
// tokenizer adjustments it asked for.
func (c *HTMLTreeConstructor) ProcessToken(t *Token) *Progress {
	c.tok = t
	c.selfClosingAcknowledged = false
	c.nextTokenizerState = nil

	// A newline right after <pre>, <listing> or <textarea> is dropped.
	if c.skipLeadingNewline {
		c.skipLeadingNewline = false
		if t.TokenType == characterToken {
			t.Data = strings.TrimPrefix(t.Data, "\n")
			if t.Data == "" {
				return &Progress{AllowCDATA: c.allowCDATA()}
			}
		}
	}

	c.log().WithFields(logrus.Fields{
		"token": t.String(),
		"mode":  c.mode.String(),
	}).Debug("tree construction")

	for reprocess := true; reprocess && !c.stopped; {
		var next insertionMode
		if c.useForeignContentRules(t) {
			reprocess, next = c.inForeignContentModeHandler(t)
		} else {
			reprocess, next = c.mappings[c.mode](t)
		}
		if next != c.mode {
			c.log().WithFields(logrus.Fields{
				"from": c.mode.String(),
				"to":   next.String(),
			}).Debug("insertion mode")
		}
		c.mode = next
	}

	if t.TokenType == startTagToken && t.SelfClosing && !c.selfClosingAcknowledged {
		c.parseError(errNonVoidHTMLElementStartTagWithTrailSolid, t.TagName)
	}

	return &Progress{
		TokenizerState: c.nextTokenizerState,
		AllowCDATA:     c.allowCDATA(),
	}
}

// allowCDATA reports whether a CDATA section would be read as such. It is
// only the case inside foreign elements.
func (c *HTMLTreeConstructor) allowCDATA() bool {
	if c.oe.len() == 0 {
		return false
	}
	return c.adjustedCurrentNode().ns != dom.HTML
}

func (c *HTMLTreeConstructor) parseError(code ErrorCode, args ...string) {
	e := ParseError{Code: code, Args: args}
	if c.tok != nil {
		e.Line, e.Column = c.tok.Line, c.tok.Column
	}
	c.log().WithFields(logrus.Fields{
		"code":   string(code),
		"line":   e.Line,
		"column": e.Column,
	}).Debug("parse error")
	if c.config.onError != nil {
		c.config.onError(e)
	}
}

// switchTokenizer asks the tokenizer to continue in state s.
func (c *HTMLTreeConstructor) switchTokenizer(s tokenizerState) {
	c.nextTokenizerState = &s
}

func (c *HTMLTreeConstructor) acknowledgeSelfClosingTag() {
	c.selfClosingAcknowledged = true
}

func (c *HTMLTreeConstructor) getCurrentNode() stackItem {
	return c.oe.top()
}

// https://html.spec.whatwg.org/multipage/parsing.html#adjusted-current-node
func (c *HTMLTreeConstructor) adjustedCurrentNode() stackItem {
	if c.context != nil && c.oe.len() == 1 {
		return *c.context
	}
	return c.oe.top()
}

// https://html.spec.whatwg.org/multipage/parsing.html#appropriate-place-for-inserting-a-node
func (c *HTMLTreeConstructor) appropriatePlaceForInsertion(target stackItem) (parent, before dom.NodeID) {
	if !c.fosterParenting || !target.isHTML(atom.Table, atom.Tbody, atom.Tfoot, atom.Thead, atom.Tr) {
		return target.id, dom.Nil
	}

	lastTable := c.oe.findIndex(atom.Table)
	if lastTemplate := c.oe.findIndex(atom.Template); lastTemplate != -1 && lastTemplate > lastTable {
		return c.oe.at(lastTemplate).id, dom.Nil
	}
	if lastTable == -1 {
		return c.oe.at(0).id, dom.Nil
	}
	table := c.oe.at(lastTable).id
	if p := c.doc.Parent(table); p != dom.Nil {
		return p, table
	}
	return c.oe.at(lastTable - 1).id, dom.Nil
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-comment
func (c *HTMLTreeConstructor) insertComment(data string) {
	parent, before := c.appropriatePlaceForInsertion(c.getCurrentNode())
	c.doc.InsertBefore(parent, c.doc.CreateComment(data), before)
}

// insertCommentAt appends a comment as the last child of parent.
func (c *HTMLTreeConstructor) insertCommentAt(parent dom.NodeID, data string) {
	c.doc.AppendChild(parent, c.doc.CreateComment(data))
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-character
func (c *HTMLTreeConstructor) insertCharacters(data string) {
	if data == "" {
		return
	}
	parent, before := c.appropriatePlaceForInsertion(c.getCurrentNode())
	if c.doc.Node(parent).Type == dom.DocumentNode {
		return
	}
	c.doc.InsertTextBefore(parent, before, data)
}

// createElementForToken creates a detached element from a tag token.
// https://html.spec.whatwg.org/multipage/parsing.html#create-an-element-for-the-token
func (c *HTMLTreeConstructor) createElementForToken(t *Token, ns dom.Namespace) stackItem {
	var attrs []dom.Attr
	if len(t.Attributes) > 0 {
		attrs = append(attrs, t.Attributes...)
	}
	id := c.doc.CreateElement(ns, t.TagName, attrs)
	item := stackItem{id: id, ns: ns, name: t.TagName, atom: t.Atom}
	if t.Atom == 0 || ns != dom.HTML {
		item.atom = atom.Lookup([]byte(t.TagName))
	}
	return item
}

// https://html.spec.whatwg.org/multipage/parsing.html#insert-a-foreign-element
func (c *HTMLTreeConstructor) insertForeignElementForToken(t *Token, ns dom.Namespace) stackItem {
	parent, before := c.appropriatePlaceForInsertion(c.getCurrentNode())
	item := c.createElementForToken(t, ns)
	c.doc.InsertBefore(parent, item.id, before)
	c.oe.push(item)
	return item
}

func (c *HTMLTreeConstructor) insertHTMLElementForToken(t *Token) stackItem {
	return c.insertForeignElementForToken(t, dom.HTML)
}

// insertHTMLElement inserts an element for a tag that was implied rather
// than seen.
func (c *HTMLTreeConstructor) insertHTMLElement(a atom.Atom) stackItem {
	return c.insertHTMLElementForToken(&Token{TokenType: startTagToken, TagName: a.String(), Atom: a})
}

func (c *HTMLTreeConstructor) insertFormattingElementForToken(t *Token) {
	item := c.insertHTMLElementForToken(t)
	c.activeFormattingElements.push(item, c.doc.Node(item.id).Attrs)
}

// mergeAttributes adds the token's attributes that id does not have yet.
func (c *HTMLTreeConstructor) mergeAttributes(id dom.NodeID, t *Token) {
	n := c.doc.Node(id)
	for _, a := range t.Attributes {
		if _, ok := n.Attr(a.Name); !ok {
			n.Attrs = append(n.Attrs, a)
		}
	}
}

// useRulesFor processes t with the rules of expectedState while staying in
// returnState, unless those rules switched modes themselves.
func (c *HTMLTreeConstructor) useRulesFor(t *Token, returnState, expectedState insertionMode) (bool, insertionMode) {
	reprocess, nextstate := c.mappings[expectedState](t)

	// if the next state is the same as the expected state, this means that mode handler didn't
	// change the state. We should use the current return state.
	if nextstate == expectedState {
		return reprocess, returnState
	}
	return reprocess, nextstate
}

// https://html.spec.whatwg.org/multipage/parsing.html#reconstruct-the-active-formatting-elements
func (c *HTMLTreeConstructor) reconstructActiveFormattingElements() {
	afe := &c.activeFormattingElements
	if afe.len() == 0 {
		return
	}
	last := afe.at(afe.len() - 1)
	if last.marker || c.oe.contains(last.id) {
		return
	}

	i := afe.len() - 1
	for i > 0 {
		e := afe.at(i - 1)
		if e.marker || c.oe.contains(e.id) {
			break
		}
		i--
	}

	for ; i < afe.len(); i++ {
		parent, before := c.appropriatePlaceForInsertion(c.getCurrentNode())
		clone := c.doc.CloneElement(afe.at(i).id)
		c.doc.InsertBefore(parent, clone, before)
		item := afe.at(i).stackItem
		item.id = clone
		c.oe.push(item)
		afe.replace(i, item)
	}
}

// adoptionAgencyAlgorithm closes a formatting element, repairing misnested
// markup around it. It returns true when the end tag has to be handled
// like any other end tag instead.
// https://html.spec.whatwg.org/multipage/parsing.html#adoption-agency-algorithm
func (c *HTMLTreeConstructor) adoptionAgencyAlgorithm(t *Token) bool {
	afe := &c.activeFormattingElements
	subject := t.TagName

	if cur := c.getCurrentNode(); cur.ns == dom.HTML && cur.name == subject && afe.index(cur.id) == -1 {
		c.oe.pop()
		return false
	}

	for outer := 0; outer < adoptionOuterLoopLimit; outer++ {
		feAfe := afe.lastBeforeMarker(subject)
		if feAfe == -1 {
			return true
		}
		formattingElement := afe.at(feAfe).stackItem

		feIndex := c.oe.index(formattingElement.id)
		if feIndex == -1 {
			c.parseError(errFormattingNotOpen, subject)
			afe.removeAt(feAfe)
			return false
		}
		if !c.oe.nodeInScope(formattingElement.id) {
			c.parseError(errFormattingNotInScope, subject)
			return false
		}
		if formattingElement.id != c.getCurrentNode().id {
			c.parseError(errMisnestedFormatting, subject)
		}

		fbIndex := c.oe.furthestBlockForFormattingElement(feIndex)
		if fbIndex == -1 {
			c.oe.popUntilIndex(feIndex)
			afe.removeAt(feAfe)
			return false
		}
		furthestBlock := c.oe.at(fbIndex)
		commonAncestor := c.oe.at(feIndex - 1)
		bookmark := feAfe

		node, lastNode := furthestBlock, furthestBlock
		nodeIndex := fbIndex
		for inner := 1; ; inner++ {
			nodeIndex--
			node = c.oe.at(nodeIndex)
			if node.id == formattingElement.id {
				break
			}

			nodeAfe := afe.index(node.id)
			if inner > adoptionInnerLoopLimit && nodeAfe != -1 {
				afe.removeAt(nodeAfe)
				if nodeAfe < bookmark {
					bookmark--
				}
				nodeAfe = -1
			}
			if nodeAfe == -1 {
				c.oe.remove(node.id)
				continue
			}

			clone := node
			clone.id = c.doc.CloneElement(node.id)
			afe.replace(nodeAfe, clone)
			c.oe.replace(nodeIndex, clone)
			node = clone

			if lastNode.id == furthestBlock.id {
				bookmark = nodeAfe + 1
			}
			c.doc.AppendChild(node.id, lastNode.id)
			lastNode = node
		}

		parent, before := c.appropriatePlaceForInsertion(commonAncestor)
		c.doc.InsertBefore(parent, lastNode.id, before)

		clone := formattingElement
		clone.id = c.doc.CloneElement(formattingElement.id)
		c.doc.ReparentChildren(clone.id, furthestBlock.id)
		c.doc.AppendChild(furthestBlock.id, clone.id)

		feAfe = afe.index(formattingElement.id)
		entry := afe.at(feAfe)
		entry.stackItem = clone
		if feAfe < bookmark {
			bookmark--
		}
		afe.removeAt(feAfe)
		afe.insertAt(bookmark, entry)

		c.oe.remove(formattingElement.id)
		c.oe.insertAt(c.oe.index(furthestBlock.id)+1, clone)
	}
	return false
}

// anyOtherEndTag is the generic end tag rule of the in body mode.
// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inbody
func (c *HTMLTreeConstructor) anyOtherEndTag(t *Token) {
	for i := c.oe.len() - 1; i >= 0; i-- {
		node := c.oe.at(i)
		if node.ns == dom.HTML && node.name == t.TagName {
			c.oe.generateImpliedEndTags(t.Atom)
			if c.getCurrentNode().id != node.id {
				c.parseError(errUnexpectedEndTag, t.TagName)
			}
			c.oe.popUntilIndex(i)
			return
		}
		if isSpecial(node) {
			c.parseError(errUnexpectedEndTag, t.TagName)
			return
		}
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#close-a-p-element
func (c *HTMLTreeConstructor) closePElement() {
	c.oe.generateImpliedEndTags(atom.P)
	if !c.getCurrentNode().isHTML(atom.P) {
		c.parseError(errEndTagTooEarly, "p")
	}
	c.oe.popUntilPopped(atom.P)
}

// closePElementInButtonScope closes an open p element, if there is one.
func (c *HTMLTreeConstructor) closePElementInButtonScope() {
	if c.oe.inButtonScope(atom.P) {
		c.closePElement()
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#reset-the-insertion-mode-appropriately
func (c *HTMLTreeConstructor) resetInsertionMode() insertionMode {
	for i := c.oe.len() - 1; i >= 0; i-- {
		node := c.oe.at(i)
		last := i == 0
		if last && c.context != nil {
			node = *c.context
		}
		if node.ns != dom.HTML {
			if last {
				return inBody
			}
			continue
		}

		switch node.atom {
		case atom.Select:
			if !last {
				for j := i - 1; j > 0; j-- {
					ancestor := c.oe.at(j)
					if ancestor.isHTML(atom.Template) {
						break
					}
					if ancestor.isHTML(atom.Table) {
						return inSelectInTable
					}
				}
			}
			return inSelect
		case atom.Td, atom.Th:
			if !last {
				return inCell
			}
		case atom.Tr:
			return inRow
		case atom.Tbody, atom.Thead, atom.Tfoot:
			return inTableBody
		case atom.Caption:
			return inCaption
		case atom.Colgroup:
			return inColumnGroup
		case atom.Table:
			return inTable
		case atom.Head:
			if !last {
				return inHead
			}
		case atom.Body:
			return inBody
		case atom.Frameset:
			return inFrameset
		case atom.Html:
			if c.headElementPointer == dom.Nil {
				return beforeHead
			}
			return afterHead
		}
		if last {
			return inBody
		}
	}
	return inBody
}

// https://html.spec.whatwg.org/multipage/parsing.html#generic-raw-text-element-parsing-algorithm
func (c *HTMLTreeConstructor) parseGenericRawTextElement(t *Token) (bool, insertionMode) {
	c.insertHTMLElementForToken(t)
	c.switchTokenizer(rawTextState)
	c.originalInsertionMode = c.mode
	return false, text
}

// https://html.spec.whatwg.org/multipage/parsing.html#generic-rcdata-element-parsing-algorithm
func (c *HTMLTreeConstructor) parseGenericRCDATAElement(t *Token) (bool, insertionMode) {
	c.insertHTMLElementForToken(t)
	c.switchTokenizer(rcDataState)
	c.originalInsertionMode = c.mode
	return false, text
}

// stopParsing pops everything off the stack; no further tokens are looked
// at.
// https://html.spec.whatwg.org/multipage/parsing.html#stop-parsing
func (c *HTMLTreeConstructor) stopParsing() (bool, insertionMode) {
	for c.oe.len() > 0 {
		c.oe.pop()
	}
	c.stopped = true
	return false, c.mode
}

// splitLeadingWhitespace splits s after its leading run of whitespace.
func splitLeadingWhitespace(s string) (ws, rest string) {
	rest = strings.TrimLeft(s, whitespace)
	return s[:len(s)-len(rest)], rest
}

func isAllWhitespace(s string) bool {
	return strings.TrimLeft(s, whitespace) == ""
}

// dropNulls removes NUL characters, reporting each one.
func (c *HTMLTreeConstructor) dropNulls(s string) string {
	n := strings.Count(s, "\x00")
	if n == 0 {
		return s
	}
	for ; n > 0; n-- {
		c.parseError(errUnexpectedNullCharacter)
	}
	return strings.ReplaceAll(s, "\x00", "")
}

// reportUnclosed raises the end-of-file error when an element other than
// the ones allowed to stay open is still on the stack.
func (c *HTMLTreeConstructor) reportUnclosed() {
	for _, item := range c.oe.items {
		if !item.isHTML(atom.Dd, atom.Dt, atom.Li, atom.Optgroup, atom.Option, atom.P, atom.Rb, atom.Rp, atom.Rt,
			atom.Rtc, atom.Tbody, atom.Td, atom.Tfoot, atom.Th, atom.Thead, atom.Tr, atom.Body, atom.Html) {
			c.parseError(errUnclosedElements, item.name)
			return
		}
	}
}
