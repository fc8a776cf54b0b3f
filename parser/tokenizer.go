package parser

import (
	"strconv"
	"strings"
)

// HTMLTokenizer holds state for the various state of the tokenizer.
type HTMLTokenizer struct {
	in                        *inputStream
	returnState, currentState tokenizerState
	tokenBuilder              *TokenBuilder
	emittedTokens             []Token
	lastEmittedStartTagName   string

	// text collects character data until some other token is emitted, so
	// that a run of text always reaches the tree builder as one token no
	// matter how the input was chunked.
	text              strings.Builder
	textLine, textCol int
	stepLine, stepCol int
	allowCDATA        bool
	suspended         bool
	done              bool
	onError           func(ParseError)
}

// NewHTMLTokenizer creates a tokenizer reading from in. Parse errors are
// passed to onError, which may be nil.
func NewHTMLTokenizer(in *inputStream, onError func(ParseError)) *HTMLTokenizer {
	return &HTMLTokenizer{
		in:           in,
		tokenBuilder: newTokenBuilder(),
		onError:      onError,
	}
}

// a stateHandler is a func that takes in a rune and a bool representing the endoffile
// and returns the next state to transition to.
type parserStateHandler func(in rune, eof bool) (bool, tokenizerState)

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case rcDataState:
		return p.rcDataStateParser
	case rawTextState:
		return p.rawTextStateParser
	case scriptDataState:
		return p.scriptDataStateParser
	case plaintextState:
		return p.plaintextStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case rcDataLessThanSignState:
		return p.rcDataLessThanSignStateParser
	case rcDataEndTagOpenState:
		return p.rcDataEndTagOpenStateParser
	case rcDataEndTagNameState:
		return p.rcDataEndTagNameStateParser
	case rawTextLessThanSignState:
		return p.rawTextLessThanSignStateParser
	case rawTextEndTagOpenState:
		return p.rawTextEndTagOpenStateParser
	case rawTextEndTagNameState:
		return p.rawTextEndTagNameStateParser
	case scriptDataLessThanSignState:
		return p.scriptDataLessThanSignStateParser
	case scriptDataEndTagOpenState:
		return p.scriptDataEndTagOpenStateParser
	case scriptDataEndTagNameState:
		return p.scriptDataEndTagNameStateParser
	case scriptDataEscapeStartState:
		return p.scriptDataEscapeStartStateParser
	case scriptDataEscapeStartDashState:
		return p.scriptDataEscapeStartDashStateParser
	case scriptDataEscapedState:
		return p.scriptDataEscapedStateParser
	case scriptDataEscapedDashState:
		return p.scriptDataEscapedDashStateParser
	case scriptDataEscapedDashDashState:
		return p.scriptDataEscapedDashDashStateParser
	case scriptDataEscapedLessThanSignState:
		return p.scriptDataEscapedLessThanSignStateParser
	case scriptDataEscapedEndTagOpenState:
		return p.scriptDataEscapedEndTagOpenStateParser
	case scriptDataEscapedEndTagNameState:
		return p.scriptDataEscapedEndTagNameStateParser
	case scriptDataDoubleEscapeStartState:
		return p.scriptDataDoubleEscapeStartStateParser
	case scriptDataDoubleEscapedState:
		return p.scriptDataDoubleEscapedStateParser
	case scriptDataDoubleEscapedDashState:
		return p.scriptDataDoubleEscapedDashStateParser
	case scriptDataDoubleEscapedDashDashState:
		return p.scriptDataDoubleEscapedDashDashStateParser
	case scriptDataDoubleEscapedLessThanSignState:
		return p.scriptDataDoubleEscapedLessThanSignStateParser
	case scriptDataDoubleEscapeEndState:
		return p.scriptDataDoubleEscapeEndStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	case markupDeclarationOpenState:
		return p.markupDeclarationOpenStateParser
	case commentStartState:
		return p.commentStartStateParser
	case commentStartDashState:
		return p.commentStartDashStateParser
	case commentState:
		return p.commentStateParser
	case commentLessThanSignState:
		return p.commentLessThanSignStateParser
	case commentLessThanSignBangState:
		return p.commentLessThanSignBangStateParser
	case commentLessThanSignBangDashState:
		return p.commentLessThanSignBangDashStateParser
	case commentLessThanSignBangDashDashState:
		return p.commentLessThanSignBangDashDashStateParser
	case commentEndDashState:
		return p.commentEndDashStateParser
	case commentEndState:
		return p.commentEndStateParser
	case commentEndBangState:
		return p.commentEndBangStateParser
	case doctypeState:
		return p.doctypeStateParser
	case beforeDoctypeNameState:
		return p.beforeDoctypeNameStateParser
	case doctypeNameState:
		return p.doctypeNameStateParser
	case afterDoctypeNameState:
		return p.afterDoctypeNameStateParser
	case afterDoctypePublicKeywordState:
		return p.afterDoctypePublicKeywordStateParser
	case beforeDoctypePublicIdentifierState:
		return p.beforeDoctypePublicIdentifierStateParser
	case doctypePublicIdentifierDoubleQuotedState:
		return p.doctypePublicIdentifierDoubleQuotedStateParser
	case doctypePublicIdentifierSingleQuotedState:
		return p.doctypePublicIdentifierSingleQuotedStateParser
	case afterDoctypePublicIdentifierState:
		return p.afterDoctypePublicIdentifierStateParser
	case betweenDoctypePublicAndSystemIdentifiersState:
		return p.betweenDoctypePublicAndSystemIdentifiersStateParser
	case afterDoctypeSystemKeywordState:
		return p.afterDoctypeSystemKeywordStateParser
	case beforeDoctypeSystemIdentifierState:
		return p.beforeDoctypeSystemIdentifierStateParser
	case doctypeSystemIdentifierDoubleQuotedState:
		return p.doctypeSystemIdentifierDoubleQuotedStateParser
	case doctypeSystemIdentifierSingleQuotedState:
		return p.doctypeSystemIdentifierSingleQuotedStateParser
	case afterDoctypeSystemIdentifierState:
		return p.afterDoctypeSystemIdentifierStateParser
	case bogusDoctypeState:
		return p.bogusDoctypeStateParser
	case cdataSectionState:
		return p.cdataSectionStateParser
	case cdataSectionBracketState:
		return p.cdataSectionBracketStateParser
	case cdataSectionEndState:
		return p.cdataSectionEndStateParser
	case characterReferenceState:
		return p.characterReferenceStateParser
	}

	return nil
}

func isTabOrSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ':
		return true
	}
	return false
}

func isUpperASCII(r rune) bool {
	return 'A' <= r && r <= 'Z'
}

func wasConsumedByAttribute(returnState tokenizerState) bool {
	switch returnState {
	case attributeValueDoubleQuotedState, attributeValueSingleQuotedState, attributeValueUnquotedState:
		return true
	}
	return false
}

func (p *HTMLTokenizer) parseError(code ErrorCode) {
	if p.onError != nil {
		p.onError(ParseError{Code: code, Line: p.stepLine, Column: p.stepCol})
	}
}

// suspend abandons the current step because a lookahead ran into the end
// of the buffered input.
func (p *HTMLTokenizer) suspend() {
	p.suspended = true
}

func (p *HTMLTokenizer) isApprEndTagToken() bool {
	return p.lastEmittedStartTagName != "" && p.lastEmittedStartTagName == p.tokenBuilder.name.String()
}

func (p *HTMLTokenizer) emitRune(r rune) {
	if p.text.Len() == 0 {
		p.textLine, p.textCol = p.stepLine, p.stepCol
	}
	p.text.WriteRune(r)
}

func (p *HTMLTokenizer) emitString(s string) {
	if s == "" {
		return
	}
	if p.text.Len() == 0 {
		p.textLine, p.textCol = p.stepLine, p.stepCol
	}
	p.text.WriteString(s)
}

// emitRun emits r and then every following buffered rune that stop does
// not match.
func (p *HTMLTokenizer) emitRun(r rune, stop func(rune) bool) {
	p.emitRune(r)
	s, _ := p.in.matchUntil(stop)
	p.emitString(s)
}

func (p *HTMLTokenizer) flushText() {
	if p.text.Len() == 0 {
		return
	}
	tok := p.tokenBuilder.CharacterToken(p.text.String())
	tok.Line, tok.Column = p.textLine, p.textCol
	p.emittedTokens = append(p.emittedTokens, tok)
	p.text.Reset()
}

func (p *HTMLTokenizer) emit(tokens ...Token) {
	p.flushText()
	for _, token := range tokens {
		token.Line, token.Column = p.stepLine, p.stepCol
		switch token.TokenType {
		case endTagToken:
			if len(token.Attributes) > 0 {
				p.parseError(errEndTagWithAttributes)
				token.Attributes = nil
			}
			if token.SelfClosing {
				p.parseError(errEndTagWithTrailingSolidus)
				token.SelfClosing = false
			}
		case startTagToken:
			p.lastEmittedStartTagName = token.TagName
		}
		p.emittedTokens = append(p.emittedTokens, token)
	}
}

func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	switch p.tokenBuilder.curTagType {
	case startTag:
		p.emit(p.tokenBuilder.StartTagToken())
	case endTag:
		p.emit(p.tokenBuilder.EndTagToken())
	}

	return dataState
}

func (p *HTMLTokenizer) emitEOF() (bool, tokenizerState) {
	p.emit(p.tokenBuilder.EndOfFileToken())
	return false, dataState
}

// leaveAttributeName drops the attribute being built when its name repeats
// an earlier one on the same tag.
func (p *HTMLTokenizer) leaveAttributeName() {
	if p.tokenBuilder.RemoveDuplicateAttributeName() {
		p.parseError(errDuplicateAttribute)
	}
}

func (p *HTMLTokenizer) newTag(t tagType) {
	p.tokenBuilder.Reset()
	p.tokenBuilder.curTagType = t
}

func isDataSpecial(r rune) bool { return r == '&' || r == '<' || r == 0 }

func isRawTextSpecial(r rune) bool { return r == '<' || r == 0 }

func isPlaintextSpecial(r rune) bool { return r == 0 }

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = dataState
		return false, characterReferenceState
	case '<':
		return false, tagOpenState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune(r)
		return false, dataState
	default:
		p.emitRun(r, isDataSpecial)
		return false, dataState
	}
}

func (p *HTMLTokenizer) rcDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '&':
		p.returnState = rcDataState
		return false, characterReferenceState
	case '<':
		return false, rcDataLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, rcDataState
	default:
		p.emitRun(r, isDataSpecial)
		return false, rcDataState
	}
}

func (p *HTMLTokenizer) rawTextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, rawTextLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, rawTextState
	default:
		p.emitRun(r, isRawTextSpecial)
		return false, rawTextState
	}
}

func (p *HTMLTokenizer) scriptDataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '<':
		return false, scriptDataLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataState
	default:
		p.emitRun(r, isRawTextSpecial)
		return false, scriptDataState
	}
}

func (p *HTMLTokenizer) plaintextStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.emitEOF()
	}
	switch r {
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, plaintextState
	default:
		p.emitRun(r, isPlaintextSpecial)
		return false, plaintextState
	}
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFBeforeTagName)
		p.emitRune('<')
		return p.emitEOF()
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case isASCIIAlpha(r):
		p.newTag(startTag)
		return true, tagNameState
	case r == '?':
		p.parseError(errUnexpectedQuestionMarkInsteadOfTagName)
		p.tokenBuilder.Reset()
		return true, bogusCommentState
	default:
		p.parseError(errInvalidFirstCharacterOfTagName)
		p.emitRune('<')
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFBeforeTagName)
		p.emitString("</")
		return p.emitEOF()
	}
	switch {
	case isASCIIAlpha(r):
		p.newTag(endTag)
		return true, tagNameState
	case r == '>':
		p.parseError(errMissingEndTagName)
		return false, dataState
	default:
		p.parseError(errInvalidFirstCharacterOfTagName)
		p.tokenBuilder.Reset()
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	switch {
	case isTabOrSpace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	case isUpperASCII(r):
		p.tokenBuilder.WriteName(r + 0x20)
		return false, tagNameState
	case r == '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteName('�')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteName(r)
		return false, tagNameState
	}
}

// The RCDATA, RAWTEXT and script data end tag states differ only in the
// state they fall back to, so they share these helpers.

func (p *HTMLTokenizer) textLessThanSign(r rune, eof bool, endTagOpen, fallback tokenizerState) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		return false, endTagOpen
	}
	p.emitRune('<')
	return true, fallback
}

func (p *HTMLTokenizer) textEndTagOpen(r rune, eof bool, endTagName, fallback tokenizerState) (bool, tokenizerState) {
	if !eof && isASCIIAlpha(r) {
		p.newTag(endTag)
		return true, endTagName
	}
	p.emitString("</")
	return true, fallback
}

func (p *HTMLTokenizer) textEndTagName(r rune, eof bool, self, fallback tokenizerState) (bool, tokenizerState) {
	anythingElse := func() (bool, tokenizerState) {
		p.emitString("</")
		p.emitString(p.tokenBuilder.TempBuffer())
		return true, fallback
	}
	if eof {
		return anythingElse()
	}
	switch {
	case isTabOrSpace(r):
		if p.isApprEndTagToken() {
			return false, beforeAttributeNameState
		}
	case r == '/':
		if p.isApprEndTagToken() {
			return false, selfClosingStartTagState
		}
	case r == '>':
		if p.isApprEndTagToken() {
			return false, p.emitCurrentTag()
		}
	case isUpperASCII(r):
		p.tokenBuilder.WriteName(r + 0x20)
		p.tokenBuilder.WriteTempBuffer(r)
		return false, self
	case isASCIIAlpha(r):
		p.tokenBuilder.WriteName(r)
		p.tokenBuilder.WriteTempBuffer(r)
		return false, self
	}
	return anythingElse()
}

func (p *HTMLTokenizer) rcDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textLessThanSign(r, eof, rcDataEndTagOpenState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagOpen(r, eof, rcDataEndTagNameState, rcDataState)
}

func (p *HTMLTokenizer) rcDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagName(r, eof, rcDataEndTagNameState, rcDataState)
}

func (p *HTMLTokenizer) rawTextLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textLessThanSign(r, eof, rawTextEndTagOpenState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagOpen(r, eof, rawTextEndTagNameState, rawTextState)
}

func (p *HTMLTokenizer) rawTextEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagName(r, eof, rawTextEndTagNameState, rawTextState)
}

func (p *HTMLTokenizer) scriptDataLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '!' {
		p.emitString("<!")
		return false, scriptDataEscapeStartState
	}
	return p.textLessThanSign(r, eof, scriptDataEndTagOpenState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagOpen(r, eof, scriptDataEndTagNameState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagName(r, eof, scriptDataEndTagNameState, scriptDataState)
}

func (p *HTMLTokenizer) scriptDataEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		p.emitRune('-')
		return false, scriptDataEscapeStartDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapeStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		p.emitRune('-')
		return false, scriptDataEscapedDashDashState
	}
	return true, scriptDataState
}

func (p *HTMLTokenizer) scriptDataEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataEscapedDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataEscapedDashDashState
	case '<':
		return false, scriptDataEscapedLessThanSignState
	case '>':
		p.emitRune('>')
		return false, scriptDataState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
	case r == '/':
		p.tokenBuilder.ResetTempBuffer()
		return false, scriptDataEscapedEndTagOpenState
	case isASCIIAlpha(r):
		p.tokenBuilder.ResetTempBuffer()
		p.emitRune('<')
		return true, scriptDataDoubleEscapeStartState
	}
	p.emitRune('<')
	return true, scriptDataEscapedState
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagOpen(r, eof, scriptDataEscapedEndTagNameState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataEscapedEndTagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.textEndTagName(r, eof, scriptDataEscapedEndTagNameState, scriptDataEscapedState)
}

// doubleEscapeBoundary handles the two states that watch for the word
// "script" to enter or leave double-escaped script data.
func (p *HTMLTokenizer) doubleEscapeBoundary(r rune, eof bool, self, onScript, otherwise tokenizerState) (bool, tokenizerState) {
	switch {
	case eof:
	case isTabOrSpace(r) || r == '/' || r == '>':
		p.emitRune(r)
		if p.tokenBuilder.TempBuffer() == "script" {
			return false, onScript
		}
		return false, otherwise
	case isUpperASCII(r):
		p.tokenBuilder.WriteTempBuffer(r + 0x20)
		p.emitRune(r)
		return false, self
	case isASCIIAlpha(r):
		p.tokenBuilder.WriteTempBuffer(r)
		p.emitRune(r)
		return false, self
	}
	return true, otherwise
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataDoubleEscapeStartState, scriptDataDoubleEscapedState, scriptDataEscapedState)
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataDoubleEscapedDashState
	case '<':
		p.emitRune('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitRune('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInScriptHTMLCommentLikeText)
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.emitRune('-')
		return false, scriptDataDoubleEscapedDashDashState
	case '<':
		p.emitRune('<')
		return false, scriptDataDoubleEscapedLessThanSignState
	case '>':
		p.emitRune('>')
		return false, scriptDataState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.emitRune('�')
		return false, scriptDataDoubleEscapedState
	default:
		p.emitRune(r)
		return false, scriptDataDoubleEscapedState
	}
}

func (p *HTMLTokenizer) scriptDataDoubleEscapedLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '/' {
		p.tokenBuilder.ResetTempBuffer()
		p.emitRune('/')
		return false, scriptDataDoubleEscapeEndState
	}
	return true, scriptDataDoubleEscapedState
}

func (p *HTMLTokenizer) scriptDataDoubleEscapeEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doubleEscapeBoundary(r, eof, scriptDataDoubleEscapeEndState, scriptDataEscapedState, scriptDataDoubleEscapedState)
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof, r == '/', r == '>':
		return true, afterAttributeNameState
	case isTabOrSpace(r):
		return false, beforeAttributeNameState
	case r == '=':
		p.parseError(errUnexpectedEqualsSignBeforeAttributeName)
		p.tokenBuilder.StartAttribute()
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.StartAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof, isTabOrSpace(r), r == '/', r == '>':
		p.leaveAttributeName()
		return true, afterAttributeNameState
	case r == '=':
		p.leaveAttributeName()
		return false, beforeAttributeValueState
	case isUpperASCII(r):
		p.tokenBuilder.WriteAttributeName(r + 0x20)
	case r == '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeName('�')
	case r == '"', r == '\'', r == '<':
		p.parseError(errUnexpectedCharacterInAttributeName)
		p.tokenBuilder.WriteAttributeName(r)
	default:
		p.tokenBuilder.WriteAttributeName(r)
	}
	return false, attributeNameState
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	switch {
	case isTabOrSpace(r):
		return false, afterAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '=':
		return false, beforeAttributeValueState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.tokenBuilder.StartAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case eof:
		return true, attributeValueUnquotedState
	case isTabOrSpace(r):
		return false, beforeAttributeValueState
	case r == '"':
		return false, attributeValueDoubleQuotedState
	case r == '\'':
		return false, attributeValueSingleQuotedState
	case r == '>':
		p.parseError(errMissingAttributeValue)
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) attributeValueQuoted(r rune, eof bool, quote rune, self tokenizerState) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	switch r {
	case quote:
		return false, afterAttributeValueQuotedState
	case '&':
		p.returnState = self
		return false, characterReferenceState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('�')
	default:
		p.tokenBuilder.WriteAttributeValue(r)
	}
	return false, self
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.attributeValueQuoted(r, eof, '"', attributeValueDoubleQuotedState)
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.attributeValueQuoted(r, eof, '\'', attributeValueSingleQuotedState)
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	switch {
	case isTabOrSpace(r):
		return false, beforeAttributeNameState
	case r == '&':
		p.returnState = attributeValueUnquotedState
		return false, characterReferenceState
	case r == '>':
		return false, p.emitCurrentTag()
	case r == '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteAttributeValue('�')
	case r == '"', r == '\'', r == '<', r == '=', r == '`':
		p.parseError(errUnexpectedCharacterInUnquotedAttrValue)
		p.tokenBuilder.WriteAttributeValue(r)
	default:
		p.tokenBuilder.WriteAttributeValue(r)
	}
	return false, attributeValueUnquotedState
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	switch {
	case isTabOrSpace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.parseError(errMissingWhitespaceBetweenAttributes)
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInTag)
		return p.emitEOF()
	}
	if r == '>' {
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	}
	p.parseError(errUnexpectedSolidusInTag)
	return true, beforeAttributeNameState
}

func (p *HTMLTokenizer) emitComment() tokenizerState {
	p.emit(p.tokenBuilder.CommentToken())
	return dataState
}

func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitComment()
		return p.emitEOF()
	}
	switch r {
	case '>':
		return false, p.emitComment()
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteData('�')
	default:
		p.tokenBuilder.WriteData(r)
	}
	return false, bogusCommentState
}

// markupDeclarationOpenStateParser looks past "<!" for "--", "DOCTYPE" or
// "[CDATA[". r is not consumed by this state, so it is pushed back before
// looking ahead.
func (p *HTMLTokenizer) markupDeclarationOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof {
		p.in.unget(1)
	}
	if ok, more := p.in.lookingAt("--", false); more {
		p.suspend()
		return false, markupDeclarationOpenState
	} else if ok {
		p.in.advance(2)
		p.tokenBuilder.Reset()
		return false, commentStartState
	}
	if ok, more := p.in.lookingAt("doctype", true); more {
		p.suspend()
		return false, markupDeclarationOpenState
	} else if ok {
		p.in.advance(7)
		return false, doctypeState
	}
	if ok, more := p.in.lookingAt("[CDATA[", false); more {
		p.suspend()
		return false, markupDeclarationOpenState
	} else if ok {
		p.in.advance(7)
		if p.allowCDATA {
			return false, cdataSectionState
		}
		p.parseError(errCDATAInHTMLContent)
		p.tokenBuilder.Reset()
		p.tokenBuilder.WriteDataString("[CDATA[")
		return false, bogusCommentState
	}
	p.parseError(errIncorrectlyOpenedComment)
	p.tokenBuilder.Reset()
	return false, bogusCommentState
}

func (p *HTMLTokenizer) commentStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == '-':
		return false, commentStartDashState
	case !eof && r == '>':
		p.parseError(errAbruptClosingOfEmptyComment)
		return false, p.emitComment()
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInComment)
		p.emitComment()
		return p.emitEOF()
	}
	switch r {
	case '-':
		return false, commentEndState
	case '>':
		p.parseError(errAbruptClosingOfEmptyComment)
		return false, p.emitComment()
	}
	p.tokenBuilder.WriteData('-')
	return true, commentState
}

func (p *HTMLTokenizer) commentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInComment)
		p.emitComment()
		return p.emitEOF()
	}
	switch r {
	case '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	case '-':
		return false, commentEndDashState
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteData('�')
	default:
		p.tokenBuilder.WriteData(r)
	}
	return false, commentState
}

func (p *HTMLTokenizer) commentLessThanSignStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == '!':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignBangState
	case !eof && r == '<':
		p.tokenBuilder.WriteData(r)
		return false, commentLessThanSignState
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentLessThanSignBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashState
	}
	return true, commentState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' {
		return false, commentLessThanSignBangDashDashState
	}
	return true, commentEndDashState
}

func (p *HTMLTokenizer) commentLessThanSignBangDashDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r != '>' {
		p.parseError(errNestedComment)
	}
	return true, commentEndState
}

func (p *HTMLTokenizer) commentEndDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInComment)
		p.emitComment()
		return p.emitEOF()
	}
	if r == '-' {
		return false, commentEndState
	}
	p.tokenBuilder.WriteData('-')
	return true, commentState
}

func (p *HTMLTokenizer) commentEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInComment)
		p.emitComment()
		return p.emitEOF()
	}
	switch r {
	case '>':
		return false, p.emitComment()
	case '!':
		return false, commentEndBangState
	case '-':
		p.tokenBuilder.WriteData('-')
		return false, commentEndState
	}
	p.tokenBuilder.WriteDataString("--")
	return true, commentState
}

func (p *HTMLTokenizer) commentEndBangStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInComment)
		p.emitComment()
		return p.emitEOF()
	}
	switch r {
	case '-':
		p.tokenBuilder.WriteDataString("--!")
		return false, commentEndDashState
	case '>':
		p.parseError(errIncorrectlyClosedComment)
		return false, p.emitComment()
	}
	p.tokenBuilder.WriteDataString("--!")
	return true, commentState
}

func (p *HTMLTokenizer) emitDoctype() tokenizerState {
	p.emit(p.tokenBuilder.DocTypeToken())
	return dataState
}

// eofInDoctype emits the doctype under construction with force-quirks on,
// then the end of file.
func (p *HTMLTokenizer) eofInDoctype() (bool, tokenizerState) {
	p.parseError(errEOFInDoctype)
	p.tokenBuilder.EnableForceQuirks()
	p.emitDoctype()
	return p.emitEOF()
}

func (p *HTMLTokenizer) doctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.tokenBuilder.Reset()
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, beforeDoctypeNameState
	case r == '>':
		return true, beforeDoctypeNameState
	}
	p.parseError(errMissingWhitespaceBeforeDoctypeName)
	return true, beforeDoctypeNameState
}

func (p *HTMLTokenizer) beforeDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.tokenBuilder.Reset()
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, beforeDoctypeNameState
	case isUpperASCII(r):
		p.tokenBuilder.Reset()
		p.tokenBuilder.WriteName(r + 0x20)
	case r == '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.Reset()
		p.tokenBuilder.WriteName('�')
	case r == '>':
		p.parseError(errMissingDoctypeName)
		p.tokenBuilder.Reset()
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitDoctype()
	default:
		p.tokenBuilder.Reset()
		p.tokenBuilder.WriteName(r)
	}
	return false, doctypeNameState
}

func (p *HTMLTokenizer) doctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, afterDoctypeNameState
	case r == '>':
		return false, p.emitDoctype()
	case isUpperASCII(r):
		p.tokenBuilder.WriteName(r + 0x20)
	case r == '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		p.tokenBuilder.WriteName('�')
	default:
		p.tokenBuilder.WriteName(r)
	}
	return false, doctypeNameState
}

func (p *HTMLTokenizer) afterDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, afterDoctypeNameState
	case r == '>':
		return false, p.emitDoctype()
	}

	p.in.unget(1)
	for _, kw := range []struct {
		word string
		next tokenizerState
	}{
		{"public", afterDoctypePublicKeywordState},
		{"system", afterDoctypeSystemKeywordState},
	} {
		ok, more := p.in.lookingAt(kw.word, true)
		if more {
			p.suspend()
			return false, afterDoctypeNameState
		}
		if ok {
			p.in.advance(len(kw.word))
			return false, kw.next
		}
	}
	p.in.advance(1)
	p.parseError(errInvalidCharSequenceAfterDoctypeName)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) afterDoctypeKeyword(r rune, eof bool, public bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	before, dq, sq := beforeDoctypeSystemIdentifierState, doctypeSystemIdentifierDoubleQuotedState, doctypeSystemIdentifierSingleQuotedState
	missingWS, missingID, missingQuote := errMissingWhitespaceAfterDoctypeSystemKW, errMissingDoctypeSystemIdentifier, errMissingQuoteBeforeDoctypeSystemID
	start := p.tokenBuilder.StartSystemIdentifier
	if public {
		before, dq, sq = beforeDoctypePublicIdentifierState, doctypePublicIdentifierDoubleQuotedState, doctypePublicIdentifierSingleQuotedState
		missingWS, missingID, missingQuote = errMissingWhitespaceAfterDoctypePublicKW, errMissingDoctypePublicIdentifier, errMissingQuoteBeforeDoctypePublicID
		start = p.tokenBuilder.StartPublicIdentifier
	}
	switch {
	case isTabOrSpace(r):
		return false, before
	case r == '"':
		p.parseError(missingWS)
		start()
		return false, dq
	case r == '\'':
		p.parseError(missingWS)
		start()
		return false, sq
	case r == '>':
		p.parseError(missingID)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitDoctype()
	}
	p.parseError(missingQuote)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) beforeDoctypeIdentifier(r rune, eof bool, public bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	self, dq, sq := beforeDoctypeSystemIdentifierState, doctypeSystemIdentifierDoubleQuotedState, doctypeSystemIdentifierSingleQuotedState
	missingID, missingQuote := errMissingDoctypeSystemIdentifier, errMissingQuoteBeforeDoctypeSystemID
	start := p.tokenBuilder.StartSystemIdentifier
	if public {
		self, dq, sq = beforeDoctypePublicIdentifierState, doctypePublicIdentifierDoubleQuotedState, doctypePublicIdentifierSingleQuotedState
		missingID, missingQuote = errMissingDoctypePublicIdentifier, errMissingQuoteBeforeDoctypePublicID
		start = p.tokenBuilder.StartPublicIdentifier
	}
	switch {
	case isTabOrSpace(r):
		return false, self
	case r == '"':
		start()
		return false, dq
	case r == '\'':
		start()
		return false, sq
	case r == '>':
		p.parseError(missingID)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitDoctype()
	}
	p.parseError(missingQuote)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) doctypeIdentifierQuoted(r rune, eof bool, quote rune, public bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	self, after, abrupt := doctypeSystemIdentifierDoubleQuotedState, afterDoctypeSystemIdentifierState, errAbruptDoctypeSystemIdentifier
	write := p.tokenBuilder.WriteSystemIdentifier
	if public {
		self, after, abrupt = doctypePublicIdentifierDoubleQuotedState, afterDoctypePublicIdentifierState, errAbruptDoctypePublicIdentifier
		write = p.tokenBuilder.WritePublicIdentifier
	}
	if quote == '\'' {
		self = doctypeSystemIdentifierSingleQuotedState
		if public {
			self = doctypePublicIdentifierSingleQuotedState
		}
	}
	switch r {
	case quote:
		return false, after
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
		write('�')
	case '>':
		p.parseError(abrupt)
		p.tokenBuilder.EnableForceQuirks()
		return false, p.emitDoctype()
	default:
		write(r)
	}
	return false, self
}

func (p *HTMLTokenizer) afterDoctypePublicKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.afterDoctypeKeyword(r, eof, true)
}

func (p *HTMLTokenizer) beforeDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.beforeDoctypeIdentifier(r, eof, true)
}

func (p *HTMLTokenizer) doctypePublicIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierQuoted(r, eof, '"', true)
}

func (p *HTMLTokenizer) doctypePublicIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierQuoted(r, eof, '\'', true)
}

func (p *HTMLTokenizer) afterDoctypePublicIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case r == '>':
		return false, p.emitDoctype()
	case r == '"':
		p.parseError(errMissingWhitespaceBetweenDoctypeIDs)
		p.tokenBuilder.StartSystemIdentifier()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case r == '\'':
		p.parseError(errMissingWhitespaceBetweenDoctypeIDs)
		p.tokenBuilder.StartSystemIdentifier()
		return false, doctypeSystemIdentifierSingleQuotedState
	}
	p.parseError(errMissingQuoteBeforeDoctypeSystemID)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) betweenDoctypePublicAndSystemIdentifiersStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, betweenDoctypePublicAndSystemIdentifiersState
	case r == '>':
		return false, p.emitDoctype()
	case r == '"':
		p.tokenBuilder.StartSystemIdentifier()
		return false, doctypeSystemIdentifierDoubleQuotedState
	case r == '\'':
		p.tokenBuilder.StartSystemIdentifier()
		return false, doctypeSystemIdentifierSingleQuotedState
	}
	p.parseError(errMissingQuoteBeforeDoctypeSystemID)
	p.tokenBuilder.EnableForceQuirks()
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) afterDoctypeSystemKeywordStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.afterDoctypeKeyword(r, eof, false)
}

func (p *HTMLTokenizer) beforeDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.beforeDoctypeIdentifier(r, eof, false)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierQuoted(r, eof, '"', false)
}

func (p *HTMLTokenizer) doctypeSystemIdentifierSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	return p.doctypeIdentifierQuoted(r, eof, '\'', false)
}

func (p *HTMLTokenizer) afterDoctypeSystemIdentifierStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return p.eofInDoctype()
	}
	switch {
	case isTabOrSpace(r):
		return false, afterDoctypeSystemIdentifierState
	case r == '>':
		return false, p.emitDoctype()
	}
	p.parseError(errUnexpectedCharAfterDoctypeSystemID)
	return true, bogusDoctypeState
}

func (p *HTMLTokenizer) bogusDoctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitDoctype()
		return p.emitEOF()
	}
	switch r {
	case '>':
		return false, p.emitDoctype()
	case '\u0000':
		p.parseError(errUnexpectedNullCharacter)
	}
	return false, bogusDoctypeState
}

func (p *HTMLTokenizer) cdataSectionStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.parseError(errEOFInCDATA)
		return p.emitEOF()
	}
	if r == ']' {
		return false, cdataSectionBracketState
	}
	p.emitRune(r)
	return false, cdataSectionState
}

func (p *HTMLTokenizer) cdataSectionBracketStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == ']' {
		return false, cdataSectionEndState
	}
	p.emitRune(']')
	return true, cdataSectionState
}

func (p *HTMLTokenizer) cdataSectionEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	switch {
	case !eof && r == ']':
		p.emitRune(']')
		return false, cdataSectionEndState
	case !eof && r == '>':
		return false, dataState
	}
	p.emitString("]]")
	return true, cdataSectionState
}

// characterReferenceStateParser runs right after an ampersand. The
// resolver reads from the input itself, so r is pushed back first.
func (p *HTMLTokenizer) characterReferenceStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof {
		p.in.unget(1)
	}
	inAttr := wasConsumedByAttribute(p.returnState)
	var allowed rune
	switch p.returnState {
	case attributeValueDoubleQuotedState:
		allowed = '"'
	case attributeValueSingleQuotedState:
		allowed = '\''
	case attributeValueUnquotedState:
		allowed = '>'
	}

	res := consumeCharRef(p.in, allowed, inAttr)
	if res.status == charRefMore {
		p.suspend()
		return false, characterReferenceState
	}
	for _, code := range res.errs {
		p.parseError(code)
	}
	text := "&"
	if res.status == charRefDecoded {
		text = res.text
	}
	if inAttr {
		p.tokenBuilder.WriteAttributeValueString(text)
	} else {
		p.emitString(text)
	}
	return false, p.returnState
}


type tokenizerState uint

const (
	dataState tokenizerState = iota
	rcDataState
	rawTextState
	scriptDataState
	plaintextState
	tagOpenState
	endTagOpenState
	tagNameState
	rcDataLessThanSignState
	rcDataEndTagOpenState
	rcDataEndTagNameState
	rawTextLessThanSignState
	rawTextEndTagOpenState
	rawTextEndTagNameState
	scriptDataLessThanSignState
	scriptDataEndTagOpenState
	scriptDataEndTagNameState
	scriptDataEscapeStartState
	scriptDataEscapeStartDashState
	scriptDataEscapedState
	scriptDataEscapedDashState
	scriptDataEscapedDashDashState
	scriptDataEscapedLessThanSignState
	scriptDataEscapedEndTagOpenState
	scriptDataEscapedEndTagNameState
	scriptDataDoubleEscapeStartState
	scriptDataDoubleEscapedState
	scriptDataDoubleEscapedDashState
	scriptDataDoubleEscapedDashDashState
	scriptDataDoubleEscapedLessThanSignState
	scriptDataDoubleEscapeEndState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentLessThanSignState
	commentLessThanSignBangState
	commentLessThanSignBangDashState
	commentLessThanSignBangDashDashState
	commentEndDashState
	commentEndState
	commentEndBangState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	afterDoctypePublicKeywordState
	beforeDoctypePublicIdentifierState
	doctypePublicIdentifierDoubleQuotedState
	doctypePublicIdentifierSingleQuotedState
	afterDoctypePublicIdentifierState
	betweenDoctypePublicAndSystemIdentifiersState
	afterDoctypeSystemKeywordState
	beforeDoctypeSystemIdentifierState
	doctypeSystemIdentifierDoubleQuotedState
	doctypeSystemIdentifierSingleQuotedState
	afterDoctypeSystemIdentifierState
	bogusDoctypeState
	cdataSectionState
	cdataSectionBracketState
	cdataSectionEndState
	characterReferenceState
)

// String names the content model states; the rest print as numbers.
func (s tokenizerState) String() string {
	switch s {
	case dataState:
		return "data"
	case rcDataState:
		return "rcdata"
	case rawTextState:
		return "rawtext"
	case scriptDataState:
		return "script data"
	case plaintextState:
		return "plaintext"
	case cdataSectionState:
		return "cdata section"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// setState is how the tree builder switches the lexing mode, e.g. to
// RCDATA after a <title> start tag.
func (p *HTMLTokenizer) setState(s tokenizerState) {
	p.currentState = s
}

func (p *HTMLTokenizer) takeLastEmittedToken() *Token {
	if len(p.emittedTokens) > 0 {
		ret := p.emittedTokens[0]
		p.emittedTokens = p.emittedTokens[1:]
		if ret.TokenType == endOfFileToken {
			p.done = true
		}
		return &ret
	}
	return nil
}

// Next returns the next token. It returns nil when every buffered
// character has been consumed and the input is still open, or after the
// end of file token has been handed out.
func (p *HTMLTokenizer) Next() *Token {
	for {
		if token := p.takeLastEmittedToken(); token != nil {
			return token
		}
		if p.done {
			return nil
		}

		r := p.in.char()
		if r == drainRune {
			return nil
		}
		if !p.processRune(r) {
			return nil
		}
	}
}

// processRune runs the state machine over one input character, following
// reconsumes, and commits the input it used. It returns false when a state
// had to stop for more input; the input is then rewound to the last commit
// so the step can be replayed.
func (p *HTMLTokenizer) processRune(r rune) bool {
	p.stepLine, p.stepCol = p.in.location()
	eof := r == eofRune
	reconsume := true
	for reconsume {
		reconsume, p.currentState = p.stateToParser(p.currentState)(r, eof)
		if p.suspended {
			p.suspended = false
			p.in.undo()
			return false
		}
	}
	p.in.commit()
	return true
}
