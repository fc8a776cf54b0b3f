package parser

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownContext is returned by ParseFragment for a context element
	// name that is neither a known HTML element nor an svg/math element.
	ErrUnknownContext = errors.New("unknown fragment context element")
	// ErrClosed is returned when input is written after Close.
	ErrClosed = errors.New("parser already closed")
)

// ErrorCode names a parse error. Tokenizer codes match the names used by
// the WHATWG parsing algorithm.
type ErrorCode string

const (
	errAbruptClosingOfEmptyComment              ErrorCode = "abrupt-closing-of-empty-comment"
	errAbruptDoctypePublicIdentifier            ErrorCode = "abrupt-doctype-public-identifier"
	errAbruptDoctypeSystemIdentifier            ErrorCode = "abrupt-doctype-system-identifier"
	errAbsenceOfDigitsInNumericCharRef          ErrorCode = "absence-of-digits-in-numeric-character-reference"
	errCDATAInHTMLContent                       ErrorCode = "cdata-in-html-content"
	errCharRefOutsideUnicodeRange               ErrorCode = "character-reference-outside-unicode-range"
	errControlCharacterReference                ErrorCode = "control-character-reference"
	errDuplicateAttribute                       ErrorCode = "duplicate-attribute"
	errEndTagWithAttributes                     ErrorCode = "end-tag-with-attributes"
	errEndTagWithTrailingSolidus                ErrorCode = "end-tag-with-trailing-solidus"
	errEOFBeforeTagName                         ErrorCode = "eof-before-tag-name"
	errEOFInCDATA                               ErrorCode = "eof-in-cdata"
	errEOFInComment                             ErrorCode = "eof-in-comment"
	errEOFInDoctype                             ErrorCode = "eof-in-doctype"
	errEOFInScriptHTMLCommentLikeText           ErrorCode = "eof-in-script-html-comment-like-text"
	errEOFInTag                                 ErrorCode = "eof-in-tag"
	errIncorrectlyClosedComment                 ErrorCode = "incorrectly-closed-comment"
	errIncorrectlyOpenedComment                 ErrorCode = "incorrectly-opened-comment"
	errInvalidCharSequenceAfterDoctypeName      ErrorCode = "invalid-character-sequence-after-doctype-name"
	errInvalidFirstCharacterOfTagName           ErrorCode = "invalid-first-character-of-tag-name"
	errMissingAttributeValue                    ErrorCode = "missing-attribute-value"
	errMissingDoctypeName                       ErrorCode = "missing-doctype-name"
	errMissingDoctypePublicIdentifier           ErrorCode = "missing-doctype-public-identifier"
	errMissingDoctypeSystemIdentifier           ErrorCode = "missing-doctype-system-identifier"
	errMissingEndTagName                        ErrorCode = "missing-end-tag-name"
	errMissingQuoteBeforeDoctypePublicID        ErrorCode = "missing-quote-before-doctype-public-identifier"
	errMissingQuoteBeforeDoctypeSystemID        ErrorCode = "missing-quote-before-doctype-system-identifier"
	errMissingSemicolonAfterCharRef             ErrorCode = "missing-semicolon-after-character-reference"
	errMissingWhitespaceAfterDoctypePublicKW    ErrorCode = "missing-whitespace-after-doctype-public-keyword"
	errMissingWhitespaceAfterDoctypeSystemKW    ErrorCode = "missing-whitespace-after-doctype-system-keyword"
	errMissingWhitespaceBeforeDoctypeName       ErrorCode = "missing-whitespace-before-doctype-name"
	errMissingWhitespaceBetweenAttributes       ErrorCode = "missing-whitespace-between-attributes"
	errMissingWhitespaceBetweenDoctypeIDs       ErrorCode = "missing-whitespace-between-doctype-public-and-system-identifiers"
	errNestedComment                            ErrorCode = "nested-comment"
	errNoncharacterCharacterReference           ErrorCode = "noncharacter-character-reference"
	errNullCharacterReference                   ErrorCode = "null-character-reference"
	errSurrogateCharacterReference              ErrorCode = "surrogate-character-reference"
	errUnexpectedCharAfterDoctypeSystemID       ErrorCode = "unexpected-character-after-doctype-system-identifier"
	errUnexpectedCharacterInAttributeName       ErrorCode = "unexpected-character-in-attribute-name"
	errUnexpectedCharacterInUnquotedAttrValue   ErrorCode = "unexpected-character-in-unquoted-attribute-value"
	errUnexpectedEqualsSignBeforeAttributeName  ErrorCode = "unexpected-equals-sign-before-attribute-name"
	errUnexpectedNullCharacter                  ErrorCode = "unexpected-null-character"
	errUnexpectedQuestionMarkInsteadOfTagName   ErrorCode = "unexpected-question-mark-instead-of-tag-name"
	errUnexpectedSolidusInTag                   ErrorCode = "unexpected-solidus-in-tag"
	errUnknownNamedCharacterReference           ErrorCode = "unknown-named-character-reference"
	errNonVoidHTMLElementStartTagWithTrailSolid ErrorCode = "non-void-html-element-start-tag-with-trailing-solidus"

	errMissingDoctype         ErrorCode = "missing-doctype"
	errNonConformingDoctype   ErrorCode = "non-conforming-doctype"
	errUnexpectedDoctype      ErrorCode = "unexpected-doctype"
	errUnexpectedStartTag     ErrorCode = "unexpected-start-tag"
	errUnexpectedEndTag       ErrorCode = "unexpected-end-tag"
	errUnexpectedCharacters   ErrorCode = "unexpected-characters"
	errEndTagTooEarly         ErrorCode = "end-tag-too-early"
	errUnclosedElements       ErrorCode = "eof-with-unclosed-elements"
	errFosterParentedContent  ErrorCode = "foster-parented-content"
	errMisnestedFormatting    ErrorCode = "misnested-formatting-element"
	errFormattingNotInScope   ErrorCode = "formatting-element-not-in-scope"
	errFormattingNotOpen      ErrorCode = "formatting-element-not-open"
	errNestedFormattingTag    ErrorCode = "nested-formatting-element"
	errUnexpectedForeignBreak ErrorCode = "unexpected-html-element-in-foreign-content"
)

// ParseError is a recoverable problem found in the input. Parsing always
// continues after one is reported.
type ParseError struct {
	Code   ErrorCode
	Line   int
	Column int
	// Args carries context such as the offending tag name.
	Args []string
}

func (e ParseError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Code)
	}
	return fmt.Sprintf("%d:%d: %s (%s)", e.Line, e.Column, e.Code, strings.Join(e.Args, ", "))
}
