package parser

import (
	"fmt"
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

type tokenType uint

const (
	characterToken tokenType = iota
	startTagToken
	endTagToken
	endOfFileToken
	commentToken
	docTypeToken
)

func (t tokenType) String() string {
	switch t {
	case characterToken:
		return "Characters"
	case startTagToken:
		return "StartTag"
	case endTagToken:
		return "EndTag"
	case endOfFileToken:
		return "EOF"
	case commentToken:
		return "Comment"
	case docTypeToken:
		return "Doctype"
	}
	return "Unknown"
}

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Token is a concrete token that is ready to be emitted.
type Token struct {
	TokenType   tokenType
	TagName     string
	Atom        atom.Atom
	Attributes  []dom.Attr
	SelfClosing bool
	Data        string

	PublicIdentifier    string
	SystemIdentifier    string
	HasPublicIdentifier bool
	HasSystemIdentifier bool
	ForceQuirks         bool

	// Line and Column locate the input position at which the token was
	// emitted.
	Line, Column int
}

func (t *Token) String() string {
	switch t.TokenType {
	case characterToken:
		return fmt.Sprintf("Characters(%q)", t.Data)
	case startTagToken:
		var sb strings.Builder
		sb.WriteString("<" + t.TagName)
		for _, a := range t.Attributes {
			sb.WriteString(fmt.Sprintf(" %s=%q", a.Name, a.Value))
		}
		if t.SelfClosing {
			sb.WriteString("/")
		}
		sb.WriteString(">")
		return sb.String()
	case endTagToken:
		return "</" + t.TagName + ">"
	case commentToken:
		return "<!--" + t.Data + "-->"
	case docTypeToken:
		return fmt.Sprintf("<!DOCTYPE %s public=%q system=%q quirks=%t>", t.TagName, t.PublicIdentifier, t.SystemIdentifier, t.ForceQuirks)
	case endOfFileToken:
		return "EOF"
	}
	return "?"
}

// attr returns the value of the named attribute on a tag token.
func (t *Token) attr(name string) (string, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// TokenBuilder builds various tokens up during the tokenization
// phase.
type TokenBuilder struct {
	attributes     []dom.Attr
	attributeKey   strings.Builder
	attributeValue strings.Builder
	attrPending    bool
	removeNextAttr bool

	name       strings.Builder
	data       strings.Builder
	tempBuffer strings.Builder
	publicID   strings.Builder
	systemID   strings.Builder
	hasPublic  bool
	hasSystem  bool

	selfClosing bool
	forceQuirks bool
	curTagType  tagType
}

func newTokenBuilder() *TokenBuilder {
	return &TokenBuilder{}
}

// Reset clears everything that belongs to the token under construction.
// The temporary buffer is left alone; the states using it reset it
// themselves.
func (t *TokenBuilder) Reset() {
	t.attributes = nil
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.attrPending = false
	t.removeNextAttr = false
	t.name.Reset()
	t.data.Reset()
	t.publicID.Reset()
	t.systemID.Reset()
	t.hasPublic = false
	t.hasSystem = false
	t.selfClosing = false
	t.forceQuirks = false
}

// EnableSelfClosing changes to the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// EnableForceQuirks changes to the force-quirks flag to "set".
func (t *TokenBuilder) EnableForceQuirks() {
	t.forceQuirks = true
}

// StartPublicIdentifier marks the public identifier as present and empty.
func (t *TokenBuilder) StartPublicIdentifier() {
	t.publicID.Reset()
	t.hasPublic = true
}

// StartSystemIdentifier marks the system identifier as present and empty.
func (t *TokenBuilder) StartSystemIdentifier() {
	t.systemID.Reset()
	t.hasSystem = true
}

func (t *TokenBuilder) WritePublicIdentifier(r rune) {
	t.publicID.WriteRune(r)
}

func (t *TokenBuilder) WriteSystemIdentifier(r rune) {
	t.systemID.WriteRune(r)
}

// StartAttribute commits the attribute in progress, if any, and begins a
// new one.
func (t *TokenBuilder) StartAttribute() {
	t.CommitAttribute()
	t.attrPending = true
}

// WriteAttributeName appends a character to the current
// attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.attributeKey.WriteRune(r)
}

// WriteAttributeValue appends a character to the current
// attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

func (t *TokenBuilder) WriteAttributeValueString(s string) {
	t.attributeValue.WriteString(s)
}

// RemoveDuplicateAttributeName checks if the current name is already
// in the list of committed attributes. If so, the attribute is dropped when
// it is committed.
func (t *TokenBuilder) RemoveDuplicateAttributeName() bool {
	if !t.attrPending || t.removeNextAttr {
		return false
	}
	k := t.attributeKey.String()
	for _, a := range t.attributes {
		if a.Name == k {
			t.removeNextAttr = true
			return true
		}
	}
	return false
}

// CommitAttribute ends the creation of a key/value
// pair by copying the name and value fields into the
// attribute list and clearing the name and value fields.
func (t *TokenBuilder) CommitAttribute() {
	if t.attrPending && !t.removeNextAttr {
		t.attributes = append(t.attributes, dom.Attr{
			Name:  t.attributeKey.String(),
			Value: t.attributeValue.String(),
		})
	}
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.attrPending = false
	t.removeNextAttr = false
}

// WriteName appends a character to the current name value.
func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

// WriteData appends a character to the current data section.
func (t *TokenBuilder) WriteData(r rune) {
	t.data.WriteRune(r)
}

func (t *TokenBuilder) WriteDataString(s string) {
	t.data.WriteString(s)
}

// WriteTempBuffer appends a character to the temporary buffer of the current
// state.
func (t *TokenBuilder) WriteTempBuffer(r rune) {
	t.tempBuffer.WriteRune(r)
}

// ResetTempBuffer clears the temporary buffer to be used by some other state.
func (t *TokenBuilder) ResetTempBuffer() {
	t.tempBuffer.Reset()
}

// TempBuffer just returns the string version of the current buffer contents.
func (t *TokenBuilder) TempBuffer() string {
	return t.tempBuffer.String()
}

// StartTagToken creates a start tag token from the builder
// contents.
func (t *TokenBuilder) StartTagToken() Token {
	t.CommitAttribute()
	name := t.name.String()
	return Token{
		TokenType:   startTagToken,
		TagName:     name,
		Atom:        atom.Lookup([]byte(name)),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// EndTagToken creates an end tag token from the builder
// contents.
func (t *TokenBuilder) EndTagToken() Token {
	t.CommitAttribute()
	name := t.name.String()
	return Token{
		TokenType:   endTagToken,
		TagName:     name,
		Atom:        atom.Lookup([]byte(name)),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// CharacterToken creates a character token holding s.
func (t *TokenBuilder) CharacterToken(s string) Token {
	return Token{
		TokenType: characterToken,
		Data:      s,
	}
}

// EndOfFileToken create an end of file token.
func (t *TokenBuilder) EndOfFileToken() Token {
	return Token{
		TokenType: endOfFileToken,
	}
}

// CommentToken creates a comment token from the builder contents.
func (t *TokenBuilder) CommentToken() Token {
	return Token{
		TokenType: commentToken,
		Data:      t.data.String(),
	}
}

// DocTypeToken creates a doc type token from the builder contents.
func (t *TokenBuilder) DocTypeToken() Token {
	return Token{
		TokenType:           docTypeToken,
		TagName:             t.name.String(),
		ForceQuirks:         t.forceQuirks,
		PublicIdentifier:    t.publicID.String(),
		SystemIdentifier:    t.systemID.String(),
		HasPublicIdentifier: t.hasPublic,
		HasSystemIdentifier: t.hasSystem,
	}
}
