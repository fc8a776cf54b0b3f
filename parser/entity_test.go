package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsumeCharRef(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		inAttr  bool
		allowed rune
		status  charRefStatus
		text    string
		rest    string
		errs    []ErrorCode
	}{
		{name: "named", in: "amp;x", status: charRefDecoded, text: "&", rest: "x"},
		{name: "legacy without semicolon", in: "ampx", status: charRefDecoded, text: "&", rest: "x", errs: []ErrorCode{errMissingSemicolonAfterCharRef}},
		{name: "legacy in attribute before alnum", in: "ampx", inAttr: true, status: charRefLiteral, rest: "ampx"},
		{name: "legacy in attribute before equals", in: "copy=1", inAttr: true, status: charRefLiteral, rest: "copy=1"},
		{name: "legacy in attribute before space", in: "copy 1", inAttr: true, status: charRefDecoded, text: "\u00A9", rest: " 1", errs: []ErrorCode{errMissingSemicolonAfterCharRef}},
		{name: "longest match", in: "notin;", status: charRefDecoded, text: "\u2209", rest: ""},
		{name: "two code points", in: "NotEqualTilde;", status: charRefDecoded, text: "\u2242\u0338", rest: ""},
		{name: "unknown with semicolon", in: "foo;", status: charRefLiteral, rest: "foo;", errs: []ErrorCode{errUnknownNamedCharacterReference}},
		{name: "unknown without semicolon", in: "foo bar", status: charRefLiteral, rest: "foo bar"},
		{name: "decimal", in: "#65;", status: charRefDecoded, text: "A"},
		{name: "hex", in: "#x41;", status: charRefDecoded, text: "A"},
		{name: "upper hex marker", in: "#X6a", status: charRefDecoded, text: "j", errs: []ErrorCode{errMissingSemicolonAfterCharRef}},
		{name: "no digits", in: "#;", status: charRefLiteral, rest: "#;", errs: []ErrorCode{errAbsenceOfDigitsInNumericCharRef}},
		{name: "null", in: "#0;", status: charRefDecoded, text: "\uFFFD", errs: []ErrorCode{errNullCharacterReference}},
		{name: "too large", in: "#x110000;", status: charRefDecoded, text: "\uFFFD", errs: []ErrorCode{errCharRefOutsideUnicodeRange}},
		{name: "huge", in: "#99999999999999999999;", status: charRefDecoded, text: "\uFFFD", errs: []ErrorCode{errCharRefOutsideUnicodeRange}},
		{name: "surrogate", in: "#xD800;", status: charRefDecoded, text: "\uFFFD", errs: []ErrorCode{errSurrogateCharacterReference}},
		{name: "noncharacter", in: "#xFFFF;", status: charRefDecoded, text: "\uFFFF", errs: []ErrorCode{errNoncharacterCharacterReference}},
		{name: "c1 control", in: "#150;", status: charRefDecoded, text: "\u2013", errs: []ErrorCode{errControlCharacterReference}},
		{name: "carriage return", in: "#13;", status: charRefDecoded, text: "\r", errs: []ErrorCode{errControlCharacterReference}},
		{name: "whitespace", in: " x", status: charRefLiteral, rest: " x"},
		{name: "quote in attribute", in: "\"", inAttr: true, allowed: '"', status: charRefLiteral, rest: "\""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := newInputStream()
			in.AppendString(tt.in)
			in.Close()
			res := consumeCharRef(in, tt.allowed, tt.inAttr)
			assert.Equal(t, tt.status, res.status)
			assert.Equal(t, tt.text, res.text)
			assert.Equal(t, tt.errs, res.errs)
			rest, _ := readAll(in)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestConsumeCharRefNeedsMore(t *testing.T) {
	for _, prefix := range []string{"", "am", "amp", "#", "#x", "#x4", "#65", "not"} {
		prefix := prefix
		t.Run(prefix, func(t *testing.T) {
			t.Parallel()
			in := newInputStream()
			in.AppendString(prefix)
			res := consumeCharRef(in, 0, false)
			assert.Equal(t, charRefMore, res.status)
			assert.Empty(t, res.errs)
		})
	}
}
