package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenize runs a standalone tokenizer over chunks, starting in state, and
// collects everything it produces.
func tokenize(state tokenizerState, chunks ...string) ([]Token, []ParseError) {
	var (
		toks []Token
		errs []ParseError
	)
	in := newInputStream()
	p := NewHTMLTokenizer(in, func(e ParseError) { errs = append(errs, e) })
	p.setState(state)
	drain := func() {
		for tok := p.Next(); tok != nil; tok = p.Next() {
			toks = append(toks, *tok)
		}
	}
	for _, c := range chunks {
		in.AppendString(c)
		drain()
	}
	in.Close()
	drain()
	return toks, errs
}

func tokenStrings(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for i := range toks {
		out = append(out, toks[i].String())
	}
	return out
}

func errorCodes(errs []ParseError) []ErrorCode {
	out := make([]ErrorCode, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

type tokenizerAttributeAccuracyTestcase struct {
	inHTML string            // snippet of HTML to tokenize (should only be one element)
	attrs  map[string]string // expected attributes on the first token that is produced
}

var tokenizerAttributeAccuracyTests = []tokenizerAttributeAccuracyTestcase{
	{"<head></head>", map[string]string{}},
	{"<script src='123' onload='test'></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", map[string]string{
		"href":    "https://google.com",
		"onclick": "alert(1)",
	}},
	{"<script src='123' src='456'></script>", map[string]string{
		"src": "123",
	}},
	{"<script src=123 onload=test></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script =src='123'onload='test' ></script>", map[string]string{
		"=src":   "123",
		"onload": "test",
	}},
	{"<script src test></script>", map[string]string{
		"src":  "",
		"test": "",
	}},
	{"<script 'asd></script>", map[string]string{
		"'asd": "",
	}},
	{"<script <asd></script>", map[string]string{
		"<asd": "",
	}},
	{"<script ABC=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<script abc='\u0000123'></script>", map[string]string{
		"abc": "�123",
	}},
	{"<script abc=></script>", map[string]string{
		"abc": "",
	}},
	{"<script\tabc=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<a href='?x=1&amp;y=2&copy=3'>", map[string]string{
		"href": "?x=1&y=2&copy=3",
	}},
}

// TestTokenizerAttributeAccuracy checks the attribute names and values
// collected on the first token.
func TestTokenizerAttributeAccuracy(t *testing.T) {
	for _, tt := range tokenizerAttributeAccuracyTests {
		runTestTokenizerAttributeAccuracy(tt, t)
	}
}

func runTestTokenizerAttributeAccuracy(tt tokenizerAttributeAccuracyTestcase, t *testing.T) {
	t.Run(tt.inHTML, func(t *testing.T) {
		t.Parallel()
		toks, _ := tokenize(dataState, tt.inHTML)
		require.NotEmpty(t, toks)
		token := toks[0]
		require.Equal(t, startTagToken, token.TokenType)
		assert.Len(t, token.Attributes, len(tt.attrs))
		for k, v := range tt.attrs {
			got, ok := token.attr(k)
			if assert.True(t, ok, "expected an attribute named %s", k) {
				assert.Equal(t, v, got)
			}
		}
	})
}

type stateMachineTestCase struct {
	inRune            rune           // the rune to pass to the startingState
	startingState     tokenizerState // the state to start from
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers checks single transitions of the state machine.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{'&', dataState, false, characterReferenceState},
		{'<', dataState, false, tagOpenState},
		{'\u0000', dataState, false, dataState},
		{'a', dataState, false, dataState},

		{'&', rcDataState, false, characterReferenceState},
		{'<', rcDataState, false, rcDataLessThanSignState},
		{'\u0000', rcDataState, false, rcDataState},
		{'#', rcDataState, false, rcDataState},

		{'<', rawTextState, false, rawTextLessThanSignState},
		{'&', rawTextState, false, rawTextState},
		{'<', scriptDataState, false, scriptDataLessThanSignState},
		{'!', plaintextState, false, plaintextState},
		{'<', plaintextState, false, plaintextState},

		{'!', tagOpenState, false, markupDeclarationOpenState},
		{'/', tagOpenState, false, endTagOpenState},
		{'a', tagOpenState, true, tagNameState},
		{'Z', tagOpenState, true, tagNameState},
		{'?', tagOpenState, true, bogusCommentState},
		{'1', tagOpenState, true, dataState},

		{'a', endTagOpenState, true, tagNameState},
		{'B', endTagOpenState, true, tagNameState},
		{'>', endTagOpenState, false, dataState},
		{'#', endTagOpenState, true, bogusCommentState},

		{'\t', tagNameState, false, beforeAttributeNameState},
		{'\n', tagNameState, false, beforeAttributeNameState},
		{'\f', tagNameState, false, beforeAttributeNameState},
		{' ', tagNameState, false, beforeAttributeNameState},
		{'/', tagNameState, false, selfClosingStartTagState},
		{'>', tagNameState, false, dataState},
		{'a', tagNameState, false, tagNameState},

		{'/', rcDataLessThanSignState, false, rcDataEndTagOpenState},
		{'a', rcDataLessThanSignState, true, rcDataState},
		{'a', rcDataEndTagOpenState, true, rcDataEndTagNameState},
		{'1', rcDataEndTagOpenState, true, rcDataState},
		{'A', rcDataEndTagNameState, false, rcDataEndTagNameState},
		{'z', rcDataEndTagNameState, false, rcDataEndTagNameState},
		{'1', rcDataEndTagNameState, true, rcDataState},

		{'/', rawTextLessThanSignState, false, rawTextEndTagOpenState},
		{'1', rawTextLessThanSignState, true, rawTextState},
		{'Z', rawTextEndTagOpenState, true, rawTextEndTagNameState},
		{'1', rawTextEndTagOpenState, true, rawTextState},

		{'!', scriptDataLessThanSignState, false, scriptDataEscapeStartState},
		{'/', scriptDataLessThanSignState, false, scriptDataEndTagOpenState},
		{'a', scriptDataLessThanSignState, true, scriptDataState},
		{'-', scriptDataEscapeStartState, false, scriptDataEscapeStartDashState},
		{'a', scriptDataEscapeStartState, true, scriptDataState},
		{'-', scriptDataEscapeStartDashState, false, scriptDataEscapedDashDashState},

		{' ', beforeAttributeNameState, false, beforeAttributeNameState},
		{'/', beforeAttributeNameState, true, afterAttributeNameState},
		{'>', beforeAttributeNameState, true, afterAttributeNameState},
		{'=', beforeAttributeNameState, false, attributeNameState},
		{'a', beforeAttributeNameState, true, attributeNameState},

		{' ', beforeAttributeValueState, false, beforeAttributeValueState},
		{'"', beforeAttributeValueState, false, attributeValueDoubleQuotedState},
		{'\'', beforeAttributeValueState, false, attributeValueSingleQuotedState},
		{'a', beforeAttributeValueState, true, attributeValueUnquotedState},
		{'"', attributeValueDoubleQuotedState, false, afterAttributeValueQuotedState},
		{'&', attributeValueSingleQuotedState, false, characterReferenceState},
		{' ', attributeValueUnquotedState, false, beforeAttributeNameState},
		{'a', afterAttributeValueQuotedState, true, beforeAttributeNameState},
		{'a', selfClosingStartTagState, true, beforeAttributeNameState},

		{'-', commentStartState, false, commentStartDashState},
		{'a', commentStartState, true, commentState},
		{'-', commentState, false, commentEndDashState},
		{'<', commentState, false, commentLessThanSignState},
		{'-', commentEndDashState, false, commentEndState},
		{'!', commentEndState, false, commentEndBangState},
		{'-', commentEndState, false, commentEndState},
		{'a', commentEndState, true, commentState},

		{' ', doctypeState, false, beforeDoctypeNameState},
		{'a', doctypeState, true, beforeDoctypeNameState},
		{'a', beforeDoctypeNameState, false, doctypeNameState},
		{' ', doctypeNameState, false, afterDoctypeNameState},

		{']', cdataSectionState, false, cdataSectionBracketState},
		{']', cdataSectionBracketState, false, cdataSectionEndState},
		{'>', cdataSectionEndState, false, dataState},
		{'a', cdataSectionEndState, true, cdataSectionState},
	}

	for _, testcase := range stateParserTests {
		runStateParserTest(testcase, t)
	}
}

func runStateParserTest(testcase stateMachineTestCase, t *testing.T) {
	testName := fmt.Sprintf("%d-%#U", testcase.startingState, testcase.inRune)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer(newInputStream(), nil)
		reconsume, state := p.stateToParser(testcase.startingState)(testcase.inRune, false)
		assert.Equal(t, testcase.nextExpectedState, state)
		assert.Equal(t, testcase.shouldReconsume, reconsume)
	})
}

type parserStatefulnessTestCase struct {
	inHTML     string                                // the HTML to tokenize
	startState tokenizerState                        // the starting state of the tokenizer
	testFunc   func(*HTMLTokenizer) (string, string) // looks inside the tokenizer once the input is consumed
	setup      func(*HTMLTokenizer)                  // run before tokenization
}

// TestParseStatefulness runs the tokenizer over input that is never closed,
// so that the token builder can be inspected before anything flushes it.
func TestParseStatefulness(t *testing.T) {
	name := func(p *HTMLTokenizer) string { return p.tokenBuilder.name.String() }
	data := func(p *HTMLTokenizer) string { return p.tokenBuilder.data.String() }
	value := func(p *HTMLTokenizer) string { return p.tokenBuilder.attributeValue.String() }
	quirks := func(p *HTMLTokenizer) string { return fmt.Sprintf("%t", p.tokenBuilder.forceQuirks) }

	parserStatefulnessTestCases := []parserStatefulnessTestCase{
		{"&", dataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), dataState.String() }, nil},
		{"&", rcDataState, func(p *HTMLTokenizer) (string, string) { return p.returnState.String(), rcDataState.String() }, nil},
		{"b", tagOpenState, func(p *HTMLTokenizer) (string, string) { return name(p), "b" }, nil},
		{"bAc", tagOpenState, func(p *HTMLTokenizer) (string, string) { return name(p), "bac" }, nil},
		{"bA\u0000c", tagOpenState, func(p *HTMLTokenizer) (string, string) { return name(p), "ba�c" }, nil},
		{"P", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return name(p), "p" }, nil},
		{"1", endTagOpenState, func(p *HTMLTokenizer) (string, string) { return data(p), "1" }, nil},
		{"U", rcDataEndTagNameState, func(p *HTMLTokenizer) (string, string) { return name(p), "u" }, nil},
		{"U", scriptDataEndTagNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.TempBuffer(), "U" }, nil},
		{"U", attributeNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeKey.String(), "u" }, nil},
		{"\u0000", attributeNameState, func(p *HTMLTokenizer) (string, string) { return p.tokenBuilder.attributeKey.String(), "�" }, nil},
		{"\u0000", attributeValueDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return value(p), "�" }, nil},
		{"A", attributeValueSingleQuotedState, func(p *HTMLTokenizer) (string, string) { return value(p), "A" }, nil},
		{"&", attributeValueUnquotedState, func(p *HTMLTokenizer) (string, string) {
			return p.returnState.String(), attributeValueUnquotedState.String()
		}, nil},
		{">", selfClosingStartTagState, func(p *HTMLTokenizer) (string, string) { return fmt.Sprintf("%t", p.tokenBuilder.selfClosing), "true" }, nil},
		{"\u0000", bogusCommentState, func(p *HTMLTokenizer) (string, string) { return data(p), "�" }, nil},
		{"3", commentStartDashState, func(p *HTMLTokenizer) (string, string) { return data(p), "-3" }, nil},
		{"<!", commentState, func(p *HTMLTokenizer) (string, string) { return data(p), "<!" }, nil},
		{"a", commentEndDashState, func(p *HTMLTokenizer) (string, string) { return data(p), "-a" }, nil},
		{"-", commentEndState, func(p *HTMLTokenizer) (string, string) { return data(p), "-" }, nil},
		{"A", commentEndState, func(p *HTMLTokenizer) (string, string) { return data(p), "--A" }, nil},
		{"-", commentEndBangState, func(p *HTMLTokenizer) (string, string) { return data(p), "--!" }, nil},
		{"A", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return name(p), "a" }, nil},
		{"\u0000", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return name(p), "�" }, nil},
		{"HtMl", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return name(p), "html" }, nil},
		{"html x", beforeDoctypeNameState, func(p *HTMLTokenizer) (string, string) { return quirks(p), "true" }, nil},
		{"a", attributeValueDoubleQuotedState, func(p *HTMLTokenizer) (string, string) { return value(p), "xa" },
			func(p *HTMLTokenizer) {
				p.tokenBuilder.WriteAttributeValue('x')
			}},
	}

	for _, testcase := range parserStatefulnessTestCases {
		runParserStatefulnessTest(testcase, t)
	}
}

func runParserStatefulnessTest(testcase parserStatefulnessTestCase, t *testing.T) {
	testName := fmt.Sprintf("%d-%q", testcase.startState, testcase.inHTML)
	t.Run(testName, func(t *testing.T) {
		t.Parallel()
		in := newInputStream()
		p := NewHTMLTokenizer(in, nil)
		if testcase.setup != nil {
			testcase.setup(p)
		}
		p.setState(testcase.startState)
		in.AppendString(testcase.inHTML)
		for p.Next() != nil {
		}
		answer, expected := testcase.testFunc(p)
		assert.Equal(t, expected, answer)
	})
}

func TestTokenizerOutput(t *testing.T) {
	tests := []struct {
		name   string
		state  tokenizerState
		in     string
		tokens []string
		errs   []ErrorCode
	}{
		{
			name:   "tags and text",
			in:     "<p class=x>hi</p>",
			tokens: []string{`<p class="x">`, `Characters("hi")`, "</p>", "EOF"},
		},
		{
			name:   "character references",
			in:     "&amp;&#65;&#x41;&unknown;",
			tokens: []string{`Characters("&AA&unknown;")`, "EOF"},
			errs:   []ErrorCode{errUnknownNamedCharacterReference},
		},
		{
			name:   "longest entity prefix",
			in:     "&notit;",
			tokens: []string{`Characters("¬it;")`, "EOF"},
			errs:   []ErrorCode{errMissingSemicolonAfterCharRef},
		},
		{
			name:   "windows-1252 numeric reference",
			in:     "&#x80;",
			tokens: []string{`Characters("€")`, "EOF"},
			errs:   []ErrorCode{errControlCharacterReference},
		},
		{
			name:   "lone ampersand",
			in:     "a & b&",
			tokens: []string{`Characters("a & b&")`, "EOF"},
		},
		{
			name:   "comment",
			in:     "<!-- c -->",
			tokens: []string{"<!-- c -->", "EOF"},
		},
		{
			name:   "doctype",
			in:     "<!DOCTYPE html>",
			tokens: []string{`<!DOCTYPE html public="" system="" quirks=false>`, "EOF"},
		},
		{
			name:   "doctype with identifiers",
			in:     `<!doctype html PUBLIC "-//W3C//DTD HTML 4.01//EN" 'x'>`,
			tokens: []string{`<!DOCTYPE html public="-//W3C//DTD HTML 4.01//EN" system="x" quirks=false>`, "EOF"},
		},
		{
			name:   "self-closing",
			in:     "<br/>",
			tokens: []string{"<br/>", "EOF"},
		},
		{
			name:   "end tag with attributes",
			in:     "</p x=1>",
			tokens: []string{"</p>", "EOF"},
			errs:   []ErrorCode{errEndTagWithAttributes},
		},
		{
			name:   "processing instruction",
			in:     "<?php ?>",
			tokens: []string{"<!--?php ?-->", "EOF"},
			errs:   []ErrorCode{errUnexpectedQuestionMarkInsteadOfTagName},
		},
		{
			name:   "line breaks",
			in:     "a\r\nb\rc",
			tokens: []string{`Characters("a\nb\nc")`, "EOF"},
		},
		{
			name:   "eof in tag",
			in:     "<div",
			tokens: []string{"EOF"},
			errs:   []ErrorCode{errEOFInTag},
		},
		{
			name:   "cdata outside foreign content",
			in:     "<![CDATA[x]]>",
			tokens: []string{"<!--[CDATA[x]]-->", "EOF"},
			errs:   []ErrorCode{errCDATAInHTMLContent},
		},
		{
			name:   "rcdata ignores tags",
			state:  rcDataState,
			in:     "<b>&lt;</b>",
			tokens: []string{`Characters("<b><</b>")`, "EOF"},
		},
		{
			name:   "rawtext ignores references",
			state:  rawTextState,
			in:     "&lt;<i>",
			tokens: []string{`Characters("&lt;<i>")`, "EOF"},
		},
		{
			name:   "plaintext takes everything",
			state:  plaintextState,
			in:     "</plaintext>",
			tokens: []string{`Characters("</plaintext>")`, "EOF"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			toks, errs := tokenize(tt.state, tt.in)
			assert.Equal(t, tt.tokens, tokenStrings(toks))
			if len(tt.errs) == 0 {
				assert.Empty(t, errs)
			} else {
				assert.Equal(t, tt.errs, errorCodes(errs))
			}
		})
	}
}

func TestTokenizerLocations(t *testing.T) {
	t.Parallel()
	toks, errs := tokenize(dataState, "<p>\n<b>\u0000")
	require.Len(t, toks, 5)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[1].Line)
	assert.Equal(t, 4, toks[1].Column)
	assert.Equal(t, 2, toks[2].Line)
	require.Len(t, errs, 1)
	assert.Equal(t, errUnexpectedNullCharacter, errs[0].Code)
	assert.Equal(t, 2, errs[0].Line)
	assert.Equal(t, 4, errs[0].Column)
}

// TestTokenizerChunking feeds the same input whole and in pieces of every
// size; the tokens, their positions and the errors must not change.
func TestTokenizerChunking(t *testing.T) {
	inputs := []struct {
		state tokenizerState
		in    string
	}{
		{dataState, `<!DOCTYPE html><html lang="en"><p class=a title='b&amp;c'>x &notin; y &#128512;</p>`},
		{dataState, "<!-- comment -- with --!> dashes --><!---->\r\n<?pi?>"},
		{dataState, "a\r\nb\r\rc&amp&ampx&#x110000;"},
		{dataState, "<a href=\"&copy=1\">café ☃</a><br/></p x>"},
		{dataState, `<!doctype html public "a" system 'b'><!DOCTYPE x SYSTEM "y"><!doctype>`},
		{scriptDataState, "if (a<b) { x = '<!--<script>'; } --></script>"},
		{rcDataState, "a&lt;b</titlex></title>"},
		{rawTextState, "p{}</style >"},
	}
	for _, tc := range inputs {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			wantToks, wantErrs := tokenize(tc.state, tc.in)
			for size := 1; size < len(tc.in); size++ {
				gotToks, gotErrs := tokenize(tc.state, splitEvery(tc.in, size)...)
				if diff := cmp.Diff(wantToks, gotToks); diff != "" {
					t.Fatalf("chunk size %d: tokens differ (-whole +chunked):\n%s", size, diff)
				}
				if diff := cmp.Diff(wantErrs, gotErrs); diff != "" {
					t.Fatalf("chunk size %d: errors differ (-whole +chunked):\n%s", size, diff)
				}
			}
		})
	}
}

// splitEvery cuts s into byte chunks of size n, splitting multi-byte
// characters when it lands inside one.
func splitEvery(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}

func TestTokenizerSuspendsMidReference(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	p := NewHTMLTokenizer(in, nil)
	in.AppendString("x&no")
	assert.Nil(t, p.Next())
	in.AppendString("tin; y")
	assert.Nil(t, p.Next())
	in.Close()
	tok := p.Next()
	require.NotNil(t, tok)
	assert.Equal(t, "x∉ y", tok.Data)
	assert.True(t, strings.HasPrefix(p.Next().String(), "EOF"))
}
