package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func readAll(in *inputStream) (string, rune) {
	var out []rune
	for {
		r := in.char()
		if r == eofRune || r == drainRune {
			in.commit()
			return string(out), r
		}
		out = append(out, r)
	}
}

func TestInputStream(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   string
	}{
		{"plain", []string{"abc"}, "abc"},
		{"crlf", []string{"a\r\nb"}, "a\nb"},
		{"lone cr", []string{"a\rb\r"}, "a\nb\n"},
		{"crlf across chunks", []string{"a\r", "\nb"}, "a\nb"},
		{"cr cr lf", []string{"\r\r\n"}, "\n\n"},
		{"split utf-8", []string{"caf\xc3", "\xa9"}, "café"},
		{"split four byte sequence", []string{"\xf0\x9f", "\x98", "\x80!"}, "😀!"},
		{"empty chunks", []string{"", "x", ""}, "x"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := newInputStream()
			for _, c := range tt.chunks {
				in.AppendString(c)
			}
			in.Close()
			got, end := readAll(in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, eofRune, end)
		})
	}
}

func TestInputStreamDrainAndEOF(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	in.AppendString("ab")
	assert.Equal(t, 'a', in.char())
	assert.Equal(t, 'b', in.char())
	assert.Equal(t, drainRune, in.char())
	assert.Equal(t, drainRune, in.peek(0))

	in.Close()
	assert.Equal(t, eofRune, in.char())
	assert.Equal(t, eofRune, in.char())
}

func TestInputStreamTruncatedSequenceAtClose(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	in.AppendString("x\xe2\x98")
	in.Close()
	got, _ := readAll(in)
	assert.Equal(t, "x\uFFFD", got)
}

func TestInputStreamCommitUndo(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	in.AppendString("abc\ndef")

	in.char()
	in.commit()
	in.char()
	in.char()
	in.undo()
	assert.Equal(t, 'b', in.char())

	in.unget(5)
	assert.Equal(t, 'b', in.char(), "unget never passes the last commit")

	match, more := in.lookingAt("C\nDEF", true)
	assert.True(t, match)
	assert.False(t, more)

	match, more = in.lookingAt("c\ndefg", false)
	assert.False(t, match)
	assert.True(t, more)

	in.advance(2)
	in.commit()
	line, col := in.location()
	assert.Equal(t, 2, line)
	assert.Equal(t, 1, col)
}

func TestInputStreamMatch(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	in.AppendString("abc<d")

	s, ok := in.matchUntil(func(r rune) bool { return r == '<' })
	assert.Equal(t, "abc", s)
	assert.True(t, ok)

	in.char()
	s, ok = in.matchWhile(isASCIIAlpha)
	assert.Equal(t, "d", s)
	assert.False(t, ok, "the buffer ran dry before the run ended")

	in.Close()
	_, ok = in.matchWhile(isASCIIAlpha)
	assert.True(t, ok)
}

func TestInputStreamCompaction(t *testing.T) {
	t.Parallel()
	in := newInputStream()
	for i := 0; i < compactThreshold+10; i++ {
		in.AppendString("x")
		in.char()
		in.commit()
	}
	in.AppendString("yz")
	assert.Equal(t, 'y', in.char())
	assert.Less(t, len(in.buf), compactThreshold)
	_, col := in.location()
	assert.Equal(t, compactThreshold+11, col)
}
