package parser

import (
	"unicode/utf8"
)

const (
	// eofRune is returned by reads once the stream is closed and exhausted.
	eofRune rune = -1
	// drainRune is returned by reads that run past the buffered input while
	// more input may still arrive.
	drainRune rune = -2
)

// compactThreshold is how many committed runes may pile up before the
// buffer is shifted down.
const compactThreshold = 4096

// inputStream is a resumable cursor over markup that arrives in chunks.
// Everything before mark has been committed and can never be re-read;
// everything between mark and pos has been read speculatively and is
// rewound by undo.
type inputStream struct {
	buf    []rune
	pos    int
	mark   int
	closed bool

	// pending holds an incomplete UTF-8 sequence from the end of the
	// previous chunk.
	pending []byte
	// skipLF is set when a chunk ended in CR, so that a LF starting the next
	// chunk belongs to the same line break.
	skipLF bool

	line, col int
}

func newInputStream() *inputStream {
	return &inputStream{line: 1, col: 1}
}

// Append adds a chunk of UTF-8 text, normalizing line breaks.
func (in *inputStream) Append(chunk []byte) {
	if len(in.pending) > 0 {
		chunk = append(in.pending, chunk...)
		in.pending = nil
	}
	for len(chunk) > 0 {
		r, size := utf8.DecodeRune(chunk)
		if r == utf8.RuneError && size == 1 && !utf8.FullRune(chunk) && !in.closed {
			in.pending = append([]byte(nil), chunk...)
			return
		}
		chunk = chunk[size:]
		in.appendRune(r)
	}
}

// AppendString is Append for string chunks.
func (in *inputStream) AppendString(chunk string) {
	in.Append([]byte(chunk))
}

func (in *inputStream) appendRune(r rune) {
	switch {
	case r == '\r':
		in.buf = append(in.buf, '\n')
		in.skipLF = true
		return
	case r == '\n' && in.skipLF:
		in.skipLF = false
		return
	}
	in.skipLF = false
	in.buf = append(in.buf, r)
}

// Close marks the end of input. Reads past the buffered end return eofRune
// from now on.
func (in *inputStream) Close() {
	if in.closed {
		return
	}
	in.closed = true
	if len(in.pending) > 0 {
		// A truncated sequence decodes to a single replacement character.
		in.pending = nil
		in.appendRune(utf8.RuneError)
	}
}

func (in *inputStream) end() rune {
	if in.closed {
		return eofRune
	}
	return drainRune
}

// char consumes and returns the next rune. At the end of the buffer it
// returns eofRune or drainRune without moving.
func (in *inputStream) char() rune {
	if in.pos >= len(in.buf) {
		return in.end()
	}
	r := in.buf[in.pos]
	in.pos++
	return r
}

// peek returns the rune n places after the cursor without consuming it.
func (in *inputStream) peek(n int) rune {
	if in.pos+n >= len(in.buf) {
		return in.end()
	}
	return in.buf[in.pos+n]
}

// matchWhile consumes runes as long as pred holds. ok is false when the
// buffer ran dry before a rune failing pred (or eof) was seen.
func (in *inputStream) matchWhile(pred func(rune) bool) (s string, ok bool) {
	start := in.pos
	for in.pos < len(in.buf) && pred(in.buf[in.pos]) {
		in.pos++
	}
	s = string(in.buf[start:in.pos])
	return s, in.pos < len(in.buf) || in.closed
}

// matchUntil consumes runes up to the first one satisfying pred.
func (in *inputStream) matchUntil(pred func(rune) bool) (string, bool) {
	return in.matchWhile(func(r rune) bool { return !pred(r) })
}

// lookingAt reports whether the runes at the cursor spell s, comparing ASCII
// letters case-insensitively when fold is set. more is true when the buffer
// ended before a decision could be made.
func (in *inputStream) lookingAt(s string, fold bool) (match, more bool) {
	i := 0
	for _, want := range s {
		r := in.peek(i)
		if r == drainRune {
			return false, true
		}
		if r == eofRune {
			return false, false
		}
		if fold {
			r, want = toLowerASCII(r), toLowerASCII(want)
		}
		if r != want {
			return false, false
		}
		i++
	}
	return true, false
}

func (in *inputStream) advance(n int) {
	in.pos += n
	if in.pos > len(in.buf) {
		in.pos = len(in.buf)
	}
}

// unget steps the cursor back n runes, never past the last commit.
func (in *inputStream) unget(n int) {
	in.pos -= n
	if in.pos < in.mark {
		in.pos = in.mark
	}
}

// commit accepts everything read so far.
func (in *inputStream) commit() {
	for _, r := range in.buf[in.mark:in.pos] {
		if r == '\n' {
			in.line++
			in.col = 1
		} else {
			in.col++
		}
	}
	in.mark = in.pos
	if in.mark >= compactThreshold {
		n := copy(in.buf, in.buf[in.mark:])
		in.buf = in.buf[:n]
		in.pos -= in.mark
		in.mark = 0
	}
}

// undo rewinds to the last commit.
func (in *inputStream) undo() {
	in.pos = in.mark
}

// location is the line and column of the first uncommitted rune.
func (in *inputStream) location() (line, col int) {
	return in.line, in.col
}

func toLowerASCII(r rune) rune {
	if 'A' <= r && r <= 'Z' {
		return r + 0x20
	}
	return r
}
