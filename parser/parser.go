package parser

import (
	"context"
	"io"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/heathj/htmlstream/parser/sax"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Progress is what the tree constructor hands back to the tokenizer after a
// token: a state to switch to, if any, and whether CDATA sections are
// recognized at the current position.
type Progress struct {
	TokenizerState *tokenizerState
	AllowCDATA     bool
}

// Result is a finished parse.
type Result struct {
	Document *dom.Document
	// Errors lists every parse error in the order it was found, which is
	// not always source order: the tokenizer reports as it reads, while
	// tree construction reports when it receives a token, and text is only
	// handed over once the next non-text token or the end of input is
	// reached. Tokenizer errors point at the offending character. Tree
	// construction errors point at the first character of a text token or
	// at the last character of any other token.
	Errors []ParseError
}

// StreamParser parses a document that arrives in chunks. It implements
// io.Writer and io.ReaderFrom; every Write tokenizes and builds as far as
// the buffered input allows.
type StreamParser struct {
	Tokenizer       *HTMLTokenizer
	TreeConstructor *HTMLTreeConstructor

	in     *inputStream
	config htmlParserConfig
	errs   []ParseError
	closed bool
	result *Result
}

// NewStreamParser creates a parser for a whole document.
func NewStreamParser(options ...ParseOption) *StreamParser {
	return newStreamParser(dom.New(), newConfig(options))
}

func newStreamParser(doc *dom.Document, cfg htmlParserConfig) *StreamParser {
	p := &StreamParser{
		in:     newInputStream(),
		config: cfg,
	}
	p.Tokenizer = NewHTMLTokenizer(p.in, p.report)
	cfg.onError = p.report
	p.TreeConstructor = NewHTMLTreeConstructor(doc, cfg)
	return p
}

func (p *StreamParser) report(e ParseError) {
	p.errs = append(p.errs, e)
	if p.config.onError != nil {
		p.config.onError(e)
	}
}

// Write feeds a chunk of UTF-8 markup. A multi-byte sequence may be split
// across chunks.
func (p *StreamParser) Write(b []byte) (int, error) {
	if p.closed {
		return 0, errors.Wrap(ErrClosed, "write")
	}
	p.in.Append(b)
	p.pump()
	return len(b), nil
}

// WriteString is Write for strings.
func (p *StreamParser) WriteString(s string) (int, error) {
	return p.Write([]byte(s))
}

// ReadFrom feeds everything r produces. It does not close the parser.
func (p *StreamParser) ReadFrom(r io.Reader) (int64, error) {
	var n int64
	buf := make([]byte, 32*1024)
	for {
		m, err := r.Read(buf)
		if m > 0 {
			if _, werr := p.Write(buf[:m]); werr != nil {
				return n, werr
			}
			n += int64(m)
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, errors.Wrap(err, "read input")
		}
	}
}

// Close signals the end of input, finishes the tree and delivers it to the
// sink, if one was configured. Calling Close again returns the same result.
func (p *StreamParser) Close() (*Result, error) {
	if p.closed {
		return p.result, nil
	}
	p.closed = true
	p.in.Close()
	p.pump()

	if p.TreeConstructor.context != nil {
		liftFragment(p.TreeConstructor.doc)
	}
	p.result = &Result{Document: p.TreeConstructor.doc, Errors: p.errs}
	if p.config.sink != nil {
		if err := sax.Emit(context.Background(), p.result.Document, p.config.sink); err != nil {
			return p.result, errors.Wrap(err, "emit tree")
		}
	}
	return p.result, nil
}

// pump runs tokens through tree construction until the tokenizer needs more
// input.
func (p *StreamParser) pump() {
	for {
		t := p.Tokenizer.Next()
		if t == nil {
			return
		}
		p.config.logger.WithFields(logrus.Fields{
			"token": t.String(),
			"state": p.Tokenizer.currentState.String(),
		}).Debug("token")
		p.apply(p.TreeConstructor.ProcessToken(t))
	}
}

func (p *StreamParser) apply(progress *Progress) {
	if progress.TokenizerState != nil {
		p.Tokenizer.setState(*progress.TokenizerState)
	}
	p.Tokenizer.allowCDATA = progress.AllowCDATA
}

// Parse parses a complete document.
func Parse(input string, options ...ParseOption) (*Result, error) {
	p := NewStreamParser(options...)
	if _, err := p.WriteString(input); err != nil {
		return nil, err
	}
	return p.Close()
}

// ParseReader parses a complete document read from r.
func ParseReader(r io.Reader, options ...ParseOption) (*Result, error) {
	p := NewStreamParser(options...)
	if _, err := p.ReadFrom(r); err != nil {
		return nil, err
	}
	return p.Close()
}
