// Package charset turns bytes in a legacy or labelled encoding into the
// UTF-8 text the parser consumes.
package charset

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	xcharset "golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding is returned for a label that names no WHATWG
// encoding.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// prescanLength is how many leading bytes are searched for a BOM or a meta
// charset declaration.
const prescanLength = 1024

// Lookup resolves a WHATWG encoding label such as "latin1" or "sjis" to an
// encoding and its canonical name.
func Lookup(label string) (encoding.Encoding, string, error) {
	e, err := htmlindex.Get(label)
	if err != nil {
		return nil, "", errors.Wrapf(ErrUnsupportedEncoding, "label %q", label)
	}
	name, err := htmlindex.Name(e)
	if err != nil {
		return nil, "", errors.Wrapf(ErrUnsupportedEncoding, "label %q", label)
	}
	return e, name, nil
}

// Detect picks the encoding of a document from its first bytes. A byte
// order mark wins, then label, then a <meta> declaration found by the
// prescan. Input that is valid UTF-8 with non-ASCII bytes is taken as UTF-8;
// anything else is windows-1252.
func Detect(head []byte, label string) (encoding.Encoding, string, error) {
	contentType := ""
	if label != "" {
		if _, _, err := Lookup(label); err != nil {
			return nil, "", err
		}
		contentType = "text/html; charset=" + label
	}
	if len(head) > prescanLength {
		head = head[:prescanLength]
	}
	e, name, _ := xcharset.DetermineEncoding(head, contentType)
	return e, name, nil
}

// NewReader returns a reader that decodes r to UTF-8, along with the name
// of the encoding that was chosen. A leading byte order mark is removed.
func NewReader(r io.Reader, label string) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, prescanLength)
	head, err := br.Peek(prescanLength)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", errors.Wrap(err, "sniff encoding")
	}
	e, name, err := Detect(head, label)
	if err != nil {
		return nil, "", err
	}
	return transform.NewReader(br, unicode.BOMOverride(e.NewDecoder())), name, nil
}
