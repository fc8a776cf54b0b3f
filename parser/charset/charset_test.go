package charset

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		label    string
		want     string
		encoding string
	}{
		{"utf-8 bom", "\xef\xbb\xbf<p>caf\xc3\xa9", "", "<p>café", "utf-8"},
		{"utf-16le bom", "\xff\xfe<\x00p\x00>\x00", "", "<p>", "utf-16le"},
		{"bom beats label", "\xef\xbb\xbfx", "latin1", "x", "utf-8"},
		{"label", "caf\xe9", "latin1", "café", "windows-1252"},
		{"meta prescan", `<meta charset="iso-8859-2"><p>` + "\xb1", "", `<meta charset="iso-8859-2"><p>` + "ą", "iso-8859-2"},
		{"utf-8 without declaration", "caf\xc3\xa9!", "", "café!", "utf-8"},
		{"fallback", "\x80", "", "€", "windows-1252"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, name, err := NewReader(strings.NewReader(tt.in), tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, name)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestUnsupportedLabel(t *testing.T) {
	t.Parallel()
	_, _, err := NewReader(strings.NewReader("x"), "no-such-encoding")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)

	_, _, err = Lookup("no-such-encoding")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestLookup(t *testing.T) {
	t.Parallel()
	for label, want := range map[string]string{
		"latin1":    "windows-1252",
		"UTF8":      "utf-8",
		"sjis":      "shift_jis",
		"iso8859-2": "iso-8859-2",
	} {
		_, name, err := Lookup(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, name, label)
	}
}

func TestLongInputIsNotTruncated(t *testing.T) {
	t.Parallel()
	in := strings.Repeat("a", 3*prescanLength) + "\xe9"
	r, _, err := NewReader(strings.NewReader(in), "latin1")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 3*prescanLength)+"é", string(got))
}
