package parser

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type scriptingMode uint

const (
	scriptBoth scriptingMode = iota
	scriptOff
	scriptOn
)

// treeTest is one entry of an html5lib tree construction file.
type treeTest struct {
	name       string
	in         string
	context    string
	fragment   bool
	scriptMode scriptingMode
	expected   string
}

// readTreeTests splits a .dat file into its #data sections. Only the
// sections the tests care about are kept; #errors is ignored because
// error names differ between implementations.
func readTreeTests(t *testing.T, path string) []treeTest {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var (
		tests   []treeTest
		cur     *treeTest
		section string
		data    []string
		doc     []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		for len(doc) > 0 && doc[len(doc)-1] == "" {
			doc = doc[:len(doc)-1]
		}
		cur.in = strings.Join(data, "\n")
		cur.expected = strings.Join(doc, "\n")
		tests = append(tests, *cur)
		cur, data, doc = nil, nil, nil
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	sc.Split(splitLines)
	for line := 0; sc.Scan(); line++ {
		text := sc.Text()
		if isSectionHeader(text) {
			section = strings.TrimPrefix(text, "#")
			switch section {
			case "data":
				flush()
				cur = &treeTest{name: filepath.Base(path) + ":" + strconv.Itoa(line+1)}
			case "document-fragment":
				cur.fragment = true
			case "script-on":
				cur.scriptMode = scriptOn
			case "script-off":
				cur.scriptMode = scriptOff
			}
			continue
		}
		switch section {
		case "data":
			data = append(data, text)
		case "document-fragment":
			cur.context = strings.TrimSpace(text)
		case "document":
			doc = append(doc, text)
		}
	}
	require.NoError(t, sc.Err())
	flush()
	return tests
}

// splitLines is bufio.ScanLines without the carriage return stripping;
// some inputs end a line in a literal CR.
func splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func isSectionHeader(s string) bool {
	switch s {
	case "#errors", "#new-errors", "#document", "#document-fragment", "#script-on", "#script-off", "#data":
		return true
	}
	return false
}

func TestTreeConstructor(t *testing.T) {
	files, err := filepath.Glob("testdata/tree/*.dat")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		for _, test := range readTreeTests(t, file) {
			switch test.scriptMode {
			case scriptBoth:
				runTreeConstructorTest(test, t, false)
				runTreeConstructorTest(test, t, true)
			case scriptOn:
				runTreeConstructorTest(test, t, true)
			default:
				runTreeConstructorTest(test, t, false)
			}
		}
	}
}

func runTreeConstructorTest(test treeTest, t *testing.T, scripting bool) {
	name := test.name
	if scripting {
		name += "/scripting"
	}
	t.Run(name, func(t *testing.T) {
		t.Parallel()
		var (
			res *Result
			err error
		)
		if test.fragment {
			res, err = ParseFragment(test.context, test.in, WithScripting(scripting))
		} else {
			res, err = Parse(test.in, WithScripting(scripting))
		}
		require.NoError(t, err)
		if diff := cmp.Diff(test.expected, res.Document.String()); diff != "" {
			t.Errorf("input %q (-want +got):\n%s", test.in, diff)
		}
	})
}

func TestTreeConstructorShapes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "reconstructs formatting after a closed paragraph",
			in:   "<b>1<p>2</p>3</b>",
			want: `| <html>
|   <head>
|   <body>
|     <b>
|       "1"
|       <p>
|         "2"
|       "3"`,
		},
		{
			name: "reopens formatting closed by a paragraph end",
			in:   "<p><b>1</p>2",
			want: `| <html>
|   <head>
|   <body>
|     <p>
|       <b>
|         "1"
|     <b>
|       "2"`,
		},
		{
			name: "adoption agency moves the paragraph",
			in:   "<b><i><p></b></p>",
			want: `| <html>
|   <head>
|   <body>
|     <b>
|       <i>
|     <i>
|       <p>
|         <b>`,
		},
		{
			name: "foster parents text out of a table",
			in:   "<table>X<tr><td>Y</td></tr></table>",
			want: `| <html>
|   <head>
|   <body>
|     "X"
|     <table>
|       <tbody>
|         <tr>
|           <td>
|             "Y"`,
		},
		{
			name: "textarea drops its leading newline",
			in:   "<textarea>\nfoo</textarea>",
			want: `| <html>
|   <head>
|   <body>
|     <textarea>
|       "foo"`,
		},
		{
			name: "pre drops its leading newline",
			in:   "<pre>\n\nx</pre>",
			want: `| <html>
|   <head>
|   <body>
|     <pre>
|       "
x"`,
		},
		{
			name: "search closes an open paragraph",
			in:   "<p>a<search>b</search>c",
			want: `| <html>
|   <head>
|   <body>
|     <p>
|       "a"
|     <search>
|       "b"
|     "c"`,
		},
		{
			name: "template is an ordinary element",
			in:   "<template><td>x</td></template>",
			want: `| <html>
|   <head>
|   <body>
|     <template>
|       "x"`,
		},
		{
			name: "cdata in svg is text",
			in:   "<svg><![CDATA[a<b]]></svg>",
			want: `| <html>
|   <head>
|   <body>
|     <svg svg>
|       "a<b"`,
		},
		{
			name: "null in foreign content keeps frameset ok",
			in:   "<svg>\x00 </svg><frameset>",
			want: `| <html>
|   <head>
|   <frameset>`,
		},
		{
			name: "text in foreign content clears frameset ok",
			in:   "<svg>\x00a</svg><frameset>",
			want: "| <html>\n|   <head>\n|   <body>\n|     <svg svg>\n|       \"\ufffda\"",
		},
		{
			name: "foreign attributes are adjusted",
			in:   `<svg viewbox="0 0 1 1"><a xlink:href="#x"></a></svg>`,
			want: `| <html>
|   <head>
|   <body>
|     <svg svg>
|       viewBox="0 0 1 1"
|       <svg a>
|         xlink href="#x"`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := Parse(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, res.Document.String()); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}
