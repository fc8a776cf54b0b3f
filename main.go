package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/heathj/htmlstream/parser"
	"github.com/heathj/htmlstream/parser/charset"
	"github.com/heathj/htmlstream/parser/feed"
	"github.com/heathj/htmlstream/parser/sax"
	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"
)

type cmdopts struct {
	Fragment  string `short:"f" long:"fragment" description:"parse as a fragment of this context element, e.g. td or \"svg path\""`
	Scripting bool   `short:"s" long:"scripting" description:"parse with the scripting flag set"`
	Chunk     int    `short:"c" long:"chunk" description:"feed the input in chunks of this many bytes"`
	Format    string `short:"o" long:"format" default:"tree" choice:"tree" choice:"html" choice:"xml" choice:"sax" choice:"errors" description:"output format"`
	Encoding  string `short:"e" long:"encoding" description:"transport encoding label"`
	Verbose   []bool `short:"v" long:"verbose" description:"log parser activity at debug level, including token traces"`
	Listen    string `long:"listen" description:"serve the websocket feed on this address instead of parsing files"`
}

func main() {
	os.Exit(_main())
}

func _main() int {
	opts := cmdopts{}
	args, err := flags.ParseArgs(&opts, os.Args[1:])
	if err != nil {
		return 1
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevel(len(opts.Verbose)))

	if opts.Listen != "" {
		h := &feed.Handler{Fragment: opts.Fragment, Scripting: opts.Scripting, Logger: log}
		log.WithField("addr", opts.Listen).Info("serving feed")
		if err := http.ListenAndServe(opts.Listen, h); err != nil {
			log.WithError(err).Error("serve")
			return 1
		}
		return 0
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, name := range args {
		if err := run(name, opts, log); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", name, err)
			return 1
		}
	}
	return 0
}

// logLevel maps the number of -v flags to a logrus level.
func logLevel(verbose int) logrus.Level {
	if verbose > 0 {
		return logrus.DebugLevel
	}
	return logrus.WarnLevel
}

func open(name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

func run(name string, opts cmdopts, log *logrus.Logger) error {
	f, err := open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	r, enc, err := charset.NewReader(f, opts.Encoding)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"input": name, "encoding": enc}).Info("parsing")

	popts := []parser.ParseOption{parser.WithScripting(opts.Scripting), parser.WithLogger(log)}
	var p *parser.StreamParser
	if opts.Fragment != "" {
		if p, err = parser.NewFragmentStreamParser(opts.Fragment, popts...); err != nil {
			return err
		}
	} else {
		p = parser.NewStreamParser(popts...)
	}

	if opts.Chunk > 0 {
		buf := make([]byte, opts.Chunk)
		for {
			n, rerr := io.ReadFull(r, buf)
			if n > 0 {
				if _, err := p.Write(buf[:n]); err != nil {
					return err
				}
			}
			if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
				break
			}
			if rerr != nil {
				return rerr
			}
		}
	} else if _, err := p.ReadFrom(r); err != nil {
		return err
	}

	res, err := p.Close()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"input": name, "nodes": res.Document.Len(), "errors": len(res.Errors)}).Info("parsed")
	return output(os.Stdout, res, opts)
}

func output(w io.Writer, res *parser.Result, opts cmdopts) error {
	switch opts.Format {
	case "html":
		_, err := io.WriteString(w, res.Document.HTML()+"\n")
		return err
	case "xml":
		b := sax.NewTreeBuilder()
		if err := sax.Emit(context.Background(), res.Document, b); err != nil {
			return err
		}
		doc := b.Document()
		doc.Indent(2)
		_, err := doc.WriteTo(w)
		return err
	case "sax":
		return sax.Emit(context.Background(), res.Document, printer(w))
	case "errors":
		for _, e := range res.Errors {
			if _, err := fmt.Fprintln(w, e.Error()); err != nil {
				return err
			}
		}
		return nil
	}
	return res.Document.Dump(w)
}

// printer logs every event on its own line.
func printer(w io.Writer) *sax.SAX2 {
	h := sax.New()
	h.StartDocumentHandler = func(context.Context) error {
		_, err := fmt.Fprintln(w, "startDocument")
		return err
	}
	h.EndDocumentHandler = func(context.Context) error {
		_, err := fmt.Fprintln(w, "endDocument")
		return err
	}
	h.StartDoctypeHandler = func(_ context.Context, name, publicID, systemID string) error {
		_, err := fmt.Fprintf(w, "doctype %s %q %q\n", name, publicID, systemID)
		return err
	}
	h.StartPrefixMappingHandler = func(_ context.Context, prefix, uri string) error {
		_, err := fmt.Fprintf(w, "startPrefixMapping %s=%s\n", prefix, uri)
		return err
	}
	h.EndPrefixMappingHandler = func(_ context.Context, prefix string) error {
		_, err := fmt.Fprintf(w, "endPrefixMapping %s\n", prefix)
		return err
	}
	h.StartElementHandler = func(_ context.Context, uri, localName, qName string, attrs []sax.Attribute) error {
		var b strings.Builder
		b.WriteString("startElement " + qName)
		for _, a := range attrs {
			fmt.Fprintf(&b, " %s=%q", a.QName, a.Value)
		}
		_, err := fmt.Fprintln(w, b.String())
		return err
	}
	h.EndElementHandler = func(_ context.Context, uri, localName, qName string) error {
		_, err := fmt.Fprintln(w, "endElement "+qName)
		return err
	}
	h.CharactersHandler = func(_ context.Context, data []byte) error {
		_, err := fmt.Fprintf(w, "characters %q\n", data)
		return err
	}
	h.CommentHandler = func(_ context.Context, data []byte) error {
		_, err := fmt.Fprintf(w, "comment %q\n", data)
		return err
	}
	return h
}
