package parser

import (
	"io"

	"github.com/heathj/htmlstream/parser/sax"
	"github.com/lestrrat-go/option"
	"github.com/sirupsen/logrus"
)

type Option = option.Interface

type identScripting struct{}
type identIframeSrcdoc struct{}
type identLogger struct{}
type identErrorHandler struct{}
type identSink struct{}

// ParseOption configures Parse, ParseFragment and NewStreamParser.
type ParseOption interface {
	Option
	parseOption()
}

type parseOption struct{ Option }

func (*parseOption) parseOption() {}

// WithScripting sets the scripting flag. With scripting on, noscript
// content is raw text.
func WithScripting(v bool) ParseOption {
	return &parseOption{option.New(identScripting{}, v)}
}

// WithIframeSrcdoc marks the input as an iframe srcdoc document, which is
// never put in quirks mode.
func WithIframeSrcdoc(v bool) ParseOption {
	return &parseOption{option.New(identIframeSrcdoc{}, v)}
}

// WithLogger sets the logger that receives debug traces of tokens, mode
// changes and parse errors.
func WithLogger(v logrus.FieldLogger) ParseOption {
	return &parseOption{option.New(identLogger{}, v)}
}

// WithErrorHandler registers a callback that is invoked for every parse
// error as soon as it is found.
func WithErrorHandler(v func(ParseError)) ParseOption {
	return &parseOption{option.New(identErrorHandler{}, v)}
}

// WithSink registers a handler that receives the finished tree as SAX
// events when the parser is closed.
func WithSink(v sax.Handler) ParseOption {
	return &parseOption{option.New(identSink{}, v)}
}

type htmlParserConfig struct {
	scripting    bool
	iframeSrcdoc bool
	logger       logrus.FieldLogger
	onError      func(ParseError)
	sink         sax.Handler
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newConfig(options []ParseOption) htmlParserConfig {
	var cfg htmlParserConfig
	for _, o := range options {
		switch o.Ident() {
		case identScripting{}:
			cfg.scripting = o.Value().(bool)
		case identIframeSrcdoc{}:
			cfg.iframeSrcdoc = o.Value().(bool)
		case identLogger{}:
			cfg.logger, _ = o.Value().(logrus.FieldLogger)
		case identErrorHandler{}:
			cfg.onError, _ = o.Value().(func(ParseError))
		case identSink{}:
			cfg.sink, _ = o.Value().(sax.Handler)
		}
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}
	return cfg
}
