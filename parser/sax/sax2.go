package sax

import (
	"context"

	"github.com/pkg/errors"
)

// ErrHandlerUnspecified is returned when there is no callback registered
// for an event. Emit treats it as "not interested" and carries on.
var ErrHandlerUnspecified = errors.New("handler unspecified")

// SAX2 is the callback based Handler. Any callback may be left nil.
type SAX2 struct {
	StartDocumentHandler      StartDocumentFunc
	EndDocumentHandler        EndDocumentFunc
	StartElementHandler       StartElementFunc
	EndElementHandler         EndElementFunc
	CharactersHandler         CharactersFunc
	CommentHandler            CommentFunc
	StartDoctypeHandler       StartDoctypeFunc
	EndDoctypeHandler         EndDoctypeFunc
	StartPrefixMappingHandler StartPrefixMappingFunc
	EndPrefixMappingHandler   EndPrefixMappingFunc
}

// New creates a SAX2 with no callbacks.
func New() *SAX2 {
	return &SAX2{}
}

func (s SAX2) StartDocument(ctx context.Context) error {
	if h := s.StartDocumentHandler; h != nil {
		return h(ctx)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndDocument(ctx context.Context) error {
	if h := s.EndDocumentHandler; h != nil {
		return h(ctx)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) StartElement(ctx context.Context, uri, localName, qName string, attrs []Attribute) error {
	if h := s.StartElementHandler; h != nil {
		return h(ctx, uri, localName, qName, attrs)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndElement(ctx context.Context, uri, localName, qName string) error {
	if h := s.EndElementHandler; h != nil {
		return h(ctx, uri, localName, qName)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) Characters(ctx context.Context, data []byte) error {
	if h := s.CharactersHandler; h != nil {
		return h(ctx, data)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) Comment(ctx context.Context, data []byte) error {
	if h := s.CommentHandler; h != nil {
		return h(ctx, data)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) StartDoctype(ctx context.Context, name, publicID, systemID string) error {
	if h := s.StartDoctypeHandler; h != nil {
		return h(ctx, name, publicID, systemID)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndDoctype(ctx context.Context) error {
	if h := s.EndDoctypeHandler; h != nil {
		return h(ctx)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) StartPrefixMapping(ctx context.Context, prefix, uri string) error {
	if h := s.StartPrefixMappingHandler; h != nil {
		return h(ctx, prefix, uri)
	}
	return ErrHandlerUnspecified
}

func (s SAX2) EndPrefixMapping(ctx context.Context, prefix string) error {
	if h := s.EndPrefixMappingHandler; h != nil {
		return h(ctx, prefix)
	}
	return ErrHandlerUnspecified
}
