package sax

import "context"

// Attribute is an attribute as delivered to StartElement.
type Attribute struct {
	URI       string
	LocalName string
	QName     string
	Value     string
}

type StartDocumentFunc func(ctx context.Context) error
type EndDocumentFunc func(ctx context.Context) error
type StartElementFunc func(ctx context.Context, uri, localName, qName string, attrs []Attribute) error
type EndElementFunc func(ctx context.Context, uri, localName, qName string) error
type CharactersFunc func(ctx context.Context, data []byte) error
type CommentFunc func(ctx context.Context, data []byte) error
type StartDoctypeFunc func(ctx context.Context, name, publicID, systemID string) error
type EndDoctypeFunc func(ctx context.Context) error
type StartPrefixMappingFunc func(ctx context.Context, prefix, uri string) error
type EndPrefixMappingFunc func(ctx context.Context, prefix string) error

// Handler receives a parsed tree as a stream of events. Events arrive in
// document order once the tree is complete; a handler never sees a node
// that is later moved.
type Handler interface {
	StartDocument(ctx context.Context) error
	EndDocument(ctx context.Context) error
	StartElement(ctx context.Context, uri, localName, qName string, attrs []Attribute) error
	EndElement(ctx context.Context, uri, localName, qName string) error
	Characters(ctx context.Context, data []byte) error
	Comment(ctx context.Context, data []byte) error
	StartDoctype(ctx context.Context, name, publicID, systemID string) error
	EndDoctype(ctx context.Context) error
	StartPrefixMapping(ctx context.Context, prefix, uri string) error
	EndPrefixMapping(ctx context.Context, prefix string) error
}
