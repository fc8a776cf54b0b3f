package dom

// NodeID is a handle to a node stored in a Document's arena. Handles stay
// valid for the life of the Document, including after a node is detached.
type NodeID int32

// Nil is the handle of no node.
const Nil NodeID = -1

type NodeType uint8

const (
	DocumentNode NodeType = iota + 1
	DoctypeNode
	ElementNode
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case DoctypeNode:
		return "doctype"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

type Namespace string

const (
	HTML   Namespace = "http://www.w3.org/1999/xhtml"
	MathML Namespace = "http://www.w3.org/1998/Math/MathML"
	SVG    Namespace = "http://www.w3.org/2000/svg"
	XLink  Namespace = "http://www.w3.org/1999/xlink"
	XML    Namespace = "http://www.w3.org/XML/1998/namespace"
	XMLNS  Namespace = "http://www.w3.org/2000/xmlns/"
)

// Prefix is the short name used for the namespace in tree dumps and
// qualified names.
func (ns Namespace) Prefix() string {
	switch ns {
	case SVG:
		return "svg"
	case MathML:
		return "math"
	case XLink:
		return "xlink"
	case XML:
		return "xml"
	case XMLNS:
		return "xmlns"
	}
	return ""
}

// Attr is a single attribute. Namespace and Prefix are only set for the
// adjusted foreign attributes (xlink:href, xml:lang, ...).
type Attr struct {
	Namespace Namespace
	Prefix    string
	Name      string
	Value     string
}

// QualifiedName returns prefix:name, or just name when there is no prefix.
func (a Attr) QualifiedName() string {
	if a.Prefix == "" {
		return a.Name
	}
	return a.Prefix + ":" + a.Name
}

// Node is one entry of the arena. Element nodes use Namespace, Name and
// Attrs. Text and comment nodes use Data. Doctype nodes keep their name in
// Name and their identifiers as "public"/"system" attributes, present only
// when the doctype had them.
type Node struct {
	Type      NodeType
	Namespace Namespace
	Name      string
	Data      string
	Attrs     []Attr

	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	PrevSibling NodeID
	NextSibling NodeID
}

// Attr returns the value of the first attribute with the given name and no
// namespace.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Namespace == "" && a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// IsElement reports whether n is an element named name in namespace ns.
func (n *Node) IsElement(ns Namespace, name string) bool {
	return n.Type == ElementNode && n.Namespace == ns && n.Name == name
}

func cloneAttrs(attrs []Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	copy(out, attrs)
	return out
}
