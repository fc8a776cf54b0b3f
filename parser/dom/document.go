package dom

import "fmt"

type QuirksMode uint8

const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	Quirks
)

func (q QuirksMode) String() string {
	switch q {
	case LimitedQuirks:
		return "limited-quirks"
	case Quirks:
		return "quirks"
	}
	return "no-quirks"
}

// Document owns every node created while parsing. Nodes are addressed by
// NodeID and never move in the arena, so the parser can hold handles on its
// stacks while the tree is rearranged underneath them.
type Document struct {
	nodes []Node
	Mode  QuirksMode
}

// New creates a Document holding only its root node.
func New() *Document {
	d := &Document{}
	d.alloc(Node{Type: DocumentNode})
	return d
}

// Root is the handle of the document node.
func (d *Document) Root() NodeID {
	return 0
}

// Len is the number of nodes ever allocated, attached or not.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Node returns the node for id. The pointer is only valid until the next
// node is allocated.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		panic(fmt.Sprintf("dom: invalid node id %d", id))
	}
	return &d.nodes[id]
}

func (d *Document) alloc(n Node) NodeID {
	n.Parent, n.FirstChild, n.LastChild, n.PrevSibling, n.NextSibling = Nil, Nil, Nil, Nil, Nil
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) CreateElement(ns Namespace, name string, attrs []Attr) NodeID {
	return d.alloc(Node{Type: ElementNode, Namespace: ns, Name: name, Attrs: attrs})
}

func (d *Document) CreateText(data string) NodeID {
	return d.alloc(Node{Type: TextNode, Data: data})
}

func (d *Document) CreateComment(data string) NodeID {
	return d.alloc(Node{Type: CommentNode, Data: data})
}

// CreateDoctype creates a doctype node. ids holds the "public" and "system"
// identifiers that were present in the source.
func (d *Document) CreateDoctype(name string, ids []Attr) NodeID {
	return d.alloc(Node{Type: DoctypeNode, Name: name, Attrs: ids})
}

// CloneElement creates a detached copy of an element with the same name,
// namespace and attributes but no children.
func (d *Document) CloneElement(id NodeID) NodeID {
	n := d.Node(id)
	return d.CreateElement(n.Namespace, n.Name, cloneAttrs(n.Attrs))
}

// AppendChild adds child as the last child of parent, detaching it first if
// it is attached somewhere else.
func (d *Document) AppendChild(parent, child NodeID) {
	d.InsertBefore(parent, child, Nil)
}

// InsertBefore inserts child into parent immediately before ref. A Nil ref
// appends.
func (d *Document) InsertBefore(parent, child, ref NodeID) {
	if d.nodes[child].Parent != Nil {
		d.Detach(child)
	}
	c := &d.nodes[child]
	c.Parent = parent
	p := &d.nodes[parent]
	if ref == Nil {
		c.PrevSibling = p.LastChild
		c.NextSibling = Nil
		if p.LastChild != Nil {
			d.nodes[p.LastChild].NextSibling = child
		} else {
			p.FirstChild = child
		}
		p.LastChild = child
		return
	}

	r := &d.nodes[ref]
	c.PrevSibling = r.PrevSibling
	c.NextSibling = ref
	if r.PrevSibling != Nil {
		d.nodes[r.PrevSibling].NextSibling = child
	} else {
		p.FirstChild = child
	}
	r.PrevSibling = child
}

// Detach removes id from its parent. The node and its subtree stay in the
// arena and may be attached again.
func (d *Document) Detach(id NodeID) {
	n := &d.nodes[id]
	if n.Parent == Nil {
		return
	}
	p := &d.nodes[n.Parent]
	if n.PrevSibling != Nil {
		d.nodes[n.PrevSibling].NextSibling = n.NextSibling
	} else {
		p.FirstChild = n.NextSibling
	}
	if n.NextSibling != Nil {
		d.nodes[n.NextSibling].PrevSibling = n.PrevSibling
	} else {
		p.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = Nil, Nil, Nil
}

// ReparentChildren moves every child of src, in order, to the end of dst.
func (d *Document) ReparentChildren(dst, src NodeID) {
	for c := d.nodes[src].FirstChild; c != Nil; c = d.nodes[src].FirstChild {
		d.AppendChild(dst, c)
	}
}

// AppendText adds data to the end of parent, extending the last child when
// it is already a text node.
func (d *Document) AppendText(parent NodeID, data string) {
	if last := d.nodes[parent].LastChild; last != Nil && d.nodes[last].Type == TextNode {
		d.nodes[last].Data += data
		return
	}
	d.AppendChild(parent, d.CreateText(data))
}

// InsertTextBefore inserts data into parent before ref, extending the
// preceding text node when there is one. A Nil ref behaves like AppendText.
func (d *Document) InsertTextBefore(parent, ref NodeID, data string) {
	if ref == Nil {
		d.AppendText(parent, data)
		return
	}
	if prev := d.nodes[ref].PrevSibling; prev != Nil && d.nodes[prev].Type == TextNode {
		d.nodes[prev].Data += data
		return
	}
	d.InsertBefore(parent, d.CreateText(data), ref)
}

// Children returns the handles of id's children in document order.
func (d *Document) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := d.nodes[id].FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// Parent returns id's parent handle, or Nil.
func (d *Document) Parent(id NodeID) NodeID {
	return d.nodes[id].Parent
}

// Walk visits id and its descendants in document order. enter is called
// before a node's children and leave after them; either may be nil.
func (d *Document) Walk(id NodeID, enter, leave func(NodeID) error) error {
	if enter != nil {
		if err := enter(id); err != nil {
			return err
		}
	}
	for c := d.nodes[id].FirstChild; c != Nil; c = d.nodes[c].NextSibling {
		if err := d.Walk(c, enter, leave); err != nil {
			return err
		}
	}
	if leave != nil {
		return leave(id)
	}
	return nil
}
