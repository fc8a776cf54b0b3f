package parser

import (
	"github.com/heathj/htmlstream/parser/dom"
)

// noahsArkLimit is how many identical formatting elements may sit in the
// list after the last marker.
const noahsArkLimit = 3

// formattingEntry is an element in the list of active formatting elements,
// or a marker.
type formattingEntry struct {
	stackItem
	attrs  []dom.Attr
	marker bool
}

// activeFormatting is the list of active formatting elements.
// https://html.spec.whatwg.org/multipage/parsing.html#list-of-active-formatting-elements
type activeFormatting struct {
	entries []formattingEntry
}

func (f *activeFormatting) len() int {
	return len(f.entries)
}

func (f *activeFormatting) at(i int) formattingEntry {
	return f.entries[i]
}

func sameAttrs(a, b []dom.Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// push adds an element, first evicting the earliest of its twins when
// noahsArkLimit of them already follow the last marker.
func (f *activeFormatting) push(item stackItem, attrs []dom.Attr) {
	twins, earliest := 0, -1
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.marker {
			break
		}
		if e.ns == item.ns && e.name == item.name && sameAttrs(e.attrs, attrs) {
			twins++
			earliest = i
		}
	}
	if twins >= noahsArkLimit {
		f.removeAt(earliest)
	}
	f.entries = append(f.entries, formattingEntry{stackItem: item, attrs: attrs})
}

func (f *activeFormatting) insertMarker() {
	f.entries = append(f.entries, formattingEntry{stackItem: stackItem{id: dom.Nil}, marker: true})
}

// https://html.spec.whatwg.org/multipage/parsing.html#clear-the-list-of-active-formatting-elements-up-to-the-last-marker
func (f *activeFormatting) clearToLastMarker() {
	for len(f.entries) > 0 {
		e := f.entries[len(f.entries)-1]
		f.entries = f.entries[:len(f.entries)-1]
		if e.marker {
			return
		}
	}
}

// index returns the position of the element id, or -1.
func (f *activeFormatting) index(id dom.NodeID) int {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if !f.entries[i].marker && f.entries[i].id == id {
			return i
		}
	}
	return -1
}

func (f *activeFormatting) removeAt(i int) {
	copy(f.entries[i:], f.entries[i+1:])
	f.entries = f.entries[:len(f.entries)-1]
}

func (f *activeFormatting) remove(id dom.NodeID) {
	if i := f.index(id); i != -1 {
		f.removeAt(i)
	}
}

// lastBeforeMarker returns the position of the last element with the given
// name between the end of the list and the last marker, or -1.
func (f *activeFormatting) lastBeforeMarker(name string) int {
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.marker {
			return -1
		}
		if e.ns == dom.HTML && e.name == name {
			return i
		}
	}
	return -1
}

func (f *activeFormatting) replace(i int, item stackItem) {
	f.entries[i].stackItem = item
}

func (f *activeFormatting) insertAt(i int, e formattingEntry) {
	f.entries = append(f.entries, formattingEntry{})
	copy(f.entries[i+1:], f.entries[i:])
	f.entries[i] = e
}
