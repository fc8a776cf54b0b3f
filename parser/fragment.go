package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"github.com/pkg/errors"
	"golang.org/x/net/html/atom"
)

// parseContext splits a fragment context such as "td", "svg path" or
// "math mi" into a namespace and a local name.
func parseContext(context string) (dom.Namespace, string, error) {
	ns, name := dom.HTML, context
	if prefix, local, ok := strings.Cut(context, " "); ok {
		switch prefix {
		case "svg":
			ns = dom.SVG
		case "math":
			ns = dom.MathML
		default:
			return "", "", errors.Wrapf(ErrUnknownContext, "context %q", context)
		}
		name = local
	}
	if name == "" {
		return "", "", errors.Wrapf(ErrUnknownContext, "context %q", context)
	}
	if ns == dom.HTML && atom.Lookup([]byte(name)) == 0 {
		return "", "", errors.Wrapf(ErrUnknownContext, "context %q", context)
	}
	return ns, name, nil
}

// fragmentTokenizerState is the state the tokenizer starts in for a given
// HTML context element.
// https://html.spec.whatwg.org/multipage/parsing.html#html-fragment-parsing-algorithm
func fragmentTokenizerState(ctx stackItem, scripting bool) tokenizerState {
	if ctx.ns != dom.HTML {
		return dataState
	}
	switch ctx.atom {
	case atom.Title, atom.Textarea:
		return rcDataState
	case atom.Style, atom.Xmp, atom.Iframe, atom.Noembed, atom.Noframes:
		return rawTextState
	case atom.Script:
		return scriptDataState
	case atom.Noscript:
		if scripting {
			return rawTextState
		}
	case atom.Plaintext:
		return plaintextState
	}
	return dataState
}

// NewFragmentStreamParser creates a parser for markup that belongs inside
// an element named by context. The context is validated before anything
// is parsed.
func NewFragmentStreamParser(context string, options ...ParseOption) (*StreamParser, error) {
	ns, name, err := parseContext(context)
	if err != nil {
		return nil, err
	}

	doc := dom.New()
	p := newStreamParser(doc, newConfig(options))
	c := p.TreeConstructor

	ctx := newStackItem(doc.CreateElement(ns, name, nil), ns, name)
	c.context = &ctx

	root := c.createElementForToken(&Token{TokenType: startTagToken, TagName: "html", Atom: atom.Html}, dom.HTML)
	doc.AppendChild(doc.Root(), root.id)
	c.oe.push(root)

	c.mode = c.resetInsertionMode()
	if ctx.isHTML(atom.Form) {
		c.formElementPointer = ctx.id
	}

	state := fragmentTokenizerState(ctx, p.config.scripting)
	p.apply(&Progress{TokenizerState: &state, AllowCDATA: c.allowCDATA()})
	return p, nil
}

// ParseFragment parses input as the contents of a context element. The
// parsed nodes become the children of the returned document's root.
func ParseFragment(context, input string, options ...ParseOption) (*Result, error) {
	p, err := NewFragmentStreamParser(context, options...)
	if err != nil {
		return nil, err
	}
	if _, err := p.WriteString(input); err != nil {
		return nil, err
	}
	return p.Close()
}

// liftFragment replaces the synthetic html root with its children.
func liftFragment(doc *dom.Document) {
	root := doc.Root()
	for _, id := range doc.Children(root) {
		n := doc.Node(id)
		if n.Type == dom.ElementNode && n.Namespace == dom.HTML && n.Name == "html" {
			doc.ReparentChildren(root, id)
			doc.Detach(id)
			return
		}
	}
}
