package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
	"golang.org/x/net/html/atom"
)

// adjustMathMLAttributes fixes the one MathML attribute whose name is not
// all lower case.
func adjustMathMLAttributes(attrs []dom.Attr) {
	for i := range attrs {
		if attrs[i].Name == "definitionurl" {
			attrs[i].Name = "definitionURL"
		}
	}
}

func adjustSVGAttributes(attrs []dom.Attr) {
	for i := range attrs {
		if name, ok := svgAttributeNames[attrs[i].Name]; ok {
			attrs[i].Name = name
		}
	}
}

// adjustForeignAttributes moves the xlink, xml and xmlns attributes into
// their namespaces.
// https://html.spec.whatwg.org/multipage/parsing.html#adjust-foreign-attributes
func adjustForeignAttributes(attrs []dom.Attr) {
	for i, a := range attrs {
		switch a.Name {
		case "xlink:actuate", "xlink:arcrole", "xlink:href", "xlink:role", "xlink:show", "xlink:title", "xlink:type":
			attrs[i].Namespace, attrs[i].Prefix, attrs[i].Name = dom.XLink, "xlink", a.Name[len("xlink:"):]
		case "xml:lang", "xml:space":
			attrs[i].Namespace, attrs[i].Prefix, attrs[i].Name = dom.XML, "xml", a.Name[len("xml:"):]
		case "xmlns":
			attrs[i].Namespace = dom.XMLNS
		case "xmlns:xlink":
			attrs[i].Namespace, attrs[i].Prefix, attrs[i].Name = dom.XMLNS, "xmlns", "xlink"
		}
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#html-integration-point
func (c *HTMLTreeConstructor) isHTMLIntegrationPoint(item stackItem) bool {
	switch item.ns {
	case dom.MathML:
		if item.atom != atom.AnnotationXml {
			return false
		}
		enc, _ := c.doc.Node(item.id).Attr("encoding")
		enc = strings.ToLower(enc)
		return enc == "text/html" || enc == "application/xhtml+xml"
	case dom.SVG:
		switch item.atom {
		case atom.ForeignObject, atom.Desc, atom.Title:
			return true
		}
	}
	return false
}

// https://html.spec.whatwg.org/multipage/parsing.html#mathml-text-integration-point
func isMathMLTextIntegrationPoint(item stackItem) bool {
	if item.ns != dom.MathML {
		return false
	}
	switch item.atom {
	case atom.Mi, atom.Mo, atom.Mn, atom.Ms, atom.Mtext:
		return true
	}
	return false
}

// useForeignContentRules decides, per token, whether the token goes to the
// foreign content rules instead of the current insertion mode.
// https://html.spec.whatwg.org/multipage/parsing.html#tree-construction-dispatcher
func (c *HTMLTreeConstructor) useForeignContentRules(t *Token) bool {
	if c.oe.len() == 0 {
		return false
	}
	n := c.adjustedCurrentNode()
	if n.ns == dom.HTML {
		return false
	}
	if isMathMLTextIntegrationPoint(n) {
		if t.TokenType == startTagToken && t.Atom != atom.Mglyph && t.Atom != atom.Malignmark {
			return false
		}
		if t.TokenType == characterToken {
			return false
		}
	}
	if n.is(dom.MathML, atom.AnnotationXml) && t.TokenType == startTagToken && t.Atom == atom.Svg {
		return false
	}
	if c.isHTMLIntegrationPoint(n) && (t.TokenType == startTagToken || t.TokenType == characterToken) {
		return false
	}
	return t.TokenType != endOfFileToken
}

// breaksOutOfForeignContent reports whether an HTML start tag closes the
// open foreign elements.
func breaksOutOfForeignContent(t *Token) bool {
	switch t.Atom {
	case atom.B, atom.Big, atom.Blockquote, atom.Body, atom.Br, atom.Center, atom.Code, atom.Dd, atom.Div, atom.Dl,
		atom.Dt, atom.Em, atom.Embed, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Head, atom.Hr,
		atom.I, atom.Img, atom.Li, atom.Listing, atom.Menu, atom.Meta, atom.Nobr, atom.Ol, atom.P, atom.Pre,
		atom.Ruby, atom.S, atom.Small, atom.Span, atom.Strong, atom.Strike, atom.Sub, atom.Sup, atom.Table,
		atom.Tt, atom.U, atom.Ul, atom.Var:
		return true
	case atom.Font:
		for _, a := range t.Attributes {
			switch a.Name {
			case "color", "face", "size":
				return true
			}
		}
	}
	return false
}

// breakoutStaysForeign reports whether a breakout tag must be treated as
// an ordinary foreign start tag. That is the fragment case where nothing
// above the root would stop the popping and the context element is itself
// foreign content.
func (c *HTMLTreeConstructor) breakoutStaysForeign() bool {
	ctx := c.context
	if ctx == nil || ctx.ns == dom.HTML || isMathMLTextIntegrationPoint(*ctx) || c.isHTMLIntegrationPoint(*ctx) {
		return false
	}
	for i := c.oe.len() - 1; i > 0; i-- {
		n := c.oe.at(i)
		if n.ns == dom.HTML || isMathMLTextIntegrationPoint(n) || c.isHTMLIntegrationPoint(n) {
			return false
		}
	}
	return true
}

// popToHTMLOrIntegrationPoint pops foreign elements until the current node
// is HTML or an integration point.
func (c *HTMLTreeConstructor) popToHTMLOrIntegrationPoint() {
	for c.oe.len() > 0 {
		n := c.oe.top()
		if n.ns == dom.HTML || isMathMLTextIntegrationPoint(n) || c.isHTMLIntegrationPoint(n) {
			return
		}
		c.oe.pop()
	}
}

// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inforeign
func (c *HTMLTreeConstructor) inForeignContentModeHandler(t *Token) (bool, insertionMode) {
	switch t.TokenType {
	case characterToken:
		data := t.Data
		if strings.ContainsRune(data, 0) {
			for i := strings.Count(data, "\x00"); i > 0; i-- {
				c.parseError(errUnexpectedNullCharacter)
			}
			data = strings.ReplaceAll(data, "\x00", "\ufffd")
		}
		c.insertCharacters(data)
		// U+0000 never clears frameset-ok, even after replacement.
		if strings.Trim(t.Data, whitespace+"\x00") != "" {
			c.framesetOK = false
		}
	case commentToken:
		c.insertComment(t.Data)
	case docTypeToken:
		c.parseError(errUnexpectedDoctype)
	case startTagToken:
		if breaksOutOfForeignContent(t) {
			c.parseError(errUnexpectedForeignBreak, t.TagName)
			if !c.breakoutStaysForeign() {
				c.popToHTMLOrIntegrationPoint()
				return c.mappings[c.mode](t)
			}
		}
		cur := c.adjustedCurrentNode()
		switch cur.ns {
		case dom.MathML:
			adjustMathMLAttributes(t.Attributes)
		case dom.SVG:
			if name, ok := svgTagNames[t.TagName]; ok {
				t.TagName = name
				t.Atom = atom.Lookup([]byte(name))
			}
			adjustSVGAttributes(t.Attributes)
		}
		adjustForeignAttributes(t.Attributes)
		c.insertForeignElementForToken(t, cur.ns)
		if t.SelfClosing {
			c.oe.pop()
			c.acknowledgeSelfClosingTag()
		}
	case endTagToken:
		if t.Atom == atom.Br || t.Atom == atom.P {
			c.parseError(errUnexpectedForeignBreak, t.TagName)
			c.popToHTMLOrIntegrationPoint()
			return c.mappings[c.mode](t)
		}
		top := c.oe.len() - 1
		if strings.ToLower(c.oe.at(top).name) != t.TagName {
			c.parseError(errUnexpectedEndTag, t.TagName)
		}
		for i := top; ; i-- {
			node := c.oe.at(i)
			if i != top && node.ns == dom.HTML {
				return c.mappings[c.mode](t)
			}
			if i == 0 {
				return false, c.mode
			}
			if strings.ToLower(node.name) == t.TagName {
				c.oe.popUntilIndex(i)
				return false, c.mode
			}
		}
	}
	return false, c.mode
}

// svgTagNames restores the case of SVG element names the tokenizer lowered.
// https://html.spec.whatwg.org/multipage/parsing.html#parsing-main-inforeign
var svgTagNames = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomponenttransfer": "feComponentTransfer",
	"fecomposite":         "feComposite",
	"feconvolvematrix":    "feConvolveMatrix",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"fedistantlight":      "feDistantLight",
	"feflood":             "feFlood",
	"fefunca":             "feFuncA",
	"fefuncb":             "feFuncB",
	"fefuncg":             "feFuncG",
	"fefuncr":             "feFuncR",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"femergenode":         "feMergeNode",
	"femorphology":        "feMorphology",
	"feoffset":            "feOffset",
	"fepointlight":        "fePointLight",
	"fespecularlighting":  "feSpecularLighting",
	"fespotlight":         "feSpotLight",
	"fetile":              "feTile",
	"feturbulence":        "feTurbulence",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}

// https://html.spec.whatwg.org/multipage/parsing.html#adjust-svg-attributes
var svgAttributeNames = map[string]string{
	"attributename":       "attributeName",
	"attributetype":       "attributeType",
	"basefrequency":       "baseFrequency",
	"baseprofile":         "baseProfile",
	"calcmode":            "calcMode",
	"clippathunits":       "clipPathUnits",
	"diffuseconstant":     "diffuseConstant",
	"edgemode":            "edgeMode",
	"filterunits":         "filterUnits",
	"glyphref":            "glyphRef",
	"gradienttransform":   "gradientTransform",
	"gradientunits":       "gradientUnits",
	"kernelmatrix":        "kernelMatrix",
	"kernelunitlength":    "kernelUnitLength",
	"keypoints":           "keyPoints",
	"keysplines":          "keySplines",
	"keytimes":            "keyTimes",
	"lengthadjust":        "lengthAdjust",
	"limitingconeangle":   "limitingConeAngle",
	"markerheight":        "markerHeight",
	"markerunits":         "markerUnits",
	"markerwidth":         "markerWidth",
	"maskcontentunits":    "maskContentUnits",
	"maskunits":           "maskUnits",
	"numoctaves":          "numOctaves",
	"pathlength":          "pathLength",
	"patterncontentunits": "patternContentUnits",
	"patterntransform":    "patternTransform",
	"patternunits":        "patternUnits",
	"pointsatx":           "pointsAtX",
	"pointsaty":           "pointsAtY",
	"pointsatz":           "pointsAtZ",
	"preservealpha":       "preserveAlpha",
	"preserveaspectratio": "preserveAspectRatio",
	"primitiveunits":      "primitiveUnits",
	"refx":                "refX",
	"refy":                "refY",
	"repeatcount":         "repeatCount",
	"repeatdur":           "repeatDur",
	"requiredextensions":  "requiredExtensions",
	"requiredfeatures":    "requiredFeatures",
	"specularconstant":    "specularConstant",
	"specularexponent":    "specularExponent",
	"spreadmethod":        "spreadMethod",
	"startoffset":         "startOffset",
	"stddeviation":        "stdDeviation",
	"stitchtiles":         "stitchTiles",
	"surfacescale":        "surfaceScale",
	"systemlanguage":      "systemLanguage",
	"tablevalues":         "tableValues",
	"targetx":             "targetX",
	"targety":             "targetY",
	"textlength":          "textLength",
	"viewbox":             "viewBox",
	"viewtarget":          "viewTarget",
	"xchannelselector":    "xChannelSelector",
	"ychannelselector":    "yChannelSelector",
	"zoomandpan":          "zoomAndPan",
}
