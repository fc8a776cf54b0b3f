package parser

import (
	"strings"

	"github.com/heathj/htmlstream/parser/dom"
)

// Public identifiers are compared ASCII case-insensitively, so every entry
// here is lower case.
const (
	w30DTDW3HTMLStrict3En     = "-//w3o//dtd w3 html strict 3.0//en//"
	w3cDTDHTML4TransitionalEN = "-/w3c/dtd html 4.0 transitional/en"
	htmlString                = "html"
	ibmxhtml                  = "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd"
	w3cDTDHTML401Frameset     = "-//w3c//dtd html 4.01 frameset//"
	w3cDTDHTML401Transitional = "-//w3c//dtd html 4.01 transitional//"
	w3cDTDXHTML1Frameset      = "-//w3c//dtd xhtml 1.0 frameset//"
	w3cDTDXHTML1Transitional  = "-//w3c//dtd xhtml 1.0 transitional//"
)

// https://html.spec.whatwg.org/multipage/parsing.html#the-initial-insertion-mode
var knownPublicIdentifiers = []string{
	"+//silmaril//dtd html pro v0r11 19970101//",
	"-//as//dtd html 3.0 aswedit + extensions//",
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0 level 1//",
	"-//ietf//dtd html 2.0 level 2//",
	"-//ietf//dtd html 2.0 strict level 1//",
	"-//ietf//dtd html 2.0 strict level 2//",
	"-//ietf//dtd html 2.0 strict//",
	"-//ietf//dtd html 2.0//",
	"-//ietf//dtd html 2.1e//",
	"-//ietf//dtd html 3.0//",
	"-//ietf//dtd html 3.2 final//",
	"-//ietf//dtd html 3.2//",
	"-//ietf//dtd html 3//",
	"-//ietf//dtd html level 0//",
	"-//ietf//dtd html level 1//",
	"-//ietf//dtd html level 2//",
	"-//ietf//dtd html level 3//",
	"-//ietf//dtd html strict level 0//",
	"-//ietf//dtd html strict level 1//",
	"-//ietf//dtd html strict level 2//",
	"-//ietf//dtd html strict level 3//",
	"-//ietf//dtd html strict//",
	"-//ietf//dtd html//",
	"-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer 2.0 html strict//",
	"-//microsoft//dtd internet explorer 2.0 html//",
	"-//microsoft//dtd internet explorer 2.0 tables//",
	"-//microsoft//dtd internet explorer 3.0 html strict//",
	"-//microsoft//dtd internet explorer 3.0 html//",
	"-//microsoft//dtd internet explorer 3.0 tables//",
	"-//netscape comm. corp.//dtd html//",
	"-//netscape comm. corp.//dtd strict html//",
	"-//o'reilly and associates//dtd html 2.0//",
	"-//o'reilly and associates//dtd html extended 1.0//",
	"-//o'reilly and associates//dtd html extended relaxed 1.0//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//",
	"-//sun microsystems corp.//dtd hotjava html//",
	"-//sun microsystems corp.//dtd hotjava strict html//",
	"-//w3c//dtd html 3 1995-03-24//",
	"-//w3c//dtd html 3.2 draft//",
	"-//w3c//dtd html 3.2 final//",
	"-//w3c//dtd html 3.2//",
	"-//w3c//dtd html 3.2s draft//",
	"-//w3c//dtd html 4.0 frameset//",
	"-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental 19960712//",
	"-//w3c//dtd html experimental 970421//",
	"-//w3c//dtd w3 html//",
	"-//w3o//dtd w3 html 3.0//",
	"-//webtechs//dtd mozilla html 2.0//",
	"-//webtechs//dtd mozilla html//",
}

// quirksModeFor classifies a doctype token. iframe srcdoc documents are
// never put in quirks mode.
func quirksModeFor(t *Token, iframeSrcdoc bool) dom.QuirksMode {
	if iframeSrcdoc {
		return dom.NoQuirks
	}
	if isForceQuirks(t) {
		return dom.Quirks
	}
	if isLimitedQuirks(t) {
		return dom.LimitedQuirks
	}
	return dom.NoQuirks
}

func isForceQuirks(t *Token) bool {
	if t.ForceQuirks || t.TagName != "html" {
		return true
	}
	public := strings.ToLower(t.PublicIdentifier)
	system := strings.ToLower(t.SystemIdentifier)
	if t.HasPublicIdentifier {
		switch public {
		case w30DTDW3HTMLStrict3En, w3cDTDHTML4TransitionalEN, htmlString:
			return true
		}
	}
	if t.HasSystemIdentifier && system == ibmxhtml {
		return true
	}
	if !t.HasPublicIdentifier {
		return false
	}
	for _, v := range knownPublicIdentifiers {
		if strings.HasPrefix(public, v) {
			return true
		}
	}
	if !t.HasSystemIdentifier &&
		(strings.HasPrefix(public, w3cDTDHTML401Frameset) || strings.HasPrefix(public, w3cDTDHTML401Transitional)) {
		return true
	}
	return false
}

func isLimitedQuirks(t *Token) bool {
	if !t.HasPublicIdentifier {
		return false
	}
	public := strings.ToLower(t.PublicIdentifier)
	if strings.HasPrefix(public, w3cDTDXHTML1Frameset) || strings.HasPrefix(public, w3cDTDXHTML1Transitional) {
		return true
	}
	if t.HasSystemIdentifier &&
		(strings.HasPrefix(public, w3cDTDHTML401Frameset) || strings.HasPrefix(public, w3cDTDHTML401Transitional)) {
		return true
	}
	return false
}

// isConformingDoctype reports whether a doctype token is one of the forms
// that do not raise a parse error.
func isConformingDoctype(t *Token) bool {
	if t.TagName != "html" || t.HasPublicIdentifier {
		return false
	}
	return !t.HasSystemIdentifier || t.SystemIdentifier == "about:legacy-compat"
}
