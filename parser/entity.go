package parser

import (
	"sort"
	"strings"
)

// entityNames is the sorted list of namedEntities keys, used to answer
// whether a run of characters can still grow into a known name.
var entityNames = func() []string {
	names := make([]string, 0, len(namedEntities))
	for k := range namedEntities {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}()

func isEntityPrefix(p string) bool {
	i := sort.SearchStrings(entityNames, p)
	return i < len(entityNames) && strings.HasPrefix(entityNames[i], p)
}

// Code points 0x80 to 0x9F in a numeric reference are read as windows-1252.
var replacementTable = [...]rune{
	'€', // First entry is what 0x80 should be replaced with.
	'\u0081',
	'‚',
	'ƒ',
	'„',
	'…',
	'†',
	'‡',
	'ˆ',
	'‰',
	'Š',
	'‹',
	'Œ',
	'\u008D',
	'Ž',
	'\u008F',
	'\u0090',
	'‘',
	'’',
	'“',
	'”',
	'•',
	'–',
	'—',
	'˜',
	'™',
	'š',
	'›',
	'œ',
	'\u009D',
	'ž',
	'Ÿ', // Last entry is 0x9F.
}

type charRefStatus uint8

const (
	// charRefLiteral means there is no reference here and the ampersand is
	// ordinary text.
	charRefLiteral charRefStatus = iota
	charRefDecoded
	// charRefMore means the buffered input ends before the reference could
	// be decided.
	charRefMore
)

type charRefResult struct {
	status charRefStatus
	text   string
	errs   []ErrorCode
}

func isASCIIAlpha(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isASCIIHexDigit(r rune) bool {
	return isASCIIDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func isASCIIAlphanumeric(r rune) bool {
	return isASCIIAlpha(r) || isASCIIDigit(r)
}

func isNonCharacter(code int) bool {
	if code >= 0xFDD0 && code <= 0xFDEF {
		return true
	}
	return code&0xFFFE == 0xFFFE && code <= 0x10FFFF
}

func isC0Control(code int) bool {
	return code >= 0x00 && code <= 0x1F
}

func isControl(code int) bool {
	return isC0Control(code) || (code >= 0x7F && code <= 0x9F)
}

func isASCIIWhitespace(code int) bool {
	switch code {
	case 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isSurrogate(code int) bool {
	return code >= 0xD800 && code <= 0xDFFF
}

// consumeCharRef decodes the character reference that starts at the
// cursor, just after an ampersand. allowed is an extra character that, when
// it follows the ampersand, means there is no reference at all (the quote of
// an attribute value). inAttr enables the attribute-value rule that leaves
// "&amp=" and "&ampx" alone. On charRefDecoded the cursor is past the
// reference; otherwise it has not moved.
func consumeCharRef(in *inputStream, allowed rune, inAttr bool) charRefResult {
	switch r := in.peek(0); r {
	case drainRune:
		return charRefResult{status: charRefMore}
	case '\t', '\n', '\f', ' ', '<', '&', eofRune:
		return charRefResult{status: charRefLiteral}
	case '#':
		return consumeNumericRef(in)
	default:
		if allowed != 0 && r == allowed {
			return charRefResult{status: charRefLiteral}
		}
	}
	return consumeNamedRef(in, inAttr)
}

func consumeNumericRef(in *inputStream) charRefResult {
	i := 1
	hex := false
	switch in.peek(i) {
	case drainRune:
		return charRefResult{status: charRefMore}
	case 'x', 'X':
		hex = true
		i++
	}

	digit := isASCIIDigit
	base := 10
	if hex {
		digit = isASCIIHexDigit
		base = 16
	}

	code, digits := 0, 0
	for {
		r := in.peek(i)
		if r == drainRune {
			return charRefResult{status: charRefMore}
		}
		if !digit(r) {
			break
		}
		if code <= 0x10FFFF {
			code = code*base + hexValue(r)
		}
		digits++
		i++
	}
	if digits == 0 {
		return charRefResult{status: charRefLiteral, errs: []ErrorCode{errAbsenceOfDigitsInNumericCharRef}}
	}

	var errs []ErrorCode
	switch in.peek(i) {
	case drainRune:
		return charRefResult{status: charRefMore}
	case ';':
		i++
	default:
		errs = append(errs, errMissingSemicolonAfterCharRef)
	}
	in.advance(i)

	switch {
	case code == 0:
		errs = append(errs, errNullCharacterReference)
		code = 0xFFFD
	case code > 0x10FFFF:
		errs = append(errs, errCharRefOutsideUnicodeRange)
		code = 0xFFFD
	case isSurrogate(code):
		errs = append(errs, errSurrogateCharacterReference)
		code = 0xFFFD
	case isNonCharacter(code):
		errs = append(errs, errNoncharacterCharacterReference)
	case code == 0x0D || (isControl(code) && !isASCIIWhitespace(code)):
		errs = append(errs, errControlCharacterReference)
		if 0x80 <= code && code <= 0x9F {
			code = int(replacementTable[code-0x80])
		}
	}
	return charRefResult{status: charRefDecoded, text: string(rune(code)), errs: errs}
}

func hexValue(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'f':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

// consumeNamedRef finds the longest known entity name at the cursor.
func consumeNamedRef(in *inputStream, inAttr bool) charRefResult {
	var (
		name strings.Builder
		best string
	)
	for i := 0; ; i++ {
		r := in.peek(i)
		if r == drainRune {
			return charRefResult{status: charRefMore}
		}
		if !isASCIIAlphanumeric(r) && r != ';' {
			break
		}
		name.WriteRune(r)
		s := name.String()
		if _, ok := namedEntities[s]; ok {
			best = s
		}
		if r == ';' || !isEntityPrefix(s) {
			break
		}
	}

	if best == "" {
		// Not a reference. A run of alphanumerics closed by a semicolon
		// is still worth reporting.
		i := 0
		for ; ; i++ {
			r := in.peek(i)
			if r == drainRune {
				return charRefResult{status: charRefMore}
			}
			if !isASCIIAlphanumeric(r) {
				if r == ';' && i > 0 {
					return charRefResult{status: charRefLiteral, errs: []ErrorCode{errUnknownNamedCharacterReference}}
				}
				break
			}
		}
		return charRefResult{status: charRefLiteral}
	}

	terminated := best[len(best)-1] == ';'
	if !terminated && inAttr {
		next := in.peek(len(best))
		if next == drainRune {
			return charRefResult{status: charRefMore}
		}
		if next == '=' || isASCIIAlphanumeric(next) {
			return charRefResult{status: charRefLiteral}
		}
	}

	in.advance(len(best))
	res := charRefResult{status: charRefDecoded, text: namedEntities[best]}
	if !terminated {
		res.errs = []ErrorCode{errMissingSemicolonAfterCharRef}
	}
	return res
}
