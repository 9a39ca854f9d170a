package schema

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FoldKey reduces a label to the form used for vocabulary lookups:
//  1. TrimSpace, ToLower
//  2. Strip diacritics (NFD decompose, drop combining marks)
//  3. Collapse whitespace runs to a single space
//
// "  Parque  Poblädo " and "parque poblado" fold to the same key.
func FoldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	s = stripDiacritics(s)
	return whitespaceRe.ReplaceAllString(s, " ")
}

// stripDiacritics removes combining marks (unicode.Mn) after NFD decomposition.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
