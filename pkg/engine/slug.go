package engine

import (
	"regexp"
	"strings"

	"legacymig/pkg/schema"
)

var slugSeparatorRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases title, folds accented letters to their base letter and
// replaces every run of other characters with a single hyphen.
func Slugify(title string) string {
	return strings.Trim(slugSeparatorRe.ReplaceAllString(schema.FoldKey(title), "-"), "-")
}
