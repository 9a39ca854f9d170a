package engine

import (
	"strings"
	"time"
)

// isoLayout is the target timestamp format, without zone.
const isoLayout = "2006-01-02T15:04:05"

// legacyDateLayouts are tried in order.
var legacyDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLegacyDate converts a legacy DATE or DATETIME value to isoLayout.
// Empty values, the MySQL zero placeholders and unparseable text give nil.
func ParseLegacyDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || isZeroDate(s) {
		return nil
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			out := t.Format(isoLayout)
			return &out
		}
	}
	return nil
}

// isZeroDate matches "0000-00-00" and "0000-00-00 00:00:00".
func isZeroDate(s string) bool {
	return strings.Trim(s, "0-: ") == ""
}
