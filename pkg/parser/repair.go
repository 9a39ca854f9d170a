package parser

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// maxRepairWindow is the longest substring, in runes, tried when repairing a
// string piecewise. A mis-decoded UTF-8 sequence spans at most four runes, so
// nine leaves room for adjacent garbled characters.
const maxRepairWindow = 9

// repairState is the position of the piecewise repair loop.
type repairState int

const (
	stateScan    repairState = iota // start a new window at pos
	stateWindow                     // trying runes[pos:pos+width]
	stateLiteral                    // no window worked, copy runes[pos]
)

// Repair reverses UTF-8 text that was decoded as ISO-8859-1 and stored again
// as UTF-8 ("JosÃ©" -> "José").
//
// The whole string is re-encoded as ISO-8859-1 and the bytes are read back as
// UTF-8. If that fails, because the string mixes garbled spans with correct
// text or runes outside ISO-8859-1 such as emoji, the string is repaired
// piecewise: from each position the shortest window of 1..9 runes that round
// trips is accepted, otherwise the rune is copied through unchanged.
//
// Text mis-decoded more than once is repaired one level per pass, and passes
// repeat until the output stops changing. A pass that changes anything makes
// the string shorter, so the loop terminates.
//
// Text without the corruption either fails the round trip or is returned
// unchanged by it, so clean text passes through as is.
func Repair(s string) string {
	for {
		fixed := repairPass(s)
		if fixed == s {
			return s
		}
		s = fixed
	}
}

// repairPass undoes one level of mis-decoding.
func repairPass(s string) string {
	if isASCII(s) {
		return s
	}
	if fixed, ok := roundTrip(s); ok {
		return fixed
	}

	runes := []rune(s)
	var out strings.Builder
	out.Grow(len(s))

	state := stateScan
	pos, width := 0, 0
	for pos < len(runes) {
		switch state {
		case stateScan:
			width = 1
			state = stateWindow
		case stateWindow:
			if width > maxRepairWindow || pos+width > len(runes) {
				state = stateLiteral
				continue
			}
			if fixed, ok := roundTrip(string(runes[pos : pos+width])); ok {
				out.WriteString(fixed)
				pos += width
				state = stateScan
				continue
			}
			width++
		case stateLiteral:
			out.WriteRune(runes[pos])
			pos++
			state = stateScan
		}
	}

	return out.String()
}

// RepairValue applies Repair to every string inside v. Maps and slices are
// rebuilt recursively; any other value is returned unchanged.
func RepairValue(v any) any {
	switch t := v.(type) {
	case string:
		return Repair(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = RepairValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = RepairValue(val)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = Repair(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = Repair(val)
		}
		return out
	default:
		return v
	}
}

// roundTrip encodes s as ISO-8859-1 and decodes the bytes as UTF-8.
func roundTrip(s string) (string, bool) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return "", false
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
