package parser

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names returned by DetectAndDecode.
const (
	EncodingUTF8      = "utf-8"
	EncodingUTF8BOM   = "utf-8-bom"
	EncodingUTF8Lossy = "utf-8-lossy"
	EncodingUTF16LE   = "utf-16le"
	EncodingUTF16BE   = "utf-16be"
	EncodingLatin1    = "latin-1"
)

// ErrBinary is returned when the decoded data contains NUL bytes, which never
// occur in a text snapshot or export.
var ErrBinary = errors.New("data looks binary")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any BOM,
// and returns UTF-8 bytes along with the detected encoding name:
//  1. UTF-8 BOM: stripped
//  2. UTF-16 LE/BE BOM: decoded
//  3. Valid UTF-8: returned as is
//  4. UTF-8 with stray invalid bytes: invalid bytes dropped
//  5. Anything else: decoded as Latin-1
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, EncodingUTF8, nil
	}

	var (
		decoded []byte
		name    string
		err     error
	)

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		decoded, name = data[len(bomUTF8):], EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		decoded, err = decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
		name = EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		decoded, err = decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
		name = EncodingUTF16BE
	case utf8.Valid(data):
		decoded, name = data, EncodingUTF8
	case hasMultibyteUTF8(data):
		decoded, name = bytes.ToValidUTF8(data, nil), EncodingUTF8Lossy
	default:
		decoded, err = decodeWith(charmap.ISO8859_1, data)
		name = EncodingLatin1
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s decode failed: %w", name, err)
	}

	if bytes.IndexByte(decoded, 0) >= 0 {
		return nil, "", fmt.Errorf("%s: %w", name, ErrBinary)
	}

	return decoded, name, nil
}

func decodeWith(enc encoding.Encoding, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// hasMultibyteUTF8 reports whether data contains at least one valid
// multi-byte UTF-8 sequence. Such data is UTF-8 with a few damaged bytes
// rather than a single-byte encoding.
func hasMultibyteUTF8(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if size > 1 && r != utf8.RuneError {
			return true
		}
		data = data[size:]
	}
	return false
}
