package packet

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// UnknownName replaces names that are empty or not valid UTF-8.
const UnknownName = "Unknown"

// DecodeName turns a fixed-width, NUL-terminated name field into a string.
func DecodeName(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	if !utf8.Valid(raw) {
		return UnknownName
	}
	name := strings.TrimFunc(string(raw), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	})
	if name == "" {
		return UnknownName
	}
	return name
}
