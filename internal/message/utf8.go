package message

import (
	"strings"
	"unicode/utf8"
)

// DecodeUTF8 converts b to a string, writing one U+FFFD for every byte that
// does not start a valid UTF-8 sequence. Runs of invalid bytes are not
// merged, so IsCorrupt sees binary payloads at their real density.
func DecodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + len(b)/2)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			sb.WriteRune(utf8.RuneError)
			b = b[1:]
			continue
		}
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
