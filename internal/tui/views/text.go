package views

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rivo/tview"
)

// display prepares backup text for a tview cell: emoji modifiers that
// break tcell's width math are dropped and color tags are escaped, so
// "[图片]" stays literal.
func display(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isProblematicRune(r) {
			b.WriteRune(r)
		}
		i += size
	}
	return tview.Escape(b.String())
}

func isProblematicRune(r rune) bool {
	switch {
	case r >= 0x1F3FB && r <= 0x1F3FF: // skin tones
		return true
	case r == 0x200D: // zero width joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// stamp renders a unix time compactly relative to now.
func stamp(ts int64, loc *time.Location, now time.Time) string {
	if ts == 0 {
		return ""
	}
	t := time.Unix(ts, 0).In(loc)
	now = now.In(loc)
	switch {
	case t.Year() == now.Year() && t.YearDay() == now.YearDay():
		return t.Format("15:04")
	case t.Year() == now.Year():
		return t.Format("01/02")
	default:
		return t.Format("2006/01/02")
	}
}
